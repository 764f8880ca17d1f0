package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevNote is attached information; standalone notes are rare.
	SevNote Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
