package diag

import "github.com/t14raptor/fastscope/source"

// SourceManager is the diagnostic sink of one compilation unit. It owns the
// bag and keeps per-severity counts that are not affected by the bag limit.
type SourceManager struct {
	Files *source.FileSet

	bag      *Bag
	errors   int
	warnings int
}

func NewSourceManager(files *source.FileSet, maxDiagnostics int) *SourceManager {
	if files == nil {
		files = source.NewFileSet()
	}
	return &SourceManager{Files: files, bag: NewBag(maxDiagnostics)}
}

func (sm *SourceManager) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	switch sev {
	case SevError:
		sm.errors++
	case SevWarning:
		sm.warnings++
	}
	sm.bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

// Error starts an error report; call Emit on the result.
func (sm *SourceManager) Error(code Code, span source.Span, msg string) *ReportBuilder {
	return ReportError(sm, code, span, msg)
}

// Warning starts a warning report; call Emit on the result.
func (sm *SourceManager) Warning(code Code, span source.Span, msg string) *ReportBuilder {
	return ReportWarning(sm, code, span, msg)
}

func (sm *SourceManager) ErrorCount() int   { return sm.errors }
func (sm *SourceManager) WarningCount() int { return sm.warnings }

// Bag exposes the collected diagnostics.
func (sm *SourceManager) Bag() *Bag { return sm.bag }

// Diagnostics returns the collected diagnostics sorted by position.
func (sm *SourceManager) Diagnostics() []Diagnostic {
	sm.bag.Sort()
	return sm.bag.Items()
}
