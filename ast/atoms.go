package ast

import (
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Atom is an interned identifier name. Atom 0 is the empty string.
type Atom uint32

// AtomTable interns names in NFC so that canonically equivalent
// identifiers share an Atom.
type AtomTable struct {
	index map[string]Atom
	strs  []string
}

func NewAtomTable() *AtomTable {
	return &AtomTable{
		index: map[string]Atom{"": 0},
		strs:  []string{""},
	}
}

func (t *AtomTable) Intern(s string) Atom {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if a, ok := t.index[s]; ok {
		return a
	}
	n, err := safecast.Conv[uint32](len(t.strs))
	if err != nil {
		panic(fmt.Errorf("ast: atom table overflow: %w", err))
	}
	a := Atom(n)
	t.index[s] = a
	t.strs = append(t.strs, s)
	return a
}

// Lookup returns the atom of s without interning it.
func (t *AtomTable) Lookup(s string) (Atom, bool) {
	a, ok := t.index[norm.NFC.String(s)]
	return a, ok
}

func (t *AtomTable) Str(a Atom) string {
	if int(a) >= len(t.strs) {
		panic(fmt.Sprintf("ast: unknown atom %d", a))
	}
	return t.strs[a]
}

func (t *AtomTable) Len() int { return len(t.strs) }
