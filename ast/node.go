package ast

import "github.com/t14raptor/fastscope/source"

// Node is the payload stored in an arena slot.
type Node interface {
	Kind() Kind
	// Range returns the source span the node was built from.
	Range() source.Span
	meta() *Meta
}

// Meta is embedded in every node payload.
type Meta struct {
	Span source.Span
}

func (m *Meta) Range() source.Span { return m.Span }
func (m *Meta) meta() *Meta        { return m }

type Program struct {
	Meta
	Body NodeList
}

func (*Program) Kind() Kind { return KindProgram }
