package ast

import "fmt"

// NodeRef is a generation-checked index of a node slot. The zero NodeRef
// means "no node". A NodeRef is only meaningful while a GCLock on its
// Context is held and no collection has reclaimed the slot; a stale ref
// is detected on dereference.
type NodeRef struct {
	ctx uint32
	idx uint32
	gen uint32
}

func (r NodeRef) IsZero() bool { return r.idx == 0 }

// Ptr returns the identity key of r.
func (r NodeRef) Ptr() NodePtr { return NodePtr(r) }

func (r NodeRef) String() string {
	if r.IsZero() {
		return "nil"
	}
	return fmt.Sprintf("#%d.%d@%d", r.idx, r.gen, r.ctx)
}

// NodePtr compares nodes by identity. It grants no access and keeps
// nothing alive; it is meant to be used as a map key.
type NodePtr NodeRef

func (p NodePtr) IsZero() bool   { return p.idx == 0 }
func (p NodePtr) String() string { return NodeRef(p).String() }

// LinkRef refers to a list-link record.
type LinkRef struct {
	ctx uint32
	idx uint32
	gen uint32
}

func (r LinkRef) IsZero() bool { return r.idx == 0 }

// NodeList is a singly linked chain of list-link records.
type NodeList struct {
	Head LinkRef
}

func (l NodeList) IsEmpty() bool { return l.Head.IsZero() }
