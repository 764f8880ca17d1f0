package ast

import "fmt"

// NodeRc keeps a node alive across collections without holding a GCLock.
// Every live NodeRc counts toward the node's root count and toward the
// Context's outstanding handles; Release must be called exactly once.
type NodeRc struct {
	ctx      *Context
	ref      NodeRef
	released bool
}

func NewNodeRc(lock *GCLock, r NodeRef) *NodeRc {
	ctx := lock.context()
	s := ctx.slot(r)
	s.refs++
	ctx.handles++
	return &NodeRc{ctx: ctx, ref: r}
}

func (rc *NodeRc) Clone() *NodeRc {
	rc.check()
	s := rc.ctx.slot(rc.ref)
	s.refs++
	rc.ctx.handles++
	return &NodeRc{ctx: rc.ctx, ref: rc.ref}
}

func (rc *NodeRc) Release() {
	rc.check()
	s := rc.ctx.slot(rc.ref)
	if s.refs == 0 {
		panic(fmt.Sprintf("ast: reference count underflow on %v", rc.ref))
	}
	if rc.ctx.handles == 0 {
		panic(fmt.Sprintf("ast: outstanding handle underflow on Context %d", rc.ctx.id))
	}
	s.refs--
	rc.ctx.handles--
	rc.released = true
}

func (rc *NodeRc) check() {
	if rc.released {
		panic(fmt.Sprintf("ast: NodeRc %v used after Release", rc.ref))
	}
	rc.ctx.checkOpen()
}

// Get returns the node ref. lock must belong to the NodeRc's Context.
func (rc *NodeRc) Get(lock *GCLock) NodeRef {
	rc.check()
	if ctx := lock.context(); ctx != rc.ctx {
		panic(fmt.Sprintf("ast: NodeRc of Context %d dereferenced with GCLock of Context %d", rc.ctx.id, ctx.id))
	}
	return rc.ref
}

func (rc *NodeRc) Node(lock *GCLock) Node {
	return lock.Node(rc.Get(lock))
}

// Ptr is usable without a lock since it grants no access.
func (rc *NodeRc) Ptr() NodePtr { return rc.ref.Ptr() }
