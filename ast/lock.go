package ast

import (
	"fmt"
	"iter"

	"github.com/t14raptor/fastscope/diag"
)

// GCLock is the capability to read and mutate a Context. At most one lock
// per Context is live at a time, and Collect refuses to run while one is
// held, so node references obtained under a lock cannot observe a sweep.
// The one-lock rule is enforced per Context, not per goroutine: one
// goroutine may hold locks on two different arenas at the same time.
type GCLock struct {
	ctx *Context
}

// Lock acquires the access lock of ctx. It panics if one is already live.
func (ctx *Context) Lock() *GCLock {
	ctx.checkOpen()
	if ctx.locked {
		panic(fmt.Sprintf("ast: attempt to create multiple GCLocks on Context %d", ctx.id))
	}
	ctx.locked = true
	return &GCLock{ctx: ctx}
}

// With runs fn under a fresh lock and releases it afterwards.
func (ctx *Context) With(fn func(lock *GCLock)) {
	lock := ctx.Lock()
	defer lock.Release()
	fn(lock)
}

// Release ends the lock. The lock must not be used afterwards.
func (l *GCLock) Release() {
	ctx := l.context()
	ctx.locked = false
	l.ctx = nil
}

func (l *GCLock) context() *Context {
	if l == nil || l.ctx == nil {
		panic("ast: use of released GCLock")
	}
	return l.ctx
}

func (l *GCLock) Context() *Context { return l.context() }

func (l *GCLock) SourceManager() *diag.SourceManager { return l.context().sm }

// Alloc stores n in the arena. Every child of n must live in the same arena.
func (l *GCLock) Alloc(n Node) NodeRef {
	return l.context().alloc(n)
}

// Node returns the payload behind r, or nil for the zero ref.
func (l *GCLock) Node(r NodeRef) Node {
	if r.IsZero() {
		return nil
	}
	return l.context().slot(r).node
}

// Kind returns the kind of r, KindInvalid for the zero ref.
func (l *GCLock) Kind(r NodeRef) Kind {
	if r.IsZero() {
		return KindInvalid
	}
	return l.Node(r).Kind()
}

// Get returns the payload of r as T and panics on a kind mismatch.
func Get[T Node](l *GCLock, r NodeRef) T {
	n, ok := l.Node(r).(T)
	if !ok {
		var want T
		panic(fmt.Sprintf("ast: node %v is %v, not %T", r, l.Kind(r), want))
	}
	return n
}

// As returns the payload of r as T if it has that type.
func As[T Node](l *GCLock, r NodeRef) (T, bool) {
	if r.IsZero() {
		var zero T
		return zero, false
	}
	n, ok := l.Node(r).(T)
	return n, ok
}

// AppendLink creates a list link holding node after prev, which may be zero.
func (l *GCLock) AppendLink(prev LinkRef, node NodeRef) LinkRef {
	return l.context().appendLink(prev, node)
}

func (l *GCLock) NewList(nodes ...NodeRef) NodeList {
	var list NodeList
	var tail LinkRef
	for _, n := range nodes {
		tail = l.AppendLink(tail, n)
		if list.Head.IsZero() {
			list.Head = tail
		}
	}
	return list
}

// Append adds node at the end of list, walking it to find the tail.
func (l *GCLock) Append(list *NodeList, node NodeRef) {
	ctx := l.context()
	if list.Head.IsZero() {
		list.Head = ctx.appendLink(LinkRef{}, node)
		return
	}
	tail := list.Head
	for {
		next := ctx.linkSlot(tail).next
		if next.IsZero() {
			break
		}
		tail = next
	}
	ctx.appendLink(tail, node)
}

// Items iterates the elements of list; holes yield zero refs.
func (l *GCLock) Items(list NodeList) iter.Seq[NodeRef] {
	ctx := l.context()
	return func(yield func(NodeRef) bool) {
		for link := list.Head; !link.IsZero(); {
			s := ctx.linkSlot(link)
			if !yield(s.node) {
				return
			}
			link = s.next
		}
	}
}

func (l *GCLock) Slice(list NodeList) []NodeRef {
	var out []NodeRef
	for r := range l.Items(list) {
		out = append(out, r)
	}
	return out
}

func (l *GCLock) Len(list NodeList) int {
	n := 0
	for range l.Items(list) {
		n++
	}
	return n
}

func (l *GCLock) Atom(s string) Atom { return l.context().atoms.Intern(s) }

func (l *GCLock) Str(a Atom) string { return l.context().atoms.Str(a) }

// Name returns the name of an Identifier or PrivateIdentifier, "" otherwise.
func (l *GCLock) Name(r NodeRef) string {
	switch n := l.Node(r).(type) {
	case *Identifier:
		return l.Str(n.Name)
	case *PrivateIdentifier:
		return l.Str(n.Name)
	}
	return ""
}
