package ast_test

import (
	"testing"

	"github.com/t14raptor/fastscope/ast"
)

func TestNodeRcCounts(t *testing.T) {
	ctx, lock, b := newContext(t)
	rc := ast.NewNodeRc(lock, b.Ident("x"))
	clone := rc.Clone()
	if got := ctx.OutstandingHandles(); got != 2 {
		t.Fatalf("got %d handles, want 2", got)
	}
	if rc.Ptr() != clone.Ptr() {
		t.Errorf("clone points elsewhere")
	}
	lock.Release()

	rc.Release()
	if stats := ctx.Collect(); stats.FreedNodes != 0 {
		t.Fatalf("node freed while a clone is live: %+v", stats)
	}
	clone.Release()
	if stats := ctx.Collect(); stats.FreedNodes != 1 {
		t.Fatalf("got %+v, want the node freed", stats)
	}
	ctx.Close()
}

func TestNodeRcDoubleRelease(t *testing.T) {
	ctx, lock, b := newContext(t)
	rc := ast.NewNodeRc(lock, b.Ident("x"))
	lock.Release()
	rc.Release()
	mustPanic(t, "used after Release", func() { rc.Release() })
	ctx.Close()
}

func TestNodeRcWrongContext(t *testing.T) {
	ctx1, lock1, b := newContext(t)
	rc := ast.NewNodeRc(lock1, b.Ident("x"))
	lock1.Release()

	ctx2 := ast.NewContext(ast.Options{})
	ctx2.With(func(lock2 *ast.GCLock) {
		mustPanic(t, "dereferenced with GCLock of Context", func() { rc.Get(lock2) })
	})
	rc.Release()
	ctx1.Close()
	ctx2.Close()
}

func TestCloseWithOutstandingHandle(t *testing.T) {
	ctx, lock, b := newContext(t)
	rc := ast.NewNodeRc(lock, b.Ident("x"))
	leaked := rc.Clone()
	lock.Release()
	rc.Release()
	mustPanic(t, "1 NodeRc handle(s) outlive Context", ctx.Close)

	leaked.Release()
	ctx.Close()
}
