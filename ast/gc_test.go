package ast_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/t14raptor/fastscope/ast"
)

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", want)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, want) {
			t.Fatalf("panic %q, want substring %q", msg, want)
		}
	}()
	fn()
}

func newContext(t *testing.T) (*ast.Context, *ast.GCLock, *ast.Builder) {
	t.Helper()
	ctx := ast.NewContext(ast.Options{})
	lock := ctx.Lock()
	return ctx, lock, ast.NewBuilder(lock, 0)
}

func TestCollectKeepsRootedNodes(t *testing.T) {
	ctx, lock, b := newContext(t)
	kept := b.Block(b.Expr(b.Ident("x")))
	rc := ast.NewNodeRc(lock, kept)
	b.Expr(b.Ident("garbage"))
	lock.Release()

	stats := ctx.Collect()
	want := ast.CollectStats{Roots: 1, MarkedNodes: 3, MarkedLinks: 1, FreedNodes: 2}
	if stats != want {
		t.Fatalf("got %+v, want %+v", stats, want)
	}

	lock = ctx.Lock()
	block := ast.Get[*ast.BlockStatement](lock, rc.Get(lock))
	stmt := ast.Get[*ast.ExpressionStatement](lock, lock.Slice(block.List)[0])
	if got := lock.Name(stmt.Expression); got != "x" {
		t.Errorf("got %q, want x", got)
	}
	lock.Release()
	rc.Release()
	ctx.Close()
}

func TestCollectReusesFreedSlots(t *testing.T) {
	ctx, lock, b := newContext(t)
	a := b.Ident("a")
	b.Ident("b")
	c := b.Ident("c")
	lock.Release()

	if stats := ctx.Collect(); stats.FreedNodes != 3 {
		t.Fatalf("got %d freed, want 3", stats.FreedNodes)
	}
	if s := ctx.Stats(); s.LiveNodes != 0 || s.FreeNodes != 3 {
		t.Fatalf("got %+v after collection", s)
	}

	lock = ctx.Lock()
	defer lock.Release()
	mustPanic(t, "stale node reference", func() { lock.Node(a) })

	d := ast.NewBuilder(lock, 0).Ident("d")
	if s := ctx.Stats(); s.LiveNodes != 1 || s.FreeNodes != 2 {
		t.Fatalf("allocation did not reuse a free slot: %+v", s)
	}
	if lock.Name(d) != "d" {
		t.Errorf("reused slot holds %q", lock.Name(d))
	}
	// d took c's slot; the old ref must not alias it
	mustPanic(t, "stale node reference", func() { lock.Node(c) })
}

func TestCollectTwiceIsStable(t *testing.T) {
	ctx, lock, b := newContext(t)
	rc := ast.NewNodeRc(lock, b.Array(b.Num(1), b.Num(2)))
	b.Block(b.Empty(), b.Empty())
	lock.Release()

	first := ctx.Collect()
	if first.FreedNodes != 3 || first.FreedLinks != 2 {
		t.Fatalf("first cycle: %+v", first)
	}
	for i := 0; i < 3; i++ {
		stats := ctx.Collect()
		if stats.FreedNodes != 0 || stats.FreedLinks != 0 {
			t.Fatalf("cycle %d reclaimed %+v", i+2, stats)
		}
		if stats.MarkedNodes != 3 || stats.MarkedLinks != 2 {
			t.Fatalf("cycle %d marked %+v", i+2, stats)
		}
	}
	rc.Release()
	if stats := ctx.Collect(); stats.FreedNodes != 3 || stats.FreedLinks != 2 {
		t.Fatalf("after release: %+v", stats)
	}
	ctx.Close()
}

func TestCollectMarksSharedChildOnce(t *testing.T) {
	ctx, lock, b := newContext(t)
	x := b.Ident("x")
	rc := ast.NewNodeRc(lock, b.Array(x, x, ast.NodeRef{}))
	lock.Release()

	stats := ctx.Collect()
	if stats.MarkedNodes != 2 || stats.MarkedLinks != 3 {
		t.Errorf("got %+v", stats)
	}
	rc.Release()
	ctx.Close()
}

func TestCollectWhileLocked(t *testing.T) {
	ctx, lock, _ := newContext(t)
	mustPanic(t, "while a GCLock is held", func() { ctx.Collect() })
	lock.Release()
	ctx.Collect()
}
