package resolver

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/t14raptor/fastscope/ast"
)

// snapshotSchema is bumped whenever the Snapshot layout changes.
const snapshotSchema uint16 = 1

// Snapshot is a canonical form of a scope graph. Ids are replaced by
// positions derived from the AST, so two resolutions of the same tree
// produce equal snapshots whatever order their ids were allocated in.
// Node positions are preorder indexes of the program's nodes; -1 means none.
type Snapshot struct {
	Schema    uint16
	Functions []SnapFunction
	Scopes    []SnapScope
	Decls     []SnapDecl
	Idents    []SnapIdent
	Labels    []SnapLabel
}

type SnapFunction struct {
	Node      int
	Parent    int
	RootScope int
	Strict    bool
	Arrow     bool
}

type SnapScope struct {
	Node      int
	Parent    int
	Function  int
	Depth     uint32
	LocalEval bool
}

type SnapDecl struct {
	Name      string
	Kind      string
	Scope     int
	Ident     int
	Renamable bool
	Arguments bool
}

type SnapIdent struct {
	Node         int
	Decl         int
	Declaring    bool
	Unresolvable bool
}

type SnapLabel struct {
	Node   int
	Target int
	Name   string
}

// Snapshot canonicalizes the scope graph of program.
func (s *SemContext) Snapshot(lock *ast.GCLock, program ast.NodeRef) *Snapshot {
	s.checkLock(lock)

	order := make(map[ast.NodePtr]int)
	var preorder []ast.NodeRef
	ast.Inspect(lock, program, func(r ast.NodeRef, _ ast.Node) bool {
		order[r.Ptr()] = len(preorder)
		preorder = append(preorder, r)
		return true
	})
	pos := func(p ast.NodePtr) int {
		if i, ok := order[p]; ok {
			return i
		}
		return -1
	}

	funcIdx := canonical(len(s.funcs), func(id int) int { return pos(s.funcs[id].Node) })
	scopeIdx := canonical(len(s.scopes), func(id int) int { return pos(s.scopes[id].Node) })
	declIdx := canonicalBy(len(s.decls), func(a, b int) int {
		da, db := &s.decls[a], &s.decls[b]
		return cmp.Or(
			cmp.Compare(scopeIdx[da.Scope], scopeIdx[db.Scope]),
			cmp.Compare(pos(da.Ident), pos(db.Ident)),
			cmp.Compare(lock.Str(da.Name), lock.Str(db.Name)),
			cmp.Compare(da.Kind, db.Kind),
		)
	})
	lookup := func(idx []int, id uint32) int {
		if id == 0 {
			return -1
		}
		return idx[id]
	}

	snap := &Snapshot{
		Schema:    snapshotSchema,
		Functions: make([]SnapFunction, len(s.funcs)-1),
		Scopes:    make([]SnapScope, len(s.scopes)-1),
		Decls:     make([]SnapDecl, len(s.decls)-1),
	}
	for id := 1; id < len(s.funcs); id++ {
		f := &s.funcs[id]
		snap.Functions[funcIdx[id]] = SnapFunction{
			Node:      pos(f.Node),
			Parent:    lookup(funcIdx, uint32(f.Parent)),
			RootScope: lookup(scopeIdx, uint32(f.RootScope())),
			Strict:    f.Strict,
			Arrow:     f.Arrow,
		}
	}
	for id := 1; id < len(s.scopes); id++ {
		sc := &s.scopes[id]
		snap.Scopes[scopeIdx[id]] = SnapScope{
			Node:      pos(sc.Node),
			Parent:    lookup(scopeIdx, uint32(sc.Parent)),
			Function:  lookup(funcIdx, uint32(sc.Function)),
			Depth:     sc.Depth,
			LocalEval: sc.LocalEval,
		}
	}
	for id := 1; id < len(s.decls); id++ {
		d := &s.decls[id]
		snap.Decls[declIdx[id]] = SnapDecl{
			Name:      lock.Str(d.Name),
			Kind:      d.Kind.String(),
			Scope:     lookup(scopeIdx, uint32(d.Scope)),
			Ident:     pos(d.Ident),
			Renamable: d.Renamable,
			Arguments: d.Special == SpecialArguments,
		}
	}
	for i, r := range preorder {
		if info, ok := s.idents[r.Ptr()]; ok {
			snap.Idents = append(snap.Idents, SnapIdent{
				Node:         i,
				Decl:         lookup(declIdx, uint32(info.decl)),
				Declaring:    info.declaring,
				Unresolvable: info.unresolvable,
			})
		}
		if label, ok := s.stmtLabels[r.Ptr()]; ok {
			l := &s.labels[label]
			snap.Labels = append(snap.Labels, SnapLabel{
				Node:   i,
				Target: pos(l.Target),
				Name:   lock.Str(l.Name),
			})
		}
	}
	return snap
}

// canonical orders the ids 1..n-1 by key and returns the rank of each id;
// index 0 is unused.
func canonical(n int, key func(id int) int) []int {
	return canonicalBy(n, func(a, b int) int { return cmp.Compare(key(a), key(b)) })
}

func canonicalBy(n int, compare func(a, b int) int) []int {
	ids := make([]int, 0, n)
	for id := 1; id < n; id++ {
		ids = append(ids, id)
	}
	slices.SortStableFunc(ids, compare)
	rank := make([]int, n)
	for i, id := range ids {
		rank[id] = i
	}
	return rank
}

func (s *Snapshot) Equal(o *Snapshot) bool {
	return s.Schema == o.Schema &&
		slices.Equal(s.Functions, o.Functions) &&
		slices.Equal(s.Scopes, o.Scopes) &&
		slices.Equal(s.Decls, o.Decls) &&
		slices.Equal(s.Idents, o.Idents) &&
		slices.Equal(s.Labels, o.Labels)
}

// Encode writes the snapshot in msgpack form.
func (s *Snapshot) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Schema != snapshotSchema {
		return nil, fmt.Errorf("decode snapshot: schema %d, want %d", s.Schema, snapshotSchema)
	}
	return &s, nil
}
