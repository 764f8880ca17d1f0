package resolver

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/t14raptor/fastscope/ast"
)

type dumpWriter struct {
	w   io.Writer
	err error
}

func (d *dumpWriter) printf(indent int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, strings.Repeat("  ", indent)+format+"\n", args...)
}

// Dump writes the scope graph as an indented tree of functions, scopes
// and declarations, followed by the ambient globals that were referenced.
func (s *SemContext) Dump(lock *ast.GCLock, w io.Writer) error {
	s.checkLock(lock)
	d := &dumpWriter{w: w}

	refs := make(map[DeclID]int)
	unresolvable := 0
	for _, info := range s.idents {
		switch {
		case info.unresolvable:
			unresolvable++
		case !info.declaring && info.decl != NoDecl:
			refs[info.decl]++
		}
	}

	children := make(map[ScopeID][]ScopeID)
	for id := 1; id < len(s.scopes); id++ {
		sc := &s.scopes[id]
		children[sc.Parent] = append(children[sc.Parent], ScopeID(id))
	}

	var scope func(id ScopeID, indent int)
	scope = func(id ScopeID, indent int) {
		sc := &s.scopes[id]
		fn := &s.funcs[sc.Function]
		if fn.RootScope() == id {
			d.printf(indent, "function #%d strict=%t arrow=%t labels=%d", sc.Function, fn.Strict, fn.Arrow, fn.numLabels)
			indent++
		}
		line := fmt.Sprintf("scope #%d depth=%d", id, sc.Depth)
		if sc.LocalEval {
			line += " eval"
		}
		d.printf(indent, "%s", line)
		for _, did := range sc.Decls {
			decl := &s.decls[did]
			if decl.Kind == DeclUndeclaredGlobalProperty {
				continue
			}
			line := fmt.Sprintf("%s: %s refs=%d", lock.Str(decl.Name), decl.Kind, refs[did])
			if decl.Special == SpecialArguments {
				line += " arguments"
			}
			if !decl.Renamable {
				line += " fixed"
			}
			d.printf(indent+1, "%s", line)
		}
		for _, c := range children[id] {
			scope(c, indent+1)
		}
	}
	for _, root := range children[NoScope] {
		scope(root, 0)
	}

	ambient := make(map[string]int)
	for id := 1; id < len(s.decls); id++ {
		if decl := &s.decls[id]; decl.Kind == DeclUndeclaredGlobalProperty && refs[DeclID(id)] > 0 {
			ambient[lock.Str(decl.Name)] += refs[DeclID(id)]
		}
	}
	if len(ambient) > 0 {
		names := maps.Keys(ambient)
		slices.Sort(names)
		d.printf(0, "ambient:")
		for _, name := range names {
			d.printf(1, "%s refs=%d", name, ambient[name])
		}
	}
	if unresolvable > 0 {
		d.printf(0, "unresolvable references: %d", unresolvable)
	}
	return d.err
}
