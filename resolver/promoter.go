package resolver

import (
	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/token"
)

// promoter decides which block-level function declarations of a
// non-strict function can be hoisted to the function scope (Annex B.3.3).
// A candidate is promoted unless a let-like binding of the same name is
// visible where it is declared, or a parameter has its name.
type promoter struct {
	lock  *ast.GCLock
	decls DeclCollector

	candidates map[ast.Atom]bool
	blocked    map[ast.Atom]bool
	// visible is a stack of the let-like candidate names of each open scope.
	visible []map[ast.Atom]bool
}

func promoteScopedFunctions(lock *ast.GCLock, fn ast.NodeRef, decls DeclCollector, params []ast.NodeRef) {
	scoped := decls.ScopedFunctions()
	if len(scoped) == 0 {
		return
	}
	p := &promoter{
		lock:       lock,
		decls:      decls,
		candidates: make(map[ast.Atom]bool),
		blocked:    make(map[ast.Atom]bool),
	}
	for _, f := range scoped {
		if name, ok := functionDeclName(lock, f); ok {
			p.candidates[name] = true
		}
	}
	for _, id := range params {
		p.blocked[ast.Get[*ast.Identifier](lock, id).Name] = true
	}

	p.enter(fn)
	for _, s := range functionBody(lock, fn) {
		p.stmt(s)
	}
	p.leave()
}

// enter opens the scope of node and promotes its eligible functions.
// extra lists let-like bindings of the scope that are not declarations,
// such as a destructured catch parameter.
func (p *promoter) enter(node ast.NodeRef, extra ...ast.NodeRef) {
	frame := make(map[ast.Atom]bool)
	p.visible = append(p.visible, frame)
	decls := p.decls.ScopeDecls(node.Ptr())
	names := extra
	for _, d := range decls {
		names = append(names, letLikeNames(p.lock, d)...)
	}
	for _, id := range names {
		if name := ast.Get[*ast.Identifier](p.lock, id).Name; p.candidates[name] {
			frame[name] = true
		}
	}
	for _, d := range append([]ast.NodeRef(nil), decls...) {
		if p.lock.Kind(d) != ast.KindFunctionDeclaration {
			continue
		}
		name, ok := functionDeclName(p.lock, d)
		if !ok || p.blocked[name] || p.shadowed(name) {
			continue
		}
		p.decls.Promote(d)
	}
}

func (p *promoter) leave() {
	p.visible = p.visible[:len(p.visible)-1]
}

func (p *promoter) shadowed(name ast.Atom) bool {
	for _, frame := range p.visible {
		if frame[name] {
			return true
		}
	}
	return false
}

func (p *promoter) scoped(node ast.NodeRef, body func()) {
	p.enter(node)
	body()
	p.leave()
}

func (p *promoter) list(list ast.NodeList) {
	for s := range p.lock.Items(list) {
		p.stmt(s)
	}
}

func (p *promoter) stmt(r ast.NodeRef) {
	if r.IsZero() {
		return
	}
	switch n := p.lock.Node(r).(type) {
	case *ast.BlockStatement:
		p.scoped(r, func() { p.list(n.List) })
	case *ast.IfStatement:
		p.stmt(n.Consequent)
		p.stmt(n.Alternate)
	case *ast.LabelledStatement:
		p.stmt(n.Statement)
	case *ast.WithStatement:
		p.stmt(n.Body)
	case *ast.WhileStatement:
		p.stmt(n.Body)
	case *ast.DoWhileStatement:
		p.stmt(n.Body)
	case *ast.ForStatement:
		p.scoped(r, func() { p.stmt(n.Body) })
	case *ast.ForInStatement:
		p.scoped(r, func() { p.stmt(n.Body) })
	case *ast.ForOfStatement:
		p.scoped(r, func() { p.stmt(n.Body) })
	case *ast.SwitchStatement:
		p.scoped(r, func() {
			for cs := range p.lock.Items(n.Body) {
				p.list(ast.Get[*ast.CaseStatement](p.lock, cs).Consequent)
			}
		})
	case *ast.TryStatement:
		p.stmt(n.Body)
		p.stmt(n.Catch)
		p.stmt(n.Finally)
	case *ast.CatchStatement:
		var params []ast.NodeRef
		if p.lock.Kind(n.Parameter) != ast.KindIdentifier {
			params = patternIdents(p.lock, n.Parameter)
		}
		p.enter(r, params...)
		for _, s := range blockStatements(p.lock, n.Body) {
			p.stmt(s)
		}
		p.leave()
	}
}

// letLikeNames returns the identifiers bound by a lexical declaration.
func letLikeNames(lock *ast.GCLock, decl ast.NodeRef) []ast.NodeRef {
	switch n := lock.Node(decl).(type) {
	case *ast.VariableDeclaration:
		if n.Token == token.Var {
			return nil
		}
		return declarationIdents(lock, n)
	case *ast.ClassDeclaration:
		if c := ast.Get[*ast.ClassLiteral](lock, n.Class); !c.Name.IsZero() {
			return []ast.NodeRef{c.Name}
		}
	case *ast.ImportDeclaration:
		return importIdents(lock, n)
	}
	return nil
}

func functionDeclName(lock *ast.GCLock, decl ast.NodeRef) (ast.Atom, bool) {
	fd := ast.Get[*ast.FunctionDeclaration](lock, decl)
	fn := ast.Get[*ast.FunctionLiteral](lock, fd.Function)
	if fn.Name.IsZero() {
		return 0, false
	}
	return ast.Get[*ast.Identifier](lock, fn.Name).Name, true
}
