package resolver

import (
	"slices"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/token"
)

// DeclCollector reports the declarations of one function-like node.
type DeclCollector interface {
	// ScopeDecls returns the declaration nodes directly owned by the scope
	// that node introduces, in source order. The function-like node itself
	// keys the function root. The result must not be modified.
	ScopeDecls(node ast.NodePtr) []ast.NodeRef
	// ScopedFunctions returns the function declarations found in nested
	// scopes, the candidates for promotion.
	ScopedFunctions() []ast.NodeRef
	// Promote moves a scoped function declaration to the function root.
	Promote(fn ast.NodeRef)
}

// CollectorFunc runs a DeclCollector over one function-like node:
// a Program, FunctionLiteral, ArrowFunctionLiteral or ClassStaticBlock.
type CollectorFunc func(lock *ast.GCLock, fn ast.NodeRef) DeclCollector

type collector struct {
	lock   *ast.GCLock
	root   ast.NodePtr
	scopes map[ast.NodePtr][]ast.NodeRef

	scopedFuncs []ast.NodeRef
	// funcScope maps each scoped function to the scope it is listed in.
	funcScope map[ast.NodePtr]ast.NodePtr
}

// CollectDecls is the default CollectorFunc. It walks the statements of
// fn without entering nested functions or classes.
func CollectDecls(lock *ast.GCLock, fn ast.NodeRef) DeclCollector {
	c := &collector{
		lock:      lock,
		root:      fn.Ptr(),
		scopes:    make(map[ast.NodePtr][]ast.NodeRef),
		funcScope: make(map[ast.NodePtr]ast.NodePtr),
	}
	for _, s := range functionBody(lock, fn) {
		c.stmt(s, c.root)
	}
	return c
}

func (c *collector) ScopeDecls(node ast.NodePtr) []ast.NodeRef { return c.scopes[node] }

func (c *collector) ScopedFunctions() []ast.NodeRef { return c.scopedFuncs }

func (c *collector) Promote(fn ast.NodeRef) {
	scope, ok := c.funcScope[fn.Ptr()]
	if !ok {
		return
	}
	delete(c.funcScope, fn.Ptr())
	c.scopes[scope] = slices.DeleteFunc(c.scopes[scope], func(r ast.NodeRef) bool { return r == fn })
	c.scopes[c.root] = append(c.scopes[c.root], fn)
}

func (c *collector) add(scope ast.NodePtr, decl ast.NodeRef) {
	c.scopes[scope] = append(c.scopes[scope], decl)
}

func (c *collector) list(list ast.NodeList, scope ast.NodePtr) {
	for s := range c.lock.Items(list) {
		c.stmt(s, scope)
	}
}

func (c *collector) stmt(r ast.NodeRef, scope ast.NodePtr) {
	if r.IsZero() {
		return
	}
	switch n := c.lock.Node(r).(type) {
	case *ast.VariableDeclaration:
		if n.Token == token.Var {
			c.add(c.root, r)
		} else {
			c.add(scope, r)
		}
	case *ast.FunctionDeclaration:
		c.add(scope, r)
		if scope != c.root {
			c.scopedFuncs = append(c.scopedFuncs, r)
			c.funcScope[r.Ptr()] = scope
		}
	case *ast.ClassDeclaration:
		c.add(scope, r)
	case *ast.ImportDeclaration:
		c.add(c.root, r)
	case *ast.ExportNamedDeclaration:
		c.stmt(n.Declaration, scope)
	case *ast.ExportDefaultDeclaration:
		switch c.lock.Kind(n.Declaration) {
		case ast.KindFunctionDeclaration, ast.KindClassDeclaration:
			c.stmt(n.Declaration, scope)
		}
	case *ast.BlockStatement:
		c.list(n.List, r.Ptr())
	case *ast.IfStatement:
		c.stmt(n.Consequent, scope)
		c.stmt(n.Alternate, scope)
	case *ast.LabelledStatement:
		c.stmt(n.Statement, scope)
	case *ast.WithStatement:
		c.stmt(n.Body, scope)
	case *ast.WhileStatement:
		c.stmt(n.Body, scope)
	case *ast.DoWhileStatement:
		c.stmt(n.Body, scope)
	case *ast.ForStatement:
		c.stmt(n.Initializer, r.Ptr())
		c.stmt(n.Body, r.Ptr())
	case *ast.ForInStatement:
		c.stmt(n.Left, r.Ptr())
		c.stmt(n.Body, r.Ptr())
	case *ast.ForOfStatement:
		c.stmt(n.Left, r.Ptr())
		c.stmt(n.Body, r.Ptr())
	case *ast.SwitchStatement:
		for cs := range c.lock.Items(n.Body) {
			c.list(ast.Get[*ast.CaseStatement](c.lock, cs).Consequent, r.Ptr())
		}
	case *ast.TryStatement:
		c.stmt(n.Body, scope)
		c.stmt(n.Catch, scope)
		c.stmt(n.Finally, scope)
	case *ast.CatchStatement:
		// the catch body shares the scope of the clause
		if body, ok := ast.As[*ast.BlockStatement](c.lock, n.Body); ok {
			c.list(body.List, r.Ptr())
		}
	}
}

// functionBody returns the top-level statements of a function-like node.
func functionBody(lock *ast.GCLock, fn ast.NodeRef) []ast.NodeRef {
	switch n := lock.Node(fn).(type) {
	case *ast.Program:
		return lock.Slice(n.Body)
	case *ast.FunctionLiteral:
		return blockStatements(lock, n.Body)
	case *ast.ArrowFunctionLiteral:
		return blockStatements(lock, n.Body)
	case *ast.ClassStaticBlock:
		return blockStatements(lock, n.Block)
	}
	return nil
}

// blockStatements returns the statements of a BlockStatement, nil for any
// other node.
func blockStatements(lock *ast.GCLock, r ast.NodeRef) []ast.NodeRef {
	if b, ok := ast.As[*ast.BlockStatement](lock, r); ok {
		return lock.Slice(b.List)
	}
	return nil
}

// hasUseStrict scans the directive prologue of stmts.
func hasUseStrict(lock *ast.GCLock, stmts []ast.NodeRef) (ast.NodeRef, bool) {
	for _, s := range stmts {
		es, ok := ast.As[*ast.ExpressionStatement](lock, s)
		if !ok || es.Directive == "" {
			break
		}
		if es.Directive == "use strict" {
			return s, true
		}
	}
	return ast.NodeRef{}, false
}
