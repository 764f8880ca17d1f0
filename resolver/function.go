package resolver

import (
	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/diag"
)

type functionShape struct {
	params ast.NodeList
	rest   ast.NodeRef
	body   ast.NodeRef

	arrow, async, generator bool
}

// visitFunction visits a FunctionLiteral. A named function expression
// binds its own name in a scope between the enclosing one and the
// function's.
func (r *Resolver) visitFunction(n ast.NodeRef, expr bool) {
	fn := ast.Get[*ast.FunctionLiteral](r.lock, n)
	shape := functionShape{
		params:    fn.Params,
		rest:      fn.Rest,
		body:      fn.Body,
		async:     fn.Async,
		generator: fn.Generator,
	}
	name := "anonymous"
	if !fn.Name.IsZero() {
		name = r.lock.Name(fn.Name)
	}
	if !expr || fn.Name.IsZero() {
		r.visitFunctionLike(n, shape, name)
		return
	}
	r.inNewScope(fn.Name, func() {
		r.validateAndDeclare(DeclFunctionExprName, fn.Name)
		r.visitFunctionLike(n, shape, name)
	})
}

func (r *Resolver) visitFunctionLike(n ast.NodeRef, f functionShape, name string) {
	parent := r.fc()
	stmts := blockStatements(r.lock, f.body)
	directive, hasDirective := hasUseStrict(r.lock, stmts)
	strict := r.sem.Function(parent.id).Strict || hasDirective

	fc := &functionContext{
		node:      n,
		id:        r.sem.newFunction(parent.id, n.Ptr(), strict, f.arrow),
		name:      name,
		decls:     r.opts.Collector(r.lock, n),
		labels:    make(map[ast.Atom]labelEntry),
		arrow:     f.arrow,
		async:     f.async,
		generator: f.generator,
	}
	r.funcs = append(r.funcs, fc)
	defer func() { r.funcs = r.funcs[:len(r.funcs)-1] }()

	params, simple := paramIdents(r.lock, f.params, f.rest)
	if hasDirective && !simple {
		r.errorf(diag.SemUseStrictNonSimple, directive,
			"'use strict' not allowed inside function with non-simple parameter list").Emit()
	}
	if !strict {
		promoteScopedFunctions(r.lock, n, fc.decls, params)
	}

	r.inNewScope(n, func() {
		fc.rootScope = r.curScope
		fc.rootFrame = len(r.bindings.frames) - 1

		unique := !simple || strict || f.arrow
		seen := make(map[ast.Atom]bool, len(params))
		for _, p := range params {
			pname := ast.Get[*ast.Identifier](r.lock, p).Name
			if unique && seen[pname] {
				r.errorf(diag.SemDuplicateParameter, p,
					"cannot declare two parameters with the same name '"+r.lock.Str(pname)+"'").Emit()
			}
			seen[pname] = true
			r.validateAndDeclare(DeclParameter, p)
		}
		r.processDeclarations(fc.decls.ScopeDecls(n.Ptr()), true)

		fc.inParams = true
		r.visitList(f.params)
		r.visit(f.rest)
		fc.inParams = false

		if r.lock.Kind(f.body) == ast.KindBlockStatement {
			for _, s := range stmts {
				r.visit(s)
			}
		} else {
			r.visit(f.body)
		}
	})

	if root := r.sem.Scope(fc.rootScope); root.LocalEval && !strict {
		unresolve(r.lock, r.sem, root.Depth, n)
	}
}

// visitClass visits a class; its body is always strict code.
func (r *Resolver) visitClass(n ast.NodeRef, expr bool) {
	c := ast.Get[*ast.ClassLiteral](r.lock, n)
	info := r.sem.Function(r.fc().id)
	body := func() {
		saved := info.Strict
		info.Strict = true
		r.visit(c.SuperClass)
		r.visitList(c.Body)
		info.Strict = saved
	}
	if !expr || c.Name.IsZero() {
		body()
		return
	}
	r.inNewScope(n, func() {
		r.validateAndDeclare(DeclClassExprName, c.Name)
		body()
	})
}

func (r *Resolver) visitCatch(n ast.NodeRef, c *ast.CatchStatement) {
	r.inNewScope(n, func() {
		if r.lock.Kind(c.Parameter) == ast.KindIdentifier {
			r.validateAndDeclare(DeclES5Catch, c.Parameter)
		} else {
			for _, id := range patternIdents(r.lock, c.Parameter) {
				r.validateAndDeclare(DeclLet, id)
			}
		}
		r.processDeclarations(r.fc().decls.ScopeDecls(n.Ptr()), false)
		r.visit(c.Parameter)
		// the body block shares the clause's scope
		if body, ok := ast.As[*ast.BlockStatement](r.lock, c.Body); ok {
			r.visitList(body.List)
		} else {
			r.visit(c.Body)
		}
	})
}
