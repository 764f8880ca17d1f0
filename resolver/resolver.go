package resolver

import (
	"log/slog"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/source"
	"github.com/t14raptor/fastscope/token"
)

type Options struct {
	// Strict resolves the program as if it began with 'use strict'.
	Strict bool
	// WarnUndefined pre-declares the known globals and warns about other
	// undeclared identifiers in strict code.
	WarnUndefined bool
	// KnownGlobals extends DefaultKnownGlobals.
	KnownGlobals []string
	// AllowReturnOutsideFunction accepts a top-level return.
	AllowReturnOutsideFunction bool
	// Collector replaces the default declaration collector.
	Collector CollectorFunc
	// Dependencies resolves import and require specifiers in module mode.
	Dependencies DependencyResolver
	Logger       *slog.Logger
}

type labelEntry struct {
	ident  ast.NodeRef
	target ast.NodeRef
	label  LabelID
}

// functionContext is the resolver state of one function being visited.
type functionContext struct {
	node  ast.NodeRef
	id    FunctionID
	name  string
	decls DeclCollector

	// rootScope receives the function-level declarations; rootFrame is
	// its binding table frame.
	rootScope ScopeID
	rootFrame int

	labels       map[ast.Atom]labelEntry
	loop         ast.NodeRef
	loopOrSwitch ast.NodeRef

	global, arrow, async, generator bool
	inParams                        bool
}

type keywords struct {
	arguments, eval, let, require ast.Atom
}

// Resolver builds the scope graph of a program in a single pass.
type Resolver struct {
	lock *ast.GCLock
	sm   *diag.SourceManager
	sem  *SemContext
	opts Options
	log  *slog.Logger
	kw   keywords

	file   source.FileID
	module bool

	bindings    bindingTable
	funcs       []*functionContext
	curScope    ScopeID
	globalScope ScopeID
	globalFrame int
}

// Resolve resolves a script.
func Resolve(lock *ast.GCLock, program ast.NodeRef, opts Options) *SemContext {
	return newResolver(lock, opts, false).run(program)
}

// ResolveModule resolves an ES module: the program is strict, its
// declarations live in a module scope below the global scope, and its
// dependencies are resolved through opts.Dependencies.
func ResolveModule(lock *ast.GCLock, program ast.NodeRef, opts Options) *SemContext {
	return newResolver(lock, opts, true).run(program)
}

func newResolver(lock *ast.GCLock, opts Options, module bool) *Resolver {
	if opts.Collector == nil {
		opts.Collector = CollectDecls
	}
	logger := opts.Logger
	if logger == nil {
		logger = lock.Context().Logger()
	}
	return &Resolver{
		lock:   lock,
		sm:     lock.SourceManager(),
		sem:    newSemContext(lock.Context()),
		opts:   opts,
		log:    logger,
		module: module,
		kw: keywords{
			arguments: lock.Atom("arguments"),
			eval:      lock.Atom("eval"),
			let:       lock.Atom("let"),
			require:   lock.Atom("require"),
		},
	}
}

func (r *Resolver) run(program ast.NodeRef) *SemContext {
	p := ast.Get[*ast.Program](r.lock, program)
	r.file = p.Range().File
	stmts := r.lock.Slice(p.Body)
	_, directive := hasUseStrict(r.lock, stmts)
	strict := r.opts.Strict || r.module || directive

	fc := &functionContext{
		node:   program,
		id:     r.sem.newFunction(NoFunction, program.Ptr(), strict, false),
		name:   "global",
		decls:  r.opts.Collector(r.lock, program),
		labels: make(map[ast.Atom]labelEntry),
		global: true,
	}
	r.funcs = append(r.funcs, fc)
	if !strict {
		promoteScopedFunctions(r.lock, program, fc.decls, nil)
	}

	body := func() {
		fc.rootScope = r.curScope
		fc.rootFrame = len(r.bindings.frames) - 1
		r.processDeclarations(fc.decls.ScopeDecls(program.Ptr()), true)
		for _, s := range stmts {
			r.visit(s)
		}
	}
	enterGlobal := func() {
		r.globalScope = r.curScope
		r.sem.globalScope = r.curScope
		r.globalFrame = len(r.bindings.frames) - 1
		r.declareKnownGlobals()
	}
	if r.module {
		r.inNewScope(ast.NodeRef{}, func() {
			enterGlobal()
			r.inNewScope(program, body)
		})
	} else {
		r.inNewScope(program, func() {
			enterGlobal()
			body()
		})
	}
	r.funcs = r.funcs[:0]

	r.log.Debug("resolved program",
		"file", r.file,
		"module", r.module,
		"decls", r.sem.NumDecls(),
		"scopes", r.sem.NumScopes(),
		"functions", r.sem.NumFunctions(),
		"errors", r.sm.ErrorCount())
	return r.sem
}

// Visit implements ast.Visitor.
func (r *Resolver) Visit(_ *ast.GCLock, n ast.NodeRef) { r.visit(n) }

func (r *Resolver) fc() *functionContext { return r.funcs[len(r.funcs)-1] }

func (r *Resolver) strict() bool { return r.sem.Function(r.fc().id).Strict }

func (r *Resolver) span(n ast.NodeRef) source.Span { return r.lock.Node(n).Range() }

func (r *Resolver) errorf(code diag.Code, n ast.NodeRef, msg string) *diag.ReportBuilder {
	return r.sm.Error(code, r.span(n), msg)
}

// inNewScope runs body in a new lexical scope introduced by node.
func (r *Resolver) inNewScope(node ast.NodeRef, body func()) {
	prev := r.curScope
	r.curScope = r.sem.newScope(prev, r.fc().id, node.Ptr())
	r.bindings.push()
	body()
	r.bindings.pop()
	r.curScope = prev
}

func (r *Resolver) visit(n ast.NodeRef) {
	if n.IsZero() {
		return
	}
	switch node := r.lock.Node(n).(type) {
	case *ast.Identifier:
		r.visitIdentifier(n, node, false)
	case *ast.PrivateIdentifier:
	case *ast.BlockStatement:
		r.inNewScope(n, func() {
			r.processDeclarations(r.fc().decls.ScopeDecls(n.Ptr()), false)
			r.visitList(node.List)
		})
	case *ast.VariableDeclaration:
		r.visitVariableDeclaration(node)
	case *ast.FunctionDeclaration:
		r.visitFunction(node.Function, false)
	case *ast.FunctionLiteral:
		r.visitFunction(n, true)
	case *ast.ArrowFunctionLiteral:
		r.visitFunctionLike(n, functionShape{
			params: node.Params,
			rest:   node.Rest,
			body:   node.Body,
			arrow:  true,
			async:  node.Async,
		}, "arrow")
	case *ast.ClassDeclaration:
		r.visitClass(node.Class, false)
	case *ast.ClassLiteral:
		r.visitClass(n, true)
	case *ast.ClassStaticBlock:
		r.visitFunctionLike(n, functionShape{body: node.Block}, "static")
	case *ast.MethodDefinition:
		if node.Computed {
			r.visit(node.Key)
		}
		r.visit(node.Body)
	case *ast.FieldDefinition:
		if node.Computed {
			r.visit(node.Key)
		}
		r.visit(node.Initializer)
	case *ast.PropertyKeyed:
		if node.Computed {
			r.visit(node.Key)
		}
		r.visit(node.Value)
	case *ast.MemberExpression:
		r.visit(node.Object)
		if node.Computed {
			r.visit(node.Property)
		}
	case *ast.MetaProperty:
		r.visitMetaProperty(n, node)
	case *ast.UnaryExpression:
		r.visitUnary(n, node)
	case *ast.UpdateExpression:
		r.visit(node.Operand)
		if !r.isLValue(node.Operand) {
			r.errorf(diag.SemInvalidUpdateOperand, node.Operand, "invalid operand in update operation").Emit()
		}
	case *ast.AssignExpression:
		r.visit(node.Left)
		r.checkAssignTarget(node.Operator, node.Left)
		r.visit(node.Right)
	case *ast.CallExpression:
		r.visitCall(n, node)
	case *ast.YieldExpression:
		fc := r.fc()
		switch {
		case fc.inParams:
			r.errorf(diag.SemYieldInParameters, n, "'yield' not allowed in a formal parameter").Emit()
		case !fc.generator:
			r.errorf(diag.SemYieldOutsideGenerator, n, "'yield' not in a generator function").Emit()
		}
		r.visit(node.Argument)
	case *ast.AwaitExpression:
		fc := r.fc()
		switch {
		case fc.inParams:
			r.errorf(diag.SemYieldInParameters, n, "'await' not allowed in a formal parameter").Emit()
		case !fc.async && !(fc.global && r.module):
			r.errorf(diag.SemAwaitOutsideAsync, n, "'await' not in an async function").Emit()
		}
		r.visit(node.Argument)
	case *ast.ReturnStatement:
		if r.fc().global && !r.opts.AllowReturnOutsideFunction {
			r.errorf(diag.SemReturnOutsideFunction, n, "'return' not in a function").Emit()
		}
		r.visit(node.Argument)
	case *ast.LabelledStatement:
		r.visitLabelled(n, node)
	case *ast.BreakStatement:
		r.visitBreak(n, node)
	case *ast.ContinueStatement:
		r.visitContinue(n, node)
	case *ast.WhileStatement, *ast.DoWhileStatement:
		r.inLoop(n, func() { r.lock.VisitChildren(n, r) })
	case *ast.ForStatement:
		r.inLoop(n, func() {
			r.inNewScope(n, func() {
				r.processDeclarations(r.fc().decls.ScopeDecls(n.Ptr()), false)
				r.lock.VisitChildren(n, r)
			})
		})
	case *ast.ForInStatement:
		r.visitForInOf(n, node.Left, node.Right, node.Body, true)
	case *ast.ForOfStatement:
		r.visitForInOf(n, node.Left, node.Right, node.Body, false)
	case *ast.SwitchStatement:
		r.visitSwitch(n, node)
	case *ast.WithStatement:
		r.lock.VisitChildren(n, r)
		// bindings of the enclosing scopes may be shadowed by the object
		unresolve(r.lock, r.sem, r.sem.Scope(r.curScope).Depth+1, node.Body)
	case *ast.CatchStatement:
		r.visitCatch(n, node)
	case *ast.ImportDeclaration:
		if !r.module {
			r.errorf(diag.ModImportOutsideModule, n, "'import' statement requires module mode").Emit()
			return
		}
		r.resolveDependency(n, node.Source, DependencyImport)
	case *ast.ImportSpecifier:
	case *ast.ExportNamedDeclaration:
		if !r.requireModule(n) {
			return
		}
		if !node.Declaration.IsZero() {
			r.visit(node.Declaration)
			return
		}
		if !node.Source.IsZero() {
			r.resolveDependency(n, node.Source, DependencyImport)
			return
		}
		for s := range r.lock.Items(node.Specifiers) {
			r.visit(ast.Get[*ast.ExportSpecifier](r.lock, s).Local)
		}
	case *ast.ExportDefaultDeclaration:
		if r.requireModule(n) {
			r.visit(node.Declaration)
		}
	case *ast.ExportAllDeclaration:
		if r.requireModule(n) {
			r.resolveDependency(n, node.Source, DependencyImport)
		}
	default:
		r.lock.VisitChildren(n, r)
	}
}

func (r *Resolver) visitList(list ast.NodeList) {
	for s := range r.lock.Items(list) {
		r.visit(s)
	}
}

func (r *Resolver) requireModule(n ast.NodeRef) bool {
	if !r.module {
		r.errorf(diag.ModExportOutsideModule, n, "'export' statement requires module mode").Emit()
		return false
	}
	return true
}

// processDeclarations declares the collected decls of the current scope.
// root is set for the function-level list.
func (r *Resolver) processDeclarations(decls []ast.NodeRef, root bool) {
	scriptGlobal := !r.module && r.curScope == r.globalScope
	for _, d := range decls {
		switch n := r.lock.Node(d).(type) {
		case *ast.VariableDeclaration:
			kind := DeclVar
			switch n.Token {
			case token.Let:
				kind = DeclLet
			case token.Const:
				kind = DeclConst
			default:
				if scriptGlobal {
					kind = DeclGlobalProperty
				}
			}
			for _, id := range declarationIdents(r.lock, n) {
				r.validateAndDeclare(kind, id)
			}
		case *ast.FunctionDeclaration:
			fn := ast.Get[*ast.FunctionLiteral](r.lock, n.Function)
			if fn.Name.IsZero() {
				continue
			}
			kind := DeclScopedFunction
			if root {
				kind = DeclVar
				if scriptGlobal {
					kind = DeclGlobalProperty
				}
			}
			r.validateAndDeclare(kind, fn.Name)
			r.sem.addHoisted(r.lock, r.curScope, d)
		case *ast.ClassDeclaration:
			if c := ast.Get[*ast.ClassLiteral](r.lock, n.Class); !c.Name.IsZero() {
				r.validateAndDeclare(DeclClass, c.Name)
			}
		case *ast.ImportDeclaration:
			for _, id := range importIdents(r.lock, n) {
				r.validateAndDeclare(DeclImport, id)
			}
		}
	}
}

func (r *Resolver) declInCurFunction(decl DeclID) bool {
	return r.sem.Scope(r.sem.Decl(decl).Scope).Function == r.fc().id
}

// validateAndDeclare declares ident in the current scope, reusing or
// rejecting a visible declaration of the same name in the same function.
func (r *Resolver) validateAndDeclare(kind DeclKind, ident ast.NodeRef) {
	id := ast.Get[*ast.Identifier](r.lock, ident)
	if !r.validateDeclarationName(kind, ident, id.Name) {
		r.sem.setDeclaring(ident, NoDecl)
		return
	}

	var decl DeclID
	if prev, ok := r.bindings.find(id.Name); ok && r.declInCurFunction(prev.decl) {
		pd := r.sem.Decl(prev.decl)
		sameScope := pd.Scope == r.curScope
		if pd.Kind != DeclUndeclaredGlobalProperty {
			// var after a let of an enclosing block is caught when the var
			// statement itself is visited.
			if (pd.Kind.IsLetLike() && kind.IsVarLike()) ||
				(pd.Kind.IsLetLike() && kind == DeclScopedFunction && sameScope) ||
				(kind.IsLetLike() && sameScope) {
				r.alreadyDeclared(ident, id.Name, prev)
				r.sem.setDeclaring(ident, NoDecl)
				return
			}

			switch {
			case pd.Kind.IsVarLike() && kind.IsVarLike():
				decl = prev.decl
			case pd.Kind.IsVarLike() && kind.IsVarLikeOrScopedFunction():
				if sameScope || !r.strict() {
					decl = prev.decl
				}
			case pd.Kind == DeclScopedFunction && kind == DeclScopedFunction:
				if sameScope {
					decl = prev.decl
				}
			case pd.Kind == DeclScopedFunction && kind.IsVarLike():
				// only a var of the same scope may absorb a scoped function
				if sameScope {
					pd.Kind = DeclVar
					decl = prev.decl
				}
			}
		}
	}

	if decl == NoDecl {
		if kind.IsGlobal() {
			decl = r.sem.newGlobal(id.Name, kind, ident.Ptr())
		} else {
			decl = r.sem.newDecl(r.curScope, id.Name, kind, ident.Ptr())
		}
		r.bindings.insert(id.Name, binding{decl: decl, ident: ident})
	}
	r.sem.setDeclaring(ident, decl)
}

func (r *Resolver) alreadyDeclared(ident ast.NodeRef, name ast.Atom, prev binding) {
	b := r.errorf(diag.SemAlreadyDeclared, ident, "identifier '"+r.lock.Str(name)+"' is already declared")
	if !prev.ident.IsZero() {
		b.WithNote(r.span(prev.ident), "previous declaration")
	}
	b.Emit()
}

func (r *Resolver) validateDeclarationName(kind DeclKind, ident ast.NodeRef, name ast.Atom) bool {
	if r.strict() {
		if name == r.kw.arguments || name == r.kw.eval {
			r.errorf(diag.SemStrictName, ident, "cannot declare '"+r.lock.Str(name)+"' in strict mode").Emit()
			return false
		}
		if kind == DeclParameter && name == r.kw.let {
			r.errorf(diag.SemStrictName, ident, "invalid parameter name 'let' in strict mode").Emit()
			return false
		}
	}
	if (kind == DeclLet || kind == DeclConst) && name == r.kw.let {
		r.errorf(diag.SemLetAsLexicalName, ident, "'let' is disallowed as a lexically bound name").Emit()
		return false
	}
	if s := r.lock.Str(name); token.IsReserved(s, r.strict()) {
		msg := "'" + s + "' is a reserved word"
		if !token.IsReserved(s, false) {
			msg += " in strict mode"
		}
		r.errorf(diag.SemStrictName, ident, msg).Emit()
		return false
	}
	return true
}

func (r *Resolver) declareKnownGlobals() {
	if !r.opts.WarnUndefined {
		return
	}
	declare := func(name string) {
		a := r.lock.Atom(name)
		if _, ok := r.bindings.find(a); ok {
			return
		}
		decl := r.sem.newGlobal(a, DeclUndeclaredGlobalProperty, ast.NodePtr{})
		r.bindings.insert(a, binding{decl: decl})
	}
	for _, name := range DefaultKnownGlobals {
		declare(name)
	}
	for _, name := range r.opts.KnownGlobals {
		declare(name)
	}
}

func (r *Resolver) visitVariableDeclaration(n *ast.VariableDeclaration) {
	if fc := r.fc(); n.Token == token.Var && r.curScope != fc.rootScope {
		// a hoisted var may not cross a lexical binding of an enclosing block
		for _, ident := range declarationIdents(r.lock, n) {
			name := ast.Get[*ast.Identifier](r.lock, ident).Name
			b, ok := r.bindings.find(name)
			if !ok {
				continue
			}
			d := r.sem.Decl(b.decl)
			if r.sem.Scope(d.Scope).Function == fc.id && d.Scope != fc.rootScope &&
				d.Kind.IsLetLike() && d.Kind != DeclES5Catch {
				r.alreadyDeclared(ident, name, b)
			}
		}
	}
	r.visitList(n.List)
}

func (r *Resolver) visitIdentifier(n ast.NodeRef, id *ast.Identifier, inTypeof bool) {
	if r.sem.isDeclaring(n) {
		return
	}
	b, found := r.bindings.find(id.Name)

	if id.Name == r.kw.arguments {
		if owner := r.argumentsOwner(); !owner.global && (!found || !r.declWithin(b.decl, owner)) {
			decl := r.sem.argumentsDecl(owner.id, id.Name)
			r.bindings.insertAt(owner.rootFrame, id.Name, binding{decl: decl})
			r.sem.setIdentDecl(n, decl)
			return
		}
	}

	if found {
		r.sem.setIdentDecl(n, b.decl)
		return
	}

	if !inTypeof && r.opts.WarnUndefined && r.strict() {
		r.warnUndeclared(n, id.Name)
	}
	decl := r.sem.newGlobal(id.Name, DeclUndeclaredGlobalProperty, ast.NodePtr{})
	r.bindings.insertAt(r.globalFrame, id.Name, binding{decl: decl, ident: n})
	r.sem.setIdentDecl(n, decl)
}

// argumentsOwner returns the innermost non-arrow function, whose
// arguments object is visible in the current function.
func (r *Resolver) argumentsOwner() *functionContext {
	for i := len(r.funcs) - 1; i > 0; i-- {
		if !r.funcs[i].arrow {
			return r.funcs[i]
		}
	}
	return r.funcs[0]
}

// declWithin reports whether decl belongs to owner or to an arrow nested in it.
func (r *Resolver) declWithin(decl DeclID, owner *functionContext) bool {
	fn := r.sem.Scope(r.sem.Decl(decl).Scope).Function
	for i := len(r.funcs) - 1; i >= 0; i-- {
		if r.funcs[i].id == fn {
			return true
		}
		if r.funcs[i] == owner {
			break
		}
	}
	return false
}

func (r *Resolver) visitUnary(n ast.NodeRef, u *ast.UnaryExpression) {
	id, isIdent := ast.As[*ast.Identifier](r.lock, u.Operand)
	switch {
	case u.Operator == token.Typeof && isIdent:
		r.visitIdentifier(u.Operand, id, true)
		return
	case u.Operator == token.Delete && isIdent && r.strict():
		r.errorf(diag.SemStrictDeleteIdent, n, "'delete' of a variable is not allowed in strict mode").Emit()
	}
	r.visit(u.Operand)
}

func (r *Resolver) visitMetaProperty(n ast.NodeRef, m *ast.MetaProperty) {
	if r.lock.Name(m.Object) == "new" && r.lock.Name(m.Property) == "target" && r.argumentsOwner().global {
		r.errorf(diag.SemNewTargetOutsideFunc, n, "'new.target' not in a function").Emit()
	}
}

func (r *Resolver) visitCall(n ast.NodeRef, call *ast.CallExpression) {
	r.lock.VisitChildren(n, r)

	id, ok := ast.As[*ast.Identifier](r.lock, call.Callee)
	if !ok {
		return
	}
	switch id.Name {
	case r.kw.eval:
		if !call.Optional && r.isAmbient(id.Name) {
			r.registerLocalEval()
		}
	case r.kw.require:
		if !r.module || r.lock.Len(call.ArgumentList) != 1 {
			return
		}
		if decl, ok := r.sem.identDecl(call.Callee); !ok || r.sem.Decl(decl).Kind != DeclUndeclaredGlobalProperty {
			return
		}
		arg := r.lock.Slice(call.ArgumentList)[0]
		if r.lock.Kind(arg) == ast.KindStringLiteral {
			r.resolveDependency(n, arg, DependencyRequire)
		}
	}
}

// isAmbient reports whether name is unbound or bound to a global property.
func (r *Resolver) isAmbient(name ast.Atom) bool {
	b, ok := r.bindings.find(name)
	if !ok {
		return true
	}
	d := r.sem.Decl(b.decl)
	return d.Scope == r.globalScope && d.Kind.IsGlobal()
}

// registerLocalEval marks the scopes from the current one up to the
// function root as observing a direct eval.
func (r *Resolver) registerLocalEval() {
	root := r.fc().rootScope
	for id := r.curScope; id != NoScope; id = r.sem.Scope(id).Parent {
		sc := r.sem.Scope(id)
		sc.LocalEval = true
		for _, d := range sc.Decls {
			r.sem.Decl(d).Renamable = false
		}
		if id == root {
			break
		}
	}
}

func (r *Resolver) resolveDependency(n, src ast.NodeRef, kind DependencyKind) {
	lit, ok := ast.As[*ast.StringLiteral](r.lock, src)
	if !ok {
		return
	}
	if r.opts.Dependencies != nil {
		if file, ok := r.opts.Dependencies.ResolveDependency(r.file, lit.Value, kind); ok {
			r.sem.addRequire(Require{Node: n.Ptr(), Span: r.span(n), Specifier: lit.Value, Kind: kind, File: file})
			return
		}
	}
	r.sm.Warning(diag.ModUnresolved, r.span(n), "Unable to resolve "+kind.String()+" for '"+lit.Value+"'").Emit()
}
