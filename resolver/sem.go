package resolver

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/source"
)

type (
	DeclID     uint32
	ScopeID    uint32
	FunctionID uint32
	LabelID    uint32
)

// The zero value of every id means "none".
const (
	NoDecl     DeclID     = 0
	NoScope    ScopeID    = 0
	NoFunction FunctionID = 0
	NoLabel    LabelID    = 0
)

// DeclKind orders declaration kinds so that the let-like, scoped-function
// and var-like groups are contiguous ranges.
type DeclKind uint8

const (
	DeclLet DeclKind = iota
	DeclConst
	DeclClass
	DeclImport
	// DeclES5Catch is the simple parameter of a catch clause.
	DeclES5Catch
	DeclFunctionExprName
	DeclClassExprName
	// DeclScopedFunction is a function declaration nested in a block.
	DeclScopedFunction
	DeclVar
	DeclParameter
	DeclGlobalProperty
	// DeclUndeclaredGlobalProperty is an ambient global created on first use.
	DeclUndeclaredGlobalProperty
)

var declKindNames = [...]string{
	DeclLet:                      "let",
	DeclConst:                    "const",
	DeclClass:                    "class",
	DeclImport:                   "import",
	DeclES5Catch:                 "es5-catch",
	DeclFunctionExprName:         "function-expr-name",
	DeclClassExprName:            "class-expr-name",
	DeclScopedFunction:           "scoped-function",
	DeclVar:                      "var",
	DeclParameter:                "parameter",
	DeclGlobalProperty:           "global-property",
	DeclUndeclaredGlobalProperty: "undeclared-global-property",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return fmt.Sprintf("DeclKind(%d)", uint8(k))
}

func (k DeclKind) IsLetLike() bool                 { return k <= DeclES5Catch }
func (k DeclKind) IsVarLike() bool                 { return k >= DeclVar }
func (k DeclKind) IsVarLikeOrScopedFunction() bool { return k >= DeclScopedFunction }
func (k DeclKind) IsGlobal() bool                  { return k >= DeclGlobalProperty }

type Special uint8

const (
	SpecialNone Special = iota
	SpecialArguments
)

type Decl struct {
	Name      ast.Atom
	Kind      DeclKind
	Special   Special
	Scope     ScopeID
	Renamable bool
	// Ident is the declaring identifier; zero for synthesized decls.
	Ident ast.NodePtr
}

type LexicalScope struct {
	Parent   ScopeID
	Function FunctionID
	Depth    uint32
	Decls    []DeclID
	// Node is the AST node that introduced the scope, zero for the module
	// global scope.
	Node ast.NodePtr
	// Hoisted holds the function declarations initialized on scope entry.
	Hoisted []*ast.NodeRc
	// LocalEval is set when a direct eval can introduce bindings here.
	LocalEval bool
}

type FunctionInfo struct {
	Parent FunctionID
	Node   ast.NodePtr
	Strict bool
	Arrow  bool
	// Scopes lists the scopes of the function, the root first.
	Scopes        []ScopeID
	ArgumentsDecl DeclID
	numLabels     uint32
}

// RootScope returns the outermost scope of the function.
func (f *FunctionInfo) RootScope() ScopeID {
	if len(f.Scopes) == 0 {
		return NoScope
	}
	return f.Scopes[0]
}

// NumLabels returns the number of labels allocated in the function.
func (f *FunctionInfo) NumLabels() uint32 { return f.numLabels }

type Label struct {
	Function FunctionID
	// Index is the per-function label number.
	Index  uint32
	Name   ast.Atom
	Target ast.NodePtr
}

// Resolution is the state of one identifier reference.
type Resolution uint8

const (
	Unset Resolution = iota
	Resolved
	Unresolvable
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case Unresolvable:
		return "unresolvable"
	}
	return "unset"
}

type identInfo struct {
	decl         DeclID
	unresolvable bool
	// declaring identifiers are never downgraded by the unresolver.
	declaring bool
}

// DependencyKind tells how a module specifier was written.
type DependencyKind uint8

const (
	DependencyImport DependencyKind = iota
	DependencyRequire
)

func (k DependencyKind) String() string {
	if k == DependencyRequire {
		return "require"
	}
	return "import"
}

// Require is a resolved module dependency of the file.
type Require struct {
	Node      ast.NodePtr
	Span      source.Span
	Specifier string
	Kind      DependencyKind
	File      source.FileID
}

// SemContext is the scope graph of one resolved program. Every accessor
// taking a GCLock checks that the lock belongs to the resolved Context.
type SemContext struct {
	ctx *ast.Context

	decls  []Decl
	scopes []LexicalScope
	funcs  []FunctionInfo
	labels []Label

	idents     map[ast.NodePtr]identInfo
	nodeScopes map[ast.NodePtr]ScopeID
	stmtLabels map[ast.NodePtr]LabelID

	globalScope ScopeID
	requires    []Require
	released    bool
}

func newSemContext(ctx *ast.Context) *SemContext {
	return &SemContext{
		ctx: ctx,
		// index 0 of each table is the "none" sentinel
		decls:      make([]Decl, 1),
		scopes:     make([]LexicalScope, 1),
		funcs:      make([]FunctionInfo, 1),
		labels:     make([]Label, 1),
		idents:     make(map[ast.NodePtr]identInfo),
		nodeScopes: make(map[ast.NodePtr]ScopeID),
		stmtLabels: make(map[ast.NodePtr]LabelID),
	}
}

func nextID[T ~uint32](n int) T {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("resolver: id space exhausted: %w", err))
	}
	return T(v)
}

func (s *SemContext) checkLock(lock *ast.GCLock) {
	if ctx := lock.Context(); ctx != s.ctx {
		panic(fmt.Sprintf("resolver: SemContext of Context %d accessed with GCLock of Context %d", s.ctx.ID(), ctx.ID()))
	}
}

func (s *SemContext) newFunction(parent FunctionID, node ast.NodePtr, strict, arrow bool) FunctionID {
	id := nextID[FunctionID](len(s.funcs))
	s.funcs = append(s.funcs, FunctionInfo{Parent: parent, Node: node, Strict: strict, Arrow: arrow})
	return id
}

func (s *SemContext) newScope(parent ScopeID, fn FunctionID, node ast.NodePtr) ScopeID {
	id := nextID[ScopeID](len(s.scopes))
	var depth uint32
	if parent != NoScope {
		depth = s.scopes[parent].Depth + 1
	}
	s.scopes = append(s.scopes, LexicalScope{Parent: parent, Function: fn, Depth: depth, Node: node})
	f := &s.funcs[fn]
	f.Scopes = append(f.Scopes, id)
	if !node.IsZero() {
		s.nodeScopes[node] = id
	}
	return id
}

func (s *SemContext) newDecl(scope ScopeID, name ast.Atom, kind DeclKind, ident ast.NodePtr) DeclID {
	id := nextID[DeclID](len(s.decls))
	sc := &s.scopes[scope]
	s.decls = append(s.decls, Decl{
		Name:      name,
		Kind:      kind,
		Scope:     scope,
		Renamable: !sc.LocalEval,
		Ident:     ident,
	})
	sc.Decls = append(sc.Decls, id)
	return id
}

func (s *SemContext) newGlobal(name ast.Atom, kind DeclKind, ident ast.NodePtr) DeclID {
	return s.newDecl(s.globalScope, name, kind, ident)
}

// argumentsDecl returns the arguments object decl of fn, creating it in
// the root scope on first use.
func (s *SemContext) argumentsDecl(fn FunctionID, name ast.Atom) DeclID {
	f := &s.funcs[fn]
	if f.ArgumentsDecl == NoDecl {
		id := s.newDecl(f.RootScope(), name, DeclVar, ast.NodePtr{})
		s.decls[id].Special = SpecialArguments
		f.ArgumentsDecl = id
	}
	return f.ArgumentsDecl
}

func (s *SemContext) newLabel(fn FunctionID, name ast.Atom, target ast.NodeRef) LabelID {
	id := nextID[LabelID](len(s.labels))
	f := &s.funcs[fn]
	s.labels = append(s.labels, Label{Function: fn, Index: f.numLabels, Name: name, Target: target.Ptr()})
	f.numLabels++
	return id
}

func (s *SemContext) setIdentDecl(ident ast.NodeRef, decl DeclID) {
	info := s.idents[ident.Ptr()]
	info.decl = decl
	info.unresolvable = false
	s.idents[ident.Ptr()] = info
}

func (s *SemContext) setDeclaring(ident ast.NodeRef, decl DeclID) {
	s.idents[ident.Ptr()] = identInfo{decl: decl, declaring: true}
}

func (s *SemContext) identDecl(ident ast.NodeRef) (DeclID, bool) {
	info, ok := s.idents[ident.Ptr()]
	if !ok || info.unresolvable || info.decl == NoDecl {
		return NoDecl, false
	}
	return info.decl, true
}

func (s *SemContext) isDeclaring(ident ast.NodeRef) bool {
	return s.idents[ident.Ptr()].declaring
}

// setUnresolvable downgrades a reference. It reports false for declaring
// identifiers, which keep their decl.
func (s *SemContext) setUnresolvable(ident ast.NodeRef) bool {
	info, ok := s.idents[ident.Ptr()]
	if ok && info.declaring {
		return false
	}
	s.idents[ident.Ptr()] = identInfo{unresolvable: true}
	return true
}

func (s *SemContext) addHoisted(lock *ast.GCLock, scope ScopeID, fn ast.NodeRef) {
	sc := &s.scopes[scope]
	sc.Hoisted = append(sc.Hoisted, ast.NewNodeRc(lock, fn))
}

func (s *SemContext) addRequire(r Require) {
	s.requires = append(s.requires, r)
}

// Decl returns the declaration with the given id.
func (s *SemContext) Decl(id DeclID) *Decl {
	if id == NoDecl || int(id) >= len(s.decls) {
		panic(fmt.Sprintf("resolver: invalid DeclID %d", id))
	}
	return &s.decls[id]
}

func (s *SemContext) Scope(id ScopeID) *LexicalScope {
	if id == NoScope || int(id) >= len(s.scopes) {
		panic(fmt.Sprintf("resolver: invalid ScopeID %d", id))
	}
	return &s.scopes[id]
}

func (s *SemContext) Function(id FunctionID) *FunctionInfo {
	if id == NoFunction || int(id) >= len(s.funcs) {
		panic(fmt.Sprintf("resolver: invalid FunctionID %d", id))
	}
	return &s.funcs[id]
}

func (s *SemContext) Label(id LabelID) *Label {
	if id == NoLabel || int(id) >= len(s.labels) {
		panic(fmt.Sprintf("resolver: invalid LabelID %d", id))
	}
	return &s.labels[id]
}

func (s *SemContext) NumDecls() int     { return len(s.decls) - 1 }
func (s *SemContext) NumScopes() int    { return len(s.scopes) - 1 }
func (s *SemContext) NumFunctions() int { return len(s.funcs) - 1 }
func (s *SemContext) NumLabels() int    { return len(s.labels) - 1 }

// GlobalScope returns the outermost scope of the program.
func (s *SemContext) GlobalScope() ScopeID { return s.globalScope }

// Requires lists the module dependencies resolved in module mode, in
// source order.
func (s *SemContext) Requires() []Require { return s.requires }

// Resolution reports how the identifier ident was resolved, and its decl
// when Resolved.
func (s *SemContext) Resolution(lock *ast.GCLock, ident ast.NodeRef) (Resolution, DeclID) {
	s.checkLock(lock)
	info, ok := s.idents[ident.Ptr()]
	switch {
	case !ok:
		return Unset, NoDecl
	case info.unresolvable:
		return Unresolvable, NoDecl
	case info.decl == NoDecl:
		return Unset, NoDecl
	}
	return Resolved, info.decl
}

// IdentDecl returns the decl the identifier resolved to.
func (s *SemContext) IdentDecl(lock *ast.GCLock, ident ast.NodeRef) (DeclID, bool) {
	s.checkLock(lock)
	return s.identDecl(ident)
}

// IsUnresolvable reports whether a reference was downgraded because of a
// dynamic scope escape.
func (s *SemContext) IsUnresolvable(lock *ast.GCLock, ident ast.NodeRef) bool {
	s.checkLock(lock)
	return s.idents[ident.Ptr()].unresolvable
}

// NodeScope returns the scope introduced by node.
func (s *SemContext) NodeScope(lock *ast.GCLock, node ast.NodeRef) (ScopeID, bool) {
	s.checkLock(lock)
	id, ok := s.nodeScopes[node.Ptr()]
	return id, ok
}

// StmtLabel returns the label of a loop, switch or labelled statement, or
// the label targeted by a break or continue.
func (s *SemContext) StmtLabel(lock *ast.GCLock, stmt ast.NodeRef) (LabelID, bool) {
	s.checkLock(lock)
	id, ok := s.stmtLabels[stmt.Ptr()]
	return id, ok
}

// Release drops the escape handles held by the scope graph. The graph
// stays readable but hoisted function lists are cleared.
func (s *SemContext) Release() {
	if s.released {
		return
	}
	for i := range s.scopes {
		for _, rc := range s.scopes[i].Hoisted {
			rc.Release()
		}
		s.scopes[i].Hoisted = nil
	}
	s.released = true
}
