package resolver_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/token"
)

func newContext(t *testing.T) (*ast.Context, *ast.GCLock, *ast.Builder) {
	t.Helper()
	ctx := ast.NewContext(ast.Options{})
	lock := ctx.Lock()
	return ctx, lock, ast.NewBuilder(lock, 0)
}

// teardown releases the scope graphs and the lock, then closes the
// arena. Close panics if any handle is still outstanding.
func teardown(t *testing.T, ctx *ast.Context, lock *ast.GCLock, sems ...*resolver.SemContext) {
	t.Helper()
	for _, sem := range sems {
		sem.Release()
	}
	lock.Release()
	if n := ctx.OutstandingHandles(); n != 0 {
		t.Errorf("got %d outstanding handles after release, want 0", n)
		return
	}
	ctx.Close()
}

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

func declsNamed(lock *ast.GCLock, sem *resolver.SemContext, name string) []resolver.DeclID {
	var out []resolver.DeclID
	for i := 1; i <= sem.NumDecls(); i++ {
		id := resolver.DeclID(i)
		if lock.Str(sem.Decl(id).Name) == name {
			out = append(out, id)
		}
	}
	return out
}

func scopeDeclNames(lock *ast.GCLock, sem *resolver.SemContext, scope resolver.ScopeID) []string {
	var out []string
	for _, d := range sem.Scope(scope).Decls {
		out = append(out, lock.Str(sem.Decl(d).Name))
	}
	return out
}

func codes(lock *ast.GCLock) []diag.Code {
	var out []diag.Code
	for _, d := range lock.SourceManager().Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func wantCodes(t *testing.T, lock *ast.GCLock, want ...diag.Code) {
	t.Helper()
	if got := codes(lock); !slices.Equal(got, want) {
		t.Fatalf("got diagnostics %v, want %v", got, want)
	}
}

func wantMessage(t *testing.T, lock *ast.GCLock, want string) {
	t.Helper()
	for _, d := range lock.SourceManager().Diagnostics() {
		if d.Message == want {
			return
		}
	}
	t.Fatalf("no diagnostic %q in %v", want, lock.SourceManager().Diagnostics())
}

func fnScope(t *testing.T, lock *ast.GCLock, sem *resolver.SemContext, fn ast.NodeRef) resolver.ScopeID {
	t.Helper()
	if fd, ok := ast.As[*ast.FunctionDeclaration](lock, fn); ok {
		fn = fd.Function
	}
	scope, ok := sem.NodeScope(lock, fn)
	if !ok {
		t.Fatalf("no scope for %v", fn)
	}
	return scope
}

func resolved(t *testing.T, lock *ast.GCLock, sem *resolver.SemContext, ident ast.NodeRef) *resolver.Decl {
	t.Helper()
	id, ok := sem.IdentDecl(lock, ident)
	if !ok {
		t.Fatalf("%s is not resolved", lock.Name(ident))
	}
	return sem.Decl(id)
}

func TestVarRedeclaredInBlockIsOneDecl(t *testing.T) {
	_, lock, b := newContext(t)
	f := b.Func("f", nil,
		b.VarNames(token.Var, "x"),
		b.Block(b.VarNames(token.Var, "x")),
	)
	sem := resolver.Resolve(lock, b.Program(f), resolver.Options{})

	wantCodes(t, lock)
	xs := declsNamed(lock, sem, "x")
	if len(xs) != 1 {
		t.Fatalf("got %d decls of x, want 1", len(xs))
	}
	d := sem.Decl(xs[0])
	if d.Kind != resolver.DeclVar {
		t.Errorf("got kind %v, want var", d.Kind)
	}
	if want := fnScope(t, lock, sem, f); d.Scope != want {
		t.Errorf("got scope %d, want function scope %d", d.Scope, want)
	}
}

func TestSiblingBlockLetsAreDistinct(t *testing.T) {
	_, lock, b := newContext(t)
	first := b.Block(b.VarNames(token.Let, "x"))
	second := b.Block(b.VarNames(token.Let, "x"))
	sem := resolver.Resolve(lock, b.Program(b.Func("f", nil, first, second)), resolver.Options{})

	wantCodes(t, lock)
	xs := declsNamed(lock, sem, "x")
	if len(xs) != 2 {
		t.Fatalf("got %d decls of x, want 2", len(xs))
	}
	if sem.Decl(xs[0]).Scope == sem.Decl(xs[1]).Scope {
		t.Errorf("sibling lets share scope %d", sem.Decl(xs[0]).Scope)
	}
	for _, block := range []ast.NodeRef{first, second} {
		scope, _ := sem.NodeScope(lock, block)
		if got := scopeDeclNames(lock, sem, scope); !slices.Equal(got, []string{"x"}) {
			t.Errorf("block scope decls: got %v, want [x]", got)
		}
	}
}

func TestLetVarConflict(t *testing.T) {
	tests := []struct {
		name  string
		first token.Token
		then  token.Token
	}{
		{"let then var", token.Let, token.Var},
		{"var then let", token.Var, token.Let},
		{"const then var", token.Const, token.Var},
		{"let then let", token.Let, token.Let},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lock, b := newContext(t)
			f := b.Func("f", nil, b.VarNames(tt.first, "x"), b.VarNames(tt.then, "x"))
			resolver.Resolve(lock, b.Program(f), resolver.Options{})
			wantCodes(t, lock, diag.SemAlreadyDeclared)
			wantMessage(t, lock, "identifier 'x' is already declared")
			if notes := lock.SourceManager().Diagnostics()[0].Notes; len(notes) != 1 || notes[0].Msg != "previous declaration" {
				t.Errorf("got notes %v, want one previous declaration note", notes)
			}
		})
	}
}

func TestVarCrossingBlockLet(t *testing.T) {
	_, lock, b := newContext(t)
	f := b.Func("f", nil,
		b.Block(
			b.VarNames(token.Let, "x"),
			b.Block(b.VarNames(token.Var, "x")),
		),
	)
	resolver.Resolve(lock, b.Program(f), resolver.Options{})
	wantCodes(t, lock, diag.SemAlreadyDeclared)
}

func TestCatchParameterAllowsVar(t *testing.T) {
	_, lock, b := newContext(t)
	param := b.Ident("e")
	ref := b.Ident("e")
	try := b.Try(b.Block(), b.Catch(param, b.Block(b.VarNames(token.Var, "e"), b.Expr(ref))), ast.NodeRef{})
	sem := resolver.Resolve(lock, b.Program(try), resolver.Options{})

	wantCodes(t, lock)
	if d := resolved(t, lock, sem, param); d.Kind != resolver.DeclES5Catch {
		t.Errorf("got kind %v, want es5-catch", d.Kind)
	}
	if d := resolved(t, lock, sem, ref); d.Kind != resolver.DeclES5Catch {
		t.Errorf("reference: got kind %v, want es5-catch", d.Kind)
	}
}

func TestDestructuredCatchParameterIsLet(t *testing.T) {
	_, lock, b := newContext(t)
	a := b.Ident("a")
	try := b.Try(b.Block(), b.Catch(b.ArrayPat(a), b.Block()), ast.NodeRef{})
	sem := resolver.Resolve(lock, b.Program(try), resolver.Options{})
	if d := resolved(t, lock, sem, a); d.Kind != resolver.DeclLet {
		t.Errorf("got kind %v, want let", d.Kind)
	}
}

func TestDeclarationNames(t *testing.T) {
	tests := []struct {
		name string
		body func(b *ast.Builder) []ast.NodeRef
		want diag.Code
		msg  string
	}{
		{
			name: "strict eval",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.Directive("use strict"), b.VarNames(token.Var, "eval")}
			},
			want: diag.SemStrictName,
			msg:  "cannot declare 'eval' in strict mode",
		},
		{
			name: "strict arguments parameter",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.Directive("use strict"), b.Func("f", []ast.NodeRef{b.Ident("arguments")})}
			},
			want: diag.SemStrictName,
			msg:  "cannot declare 'arguments' in strict mode",
		},
		{
			name: "strict let parameter",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.Directive("use strict"), b.Func("f", []ast.NodeRef{b.Ident("let")})}
			},
			want: diag.SemStrictName,
			msg:  "invalid parameter name 'let' in strict mode",
		},
		{
			name: "strict future reserved word",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.Directive("use strict"), b.VarNames(token.Var, "interface")}
			},
			want: diag.SemStrictName,
			msg:  "'interface' is a reserved word in strict mode",
		},
		{
			name: "reserved word",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.VarNames(token.Let, "enum")}
			},
			want: diag.SemStrictName,
			msg:  "'enum' is a reserved word",
		},
		{
			name: "lexical let",
			body: func(b *ast.Builder) []ast.NodeRef {
				return []ast.NodeRef{b.VarNames(token.Let, "let")}
			},
			want: diag.SemLetAsLexicalName,
			msg:  "'let' is disallowed as a lexically bound name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lock, b := newContext(t)
			resolver.Resolve(lock, b.Program(tt.body(b)...), resolver.Options{})
			wantCodes(t, lock, tt.want)
			wantMessage(t, lock, tt.msg)
		})
	}
}

func TestSloppyNamesAreAccepted(t *testing.T) {
	_, lock, b := newContext(t)
	resolver.Resolve(lock, b.Program(
		b.VarNames(token.Var, "eval", "interface"),
		b.Func("f", []ast.NodeRef{b.Ident("let"), b.Ident("yield")}),
	), resolver.Options{})
	wantCodes(t, lock)
}

func TestParameters(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *ast.Builder) ast.NodeRef
		want  []diag.Code
	}{
		{
			name: "sloppy simple duplicates",
			build: func(b *ast.Builder) ast.NodeRef {
				return b.Func("f", []ast.NodeRef{b.Ident("a"), b.Ident("a")})
			},
		},
		{
			name: "strict duplicates",
			build: func(b *ast.Builder) ast.NodeRef {
				return b.Func("f", []ast.NodeRef{b.Ident("a"), b.Ident("a")}, b.Directive("use strict"))
			},
			want: []diag.Code{diag.SemDuplicateParameter},
		},
		{
			name: "arrow duplicates",
			build: func(b *ast.Builder) ast.NodeRef {
				return b.Expr(b.Arrow([]ast.NodeRef{b.Ident("a"), b.Ident("a")}, b.Num(1)))
			},
			want: []diag.Code{diag.SemDuplicateParameter},
		},
		{
			name: "non-simple duplicates",
			build: func(b *ast.Builder) ast.NodeRef {
				return b.Func("f", []ast.NodeRef{b.Ident("a"), b.ArrayPat(b.Ident("a"))})
			},
			want: []diag.Code{diag.SemDuplicateParameter},
		},
		{
			name: "use strict with default",
			build: func(b *ast.Builder) ast.NodeRef {
				return b.Func("f", []ast.NodeRef{b.Declarator(b.Ident("a"), b.Num(1))}, b.Directive("use strict"))
			},
			want: []diag.Code{diag.SemUseStrictNonSimple},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lock, b := newContext(t)
			resolver.Resolve(lock, b.Program(tt.build(b)), resolver.Options{})
			wantCodes(t, lock, tt.want...)
		})
	}
}

func TestParameterAndVarShareDecl(t *testing.T) {
	_, lock, b := newContext(t)
	param := b.Ident("a")
	ref := b.Ident("a")
	f := b.Func("f", []ast.NodeRef{param}, b.VarNames(token.Var, "a"), b.Return(ref))
	sem := resolver.Resolve(lock, b.Program(f), resolver.Options{})

	wantCodes(t, lock)
	if d := resolved(t, lock, sem, ref); d.Kind != resolver.DeclParameter {
		t.Errorf("got kind %v, want parameter", d.Kind)
	}
	if n := len(declsNamed(lock, sem, "a")); n != 1 {
		t.Errorf("got %d decls of a, want 1", n)
	}
}

func TestParameterDefaultSeesParameters(t *testing.T) {
	_, lock, b := newContext(t)
	ref := b.Ident("a")
	f := b.Func("f", []ast.NodeRef{b.Ident("a"), b.Declarator(b.Ident("c"), ref)})
	sem := resolver.Resolve(lock, b.Program(f), resolver.Options{})
	if d := resolved(t, lock, sem, ref); d.Kind != resolver.DeclParameter {
		t.Errorf("got kind %v, want parameter", d.Kind)
	}
}

func TestScriptGlobals(t *testing.T) {
	_, lock, b := newContext(t)
	f := b.Func("f", nil)
	sem := resolver.Resolve(lock, b.Program(b.VarNames(token.Var, "a"), b.VarNames(token.Let, "l"), f), resolver.Options{})

	tests := map[string]resolver.DeclKind{
		"a": resolver.DeclGlobalProperty,
		"f": resolver.DeclGlobalProperty,
		"l": resolver.DeclLet,
	}
	for name, want := range tests {
		ids := declsNamed(lock, sem, name)
		if len(ids) != 1 {
			t.Fatalf("%s: got %d decls, want 1", name, len(ids))
		}
		d := sem.Decl(ids[0])
		if d.Kind != want {
			t.Errorf("%s: got kind %v, want %v", name, d.Kind, want)
		}
		if d.Scope != sem.GlobalScope() {
			t.Errorf("%s: got scope %d, want global %d", name, d.Scope, sem.GlobalScope())
		}
	}
}

func TestUndeclaredBecomesAmbientGlobal(t *testing.T) {
	_, lock, b := newContext(t)
	inner := b.Ident("g")
	outer := b.Ident("g")
	sem := resolver.Resolve(lock, b.Program(b.Func("f", nil, b.Expr(inner)), b.Expr(outer)), resolver.Options{})

	wantCodes(t, lock)
	di, _ := sem.IdentDecl(lock, inner)
	do, _ := sem.IdentDecl(lock, outer)
	if di != do {
		t.Fatalf("got decls %d and %d, want one ambient decl", di, do)
	}
	d := sem.Decl(di)
	if d.Kind != resolver.DeclUndeclaredGlobalProperty || d.Scope != sem.GlobalScope() {
		t.Errorf("got %v in scope %d, want undeclared global in %d", d.Kind, d.Scope, sem.GlobalScope())
	}
}

func TestUndeclaredWarning(t *testing.T) {
	_, lock, b := newContext(t)
	prog := b.Program(
		b.Directive("use strict"),
		b.VarNames(token.Let, "count"),
		b.Expr(b.Ident("cont")),
		b.Expr(b.Call(b.Member(b.Ident("console"), "log"))),
		b.Expr(b.Unary(token.Typeof, b.Ident("window"))),
		b.Expr(b.Ident("custom")),
	)
	resolver.Resolve(lock, prog, resolver.Options{WarnUndefined: true, KnownGlobals: []string{"custom"}})

	wantCodes(t, lock, diag.SemUndeclaredVariable)
	d := lock.SourceManager().Diagnostics()[0]
	if want := "the variable 'cont' was not declared in function 'global'"; d.Message != want {
		t.Errorf("got %q, want %q", d.Message, want)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "did you mean 'count'?" {
		t.Errorf("got notes %v, want a suggestion of count", d.Notes)
	}
	if d.Severity != diag.SevWarning {
		t.Errorf("got severity %v, want warning", d.Severity)
	}
}

func TestUndeclaredWarningOnlyInStrictCode(t *testing.T) {
	_, lock, b := newContext(t)
	resolver.Resolve(lock, b.Program(b.Expr(b.Ident("nope"))), resolver.Options{WarnUndefined: true})
	wantCodes(t, lock)
}

func TestArgumentsObject(t *testing.T) {
	_, lock, b := newContext(t)
	direct := b.Ident("arguments")
	viaArrow := b.Ident("arguments")
	top := b.Ident("arguments")
	f := b.Func("f", nil,
		b.Expr(direct),
		b.Expr(b.Arrow(nil, viaArrow)),
	)
	sem := resolver.Resolve(lock, b.Program(f, b.Expr(top)), resolver.Options{})

	d1, ok := sem.IdentDecl(lock, direct)
	if !ok {
		t.Fatal("arguments is not resolved")
	}
	d := sem.Decl(d1)
	if d.Special != resolver.SpecialArguments || d.Scope != fnScope(t, lock, sem, f) {
		t.Errorf("got %+v, want the arguments decl of f", d)
	}
	if d2, _ := sem.IdentDecl(lock, viaArrow); d2 != d1 {
		t.Errorf("arrow: got decl %d, want %d", d2, d1)
	}
	if d3 := resolved(t, lock, sem, top); d3.Kind != resolver.DeclUndeclaredGlobalProperty {
		t.Errorf("top level: got kind %v, want undeclared global", d3.Kind)
	}
}

func TestArgumentsParameterWins(t *testing.T) {
	_, lock, b := newContext(t)
	param := b.Ident("arguments")
	ref := b.Ident("arguments")
	sem := resolver.Resolve(lock, b.Program(b.Func("f", []ast.NodeRef{param}, b.Expr(ref))), resolver.Options{})
	if d := resolved(t, lock, sem, ref); d.Kind != resolver.DeclParameter {
		t.Errorf("got kind %v, want parameter", d.Kind)
	}
}

func TestFunctionExpressionName(t *testing.T) {
	_, lock, b := newContext(t)
	ref := b.Ident("h")
	fn := b.FuncExpr("h", nil, b.Expr(ref))
	sem := resolver.Resolve(lock, b.Program(b.Expr(fn)), resolver.Options{})

	d := resolved(t, lock, sem, ref)
	if d.Kind != resolver.DeclFunctionExprName {
		t.Fatalf("got kind %v, want function-expr-name", d.Kind)
	}
	nameScope, ok := sem.NodeScope(lock, b.Fn(fn).Name)
	if !ok || d.Scope != nameScope {
		t.Errorf("got scope %d, want name scope %d", d.Scope, nameScope)
	}
	if parent := sem.Scope(fnScope(t, lock, sem, fn)).Parent; parent != nameScope {
		t.Errorf("function scope parent: got %d, want %d", parent, nameScope)
	}
}

func TestClassBodyIsStrict(t *testing.T) {
	_, lock, b := newContext(t)
	ref := b.Ident("C")
	method := b.Method("m", b.FuncExpr("", nil, b.VarNames(token.Var, "eval"), b.Expr(ref)))
	sem := resolver.Resolve(lock, b.Program(b.Expr(b.ClassExpr("C", ast.NodeRef{}, method))), resolver.Options{})

	wantCodes(t, lock, diag.SemStrictName)
	if d := resolved(t, lock, sem, ref); d.Kind != resolver.DeclClassExprName {
		t.Errorf("got kind %v, want class-expr-name", d.Kind)
	}
}

func TestLockMismatchPanics(t *testing.T) {
	_, lock, b := newContext(t)
	x := b.Ident("x")
	sem := resolver.Resolve(lock, b.Program(b.Expr(x)), resolver.Options{})

	other := ast.NewContext(ast.Options{})
	otherLock := other.Lock()
	defer otherLock.Release()
	mustPanic(t, "accessed with GCLock of Context", func() { sem.IdentDecl(otherLock, x) })
}

func TestReleaseDropsHandles(t *testing.T) {
	ctx, lock, b := newContext(t)
	prog := b.Program(b.Func("f", nil, b.Block(b.Func("g", nil))))
	sem := resolver.Resolve(lock, prog, resolver.Options{})
	if ctx.OutstandingHandles() == 0 {
		t.Fatal("hoisted functions hold no handles")
	}
	teardown(t, ctx, lock, sem)
}

func TestCustomCollector(t *testing.T) {
	_, lock, b := newContext(t)
	var seen []ast.Kind
	collect := func(lock *ast.GCLock, fn ast.NodeRef) resolver.DeclCollector {
		seen = append(seen, lock.Kind(fn))
		return resolver.CollectDecls(lock, fn)
	}
	prog := b.Program(b.Func("f", nil, b.Expr(b.Arrow(nil, b.Num(1)))))
	resolver.Resolve(lock, prog, resolver.Options{Collector: collect})

	want := []ast.Kind{ast.KindProgram, ast.KindFunctionLiteral, ast.KindArrowFunctionLiteral}
	if !slices.Equal(seen, want) {
		t.Errorf("got %v, want %v", seen, want)
	}
}
