package ast

import (
	"github.com/t14raptor/fastscope/source"
	"github.com/t14raptor/fastscope/token"
)

// Builder allocates nodes with terse constructors. Every node gets a
// distinct synthetic one-byte span so diagnostics stay distinguishable.
type Builder struct {
	lock *GCLock
	file source.FileID
	pos  uint32
}

func NewBuilder(lock *GCLock, file source.FileID) *Builder {
	return &Builder{lock: lock, file: file}
}

func (b *Builder) Lock() *GCLock { return b.lock }

func (b *Builder) meta() Meta {
	m := Meta{Span: source.Span{File: b.file, Start: b.pos, End: b.pos + 1}}
	b.pos += 2
	return m
}

func (b *Builder) alloc(n Node) NodeRef { return b.lock.Alloc(n) }

func (b *Builder) ident(name string) NodeRef {
	if name == "" {
		return NodeRef{}
	}
	return b.Ident(name)
}

// Fn returns the FunctionLiteral of a function declaration or expression.
func (b *Builder) Fn(r NodeRef) *FunctionLiteral {
	if fd, ok := As[*FunctionDeclaration](b.lock, r); ok {
		r = fd.Function
	}
	return Get[*FunctionLiteral](b.lock, r)
}

func (b *Builder) Program(stmts ...NodeRef) NodeRef {
	return b.alloc(&Program{Meta: b.meta(), Body: b.lock.NewList(stmts...)})
}

func (b *Builder) Ident(name string) NodeRef {
	return b.alloc(&Identifier{Meta: b.meta(), Name: b.lock.Atom(name)})
}

func (b *Builder) Private(name string) NodeRef {
	return b.alloc(&PrivateIdentifier{Meta: b.meta(), Name: b.lock.Atom(name)})
}

func (b *Builder) Block(stmts ...NodeRef) NodeRef {
	return b.alloc(&BlockStatement{Meta: b.meta(), List: b.lock.NewList(stmts...)})
}

func (b *Builder) Empty() NodeRef { return b.alloc(&EmptyStatement{Meta: b.meta()}) }

func (b *Builder) Expr(e NodeRef) NodeRef {
	return b.alloc(&ExpressionStatement{Meta: b.meta(), Expression: e})
}

// Directive builds a prologue entry such as 'use strict'.
func (b *Builder) Directive(s string) NodeRef {
	return b.alloc(&ExpressionStatement{Meta: b.meta(), Expression: b.Str(s), Directive: s})
}

func (b *Builder) Var(tok token.Token, decls ...NodeRef) NodeRef {
	return b.alloc(&VariableDeclaration{Meta: b.meta(), Token: tok, List: b.lock.NewList(decls...)})
}

// VarNames declares uninitialized names: `let a, b;`.
func (b *Builder) VarNames(tok token.Token, names ...string) NodeRef {
	decls := make([]NodeRef, len(names))
	for i, n := range names {
		decls[i] = b.Declarator(b.Ident(n), NodeRef{})
	}
	return b.Var(tok, decls...)
}

func (b *Builder) Declarator(target, init NodeRef) NodeRef {
	return b.alloc(&VariableDeclarator{Meta: b.meta(), Target: target, Initializer: init})
}

func (b *Builder) params(params []NodeRef) NodeList {
	wrapped := make([]NodeRef, len(params))
	for i, p := range params {
		if b.lock.Kind(p) != KindVariableDeclarator {
			p = b.Declarator(p, NodeRef{})
		}
		wrapped[i] = p
	}
	return b.lock.NewList(wrapped...)
}

// FuncExpr builds a FunctionLiteral; name may be empty.
func (b *Builder) FuncExpr(name string, params []NodeRef, body ...NodeRef) NodeRef {
	return b.alloc(&FunctionLiteral{
		Meta:   b.meta(),
		Name:   b.ident(name),
		Params: b.params(params),
		Body:   b.Block(body...),
	})
}

func (b *Builder) Func(name string, params []NodeRef, body ...NodeRef) NodeRef {
	return b.alloc(&FunctionDeclaration{Meta: b.meta(), Function: b.FuncExpr(name, params, body...)})
}

func (b *Builder) Arrow(params []NodeRef, body NodeRef) NodeRef {
	return b.alloc(&ArrowFunctionLiteral{Meta: b.meta(), Params: b.params(params), Body: body})
}

func (b *Builder) ClassExpr(name string, super NodeRef, members ...NodeRef) NodeRef {
	return b.alloc(&ClassLiteral{
		Meta:       b.meta(),
		Name:       b.ident(name),
		SuperClass: super,
		Body:       b.lock.NewList(members...),
	})
}

func (b *Builder) Class(name string, super NodeRef, members ...NodeRef) NodeRef {
	return b.alloc(&ClassDeclaration{Meta: b.meta(), Class: b.ClassExpr(name, super, members...)})
}

func (b *Builder) Method(key string, fn NodeRef) NodeRef {
	return b.alloc(&MethodDefinition{Meta: b.meta(), Key: b.Ident(key), PropKind: PropertyKindMethod, Body: fn})
}

func (b *Builder) Field(key string, init NodeRef) NodeRef {
	return b.alloc(&FieldDefinition{Meta: b.meta(), Key: b.Ident(key), Initializer: init})
}

func (b *Builder) If(test, cons, alt NodeRef) NodeRef {
	return b.alloc(&IfStatement{Meta: b.meta(), Test: test, Consequent: cons, Alternate: alt})
}

func (b *Builder) Labelled(label string, body NodeRef) NodeRef {
	return b.alloc(&LabelledStatement{Meta: b.meta(), Label: b.Ident(label), Statement: body})
}

func (b *Builder) Break(label string) NodeRef {
	return b.alloc(&BreakStatement{Meta: b.meta(), Label: b.ident(label)})
}

func (b *Builder) Continue(label string) NodeRef {
	return b.alloc(&ContinueStatement{Meta: b.meta(), Label: b.ident(label)})
}

func (b *Builder) With(obj, body NodeRef) NodeRef {
	return b.alloc(&WithStatement{Meta: b.meta(), Object: obj, Body: body})
}

func (b *Builder) Switch(disc NodeRef, cases ...NodeRef) NodeRef {
	return b.alloc(&SwitchStatement{Meta: b.meta(), Discriminant: disc, Body: b.lock.NewList(cases...)})
}

// Case builds a switch case; a zero test is `default:`.
func (b *Builder) Case(test NodeRef, body ...NodeRef) NodeRef {
	return b.alloc(&CaseStatement{Meta: b.meta(), Test: test, Consequent: b.lock.NewList(body...)})
}

func (b *Builder) Return(arg NodeRef) NodeRef {
	return b.alloc(&ReturnStatement{Meta: b.meta(), Argument: arg})
}

func (b *Builder) Throw(arg NodeRef) NodeRef {
	return b.alloc(&ThrowStatement{Meta: b.meta(), Argument: arg})
}

func (b *Builder) Try(body, catch, finally NodeRef) NodeRef {
	return b.alloc(&TryStatement{Meta: b.meta(), Body: body, Catch: catch, Finally: finally})
}

func (b *Builder) Catch(param, body NodeRef) NodeRef {
	return b.alloc(&CatchStatement{Meta: b.meta(), Parameter: param, Body: body})
}

func (b *Builder) While(test, body NodeRef) NodeRef {
	return b.alloc(&WhileStatement{Meta: b.meta(), Test: test, Body: body})
}

func (b *Builder) DoWhile(body, test NodeRef) NodeRef {
	return b.alloc(&DoWhileStatement{Meta: b.meta(), Test: test, Body: body})
}

func (b *Builder) For(init, test, update, body NodeRef) NodeRef {
	return b.alloc(&ForStatement{Meta: b.meta(), Initializer: init, Test: test, Update: update, Body: body})
}

func (b *Builder) ForIn(left, right, body NodeRef) NodeRef {
	return b.alloc(&ForInStatement{Meta: b.meta(), Left: left, Right: right, Body: body})
}

func (b *Builder) ForOf(left, right, body NodeRef) NodeRef {
	return b.alloc(&ForOfStatement{Meta: b.meta(), Left: left, Right: right, Body: body})
}

func (b *Builder) Call(callee NodeRef, args ...NodeRef) NodeRef {
	return b.alloc(&CallExpression{Meta: b.meta(), Callee: callee, ArgumentList: b.lock.NewList(args...)})
}

func (b *Builder) New(callee NodeRef, args ...NodeRef) NodeRef {
	return b.alloc(&NewExpression{Meta: b.meta(), Callee: callee, ArgumentList: b.lock.NewList(args...)})
}

// Member builds `obj.prop`.
func (b *Builder) Member(obj NodeRef, prop string) NodeRef {
	return b.alloc(&MemberExpression{Meta: b.meta(), Object: obj, Property: b.Ident(prop)})
}

// Index builds `obj[prop]`.
func (b *Builder) Index(obj, prop NodeRef) NodeRef {
	return b.alloc(&MemberExpression{Meta: b.meta(), Object: obj, Property: prop, Computed: true})
}

func (b *Builder) Assign(op token.Token, left, right NodeRef) NodeRef {
	return b.alloc(&AssignExpression{Meta: b.meta(), Operator: op, Left: left, Right: right})
}

func (b *Builder) Binary(op token.Token, left, right NodeRef) NodeRef {
	return b.alloc(&BinaryExpression{Meta: b.meta(), Operator: op, Left: left, Right: right})
}

func (b *Builder) Unary(op token.Token, operand NodeRef) NodeRef {
	return b.alloc(&UnaryExpression{Meta: b.meta(), Operator: op, Operand: operand})
}

func (b *Builder) Update(op token.Token, operand NodeRef, postfix bool) NodeRef {
	return b.alloc(&UpdateExpression{Meta: b.meta(), Operator: op, Operand: operand, Postfix: postfix})
}

func (b *Builder) Cond(test, cons, alt NodeRef) NodeRef {
	return b.alloc(&ConditionalExpression{Meta: b.meta(), Test: test, Consequent: cons, Alternate: alt})
}

func (b *Builder) Seq(exprs ...NodeRef) NodeRef {
	return b.alloc(&SequenceExpression{Meta: b.meta(), Sequence: b.lock.NewList(exprs...)})
}

func (b *Builder) Str(s string) NodeRef {
	return b.alloc(&StringLiteral{Meta: b.meta(), Value: s})
}

func (b *Builder) Num(v float64) NodeRef {
	return b.alloc(&NumberLiteral{Meta: b.meta(), Value: v})
}

func (b *Builder) Bool(v bool) NodeRef {
	return b.alloc(&BooleanLiteral{Meta: b.meta(), Value: v})
}

func (b *Builder) Null() NodeRef { return b.alloc(&NullLiteral{Meta: b.meta()}) }

func (b *Builder) This() NodeRef { return b.alloc(&ThisExpression{Meta: b.meta()}) }

func (b *Builder) Array(elems ...NodeRef) NodeRef {
	return b.alloc(&ArrayLiteral{Meta: b.meta(), Value: b.lock.NewList(elems...)})
}

func (b *Builder) Object(props ...NodeRef) NodeRef {
	return b.alloc(&ObjectLiteral{Meta: b.meta(), Value: b.lock.NewList(props...)})
}

// Prop builds a non-computed `key: value` property.
func (b *Builder) Prop(key string, value NodeRef) NodeRef {
	return b.alloc(&PropertyKeyed{Meta: b.meta(), Key: b.Ident(key), PropKind: PropertyKindValue, Value: value})
}

// Short builds a shorthand property `{name}`.
func (b *Builder) Short(name string) NodeRef {
	return b.alloc(&PropertyShort{Meta: b.meta(), Name: b.Ident(name)})
}

func (b *Builder) Spread(e NodeRef) NodeRef {
	return b.alloc(&SpreadElement{Meta: b.meta(), Expression: e})
}

func (b *Builder) ArrayPat(elems ...NodeRef) NodeRef {
	return b.alloc(&ArrayPattern{Meta: b.meta(), Elements: b.lock.NewList(elems...)})
}

func (b *Builder) ObjectPat(props ...NodeRef) NodeRef {
	return b.alloc(&ObjectPattern{Meta: b.meta(), Properties: b.lock.NewList(props...)})
}

func (b *Builder) AssignPat(target, def NodeRef) NodeRef {
	return b.alloc(&AssignPattern{Meta: b.meta(), Target: target, Default: def})
}

// NewTarget builds `new.target`.
func (b *Builder) NewTarget() NodeRef {
	return b.alloc(&MetaProperty{Meta: b.meta(), Object: b.Ident("new"), Property: b.Ident("target")})
}

func (b *Builder) Yield(arg NodeRef) NodeRef {
	return b.alloc(&YieldExpression{Meta: b.meta(), Argument: arg})
}

func (b *Builder) Await(arg NodeRef) NodeRef {
	return b.alloc(&AwaitExpression{Meta: b.meta(), Argument: arg})
}

// Import builds `import ... from "source"` from specifiers made by ImportSpec.
func (b *Builder) Import(src string, specs ...NodeRef) NodeRef {
	return b.alloc(&ImportDeclaration{Meta: b.meta(), Specifiers: b.lock.NewList(specs...), Source: b.Str(src)})
}

func (b *Builder) ImportSpec(kind ImportKind, imported, local string) NodeRef {
	var imp NodeRef
	if kind == ImportNamed {
		imp = b.Ident(imported)
	}
	return b.alloc(&ImportSpecifier{Meta: b.meta(), ImportKind: kind, Imported: imp, Local: b.Ident(local)})
}

// ExportNamed builds `export <decl>` or `export {a as b} [from "src"]`.
func (b *Builder) ExportNamed(decl NodeRef, src string, specs ...NodeRef) NodeRef {
	var from NodeRef
	if src != "" {
		from = b.Str(src)
	}
	return b.alloc(&ExportNamedDeclaration{Meta: b.meta(), Declaration: decl, Specifiers: b.lock.NewList(specs...), Source: from})
}

func (b *Builder) ExportSpec(local, exported string) NodeRef {
	return b.alloc(&ExportSpecifier{Meta: b.meta(), Local: b.Ident(local), Exported: b.Ident(exported)})
}

func (b *Builder) ExportDefault(decl NodeRef) NodeRef {
	return b.alloc(&ExportDefaultDeclaration{Meta: b.meta(), Declaration: decl})
}
