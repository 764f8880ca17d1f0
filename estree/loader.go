// Package estree loads ESTree JSON, as printed by acorn, espree or
// meriyah, into an ast arena.
package estree

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/source"
	"github.com/t14raptor/fastscope/token"
)

var (
	// ErrUnsupportedNode is returned for node types the arena cannot hold.
	ErrUnsupportedNode = errors.New("unsupported ESTree node")
	// ErrMalformed is returned for input that is not an ESTree program.
	ErrMalformed = errors.New("malformed ESTree input")
)

// Program is a loaded ESTree program.
type Program struct {
	Node ast.NodeRef
	// Module is set for sourceType "module".
	Module bool
}

type loader struct {
	lock *ast.GCLock
	file source.FileID

	errors error
}

// Load decodes data and allocates its nodes in the arena of lock. Spans
// point into file. Every unsupported or malformed node is reported; the
// returned error joins them all.
func Load(lock *ast.GCLock, file source.FileID, data []byte) (Program, error) {
	root, err := decodeObject(data)
	if err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if typ := root.typ(); typ != "Program" {
		return Program{}, fmt.Errorf("%w: root node is %q, want Program", ErrMalformed, typ)
	}

	l := &loader{lock: lock, file: file}
	prog := l.alloc(&ast.Program{Meta: l.meta(root), Body: l.list(root, "body")})
	if l.errors != nil {
		return Program{}, l.errors
	}
	return Program{Node: prog, Module: root.str("sourceType") == "module"}, nil
}

func (l *loader) errorf(o object, kind error, format string, args ...any) {
	start, _ := o.span()
	err := fmt.Errorf("%w: %s at offset %d", kind, fmt.Sprintf(format, args...), start)
	l.errors = errors.Join(l.errors, err)
}

func (l *loader) meta(o object) ast.Meta {
	start, end := o.span()
	return ast.Meta{Span: source.Span{File: l.file, Start: start, End: end}}
}

func (l *loader) alloc(n ast.Node) ast.NodeRef {
	return l.lock.Alloc(n)
}

// child converts the node stored under key; a missing or null field
// yields the zero ref.
func (l *loader) child(o object, key string) ast.NodeRef {
	raw := o[key]
	if isNull(raw) {
		return ast.NodeRef{}
	}
	c, err := decodeObject(raw)
	if err != nil {
		l.errorf(o, ErrMalformed, "field %q of %s: %v", key, o.typ(), err)
		return ast.NodeRef{}
	}
	return l.node(c)
}

// objects decodes the array under key. Holes are nil.
func (l *loader) objects(o object, key string) []object {
	items, err := decodeArray(o[key])
	if err != nil {
		l.errorf(o, ErrMalformed, "field %q of %s: %v", key, o.typ(), err)
		return nil
	}
	out := make([]object, len(items))
	for i, raw := range items {
		if isNull(raw) {
			continue
		}
		c, err := decodeObject(raw)
		if err != nil {
			l.errorf(o, ErrMalformed, "element %d of %q: %v", i, key, err)
			continue
		}
		out[i] = c
	}
	return out
}

func (l *loader) nodes(objs []object) []ast.NodeRef {
	out := make([]ast.NodeRef, len(objs))
	for i, c := range objs {
		if c != nil {
			out[i] = l.node(c)
		}
	}
	return out
}

func (l *loader) list(o object, key string) ast.NodeList {
	return l.lock.NewList(l.nodes(l.objects(o, key))...)
}

// kinds lists the node kinds a field may hold. An empty set allows any.
type kinds []ast.Kind

var (
	identKind       = kinds{ast.KindIdentifier}
	stringKind      = kinds{ast.KindStringLiteral}
	moduleNameKinds = kinds{ast.KindIdentifier, ast.KindStringLiteral}
	patternKinds    = kinds{ast.KindIdentifier, ast.KindArrayPattern, ast.KindObjectPattern}
	caseKind        = kinds{ast.KindCaseStatement}
	catchKind       = kinds{ast.KindCatchStatement}
	declaratorKind  = kinds{ast.KindVariableDeclarator}
	importKind      = kinds{ast.KindImportSpecifier}
	exportKind      = kinds{ast.KindExportSpecifier}
)

func (k kinds) allows(kind ast.Kind) bool {
	return len(k) == 0 || slices.Contains(k, kind)
}

func (k kinds) String() string {
	names := make([]string, len(k))
	for i, kind := range k {
		names[i] = kind.String()
	}
	return strings.Join(names, " or ")
}

// field converts the node under key and checks its kind. A missing field
// is reported only when required.
func (l *loader) field(o object, key string, required bool, want kinds) ast.NodeRef {
	if !o.has(key) {
		if required {
			l.errorf(o, ErrMalformed, "%s has no %q", o.typ(), key)
		}
		return ast.NodeRef{}
	}
	r := l.child(o, key)
	l.check(o, fmt.Sprintf("field %q", key), r, want)
	return r
}

// check reports r when it is not one of want. A zero r was reported when
// its conversion failed.
func (l *loader) check(o object, what string, r ast.NodeRef, want kinds) bool {
	if r.IsZero() {
		return false
	}
	if kind := l.lock.Kind(r); !want.allows(kind) {
		l.errorf(o, ErrMalformed, "%s of %s is %s, want %s", what, o.typ(), kind, want)
		return false
	}
	return true
}

// listOf converts the array under key. Every element must be present and
// one of want.
func (l *loader) listOf(o object, key string, want kinds) ast.NodeList {
	items, err := decodeArray(o[key])
	if err != nil {
		l.errorf(o, ErrMalformed, "field %q of %s: %v", key, o.typ(), err)
		return ast.NodeList{}
	}
	refs := make([]ast.NodeRef, 0, len(items))
	for i, raw := range items {
		what := fmt.Sprintf("element %d of %q", i, key)
		if isNull(raw) {
			l.errorf(o, ErrMalformed, "%s of %s is null", what, o.typ())
			continue
		}
		c, err := decodeObject(raw)
		if err != nil {
			l.errorf(o, ErrMalformed, "%s: %v", what, err)
			continue
		}
		if r := l.node(c); l.check(o, what, r, want) {
			refs = append(refs, r)
		}
	}
	return l.lock.NewList(refs...)
}

func (l *loader) operator(o object) token.Token {
	op := o.str("operator")
	tok, ok := token.Lookup(op)
	if !ok {
		l.errorf(o, ErrUnsupportedNode, "operator %q", op)
	}
	return tok
}

func (l *loader) node(o object) ast.NodeRef {
	m := l.meta(o)
	switch typ := o.typ(); typ {
	// statements
	case "ExpressionStatement":
		return l.alloc(&ast.ExpressionStatement{Meta: m, Expression: l.child(o, "expression"), Directive: o.str("directive")})
	case "BlockStatement":
		return l.alloc(&ast.BlockStatement{Meta: m, List: l.list(o, "body")})
	case "EmptyStatement":
		return l.alloc(&ast.EmptyStatement{Meta: m})
	case "DebuggerStatement":
		return l.alloc(&ast.DebuggerStatement{Meta: m})
	case "IfStatement":
		return l.alloc(&ast.IfStatement{Meta: m, Test: l.child(o, "test"), Consequent: l.child(o, "consequent"), Alternate: l.child(o, "alternate")})
	case "LabeledStatement":
		return l.alloc(&ast.LabelledStatement{Meta: m, Label: l.field(o, "label", true, identKind), Statement: l.child(o, "body")})
	case "BreakStatement":
		return l.alloc(&ast.BreakStatement{Meta: m, Label: l.field(o, "label", false, identKind)})
	case "ContinueStatement":
		return l.alloc(&ast.ContinueStatement{Meta: m, Label: l.field(o, "label", false, identKind)})
	case "WithStatement":
		return l.alloc(&ast.WithStatement{Meta: m, Object: l.child(o, "object"), Body: l.child(o, "body")})
	case "SwitchStatement":
		return l.alloc(&ast.SwitchStatement{Meta: m, Discriminant: l.child(o, "discriminant"), Body: l.listOf(o, "cases", caseKind)})
	case "SwitchCase":
		return l.alloc(&ast.CaseStatement{Meta: m, Test: l.child(o, "test"), Consequent: l.list(o, "consequent")})
	case "ReturnStatement":
		return l.alloc(&ast.ReturnStatement{Meta: m, Argument: l.child(o, "argument")})
	case "ThrowStatement":
		return l.alloc(&ast.ThrowStatement{Meta: m, Argument: l.child(o, "argument")})
	case "TryStatement":
		return l.alloc(&ast.TryStatement{Meta: m, Body: l.child(o, "block"), Catch: l.field(o, "handler", false, catchKind), Finally: l.child(o, "finalizer")})
	case "CatchClause":
		return l.alloc(&ast.CatchStatement{Meta: m, Parameter: l.field(o, "param", false, patternKinds), Body: l.child(o, "body")})
	case "WhileStatement":
		return l.alloc(&ast.WhileStatement{Meta: m, Test: l.child(o, "test"), Body: l.child(o, "body")})
	case "DoWhileStatement":
		return l.alloc(&ast.DoWhileStatement{Meta: m, Body: l.child(o, "body"), Test: l.child(o, "test")})
	case "ForStatement":
		return l.alloc(&ast.ForStatement{Meta: m, Initializer: l.child(o, "init"), Test: l.child(o, "test"), Update: l.child(o, "update"), Body: l.child(o, "body")})
	case "ForInStatement":
		return l.alloc(&ast.ForInStatement{Meta: m, Left: l.child(o, "left"), Right: l.child(o, "right"), Body: l.child(o, "body")})
	case "ForOfStatement":
		return l.alloc(&ast.ForOfStatement{Meta: m, Left: l.child(o, "left"), Right: l.child(o, "right"), Body: l.child(o, "body"), Await: o.boolean("await")})
	case "VariableDeclaration":
		return l.variableDeclaration(o, m)
	case "VariableDeclarator":
		return l.alloc(&ast.VariableDeclarator{Meta: m, Target: l.field(o, "id", true, patternKinds), Initializer: l.child(o, "init")})
	case "FunctionDeclaration":
		return l.alloc(&ast.FunctionDeclaration{Meta: m, Function: l.function(o, m)})
	case "ClassDeclaration":
		return l.alloc(&ast.ClassDeclaration{Meta: m, Class: l.class(o, m)})

	// modules
	case "ImportDeclaration":
		return l.alloc(&ast.ImportDeclaration{Meta: m, Specifiers: l.listOf(o, "specifiers", importKind), Source: l.field(o, "source", true, stringKind)})
	case "ImportSpecifier":
		return l.alloc(&ast.ImportSpecifier{Meta: m, ImportKind: ast.ImportNamed, Imported: l.field(o, "imported", true, moduleNameKinds), Local: l.field(o, "local", true, identKind)})
	case "ImportDefaultSpecifier":
		return l.alloc(&ast.ImportSpecifier{Meta: m, ImportKind: ast.ImportDefault, Local: l.field(o, "local", true, identKind)})
	case "ImportNamespaceSpecifier":
		return l.alloc(&ast.ImportSpecifier{Meta: m, ImportKind: ast.ImportNamespace, Local: l.field(o, "local", true, identKind)})
	case "ExportNamedDeclaration":
		return l.alloc(&ast.ExportNamedDeclaration{Meta: m, Declaration: l.child(o, "declaration"), Specifiers: l.listOf(o, "specifiers", exportKind), Source: l.field(o, "source", false, stringKind)})
	case "ExportSpecifier":
		return l.alloc(&ast.ExportSpecifier{Meta: m, Local: l.field(o, "local", true, moduleNameKinds), Exported: l.field(o, "exported", true, moduleNameKinds)})
	case "ExportDefaultDeclaration":
		return l.alloc(&ast.ExportDefaultDeclaration{Meta: m, Declaration: l.child(o, "declaration")})
	case "ExportAllDeclaration":
		return l.alloc(&ast.ExportAllDeclaration{Meta: m, Exported: l.field(o, "exported", false, moduleNameKinds), Source: l.field(o, "source", true, stringKind)})

	// expressions
	case "Identifier":
		return l.alloc(&ast.Identifier{Meta: m, Name: l.lock.Atom(o.str("name"))})
	case "PrivateIdentifier":
		return l.alloc(&ast.PrivateIdentifier{Meta: m, Name: l.lock.Atom(o.str("name"))})
	case "ThisExpression":
		return l.alloc(&ast.ThisExpression{Meta: m})
	case "Super":
		return l.alloc(&ast.SuperExpression{Meta: m})
	case "Literal":
		return l.literal(o, m)
	case "TemplateLiteral":
		return l.template(o, m, ast.NodeRef{})
	case "TaggedTemplateExpression":
		quasi, err := decodeObject(o["quasi"])
		if err != nil {
			l.errorf(o, ErrMalformed, "quasi: %v", err)
			return ast.NodeRef{}
		}
		return l.template(quasi, m, l.child(o, "tag"))
	case "ArrayExpression":
		return l.alloc(&ast.ArrayLiteral{Meta: m, Value: l.list(o, "elements")})
	case "ObjectExpression":
		return l.alloc(&ast.ObjectLiteral{Meta: m, Value: l.list(o, "properties")})
	case "Property":
		return l.property(o, m)
	case "SpreadElement":
		return l.alloc(&ast.SpreadElement{Meta: m, Expression: l.child(o, "argument")})
	case "FunctionExpression":
		return l.function(o, m)
	case "ArrowFunctionExpression":
		params, rest := l.params(o)
		return l.alloc(&ast.ArrowFunctionLiteral{Meta: m, Params: params, Rest: rest, Body: l.child(o, "body"), Async: o.boolean("async")})
	case "ClassExpression":
		return l.class(o, m)
	case "MethodDefinition":
		return l.method(o, m)
	case "PropertyDefinition":
		return l.alloc(&ast.FieldDefinition{Meta: m, Key: l.child(o, "key"), Initializer: l.child(o, "value"), Computed: o.boolean("computed"), Static: o.boolean("static")})
	case "StaticBlock":
		block := l.alloc(&ast.BlockStatement{Meta: m, List: l.list(o, "body")})
		return l.alloc(&ast.ClassStaticBlock{Meta: m, Block: block})
	case "UnaryExpression":
		return l.alloc(&ast.UnaryExpression{Meta: m, Operator: l.operator(o), Operand: l.child(o, "argument")})
	case "UpdateExpression":
		return l.alloc(&ast.UpdateExpression{Meta: m, Operator: l.operator(o), Operand: l.child(o, "argument"), Postfix: !o.boolean("prefix")})
	case "BinaryExpression", "LogicalExpression":
		return l.alloc(&ast.BinaryExpression{Meta: m, Operator: l.operator(o), Left: l.child(o, "left"), Right: l.child(o, "right")})
	case "AssignmentExpression":
		op := l.operator(o)
		if op != 0 && !op.IsAssign() {
			l.errorf(o, ErrMalformed, "operator %q is not an assignment", op)
		}
		return l.alloc(&ast.AssignExpression{Meta: m, Operator: op, Left: l.child(o, "left"), Right: l.child(o, "right")})
	case "ConditionalExpression":
		return l.alloc(&ast.ConditionalExpression{Meta: m, Test: l.child(o, "test"), Consequent: l.child(o, "consequent"), Alternate: l.child(o, "alternate")})
	case "SequenceExpression":
		return l.alloc(&ast.SequenceExpression{Meta: m, Sequence: l.list(o, "expressions")})
	case "CallExpression":
		return l.alloc(&ast.CallExpression{Meta: m, Callee: l.child(o, "callee"), ArgumentList: l.list(o, "arguments"), Optional: o.boolean("optional")})
	case "NewExpression":
		return l.alloc(&ast.NewExpression{Meta: m, Callee: l.child(o, "callee"), ArgumentList: l.list(o, "arguments")})
	case "MemberExpression":
		return l.alloc(&ast.MemberExpression{Meta: m, Object: l.child(o, "object"), Property: l.child(o, "property"), Computed: o.boolean("computed"), Optional: o.boolean("optional")})
	case "ChainExpression", "ParenthesizedExpression":
		return l.field(o, "expression", true, nil)
	case "MetaProperty":
		return l.alloc(&ast.MetaProperty{Meta: m, Object: l.child(o, "meta"), Property: l.child(o, "property")})
	case "YieldExpression":
		return l.alloc(&ast.YieldExpression{Meta: m, Argument: l.child(o, "argument"), Delegate: o.boolean("delegate")})
	case "AwaitExpression":
		return l.alloc(&ast.AwaitExpression{Meta: m, Argument: l.child(o, "argument")})

	// patterns
	case "ArrayPattern":
		elems, rest := l.withRest(o, "elements")
		return l.alloc(&ast.ArrayPattern{Meta: m, Elements: elems, Rest: rest})
	case "ObjectPattern":
		props, rest := l.withRest(o, "properties")
		return l.alloc(&ast.ObjectPattern{Meta: m, Properties: props, Rest: rest})
	case "AssignmentPattern":
		return l.alloc(&ast.AssignPattern{Meta: m, Target: l.child(o, "left"), Default: l.child(o, "right")})
	case "RestElement":
		l.errorf(o, ErrMalformed, "RestElement outside a pattern or parameter list")
		return ast.NodeRef{}

	default:
		l.errorf(o, ErrUnsupportedNode, "%s", typ)
		return ast.NodeRef{}
	}
}

func (l *loader) variableDeclaration(o object, m ast.Meta) ast.NodeRef {
	var tok token.Token
	switch kind := o.str("kind"); kind {
	case "var":
		tok = token.Var
	case "let":
		tok = token.Let
	case "const":
		tok = token.Const
	default:
		l.errorf(o, ErrUnsupportedNode, "%q declaration", kind)
		return ast.NodeRef{}
	}
	return l.alloc(&ast.VariableDeclaration{Meta: m, Token: tok, List: l.listOf(o, "declarations", declaratorKind)})
}

// params converts a parameter list. Each parameter is held by a
// VariableDeclarator so that defaults live in its Initializer; a trailing
// RestElement becomes the rest parameter.
func (l *loader) params(o object) (ast.NodeList, ast.NodeRef) {
	var (
		out  []ast.NodeRef
		rest ast.NodeRef
	)
	objs := l.objects(o, "params")
	for i, p := range objs {
		if p == nil {
			continue
		}
		m := l.meta(p)
		switch p.typ() {
		case "RestElement":
			if i != len(objs)-1 {
				l.errorf(p, ErrMalformed, "rest parameter is not last")
			}
			rest = l.field(p, "argument", true, patternKinds)
		case "AssignmentPattern":
			out = append(out, l.alloc(&ast.VariableDeclarator{Meta: m, Target: l.field(p, "left", true, patternKinds), Initializer: l.child(p, "right")}))
		default:
			target := l.node(p)
			l.check(o, fmt.Sprintf("parameter %d", i), target, patternKinds)
			out = append(out, l.alloc(&ast.VariableDeclarator{Meta: m, Target: target}))
		}
	}
	return l.lock.NewList(out...), rest
}

// withRest converts the elements of a pattern, splitting off a trailing
// RestElement.
func (l *loader) withRest(o object, key string) (ast.NodeList, ast.NodeRef) {
	objs := l.objects(o, key)
	var rest ast.NodeRef
	if n := len(objs); n > 0 && objs[n-1] != nil && objs[n-1].typ() == "RestElement" {
		rest = l.child(objs[n-1], "argument")
		objs = objs[:n-1]
	}
	return l.lock.NewList(l.nodes(objs)...), rest
}

func (l *loader) function(o object, m ast.Meta) ast.NodeRef {
	params, rest := l.params(o)
	return l.alloc(&ast.FunctionLiteral{
		Meta:      m,
		Name:      l.field(o, "id", false, identKind),
		Params:    params,
		Rest:      rest,
		Body:      l.child(o, "body"),
		Async:     o.boolean("async"),
		Generator: o.boolean("generator"),
	})
}

func (l *loader) class(o object, m ast.Meta) ast.NodeRef {
	var members ast.NodeList
	if o.has("body") {
		body, err := decodeObject(o["body"])
		if err != nil {
			l.errorf(o, ErrMalformed, "class body: %v", err)
		} else {
			members = l.list(body, "body")
		}
	}
	return l.alloc(&ast.ClassLiteral{Meta: m, Name: l.field(o, "id", false, identKind), SuperClass: l.child(o, "superClass"), Body: members})
}

func (l *loader) method(o object, m ast.Meta) ast.NodeRef {
	kind := ast.PropertyKindMethod
	switch o.str("kind") {
	case "get":
		kind = ast.PropertyKindGet
	case "set":
		kind = ast.PropertyKindSet
	}
	return l.alloc(&ast.MethodDefinition{
		Meta:     m,
		Key:      l.child(o, "key"),
		PropKind: kind,
		Body:     l.child(o, "value"),
		Computed: o.boolean("computed"),
		Static:   o.boolean("static"),
	})
}

func (l *loader) property(o object, m ast.Meta) ast.NodeRef {
	if o.boolean("shorthand") {
		value, err := decodeObject(o["value"])
		if err != nil {
			l.errorf(o, ErrMalformed, "shorthand value: %v", err)
			return ast.NodeRef{}
		}
		// `{a = 1} = obj` carries the default in an AssignmentPattern
		if value.typ() == "AssignmentPattern" {
			return l.alloc(&ast.PropertyShort{Meta: m, Name: l.child(value, "left"), Initializer: l.child(value, "right")})
		}
		return l.alloc(&ast.PropertyShort{Meta: m, Name: l.node(value)})
	}

	kind := ast.PropertyKindValue
	switch {
	case o.boolean("method"):
		kind = ast.PropertyKindMethod
	case o.str("kind") == "get":
		kind = ast.PropertyKindGet
	case o.str("kind") == "set":
		kind = ast.PropertyKindSet
	}
	return l.alloc(&ast.PropertyKeyed{
		Meta:     m,
		Key:      l.child(o, "key"),
		PropKind: kind,
		Value:    l.child(o, "value"),
		Computed: o.boolean("computed"),
	})
}

func (l *loader) literal(o object, m ast.Meta) ast.NodeRef {
	raw := o.str("raw")
	if o.has("regex") {
		var re struct {
			Pattern string `json:"pattern"`
			Flags   string `json:"flags"`
		}
		if err := json.Unmarshal(o["regex"], &re); err != nil {
			l.errorf(o, ErrMalformed, "regex: %v", err)
		}
		return l.alloc(&ast.RegExpLiteral{Meta: m, Pattern: re.Pattern, Flags: re.Flags})
	}
	if o.has("bigint") {
		return l.alloc(&ast.NumberLiteral{Meta: m, Raw: raw})
	}

	var value any
	if err := json.Unmarshal(o["value"], &value); err != nil && o.has("value") {
		l.errorf(o, ErrMalformed, "literal value: %v", err)
	}
	switch v := value.(type) {
	case nil:
		return l.alloc(&ast.NullLiteral{Meta: m})
	case bool:
		return l.alloc(&ast.BooleanLiteral{Meta: m, Value: v})
	case float64:
		return l.alloc(&ast.NumberLiteral{Meta: m, Value: v, Raw: raw})
	case string:
		return l.alloc(&ast.StringLiteral{Meta: m, Value: v})
	}
	l.errorf(o, ErrUnsupportedNode, "literal %s", raw)
	return ast.NodeRef{}
}

func (l *loader) template(o object, m ast.Meta, tag ast.NodeRef) ast.NodeRef {
	var elements []string
	for _, q := range l.objects(o, "quasis") {
		if q == nil {
			continue
		}
		var value struct {
			Cooked *string `json:"cooked"`
			Raw    string  `json:"raw"`
		}
		if err := json.Unmarshal(q["value"], &value); err != nil {
			l.errorf(q, ErrMalformed, "template element: %v", err)
		}
		if value.Cooked != nil {
			elements = append(elements, *value.Cooked)
		} else {
			elements = append(elements, value.Raw)
		}
	}
	return l.alloc(&ast.TemplateLiteral{Meta: m, Tag: tag, Elements: elements, Expressions: l.list(o, "expressions")})
}
