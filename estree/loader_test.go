package estree_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/estree"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/token"
)

func load(t *testing.T, src string) (*ast.GCLock, estree.Program) {
	t.Helper()
	ctx := ast.NewContext(ast.Options{})
	lock := ctx.Lock()
	prog, err := estree.Load(lock, 0, []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return lock, prog
}

// function f(a, b = 1, ...rest) { "use strict"; return a + b; }
const functionJSON = `{
  "type": "Program", "start": 0, "end": 60, "sourceType": "script",
  "body": [{
    "type": "FunctionDeclaration", "start": 0, "end": 60,
    "id": {"type": "Identifier", "start": 9, "end": 10, "name": "f"},
    "async": false, "generator": false,
    "params": [
      {"type": "Identifier", "start": 11, "end": 12, "name": "a"},
      {"type": "AssignmentPattern", "start": 14, "end": 19,
       "left": {"type": "Identifier", "start": 14, "end": 15, "name": "b"},
       "right": {"type": "Literal", "start": 18, "end": 19, "value": 1, "raw": "1"}},
      {"type": "RestElement", "start": 21, "end": 28,
       "argument": {"type": "Identifier", "start": 24, "end": 28, "name": "rest"}}
    ],
    "body": {"type": "BlockStatement", "start": 30, "end": 60, "body": [
      {"type": "ExpressionStatement", "start": 32, "end": 45, "directive": "use strict",
       "expression": {"type": "Literal", "start": 32, "end": 44, "value": "use strict", "raw": "'use strict'"}},
      {"type": "ReturnStatement", "start": 46, "end": 58,
       "argument": {"type": "BinaryExpression", "start": 53, "end": 58, "operator": "+",
         "left": {"type": "Identifier", "start": 53, "end": 54, "name": "a"},
         "right": {"type": "Identifier", "start": 57, "end": 58, "name": "b"}}}
    ]}
  }]
}`

func TestLoadFunction(t *testing.T) {
	lock, prog := load(t, functionJSON)
	if prog.Module {
		t.Error("script loaded as module")
	}
	p := ast.Get[*ast.Program](lock, prog.Node)
	stmts := lock.Slice(p.Body)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	fd := ast.Get[*ast.FunctionDeclaration](lock, stmts[0])
	fn := ast.Get[*ast.FunctionLiteral](lock, fd.Function)

	if got := lock.Name(fn.Name); got != "f" {
		t.Errorf("got name %q, want f", got)
	}
	params := lock.Slice(fn.Params)
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	def := ast.Get[*ast.VariableDeclarator](lock, params[1])
	if lock.Name(def.Target) != "b" || lock.Kind(def.Initializer) != ast.KindNumberLiteral {
		t.Errorf("default parameter not held in a declarator")
	}
	if got := lock.Name(fn.Rest); got != "rest" {
		t.Errorf("got rest %q, want rest", got)
	}

	body := lock.Slice(ast.Get[*ast.BlockStatement](lock, fn.Body).List)
	if d := ast.Get[*ast.ExpressionStatement](lock, body[0]).Directive; d != "use strict" {
		t.Errorf("got directive %q, want use strict", d)
	}
	ret := ast.Get[*ast.ReturnStatement](lock, body[1])
	if op := ast.Get[*ast.BinaryExpression](lock, ret.Argument).Operator; op != token.Plus {
		t.Errorf("got operator %v, want +", op)
	}
	if span := lock.Node(fn.Name).Range(); span.Start != 9 || span.End != 10 {
		t.Errorf("got span %v, want 9..10", span)
	}
}

func TestLoadedProgramResolves(t *testing.T) {
	lock, prog := load(t, functionJSON)
	resolver.Resolve(lock, prog.Node, resolver.Options{})
	if diags := lock.SourceManager().Diagnostics(); len(diags) != 1 {
		t.Fatalf("got %v, want the use strict error", diags)
	}
}

func TestLoadModule(t *testing.T) {
	// import d, {x as y} from "./a"; export {y};
	src := `{
	  "type": "Program", "range": [0, 45], "sourceType": "module",
	  "body": [
	    {"type": "ImportDeclaration", "range": [0, 31],
	     "specifiers": [
	       {"type": "ImportDefaultSpecifier", "range": [7, 8], "local": {"type": "Identifier", "range": [7, 8], "name": "d"}},
	       {"type": "ImportSpecifier", "range": [11, 17],
	        "imported": {"type": "Identifier", "range": [11, 12], "name": "x"},
	        "local": {"type": "Identifier", "range": [16, 17], "name": "y"}}
	     ],
	     "source": {"type": "Literal", "range": [25, 30], "value": "./a", "raw": "\"./a\""}},
	    {"type": "ExportNamedDeclaration", "range": [32, 45], "declaration": null, "source": null,
	     "specifiers": [{"type": "ExportSpecifier", "range": [40, 41],
	       "local": {"type": "Identifier", "range": [40, 41], "name": "y"},
	       "exported": {"type": "Identifier", "range": [40, 41], "name": "y"}}]}
	  ]
	}`
	lock, prog := load(t, src)
	if !prog.Module {
		t.Fatal("module loaded as script")
	}
	stmts := lock.Slice(ast.Get[*ast.Program](lock, prog.Node).Body)
	imp := ast.Get[*ast.ImportDeclaration](lock, stmts[0])
	specs := lock.Slice(imp.Specifiers)
	if len(specs) != 2 {
		t.Fatalf("got %d specifiers, want 2", len(specs))
	}
	if k := ast.Get[*ast.ImportSpecifier](lock, specs[0]).ImportKind; k != ast.ImportDefault {
		t.Errorf("got kind %v, want default", k)
	}
	if s := lock.Node(imp.Source).Range(); s.Start != 25 {
		t.Errorf("got source span %v, want a range-based span", s)
	}

	sem := resolver.ResolveModule(lock, prog.Node, resolver.Options{Dependencies: resolver.MapDependencies{"./a": 1}})
	if got := len(sem.Requires()); got != 1 {
		t.Errorf("got %d requires, want 1", got)
	}
	if n := len(lock.SourceManager().Diagnostics()); n != 0 {
		t.Errorf("got %v, want no diagnostics", lock.SourceManager().Diagnostics())
	}
}

func TestLoadPatternsAndLiterals(t *testing.T) {
	// ({a = 1, ...o} = v); [, b, ...c] = w; /re/g; null; `x${y}`;
	src := `{
	  "type": "Program", "start": 0, "end": 50, "body": [
	    {"type": "ExpressionStatement", "start": 0, "end": 1, "expression":
	      {"type": "AssignmentExpression", "start": 0, "end": 1, "operator": "=",
	       "left": {"type": "ObjectPattern", "start": 0, "end": 1, "properties": [
	         {"type": "Property", "start": 0, "end": 1, "shorthand": true, "computed": false, "kind": "init", "method": false,
	          "key": {"type": "Identifier", "start": 0, "end": 1, "name": "a"},
	          "value": {"type": "AssignmentPattern", "start": 0, "end": 1,
	            "left": {"type": "Identifier", "start": 0, "end": 1, "name": "a"},
	            "right": {"type": "Literal", "start": 0, "end": 1, "value": 1, "raw": "1"}}},
	         {"type": "RestElement", "start": 0, "end": 1, "argument": {"type": "Identifier", "start": 0, "end": 1, "name": "o"}}
	       ]},
	       "right": {"type": "Identifier", "start": 0, "end": 1, "name": "v"}}},
	    {"type": "ExpressionStatement", "start": 2, "end": 3, "expression":
	      {"type": "AssignmentExpression", "start": 2, "end": 3, "operator": "=",
	       "left": {"type": "ArrayPattern", "start": 2, "end": 3, "elements": [
	         null,
	         {"type": "Identifier", "start": 2, "end": 3, "name": "b"},
	         {"type": "RestElement", "start": 2, "end": 3, "argument": {"type": "Identifier", "start": 2, "end": 3, "name": "c"}}
	       ]},
	       "right": {"type": "Identifier", "start": 2, "end": 3, "name": "w"}}},
	    {"type": "ExpressionStatement", "start": 4, "end": 5, "expression":
	      {"type": "Literal", "start": 4, "end": 5, "value": {}, "raw": "/re/g", "regex": {"pattern": "re", "flags": "g"}}},
	    {"type": "ExpressionStatement", "start": 6, "end": 7, "expression":
	      {"type": "Literal", "start": 6, "end": 7, "value": null, "raw": "null"}},
	    {"type": "ExpressionStatement", "start": 8, "end": 9, "expression":
	      {"type": "TemplateLiteral", "start": 8, "end": 9,
	       "quasis": [
	         {"type": "TemplateElement", "start": 8, "end": 9, "value": {"raw": "x", "cooked": "x"}, "tail": false},
	         {"type": "TemplateElement", "start": 8, "end": 9, "value": {"raw": "", "cooked": ""}, "tail": true}],
	       "expressions": [{"type": "Identifier", "start": 8, "end": 9, "name": "y"}]}}
	  ]
	}`
	lock, prog := load(t, src)
	stmts := lock.Slice(ast.Get[*ast.Program](lock, prog.Node).Body)
	expr := func(i int) ast.NodeRef {
		return ast.Get[*ast.ExpressionStatement](lock, stmts[i]).Expression
	}

	obj := ast.Get[*ast.ObjectPattern](lock, ast.Get[*ast.AssignExpression](lock, expr(0)).Left)
	short := ast.Get[*ast.PropertyShort](lock, lock.Slice(obj.Properties)[0])
	if lock.Name(short.Name) != "a" || short.Initializer.IsZero() {
		t.Error("shorthand default lost")
	}
	if lock.Name(obj.Rest) != "o" {
		t.Error("object rest lost")
	}

	arr := ast.Get[*ast.ArrayPattern](lock, ast.Get[*ast.AssignExpression](lock, expr(1)).Left)
	elems := lock.Slice(arr.Elements)
	if len(elems) != 2 || !elems[0].IsZero() || lock.Name(elems[1]) != "b" || lock.Name(arr.Rest) != "c" {
		t.Errorf("got elements %v and rest %v, want a hole, b and rest c", elems, arr.Rest)
	}

	if re := ast.Get[*ast.RegExpLiteral](lock, expr(2)); re.Pattern != "re" || re.Flags != "g" {
		t.Errorf("got regexp %+v", re)
	}
	if k := lock.Kind(expr(3)); k != ast.KindNullLiteral {
		t.Errorf("got %v, want null literal", k)
	}
	if tpl := ast.Get[*ast.TemplateLiteral](lock, expr(4)); len(tpl.Elements) != 2 || lock.Len(tpl.Expressions) != 1 {
		t.Errorf("got template %+v", tpl)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		msg  string
	}{
		{"not json", `{`, estree.ErrMalformed, ""},
		{"not a program", `{"type": "Identifier", "name": "x"}`, estree.ErrMalformed, "want Program"},
		{"unknown node", `{"type": "Program", "body": [{"type": "JSXElement", "start": 3, "end": 4}]}`,
			estree.ErrUnsupportedNode, "JSXElement at offset 3"},
		{"using declaration", `{"type": "Program", "body": [{"type": "VariableDeclaration", "kind": "using", "declarations": []}]}`,
			estree.ErrUnsupportedNode, `"using" declaration`},
		{"missing label", `{"type": "Program", "body": [{"type": "LabeledStatement", "body": {"type": "EmptyStatement"}}]}`,
			estree.ErrMalformed, `LabeledStatement has no "label"`},
		{"label is not an identifier", `{"type": "Program", "body": [{"type": "WhileStatement", "test": {"type": "Literal", "value": true, "raw": "true"},
			"body": {"type": "BreakStatement", "label": {"type": "Literal", "value": "l", "raw": "'l'"}}}]}`,
			estree.ErrMalformed, `field "label" of BreakStatement is StringLiteral, want Identifier`},
		{"case is not a SwitchCase", `{"type": "Program", "body": [{"type": "SwitchStatement", "discriminant": {"type": "Identifier", "name": "x"},
			"cases": [{"type": "EmptyStatement"}]}]}`,
			estree.ErrMalformed, `element 0 of "cases" of SwitchStatement is EmptyStatement, want CaseStatement`},
		{"null case", `{"type": "Program", "body": [{"type": "SwitchStatement", "discriminant": {"type": "Identifier", "name": "x"}, "cases": [null]}]}`,
			estree.ErrMalformed, `element 0 of "cases" of SwitchStatement is null`},
		{"declaration is not a VariableDeclarator", `{"type": "Program", "body": [{"type": "VariableDeclaration", "kind": "let",
			"declarations": [{"type": "Identifier", "name": "x"}]}]}`,
			estree.ErrMalformed, `element 0 of "declarations" of VariableDeclaration is Identifier, want VariableDeclarator`},
		{"declarator without id", `{"type": "Program", "body": [{"type": "VariableDeclaration", "kind": "var",
			"declarations": [{"type": "VariableDeclarator", "init": null}]}]}`,
			estree.ErrMalformed, `VariableDeclarator has no "id"`},
		{"import of a non-specifier", `{"type": "Program", "sourceType": "module", "body": [{"type": "ImportDeclaration",
			"specifiers": [{"type": "Identifier", "name": "x"}], "source": {"type": "Literal", "value": "./a", "raw": "'./a'"}}]}`,
			estree.ErrMalformed, `element 0 of "specifiers" of ImportDeclaration is Identifier, want ImportSpecifier`},
		{"import without source", `{"type": "Program", "sourceType": "module", "body": [{"type": "ImportDeclaration", "specifiers": []}]}`,
			estree.ErrMalformed, `ImportDeclaration has no "source"`},
		{"function id is a literal", `{"type": "Program", "body": [{"type": "FunctionDeclaration", "id": {"type": "Literal", "value": 1, "raw": "1"},
			"params": [], "body": {"type": "BlockStatement", "body": []}}]}`,
			estree.ErrMalformed, `field "id" of FunctionDeclaration is NumberLiteral, want Identifier`},
		{"parameter is not a pattern", `{"type": "Program", "body": [{"type": "FunctionDeclaration", "id": null,
			"params": [{"type": "ThisExpression"}], "body": {"type": "BlockStatement", "body": []}}]}`,
			estree.ErrMalformed, `parameter 0 of FunctionDeclaration is ThisExpression, want Identifier or ArrayPattern or ObjectPattern`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ast.NewContext(ast.Options{})
			lock := ctx.Lock()
			defer lock.Release()
			_, err := estree.Load(lock, 0, []byte(tt.src))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("got %q, want substring %q", err, tt.msg)
			}
		})
	}
}

func TestLoadJoinsErrors(t *testing.T) {
	ctx := ast.NewContext(ast.Options{})
	lock := ctx.Lock()
	defer lock.Release()
	src := `{"type": "Program", "body": [{"type": "Foo"}, {"type": "Bar"}]}`
	_, err := estree.Load(lock, 0, []byte(src))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"Foo", "Bar"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadedNodesAndCollection(t *testing.T) {
	ctx := ast.NewContext(ast.Options{})
	defer ctx.Close()

	var root *ast.NodeRc
	ctx.With(func(lock *ast.GCLock) {
		prog, err := estree.Load(lock, 0, []byte(functionJSON))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		root = ast.NewNodeRc(lock, prog.Node)
	})
	if stats := ctx.Collect(); stats.FreedNodes != 0 || stats.FreedLinks != 0 {
		t.Errorf("got %+v, want every loaded node reachable from the program", stats)
	}
	root.Release()

	ctx.With(func(lock *ast.GCLock) {
		if _, err := estree.Load(lock, 0, []byte(missingLabelJSON)); err == nil {
			t.Fatal("expected an error")
		}
	})
	ctx.Collect()
	if live := ctx.Stats().LiveNodes; live != 0 {
		t.Errorf("got %d live nodes after collecting a rejected program, want 0", live)
	}
}

const missingLabelJSON = `{"type": "Program", "body": [{"type": "LabeledStatement", "body": {"type": "EmptyStatement"}}]}`
