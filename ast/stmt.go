package ast

import "github.com/t14raptor/fastscope/token"

type (
	BlockStatement struct {
		Meta
		List NodeList
	}

	EmptyStatement struct {
		Meta
	}

	DebuggerStatement struct {
		Meta
	}

	ExpressionStatement struct {
		Meta
		Expression NodeRef
		// Directive holds the raw string of a directive prologue entry such as "use strict".
		Directive string
	}

	IfStatement struct {
		Meta
		Test       NodeRef
		Consequent NodeRef
		Alternate  NodeRef `optional:"true"`
	}

	LabelledStatement struct {
		Meta
		Label     NodeRef
		Statement NodeRef
	}

	BreakStatement struct {
		Meta
		Label NodeRef `optional:"true"`
	}

	ContinueStatement struct {
		Meta
		Label NodeRef `optional:"true"`
	}

	WithStatement struct {
		Meta
		Object NodeRef
		Body   NodeRef
	}

	SwitchStatement struct {
		Meta
		Discriminant NodeRef
		Body         NodeList
	}

	CaseStatement struct {
		Meta
		Test       NodeRef `optional:"true"`
		Consequent NodeList
	}

	ReturnStatement struct {
		Meta
		Argument NodeRef `optional:"true"`
	}

	ThrowStatement struct {
		Meta
		Argument NodeRef
	}

	TryStatement struct {
		Meta
		Body    NodeRef
		Catch   NodeRef `optional:"true"`
		Finally NodeRef `optional:"true"`
	}

	CatchStatement struct {
		Meta
		Parameter NodeRef `optional:"true"`
		Body      NodeRef
	}

	WhileStatement struct {
		Meta
		Test NodeRef
		Body NodeRef
	}

	DoWhileStatement struct {
		Meta
		Test NodeRef
		Body NodeRef
	}

	ForStatement struct {
		Meta
		Initializer NodeRef `optional:"true"`
		Test        NodeRef `optional:"true"`
		Update      NodeRef `optional:"true"`
		Body        NodeRef
	}

	ForInStatement struct {
		Meta
		Left  NodeRef
		Right NodeRef
		Body  NodeRef
	}

	ForOfStatement struct {
		Meta
		Left  NodeRef
		Right NodeRef
		Body  NodeRef
		Await bool
	}

	VariableDeclaration struct {
		Meta
		Token token.Token // Var, Let or Const
		List  NodeList
	}

	VariableDeclarator struct {
		Meta
		Target      NodeRef
		Initializer NodeRef `optional:"true"`
	}

	FunctionDeclaration struct {
		Meta
		Function NodeRef
	}

	ClassDeclaration struct {
		Meta
		Class NodeRef
	}
)

func (*BlockStatement) Kind() Kind      { return KindBlockStatement }
func (*EmptyStatement) Kind() Kind      { return KindEmptyStatement }
func (*DebuggerStatement) Kind() Kind   { return KindDebuggerStatement }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*IfStatement) Kind() Kind         { return KindIfStatement }
func (*LabelledStatement) Kind() Kind   { return KindLabelledStatement }
func (*BreakStatement) Kind() Kind      { return KindBreakStatement }
func (*ContinueStatement) Kind() Kind   { return KindContinueStatement }
func (*WithStatement) Kind() Kind       { return KindWithStatement }
func (*SwitchStatement) Kind() Kind     { return KindSwitchStatement }
func (*CaseStatement) Kind() Kind       { return KindCaseStatement }
func (*ReturnStatement) Kind() Kind     { return KindReturnStatement }
func (*ThrowStatement) Kind() Kind      { return KindThrowStatement }
func (*TryStatement) Kind() Kind        { return KindTryStatement }
func (*CatchStatement) Kind() Kind      { return KindCatchStatement }
func (*WhileStatement) Kind() Kind      { return KindWhileStatement }
func (*DoWhileStatement) Kind() Kind    { return KindDoWhileStatement }
func (*ForStatement) Kind() Kind        { return KindForStatement }
func (*ForInStatement) Kind() Kind      { return KindForInStatement }
func (*ForOfStatement) Kind() Kind      { return KindForOfStatement }
func (*VariableDeclaration) Kind() Kind { return KindVariableDeclaration }
func (*VariableDeclarator) Kind() Kind  { return KindVariableDeclarator }
func (*FunctionDeclaration) Kind() Kind { return KindFunctionDeclaration }
func (*ClassDeclaration) Kind() Kind    { return KindClassDeclaration }
