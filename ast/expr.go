package ast

import "github.com/t14raptor/fastscope/token"

type PropertyKind string

const (
	PropertyKindValue  PropertyKind = "value"
	PropertyKindGet    PropertyKind = "get"
	PropertyKindSet    PropertyKind = "set"
	PropertyKindMethod PropertyKind = "method"
)

type (
	Identifier struct {
		Meta
		Name Atom
	}

	PrivateIdentifier struct {
		Meta
		Name Atom
	}

	ThisExpression struct {
		Meta
	}

	SuperExpression struct {
		Meta
	}

	NullLiteral struct {
		Meta
	}

	BooleanLiteral struct {
		Meta
		Value bool
	}

	NumberLiteral struct {
		Meta
		Value float64
		Raw   string
	}

	StringLiteral struct {
		Meta
		Value string
	}

	RegExpLiteral struct {
		Meta
		Pattern string
		Flags   string
	}

	TemplateLiteral struct {
		Meta
		Tag         NodeRef `optional:"true"`
		Elements    []string
		Expressions NodeList
	}

	// ArrayLiteral elements may contain zero refs for holes.
	ArrayLiteral struct {
		Meta
		Value NodeList
	}

	ObjectLiteral struct {
		Meta
		Value NodeList
	}

	PropertyKeyed struct {
		Meta
		Key      NodeRef
		PropKind PropertyKind
		Value    NodeRef
		Computed bool
	}

	PropertyShort struct {
		Meta
		Name        NodeRef
		Initializer NodeRef `optional:"true"`
	}

	SpreadElement struct {
		Meta
		Expression NodeRef
	}

	FunctionLiteral struct {
		Meta
		Name   NodeRef `optional:"true"`
		Params NodeList
		Rest   NodeRef `optional:"true"`
		Body   NodeRef

		Async, Generator bool
	}

	// ArrowFunctionLiteral has either a BlockStatement or an expression body.
	ArrowFunctionLiteral struct {
		Meta
		Params NodeList
		Rest   NodeRef `optional:"true"`
		Body   NodeRef
		Async  bool
	}

	ClassLiteral struct {
		Meta
		Name       NodeRef `optional:"true"`
		SuperClass NodeRef `optional:"true"`
		Body       NodeList
	}

	MethodDefinition struct {
		Meta
		Key      NodeRef
		PropKind PropertyKind
		Body     NodeRef
		Computed bool
		Static   bool
	}

	FieldDefinition struct {
		Meta
		Key         NodeRef
		Initializer NodeRef `optional:"true"`
		Computed    bool
		Static      bool
	}

	ClassStaticBlock struct {
		Meta
		Block NodeRef
	}

	UnaryExpression struct {
		Meta
		Operator token.Token
		Operand  NodeRef
	}

	UpdateExpression struct {
		Meta
		Operator token.Token
		Operand  NodeRef
		Postfix  bool
	}

	BinaryExpression struct {
		Meta
		Operator token.Token
		Left     NodeRef
		Right    NodeRef
	}

	AssignExpression struct {
		Meta
		Operator token.Token
		Left     NodeRef
		Right    NodeRef
	}

	ConditionalExpression struct {
		Meta
		Test       NodeRef
		Consequent NodeRef
		Alternate  NodeRef
	}

	SequenceExpression struct {
		Meta
		Sequence NodeList
	}

	CallExpression struct {
		Meta
		Callee       NodeRef
		ArgumentList NodeList
		Optional     bool
	}

	NewExpression struct {
		Meta
		Callee       NodeRef
		ArgumentList NodeList
	}

	MemberExpression struct {
		Meta
		Object   NodeRef
		Property NodeRef
		Computed bool
		Optional bool
	}

	// MetaProperty is `new.target` or `import.meta`.
	MetaProperty struct {
		Meta
		Object   NodeRef
		Property NodeRef
	}

	YieldExpression struct {
		Meta
		Argument NodeRef `optional:"true"`
		Delegate bool
	}

	AwaitExpression struct {
		Meta
		Argument NodeRef
	}

	// ArrayPattern elements may contain zero refs for holes.
	ArrayPattern struct {
		Meta
		Elements NodeList
		Rest     NodeRef `optional:"true"`
	}

	ObjectPattern struct {
		Meta
		Properties NodeList
		Rest       NodeRef `optional:"true"`
	}

	AssignPattern struct {
		Meta
		Target  NodeRef
		Default NodeRef
	}
)

func (*Identifier) Kind() Kind            { return KindIdentifier }
func (*PrivateIdentifier) Kind() Kind     { return KindPrivateIdentifier }
func (*ThisExpression) Kind() Kind        { return KindThisExpression }
func (*SuperExpression) Kind() Kind       { return KindSuperExpression }
func (*NullLiteral) Kind() Kind           { return KindNullLiteral }
func (*BooleanLiteral) Kind() Kind        { return KindBooleanLiteral }
func (*NumberLiteral) Kind() Kind         { return KindNumberLiteral }
func (*StringLiteral) Kind() Kind         { return KindStringLiteral }
func (*RegExpLiteral) Kind() Kind         { return KindRegExpLiteral }
func (*TemplateLiteral) Kind() Kind       { return KindTemplateLiteral }
func (*ArrayLiteral) Kind() Kind          { return KindArrayLiteral }
func (*ObjectLiteral) Kind() Kind         { return KindObjectLiteral }
func (*PropertyKeyed) Kind() Kind         { return KindPropertyKeyed }
func (*PropertyShort) Kind() Kind         { return KindPropertyShort }
func (*SpreadElement) Kind() Kind         { return KindSpreadElement }
func (*FunctionLiteral) Kind() Kind       { return KindFunctionLiteral }
func (*ArrowFunctionLiteral) Kind() Kind  { return KindArrowFunctionLiteral }
func (*ClassLiteral) Kind() Kind          { return KindClassLiteral }
func (*MethodDefinition) Kind() Kind      { return KindMethodDefinition }
func (*FieldDefinition) Kind() Kind       { return KindFieldDefinition }
func (*ClassStaticBlock) Kind() Kind      { return KindClassStaticBlock }
func (*UnaryExpression) Kind() Kind       { return KindUnaryExpression }
func (*UpdateExpression) Kind() Kind      { return KindUpdateExpression }
func (*BinaryExpression) Kind() Kind      { return KindBinaryExpression }
func (*AssignExpression) Kind() Kind      { return KindAssignExpression }
func (*ConditionalExpression) Kind() Kind { return KindConditionalExpression }
func (*SequenceExpression) Kind() Kind    { return KindSequenceExpression }
func (*CallExpression) Kind() Kind        { return KindCallExpression }
func (*NewExpression) Kind() Kind         { return KindNewExpression }
func (*MemberExpression) Kind() Kind      { return KindMemberExpression }
func (*MetaProperty) Kind() Kind          { return KindMetaProperty }
func (*YieldExpression) Kind() Kind       { return KindYieldExpression }
func (*AwaitExpression) Kind() Kind       { return KindAwaitExpression }
func (*ArrayPattern) Kind() Kind          { return KindArrayPattern }
func (*ObjectPattern) Kind() Kind         { return KindObjectPattern }
func (*AssignPattern) Kind() Kind         { return KindAssignPattern }
