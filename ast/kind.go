package ast

import "strconv"

// Kind tags every node variant. The set is closed: children.go switches over all of them.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindProgram
	KindBlockStatement
	KindEmptyStatement
	KindDebuggerStatement
	KindExpressionStatement
	KindIfStatement
	KindLabelledStatement
	KindBreakStatement
	KindContinueStatement
	KindWithStatement
	KindSwitchStatement
	KindCaseStatement
	KindReturnStatement
	KindThrowStatement
	KindTryStatement
	KindCatchStatement
	KindWhileStatement
	KindDoWhileStatement
	KindForStatement
	KindForInStatement
	KindForOfStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindFunctionDeclaration
	KindClassDeclaration
	KindImportDeclaration
	KindImportSpecifier
	KindExportNamedDeclaration
	KindExportSpecifier
	KindExportDefaultDeclaration
	KindExportAllDeclaration

	KindIdentifier
	KindPrivateIdentifier
	KindThisExpression
	KindSuperExpression
	KindNullLiteral
	KindBooleanLiteral
	KindNumberLiteral
	KindStringLiteral
	KindRegExpLiteral
	KindTemplateLiteral
	KindArrayLiteral
	KindObjectLiteral
	KindPropertyKeyed
	KindPropertyShort
	KindSpreadElement
	KindFunctionLiteral
	KindArrowFunctionLiteral
	KindClassLiteral
	KindMethodDefinition
	KindFieldDefinition
	KindClassStaticBlock
	KindUnaryExpression
	KindUpdateExpression
	KindBinaryExpression
	KindAssignExpression
	KindConditionalExpression
	KindSequenceExpression
	KindCallExpression
	KindNewExpression
	KindMemberExpression
	KindMetaProperty
	KindYieldExpression
	KindAwaitExpression

	KindArrayPattern
	KindObjectPattern
	KindAssignPattern

	numKinds
)

var kindNames = [...]string{
	KindInvalid:                  "Invalid",
	KindProgram:                  "Program",
	KindBlockStatement:           "BlockStatement",
	KindEmptyStatement:           "EmptyStatement",
	KindDebuggerStatement:        "DebuggerStatement",
	KindExpressionStatement:      "ExpressionStatement",
	KindIfStatement:              "IfStatement",
	KindLabelledStatement:        "LabelledStatement",
	KindBreakStatement:           "BreakStatement",
	KindContinueStatement:        "ContinueStatement",
	KindWithStatement:            "WithStatement",
	KindSwitchStatement:          "SwitchStatement",
	KindCaseStatement:            "CaseStatement",
	KindReturnStatement:          "ReturnStatement",
	KindThrowStatement:           "ThrowStatement",
	KindTryStatement:             "TryStatement",
	KindCatchStatement:           "CatchStatement",
	KindWhileStatement:           "WhileStatement",
	KindDoWhileStatement:         "DoWhileStatement",
	KindForStatement:             "ForStatement",
	KindForInStatement:           "ForInStatement",
	KindForOfStatement:           "ForOfStatement",
	KindVariableDeclaration:      "VariableDeclaration",
	KindVariableDeclarator:       "VariableDeclarator",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindClassDeclaration:         "ClassDeclaration",
	KindImportDeclaration:        "ImportDeclaration",
	KindImportSpecifier:          "ImportSpecifier",
	KindExportNamedDeclaration:   "ExportNamedDeclaration",
	KindExportSpecifier:          "ExportSpecifier",
	KindExportDefaultDeclaration: "ExportDefaultDeclaration",
	KindExportAllDeclaration:     "ExportAllDeclaration",
	KindIdentifier:               "Identifier",
	KindPrivateIdentifier:        "PrivateIdentifier",
	KindThisExpression:           "ThisExpression",
	KindSuperExpression:          "SuperExpression",
	KindNullLiteral:              "NullLiteral",
	KindBooleanLiteral:           "BooleanLiteral",
	KindNumberLiteral:            "NumberLiteral",
	KindStringLiteral:            "StringLiteral",
	KindRegExpLiteral:            "RegExpLiteral",
	KindTemplateLiteral:          "TemplateLiteral",
	KindArrayLiteral:             "ArrayLiteral",
	KindObjectLiteral:            "ObjectLiteral",
	KindPropertyKeyed:            "PropertyKeyed",
	KindPropertyShort:            "PropertyShort",
	KindSpreadElement:            "SpreadElement",
	KindFunctionLiteral:          "FunctionLiteral",
	KindArrowFunctionLiteral:     "ArrowFunctionLiteral",
	KindClassLiteral:             "ClassLiteral",
	KindMethodDefinition:         "MethodDefinition",
	KindFieldDefinition:          "FieldDefinition",
	KindClassStaticBlock:         "ClassStaticBlock",
	KindUnaryExpression:          "UnaryExpression",
	KindUpdateExpression:         "UpdateExpression",
	KindBinaryExpression:         "BinaryExpression",
	KindAssignExpression:         "AssignExpression",
	KindConditionalExpression:    "ConditionalExpression",
	KindSequenceExpression:       "SequenceExpression",
	KindCallExpression:           "CallExpression",
	KindNewExpression:            "NewExpression",
	KindMemberExpression:         "MemberExpression",
	KindMetaProperty:             "MetaProperty",
	KindYieldExpression:          "YieldExpression",
	KindAwaitExpression:          "AwaitExpression",
	KindArrayPattern:             "ArrayPattern",
	KindObjectPattern:            "ObjectPattern",
	KindAssignPattern:            "AssignPattern",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsFunctionLike reports whether nodes of kind k open a new function context.
func (k Kind) IsFunctionLike() bool {
	return k == KindFunctionLiteral || k == KindArrowFunctionLiteral
}

// IsLoop reports whether k is an iteration statement.
func (k Kind) IsLoop() bool {
	switch k {
	case KindWhileStatement, KindDoWhileStatement, KindForStatement, KindForInStatement, KindForOfStatement:
		return true
	}
	return false
}
