package ast

import "fmt"

// eachChild calls node for every direct child reference and list for every
// list-valued field of n, in source order. Zero refs are passed through;
// callers skip them. This switch is the single source of truth for the
// shape of every node kind.
func eachChild(n Node, node func(NodeRef), list func(NodeList)) {
	switch n := n.(type) {
	case *Program:
		list(n.Body)
	case *BlockStatement:
		list(n.List)
	case *EmptyStatement, *DebuggerStatement:
	case *ExpressionStatement:
		node(n.Expression)
	case *IfStatement:
		node(n.Test)
		node(n.Consequent)
		node(n.Alternate)
	case *LabelledStatement:
		node(n.Label)
		node(n.Statement)
	case *BreakStatement:
		node(n.Label)
	case *ContinueStatement:
		node(n.Label)
	case *WithStatement:
		node(n.Object)
		node(n.Body)
	case *SwitchStatement:
		node(n.Discriminant)
		list(n.Body)
	case *CaseStatement:
		node(n.Test)
		list(n.Consequent)
	case *ReturnStatement:
		node(n.Argument)
	case *ThrowStatement:
		node(n.Argument)
	case *TryStatement:
		node(n.Body)
		node(n.Catch)
		node(n.Finally)
	case *CatchStatement:
		node(n.Parameter)
		node(n.Body)
	case *WhileStatement:
		node(n.Test)
		node(n.Body)
	case *DoWhileStatement:
		node(n.Body)
		node(n.Test)
	case *ForStatement:
		node(n.Initializer)
		node(n.Test)
		node(n.Update)
		node(n.Body)
	case *ForInStatement:
		node(n.Left)
		node(n.Right)
		node(n.Body)
	case *ForOfStatement:
		node(n.Left)
		node(n.Right)
		node(n.Body)
	case *VariableDeclaration:
		list(n.List)
	case *VariableDeclarator:
		node(n.Target)
		node(n.Initializer)
	case *FunctionDeclaration:
		node(n.Function)
	case *ClassDeclaration:
		node(n.Class)
	case *ImportDeclaration:
		list(n.Specifiers)
		node(n.Source)
	case *ImportSpecifier:
		node(n.Imported)
		node(n.Local)
	case *ExportNamedDeclaration:
		node(n.Declaration)
		list(n.Specifiers)
		node(n.Source)
	case *ExportSpecifier:
		node(n.Local)
		node(n.Exported)
	case *ExportDefaultDeclaration:
		node(n.Declaration)
	case *ExportAllDeclaration:
		node(n.Exported)
		node(n.Source)

	case *Identifier, *PrivateIdentifier, *ThisExpression, *SuperExpression,
		*NullLiteral, *BooleanLiteral, *NumberLiteral, *StringLiteral, *RegExpLiteral:
	case *TemplateLiteral:
		node(n.Tag)
		list(n.Expressions)
	case *ArrayLiteral:
		list(n.Value)
	case *ObjectLiteral:
		list(n.Value)
	case *PropertyKeyed:
		node(n.Key)
		node(n.Value)
	case *PropertyShort:
		node(n.Name)
		node(n.Initializer)
	case *SpreadElement:
		node(n.Expression)
	case *FunctionLiteral:
		node(n.Name)
		list(n.Params)
		node(n.Rest)
		node(n.Body)
	case *ArrowFunctionLiteral:
		list(n.Params)
		node(n.Rest)
		node(n.Body)
	case *ClassLiteral:
		node(n.Name)
		node(n.SuperClass)
		list(n.Body)
	case *MethodDefinition:
		node(n.Key)
		node(n.Body)
	case *FieldDefinition:
		node(n.Key)
		node(n.Initializer)
	case *ClassStaticBlock:
		node(n.Block)
	case *UnaryExpression:
		node(n.Operand)
	case *UpdateExpression:
		node(n.Operand)
	case *BinaryExpression:
		node(n.Left)
		node(n.Right)
	case *AssignExpression:
		node(n.Left)
		node(n.Right)
	case *ConditionalExpression:
		node(n.Test)
		node(n.Consequent)
		node(n.Alternate)
	case *SequenceExpression:
		list(n.Sequence)
	case *CallExpression:
		node(n.Callee)
		list(n.ArgumentList)
	case *NewExpression:
		node(n.Callee)
		list(n.ArgumentList)
	case *MemberExpression:
		node(n.Object)
		node(n.Property)
	case *MetaProperty:
		node(n.Object)
		node(n.Property)
	case *YieldExpression:
		node(n.Argument)
	case *AwaitExpression:
		node(n.Argument)

	case *ArrayPattern:
		list(n.Elements)
		node(n.Rest)
	case *ObjectPattern:
		list(n.Properties)
		node(n.Rest)
	case *AssignPattern:
		node(n.Target)
		node(n.Default)

	default:
		panic(fmt.Sprintf("ast: unhandled node type %T", n))
	}
}
