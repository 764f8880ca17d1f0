package ast

type ImportKind uint8

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportNamespace
)

type (
	ImportDeclaration struct {
		Meta
		Specifiers NodeList
		Source     NodeRef
	}

	// ImportSpecifier covers `{a as b}`, `a` and `* as a`. Imported is only set for ImportNamed.
	ImportSpecifier struct {
		Meta
		ImportKind ImportKind
		Imported   NodeRef `optional:"true"`
		Local      NodeRef
	}

	ExportNamedDeclaration struct {
		Meta
		Declaration NodeRef `optional:"true"`
		Specifiers  NodeList
		Source      NodeRef `optional:"true"`
	}

	ExportSpecifier struct {
		Meta
		Local    NodeRef
		Exported NodeRef
	}

	// ExportDefaultDeclaration holds a FunctionDeclaration, a ClassDeclaration or an expression.
	ExportDefaultDeclaration struct {
		Meta
		Declaration NodeRef
	}

	ExportAllDeclaration struct {
		Meta
		Exported NodeRef `optional:"true"`
		Source   NodeRef
	}
)

func (*ImportDeclaration) Kind() Kind        { return KindImportDeclaration }
func (*ImportSpecifier) Kind() Kind          { return KindImportSpecifier }
func (*ExportNamedDeclaration) Kind() Kind   { return KindExportNamedDeclaration }
func (*ExportSpecifier) Kind() Kind          { return KindExportSpecifier }
func (*ExportDefaultDeclaration) Kind() Kind { return KindExportDefaultDeclaration }
func (*ExportAllDeclaration) Kind() Kind     { return KindExportAllDeclaration }
