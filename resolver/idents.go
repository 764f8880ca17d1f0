package resolver

import "github.com/t14raptor/fastscope/ast"

// patternIdents returns the identifiers bound by a binding target,
// looking through destructuring patterns and defaults.
func patternIdents(lock *ast.GCLock, target ast.NodeRef) []ast.NodeRef {
	var out []ast.NodeRef
	collectPattern(lock, target, &out)
	return out
}

func collectPattern(lock *ast.GCLock, r ast.NodeRef, out *[]ast.NodeRef) {
	if r.IsZero() {
		return
	}
	switch n := lock.Node(r).(type) {
	case *ast.Identifier:
		*out = append(*out, r)
	case *ast.ArrayPattern:
		for e := range lock.Items(n.Elements) {
			collectPattern(lock, e, out)
		}
		collectPattern(lock, n.Rest, out)
	case *ast.ObjectPattern:
		for p := range lock.Items(n.Properties) {
			switch prop := lock.Node(p).(type) {
			case *ast.PropertyKeyed:
				collectPattern(lock, prop.Value, out)
			case *ast.PropertyShort:
				collectPattern(lock, prop.Name, out)
			}
		}
		collectPattern(lock, n.Rest, out)
	case *ast.AssignPattern:
		collectPattern(lock, n.Target, out)
	case *ast.VariableDeclarator:
		collectPattern(lock, n.Target, out)
	case *ast.SpreadElement:
		collectPattern(lock, n.Expression, out)
	}
}

func declarationIdents(lock *ast.GCLock, n *ast.VariableDeclaration) []ast.NodeRef {
	var out []ast.NodeRef
	for d := range lock.Items(n.List) {
		collectPattern(lock, d, &out)
	}
	return out
}

func importIdents(lock *ast.GCLock, n *ast.ImportDeclaration) []ast.NodeRef {
	var out []ast.NodeRef
	for s := range lock.Items(n.Specifiers) {
		out = append(out, ast.Get[*ast.ImportSpecifier](lock, s).Local)
	}
	return out
}

// paramIdents returns the identifiers of a parameter list and reports
// whether the list is simple: plain identifiers without defaults or rest.
func paramIdents(lock *ast.GCLock, params ast.NodeList, rest ast.NodeRef) ([]ast.NodeRef, bool) {
	var out []ast.NodeRef
	simple := rest.IsZero()
	for p := range lock.Items(params) {
		if d, ok := ast.As[*ast.VariableDeclarator](lock, p); ok {
			if lock.Kind(d.Target) != ast.KindIdentifier || !d.Initializer.IsZero() {
				simple = false
			}
		} else if lock.Kind(p) != ast.KindIdentifier {
			simple = false
		}
		collectPattern(lock, p, &out)
	}
	collectPattern(lock, rest, &out)
	return out, simple
}
