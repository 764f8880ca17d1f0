package resolver

import "github.com/t14raptor/fastscope/ast"

// unresolve walks root and marks as unresolvable every reference whose
// declaration lives in a scope shallower than depth: a binding created at
// run time by eval or with could shadow it. Declaring identifiers keep
// their declarations. It returns the number of downgraded references.
func unresolve(lock *ast.GCLock, sem *SemContext, depth uint32, root ast.NodeRef) int {
	downgraded := 0
	ast.Inspect(lock, root, func(r ast.NodeRef, n ast.Node) bool {
		if _, ok := n.(*ast.Identifier); !ok {
			return true
		}
		decl, ok := sem.identDecl(r)
		if !ok || sem.isDeclaring(r) {
			return true
		}
		if sem.Scope(sem.Decl(decl).Scope).Depth < depth && sem.setUnresolvable(r) {
			downgraded++
		}
		return true
	})
	return downgraded
}
