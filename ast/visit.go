package ast

// Visitor is implemented by passes walking the tree. Visit is called for
// every non-zero node; the implementation decides whether to recurse by
// calling VisitChildren.
type Visitor interface {
	Visit(lock *GCLock, r NodeRef)
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(lock *GCLock, r NodeRef)

func (f VisitorFunc) Visit(lock *GCLock, r NodeRef) { f(lock, r) }

// VisitChildren calls v.Visit on every child of r in source order,
// expanding lists and skipping zero refs.
func (l *GCLock) VisitChildren(r NodeRef, v Visitor) {
	for _, c := range l.Children(r) {
		v.Visit(l, c)
	}
}

// Children returns the non-zero children of r in source order.
func (l *GCLock) Children(r NodeRef) []NodeRef {
	var out []NodeRef
	add := func(c NodeRef) {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	eachChild(l.Node(r), add, func(list NodeList) {
		for c := range l.Items(list) {
			add(c)
		}
	})
	return out
}

// Inspect walks the tree rooted at r in depth-first order. If f returns
// false the children of that node are skipped.
func Inspect(lock *GCLock, r NodeRef, f func(r NodeRef, n Node) bool) {
	if r.IsZero() {
		return
	}
	if !f(r, lock.Node(r)) {
		return
	}
	for _, c := range lock.Children(r) {
		Inspect(lock, c, f)
	}
}
