package resolver

import "github.com/t14raptor/fastscope/ast"

type binding struct {
	decl DeclID
	// ident is the declaring identifier, zero for synthesized bindings.
	ident ast.NodeRef
}

// bindingTable is a stack of frames mapping visible names to their decls.
// Lookups search outwards from the innermost frame.
type bindingTable struct {
	frames []map[ast.Atom]binding
}

// push opens a frame and returns its index.
func (t *bindingTable) push() int {
	t.frames = append(t.frames, make(map[ast.Atom]binding))
	return len(t.frames) - 1
}

func (t *bindingTable) pop() {
	t.frames = t.frames[:len(t.frames)-1]
}

func (t *bindingTable) find(name ast.Atom) (binding, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if b, ok := t.frames[i][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (t *bindingTable) insert(name ast.Atom, b binding) {
	t.frames[len(t.frames)-1][name] = b
}

// insertAt adds a binding to an enclosing frame that is still open.
func (t *bindingTable) insertAt(frame int, name ast.Atom, b binding) {
	t.frames[frame][name] = b
}
