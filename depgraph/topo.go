package depgraph

import "slices"

// Topo is a dependency-first ordering of a graph.
type Topo[N any] struct {
	// Order lists every node outside a cycle, dependencies first.
	Order []N
	// Batches groups Order into waves whose members do not depend on
	// each other.
	Batches [][]N
	// Cycles lists the strongly connected components left unordered.
	Cycles [][]N
}

func (t *Topo[N]) Cyclic() bool { return len(t.Cycles) > 0 }

// TopoSort orders g with Kahn's algorithm, starting from the nodes that
// depend on nothing. Nodes in or behind a cycle are not ordered; the
// cycles themselves are reported.
func (g *Graph[N, E]) TopoSort() *Topo[N] {
	pending := make(map[N]int, len(g.nodes))
	var current []N
	for node := range g.Nodes() {
		n := 0
		for range g.Neighbors(node, Outgoing) {
			n++
		}
		pending[node] = n
		if n == 0 {
			current = append(current, node)
		}
	}

	topo := &Topo[N]{}
	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		topo.Order = append(topo.Order, current...)
		var next []N
		for _, node := range current {
			for dependent := range g.Neighbors(node, Incoming) {
				if dependent == node {
					continue
				}
				pending[dependent]--
				if pending[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != len(g.nodes) {
		topo.Cycles = g.Cycles()
	}
	return topo
}
