package depgraph

import (
	"cmp"
	"iter"
	"slices"
)

// Successors is the view of a graph Tarjan's algorithm needs.
type Successors[N comparable] interface {
	Nodes() iter.Seq[N]
	Neighbors(node N) iter.Seq[N]
}

// tarjan holds the state of Tarjan's SCC algorithm.
type tarjan[N comparable] struct {
	graph    Successors[N]
	index    int
	stack    []N
	onStack  map[N]bool
	indexMap map[N]int
	lowLink  map[N]int
	sccs     [][]N
}

// StronglyConnected returns the strongly connected components of graph.
// A component is emitted after every component it can reach, so for a
// dependency graph the components come out dependencies first.
func StronglyConnected[N comparable](graph Successors[N]) [][]N {
	t := &tarjan[N]{
		graph:    graph,
		onStack:  make(map[N]bool),
		indexMap: make(map[N]int),
		lowLink:  make(map[N]int),
	}
	for node := range graph.Nodes() {
		if _, exists := t.indexMap[node]; !exists {
			t.strongConnect(node)
		}
	}
	return t.sccs
}

func (t *tarjan[N]) strongConnect(node N) {
	t.indexMap[node] = t.index
	t.lowLink[node] = t.index
	t.index++
	t.stack = append(t.stack, node)
	t.onStack[node] = true

	for neighbor := range t.graph.Neighbors(node) {
		if _, exists := t.indexMap[neighbor]; !exists {
			t.strongConnect(neighbor)
			t.lowLink[node] = min(t.lowLink[node], t.lowLink[neighbor])
		} else if t.onStack[neighbor] {
			t.lowLink[node] = min(t.lowLink[node], t.indexMap[neighbor])
		}
	}

	// node is the root of a component
	if t.lowLink[node] == t.indexMap[node] {
		var scc []N
		for {
			top := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[top] = false
			scc = append(scc, top)
			if top == node {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

// Cycles returns the import cycles of g: components with more than one
// node, or a single node depending on itself. Each cycle is sorted, and
// cycles are ordered by their smallest node.
func (g *Graph[N, E]) Cycles() [][]N {
	var cycles [][]N
	for _, scc := range StronglyConnected[N](outgoing[N, E]{g}) {
		if len(scc) == 1 {
			if _, self := g.EdgeWeight(scc[0], scc[0]); !self {
				continue
			}
		}
		slices.Sort(scc)
		cycles = append(cycles, scc)
	}
	slices.SortFunc(cycles, func(a, b []N) int { return cmp.Compare(a[0], b[0]) })
	return cycles
}
