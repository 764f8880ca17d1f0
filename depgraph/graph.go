// Package depgraph holds the dependency graph between resolved files and
// orders them for reporting.
package depgraph

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Direction represents the direction of an edge.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

// Edge represents a directed edge with a target node and a direction.
type Edge[N cmp.Ordered] struct {
	To        N
	Direction Direction
}

// EdgeKey represents a key for uniquely identifying an edge in the graph.
type EdgeKey[N cmp.Ordered] struct {
	From N
	To   N
}

// Graph is a directed graph whose edges point from a dependent to its
// dependency. Nodes are ordered so that every traversal is deterministic.
type Graph[N cmp.Ordered, E any] struct {
	nodes map[N][]Edge[N]
	edges map[EdgeKey[N]]E
}

func New[N cmp.Ordered, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		nodes: make(map[N][]Edge[N]),
		edges: make(map[EdgeKey[N]]E),
	}
}

// AddNode adds a node to the graph.
func (g *Graph[N, E]) AddNode(node N) {
	if _, exists := g.nodes[node]; !exists {
		g.nodes[node] = []Edge[N]{}
	}
}

// AddEdge records that from depends on to. Adding an existing edge only
// replaces its weight.
func (g *Graph[N, E]) AddEdge(from, to N, weight E) {
	key := EdgeKey[N]{From: from, To: to}
	if _, exists := g.edges[key]; !exists {
		g.AddNode(to)
		g.nodes[from] = append(g.nodes[from], Edge[N]{To: to, Direction: Outgoing})
		if from != to {
			g.nodes[to] = append(g.nodes[to], Edge[N]{To: from, Direction: Incoming})
		}
	}
	g.edges[key] = weight
}

func (g *Graph[N, E]) Len() int { return len(g.nodes) }

// Nodes iterates the nodes in ascending order.
func (g *Graph[N, E]) Nodes() iter.Seq[N] {
	return slices.Values(slices.Sorted(maps.Keys(g.nodes)))
}

// Neighbors iterates the neighbors of node in the given direction, in
// ascending order. A self edge is reported in both directions.
func (g *Graph[N, E]) Neighbors(node N, direction Direction) iter.Seq[N] {
	var out []N
	for _, edge := range g.nodes[node] {
		if edge.Direction == direction || edge.To == node {
			out = append(out, edge.To)
		}
	}
	slices.Sort(out)
	return slices.Values(out)
}

// EdgeWeight returns the weight of an edge between two nodes.
func (g *Graph[N, E]) EdgeWeight(from, to N) (E, bool) {
	weight, exists := g.edges[EdgeKey[N]{From: from, To: to}]
	return weight, exists
}

// outgoing adapts g to the successor view used by the SCC search.
type outgoing[N cmp.Ordered, E any] struct{ g *Graph[N, E] }

func (o outgoing[N, E]) Nodes() iter.Seq[N] { return o.g.Nodes() }

func (o outgoing[N, E]) Neighbors(node N) iter.Seq[N] { return o.g.Neighbors(node, Outgoing) }
