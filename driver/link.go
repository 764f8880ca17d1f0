package driver

import (
	"fmt"
	"strings"

	"github.com/t14raptor/fastscope/depgraph"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/resolver"
	"github.com/t14raptor/fastscope/source"
)

// link builds the dependency graph of the run and reports its cycles.
func (r *Result) link() {
	g := depgraph.New[source.FileID, resolver.DependencyKind]()
	firstEdge := make(map[depgraph.EdgeKey[source.FileID]]source.Span)
	for i := range r.Results {
		res := &r.Results[i]
		g.AddNode(res.File)
		for _, dep := range res.Dependencies {
			key := depgraph.EdgeKey[source.FileID]{From: res.File, To: dep.File}
			if _, seen := firstEdge[key]; !seen {
				firstEdge[key] = dep.Span
				g.AddEdge(res.File, dep.File, dep.Kind)
			}
		}
	}
	r.Graph = g
	r.Order = g.TopoSort()

	for _, cycle := range r.Order.Cycles {
		r.Cycles = append(r.Cycles, r.cycleWarning(cycle, firstEdge))
	}
}

// cycleWarning points at the edge leaving the smallest file of the cycle
// and lists every other edge of the cycle as a note.
func (r *Result) cycleWarning(cycle []source.FileID, spans map[depgraph.EdgeKey[source.FileID]]source.Span) diag.Diagnostic {
	in := make(map[source.FileID]bool, len(cycle))
	names := make([]string, len(cycle))
	for i, id := range cycle {
		in[id] = true
		names[i] = r.Files.Get(id).Path
	}

	var edges []depgraph.EdgeKey[source.FileID]
	for _, from := range cycle {
		for to := range r.Graph.Neighbors(from, depgraph.Outgoing) {
			if in[to] {
				edges = append(edges, depgraph.EdgeKey[source.FileID]{From: from, To: to})
			}
		}
	}

	d := diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.ModImportCycle,
		Message:  fmt.Sprintf("import cycle between %s", strings.Join(names, ", ")),
		Primary:  spans[edges[0]],
	}
	for _, e := range edges[1:] {
		d.Notes = append(d.Notes, diag.Note{
			Span: spans[e],
			Msg:  fmt.Sprintf("%s depends on %s", r.Files.Get(e.From).Path, r.Files.Get(e.To).Path),
		})
	}
	return d
}
