package graph

import (
	"sort"

	waymarkerrors "github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/pkg/types"
)

// TopologicalSort computes a deterministic publishing order over the graph
// (§4.3): dependencies before dependents. When excludeDev is true, only
// prod and peer edges count; a package that is only a dev-dependent of
// another may publish before it.
//
// Edges run from dependent to dependency (the shape §4.3 construction
// builds). Kahn's algorithm is run forward, with in-degree defined as "how
// many of this node's own dependencies haven't been placed yet", so nodes
// with no dependencies are ready first and order accumulates dependencies
// before dependents directly, with no final reversal. Ties are always
// broken by picking the lexicographically smallest ready node, so the
// result is byte-identical across repeated runs over the same graph (§8) —
// including when two nodes are mutually ineligible to order each other
// (e.g. linked only by a dev edge excluded from this pass): both start
// ready with in-degree 0, and the smaller name simply goes first.
func (g *Graph) TopologicalSort(excludeDev bool) ([]string, error) {
	include := includeFor(excludeDev)

	// inDegree[X] counts X's own dependencies whose edge matches include.
	inDegree := make(map[string]int, len(g.Nodes))
	for _, name := range g.Names() {
		inDegree[name] = len(sortedDepNames(g.Nodes[name], include))
	}

	ready := make([]string, 0, len(g.Nodes))
	for _, name := range g.Names() {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, dependentName := range dependentsFiltered(g, name, include) {
			inDegree[dependentName]--
			if inDegree[dependentName] == 0 {
				ready = append(ready, dependentName)
			}
		}
	}

	if len(order) < len(g.Nodes) {
		visited := make(map[string]bool, len(order))
		for _, name := range order {
			visited[name] = true
		}
		var unvisited []string
		for _, name := range g.Names() {
			if !visited[name] {
				unvisited = append(unvisited, name)
			}
		}
		return nil, waymarkerrors.NewDependencyError("circular dependency", unvisited)
	}

	return order, nil
}

func includeFor(excludeDev bool) func(types.DependencyKind) bool {
	if excludeDev {
		return prodOrPeer
	}
	return func(types.DependencyKind) bool { return true }
}

// dependentsFiltered returns the names of nodes depending on name whose
// edge kind matches include, sorted alphabetically.
func dependentsFiltered(g *Graph, name string, include func(types.DependencyKind) bool) []string {
	var names []string
	for depender := range g.Nodes[name].Dependents {
		edge, ok := g.Nodes[depender].Deps[name]
		if ok && include(edge.Kind) {
			names = append(names, depender)
		}
	}
	sort.Strings(names)
	return names
}
