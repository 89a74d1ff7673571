package graph

import (
	"sort"
	"strings"

	"github.com/waymark/waymark/pkg/types"
)

// DetectCycles reports the cycles that one depth-first traversal finds over
// all edge kinds (§4.3 detectCycles). Each cycle is a slice of node names in
// traversal order, starting at the node whose back edge closed it; cycles
// are deduplicated by their canonical member-sorted key. Every node is
// expanded only once, so an elementary cycle that closes only through nodes
// already finished is not listed on its own; a graph that has any cycle
// always yields at least one.
func (g *Graph) DetectCycles() [][]string {
	return g.detectCyclesFiltered(func(types.DependencyKind) bool { return true })
}

// DetectCyclesByType runs two independent passes (§4.3 detectCyclesByType):
// production cycles over prod+peer edges (these block publishing), and dev
// cycles over dev edges only (tolerated, informational).
func (g *Graph) DetectCyclesByType() (production, dev [][]string) {
	return g.detectCyclesFiltered(prodOrPeer), g.detectCyclesFiltered(devOnly)
}

// detectCyclesFiltered runs a depth-first search over edges matching
// include, reporting each elementary cycle encountered via a back-edge to a
// node still on the current path. Cycles that share members but differ in
// rotation or discovery order collapse to the same canonical key and are
// only reported once.
func (g *Graph) detectCyclesFiltered(include func(types.DependencyKind) bool) [][]string {
	visited := map[string]bool{}
	onStack := map[string]bool{}
	stackIndex := map[string]int{}
	var stack []string
	seen := map[string]bool{}
	var cycles [][]string

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		onStack[name] = true
		stackIndex[name] = len(stack)
		stack = append(stack, name)

		for _, next := range sortedDepNames(g.Nodes[name], include) {
			if onStack[next] {
				cycle := append([]string{}, stack[stackIndex[next]:]...)
				key := canonicalCycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[name] = false
	}

	for _, name := range g.Names() {
		if !visited[name] {
			visit(name)
		}
	}

	return cycles
}

// canonicalCycleKey produces a rotation- and discovery-order-independent key
// for a cycle's membership, used to deduplicate equivalent cycles.
func canonicalCycleKey(members []string) string {
	sorted := append([]string{}, members...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
