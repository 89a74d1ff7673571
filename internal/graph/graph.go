// Package graph builds the typed dependency multigraph over a repository
// set (§4.3): nodes are repositories, edges carry the dependency kind that
// produced them (prod/peer/dev), and external dependencies (anything not
// itself one of the repositories) never appear as an edge.
package graph

import (
	"sort"

	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/types"
)

// Edge is one dependency edge: from the owning Node to To, at Kind.
type Edge struct {
	To   string
	Kind types.DependencyKind
}

// Node is one repository in the graph.
type Node struct {
	Name        string
	Publishable bool
	// Deps holds, for each dependency name that resolves to another node in
	// the set, the edge kind that wins when the same name appears under
	// more than one section (prod > peer > dev).
	Deps map[string]Edge
	// Dependents is the reverse index: names of nodes that depend on this one.
	Dependents map[string]bool
}

// Graph is the dependency multigraph built from a repository set.
type Graph struct {
	Nodes map[string]*Node
}

// mergedDep is one repository's winning dependency declaration for a name,
// after prod/peer/dev precedence has been applied.
type mergedDep struct {
	Kind  types.DependencyKind
	Range types.Range
}

// Build constructs the graph from repos and returns analysis warnings:
// wildcard ranges and peer dependencies that target a package outside the
// set (§4.3 Analysis). Construction never fails; unresolvable edges are
// simply omitted and surfaced as warnings where relevant.
func Build(repos []*repository.Descriptor) (*Graph, []string) {
	g := &Graph{Nodes: make(map[string]*Node, len(repos))}
	for _, r := range repos {
		g.Nodes[r.Name] = &Node{
			Name:        r.Name,
			Publishable: r.Publishable,
			Deps:        map[string]Edge{},
			Dependents:  map[string]bool{},
		}
	}

	var warnings []string
	for _, r := range repos {
		merged := mergeDeps(r)

		names := make([]string, 0, len(merged))
		for name := range merged {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			dep := merged[name]
			if dep.Range.IsWildcard() {
				warnings = append(warnings, r.Name+": dependency \""+name+"\" uses a wildcard range")
			}

			if _, exists := g.Nodes[name]; !exists {
				if dep.Kind == types.Peer {
					warnings = append(warnings, r.Name+": peer dependency \""+name+"\" is external to the repository set")
				}
				continue
			}

			g.Nodes[r.Name].Deps[name] = Edge{To: name, Kind: dep.Kind}
			g.Nodes[name].Dependents[r.Name] = true
		}
	}

	return g, warnings
}

// mergeDeps collapses a repository's three dependency sections into one map
// keyed by name, keeping the highest-precedence kind when a name appears in
// more than one section (prod > peer > dev).
func mergeDeps(r *repository.Descriptor) map[string]mergedDep {
	merged := map[string]mergedDep{}
	add := func(m map[string]types.Range, kind types.DependencyKind) {
		for name, rng := range m {
			existing, ok := merged[name]
			if !ok || kind.Precedence() > existing.Kind.Precedence() {
				merged[name] = mergedDep{Kind: kind, Range: rng}
			}
		}
	}
	add(r.Prod, types.Prod)
	add(r.Peer, types.Peer)
	add(r.Dev, types.Dev)
	return merged
}

// Names returns every node name in the graph, sorted alphabetically.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedDepNames returns n's dependency target names, filtered by include,
// sorted alphabetically for deterministic traversal.
func sortedDepNames(n *Node, include func(types.DependencyKind) bool) []string {
	names := make([]string, 0, len(n.Deps))
	for name, e := range n.Deps {
		if include == nil || include(e.Kind) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// sortedDependentNames returns the names of nodes depending on n, sorted
// alphabetically.
func sortedDependentNames(n *Node) []string {
	names := make([]string, 0, len(n.Dependents))
	for name := range n.Dependents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func prodOrPeer(k types.DependencyKind) bool { return k == types.Prod || k == types.Peer }
func devOnly(k types.DependencyKind) bool     { return k == types.Dev }
