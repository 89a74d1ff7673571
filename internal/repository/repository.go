// Package repository models the repository descriptor (§3): one
// standalone local git clone, its manifest-declared version, and its
// three typed dependency maps. Descriptors are constructed once from
// on-disk manifest state at the start of an operation and never mutated.
package repository

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/waymark/waymark/internal/manifest"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// Descriptor is one repository in the set the core operates over.
type Descriptor struct {
	Name        string
	Dir         string
	Version     semver.Version
	Prod        map[string]types.Range
	Peer        map[string]types.Range
	Dev         map[string]types.Range
	Publishable bool
}

// Dep is one dependency entry surfaced by SortedDeps.
type Dep struct {
	Name  string
	Kind  types.DependencyKind
	Range types.Range
}

// SortedDeps returns name, kind, and range for every dependency in d,
// ordered alphabetically by name then by kind precedence — the "sorted
// keys extracted before emitting" approach used throughout for
// deterministic diagnostic output (§9).
func (d *Descriptor) SortedDeps() []Dep {
	var deps []Dep
	add := func(m map[string]types.Range, kind types.DependencyKind) {
		for name, r := range m {
			deps = append(deps, Dep{Name: name, Kind: kind, Range: r})
		}
	}
	add(d.Prod, types.Prod)
	add(d.Peer, types.Peer)
	add(d.Dev, types.Dev)

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Kind.Precedence() > deps[j].Kind.Precedence()
	})
	return deps
}

// Load builds a Descriptor by reading the manifest file in dir.
func Load(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, manifest.FileName)
	m, err := manifest.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading repository at %s: %w", dir, err)
	}

	version, err := semver.Parse(m.Version)
	if err != nil {
		return nil, fmt.Errorf("repository %s has invalid version %q: %w", m.Name, m.Version, err)
	}

	return &Descriptor{
		Name:        m.Name,
		Dir:         dir,
		Version:     version,
		Prod:        toRangeMap(m.Dependencies),
		Peer:        toRangeMap(m.PeerDependencies),
		Dev:         toRangeMap(m.DevDependencies),
		Publishable: !m.Private,
	}, nil
}

// LoadAll loads a Descriptor for every directory in dirs, in the order
// given. The first error aborts the whole load.
func LoadAll(dirs []string) ([]*Descriptor, error) {
	out := make([]*Descriptor, 0, len(dirs))
	for _, dir := range dirs {
		d, err := Load(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func toRangeMap(in map[string]string) map[string]types.Range {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]types.Range, len(in))
	for k, v := range in {
		out[k] = types.Range(v)
	}
	return out
}

// ByName indexes descriptors by their canonical name.
func ByName(repos []*Descriptor) map[string]*Descriptor {
	out := make(map[string]*Descriptor, len(repos))
	for _, r := range repos {
		out[r.Name] = r
	}
	return out
}

// Names returns the canonical names of repos, preserving order.
func Names(repos []*Descriptor) []string {
	out := make([]string, len(repos))
	for i, r := range repos {
		out[i] = r.Name
	}
	return out
}
