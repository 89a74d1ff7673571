// Package manifest reads and rewrites the JSON package manifest (§6):
// name, version, optional dependencies/devDependencies/peerDependencies,
// and an optional private marker. Rewrites preserve tab indentation, a
// trailing newline, and any fields this package doesn't know about.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	waymarksemver "github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// FileName is the conventional manifest file name within a repository.
const FileName = "package.json"

// Manifest is the parsed form of a repository's manifest file. Extra holds
// every top-level field this package does not model, so a round trip
// through Read/Write never silently drops data.
type Manifest struct {
	Name             string            `json:"-"`
	Version          string            `json:"-"`
	Private          bool              `json:"-"`
	Dependencies     map[string]string `json:"-"`
	DevDependencies  map[string]string `json:"-"`
	PeerDependencies map[string]string `json:"-"`
	Extra            map[string]json.RawMessage `json:"-"`
}

// Parse decodes raw manifest JSON bytes.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	m := &Manifest{Extra: map[string]json.RawMessage{}}
	for k, v := range raw {
		switch k {
		case "name":
			if err := json.Unmarshal(v, &m.Name); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		case "version":
			if err := json.Unmarshal(v, &m.Version); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		case "private":
			if err := json.Unmarshal(v, &m.Private); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		case "dependencies":
			if err := json.Unmarshal(v, &m.Dependencies); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		case "devDependencies":
			if err := json.Unmarshal(v, &m.DevDependencies); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		case "peerDependencies":
			if err := json.Unmarshal(v, &m.PeerDependencies); err != nil {
				return nil, fmt.Errorf("parsing manifest field %q: %w", k, err)
			}
		default:
			m.Extra[k] = v
		}
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest missing required field: name")
	}
	if m.Version == "" {
		return nil, fmt.Errorf("manifest missing required field: version")
	}
	return m, nil
}

// Read loads and parses the manifest file at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Bytes renders the manifest back to JSON: tab-indented, with a trailing
// newline, and every field from Extra carried through unmodified.
func (m *Manifest) Bytes() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range m.Extra {
		out[k] = v
	}

	set := func(key string, v interface{}) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding manifest field %q: %w", key, err)
		}
		out[key] = raw
		return nil
	}

	if err := set("name", m.Name); err != nil {
		return nil, err
	}
	if err := set("version", m.Version); err != nil {
		return nil, err
	}
	if m.Private {
		if err := set("private", m.Private); err != nil {
			return nil, err
		}
	}
	if len(m.Dependencies) > 0 {
		if err := set("dependencies", m.Dependencies); err != nil {
			return nil, err
		}
	}
	if len(m.DevDependencies) > 0 {
		if err := set("devDependencies", m.DevDependencies); err != nil {
			return nil, err
		}
	}
	if len(m.PeerDependencies) > 0 {
		if err := set("peerDependencies", m.PeerDependencies); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		keyJSON, _ := json.Marshal(k)
		buf.WriteByte('\t')
		buf.Write(keyJSON)
		buf.WriteString(": ")
		buf.Write(reindent(out[k], "\t"))
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// reindent re-marshals a raw JSON value with tab indentation and prefixes
// every continuation line with prefix so it nests correctly.
func reindent(raw json.RawMessage, prefix string) []byte {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	indented, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return raw
	}
	lines := strings.Split(string(indented), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = prefix + lines[i]
	}
	return []byte(strings.Join(lines, "\n"))
}

// Write renders and writes the manifest to path.
func (m *Manifest) Write(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Section names a dependency block, used to report which section an update
// applies to.
type Section = types.DependencyKind

// sectionFor returns the raw dependency map in m for kind.
func (m *Manifest) sectionFor(kind Section) map[string]string {
	switch kind {
	case types.Prod:
		return m.Dependencies
	case types.Peer:
		return m.PeerDependencies
	case types.Dev:
		return m.DevDependencies
	default:
		return nil
	}
}

// Update is a single dependency-range rewrite needed by the updater.
type Update struct {
	Name    string
	Current types.Range
	New     waymarksemver.Version
	Kind    types.DependencyKind
}

// FindUpdatesNeeded inspects m and reports which dependency ranges should
// change to cover the newly published versions (§4.7 findUpdatesNeeded).
// Pure: it does not mutate m or touch disk.
func FindUpdatesNeeded(m *Manifest, published map[string]waymarksemver.Version) []Update {
	var updates []Update
	for _, kind := range []types.DependencyKind{types.Prod, types.Peer, types.Dev} {
		section := m.sectionFor(kind)
		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			newVersion, ok := published[name]
			if !ok {
				continue
			}
			current := types.Range(section[name])
			if NeedsUpdate(current, newVersion) {
				updates = append(updates, Update{
					Name:    name,
					Current: current,
					New:     newVersion,
					Kind:    kind,
				})
			}
		}
	}
	return updates
}

// NeedsUpdate implements §4.7's needsUpdate: strip a recognized prefix from
// current, parse the remainder as a version, and return true iff it
// compares less than newVersion. Unparseable ranges (including "*") always
// need an update.
func NeedsUpdate(current types.Range, newVersion waymarksemver.Version) bool {
	anchor, err := current.Anchor()
	if err != nil {
		return true
	}
	return waymarksemver.Compare(anchor, newVersion) < 0
}

// Satisfies reports whether range r already covers v, additionally
// cross-checking with Masterminds/semver's constraint parser as a
// secondary verification of the conservative §3 rule.
func Satisfies(r types.Range, v waymarksemver.Version) bool {
	if r.Satisfies(v) {
		return true
	}
	constraint, err := semver.NewConstraint(constraintString(r))
	if err != nil {
		return false
	}
	sv, err := semver.NewVersion(v.String())
	if err != nil {
		return false
	}
	return constraint.Check(sv)
}

// constraintString translates a waymark Range into Masterminds/semver
// constraint syntax (mostly identical; "~" maps the same way).
func constraintString(r types.Range) string {
	if r.IsWildcard() {
		return "*"
	}
	return string(r)
}

// ApplyUpdates rewrites m's dependency sections per updates, writing a new
// range for each with strategy. It modifies m in place and returns nothing.
func ApplyUpdates(m *Manifest, updates []Update, strategy types.RangeStrategy) {
	for _, u := range updates {
		newRange := types.WriteRange(u.Current, u.New, strategy)
		switch u.Kind {
		case types.Prod:
			if m.Dependencies == nil {
				m.Dependencies = map[string]string{}
			}
			m.Dependencies[u.Name] = string(newRange)
		case types.Peer:
			if m.PeerDependencies == nil {
				m.PeerDependencies = map[string]string{}
			}
			m.PeerDependencies[u.Name] = string(newRange)
		case types.Dev:
			if m.DevDependencies == nil {
				m.DevDependencies = map[string]string{}
			}
			m.DevDependencies[u.Name] = string(newRange)
		}
	}
}
