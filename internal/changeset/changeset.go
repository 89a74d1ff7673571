// Package changeset implements the changeset file format (§4.2, §6): the
// declarative text files that announce pending version bumps. It covers
// both the reader (C2) and the auto-changeset generator (C6).
package changeset

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/waymark/waymark/internal/logger"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
	"gopkg.in/yaml.v3"
)

// DirName is the reserved subdirectory holding changeset files.
const DirName = ".changesets"

// ReservedDocFile is excluded from changeset discovery even though it
// shares the text extension.
const ReservedDocFile = "README.md"

// Ext is the text-format extension changeset files must carry.
const Ext = ".md"

// frontMatter is the YAML document framed by "---" at the top of a
// changeset file: a map of package name to bump type.
type frontMatter struct {
	Packages map[string]string `yaml:"packages"`
}

// Entry is one package-bump declaration inside a changeset.
type Entry struct {
	Package string
	Bump    semver.BumpType
}

// Changeset is a parsed changeset file.
type Changeset struct {
	Filename string
	Entries  []Entry
	Summary  string
}

// HasChangesets reports whether repoDir contains at least one parseable
// changeset file.
func HasChangesets(repoDir string) bool {
	cs, err := ReadChangesets(repoDir)
	return err == nil && len(cs) > 0
}

// ReadChangesets reads and parses every changeset file in repoDir's
// reserved directory. A missing directory is not an error — it returns an
// empty slice. Files that fail to parse are skipped with a warning; IO
// errors reading the directory itself propagate.
func ReadChangesets(repoDir string) ([]*Changeset, error) {
	dir := filepath.Join(repoDir, DirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading changeset directory %s: %w", dir, err)
	}

	var out []*Changeset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != Ext || name == ReservedDocFile {
			continue
		}

		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading changeset %s: %w", path, err)
		}

		cs, ok := parse(name, string(content))
		if !ok {
			logger.Warn("skipping changeset with no parseable package lines", "file", name)
			continue
		}
		out = append(out, cs)
	}
	return out, nil
}

// parse extracts the YAML frontmatter's package/bump declarations and the
// trailing summary body. Returns ok=false when the frontmatter is missing,
// malformed, or names no valid package/bump pair.
func parse(filename, content string) (*Changeset, bool) {
	var fm frontMatter
	summary, err := frontmatter.Parse(bytes.NewReader([]byte(content)), &fm)
	if err != nil {
		logger.Warn("skipping changeset with invalid frontmatter", "file", filename, "error", err)
		return nil, false
	}

	names := make([]string, 0, len(fm.Packages))
	for name := range fm.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		bump := semver.BumpType(strings.TrimSpace(fm.Packages[name]))
		if bump != semver.Major && bump != semver.Minor && bump != semver.Patch {
			logger.Warn("skipping unparseable changeset bump", "file", filename, "package", name, "bump", fm.Packages[name])
			continue
		}
		entries = append(entries, Entry{Package: name, Bump: bump})
	}
	if len(entries) == 0 {
		return nil, false
	}

	return &Changeset{Filename: filename, Entries: entries, Summary: strings.TrimSpace(string(summary))}, true
}

// Prediction is the result of aggregating every changeset that mentions a
// repository: its maximum declared bump, applied to the current version.
type Prediction struct {
	Version  semver.Version
	BumpType semver.BumpType
}

// PredictNextVersion aggregates all changesets in repoDir that mention
// repoName, takes the maximum bump, and applies it to current. Returns nil
// if no changeset mentions repoName.
func PredictNextVersion(repoDir, repoName string, current semver.Version) (*Prediction, error) {
	changesets, err := ReadChangesets(repoDir)
	if err != nil {
		return nil, err
	}

	found := false
	var maxBump semver.BumpType
	for _, cs := range changesets {
		for _, e := range cs.Entries {
			if e.Package != repoName {
				continue
			}
			if !found || semver.CompareBump(e.Bump, maxBump) > 0 {
				maxBump = e.Bump
				found = true
			}
		}
	}
	if !found {
		return nil, nil
	}

	return &Prediction{Version: semver.Bump(current, maxBump), BumpType: maxBump}, nil
}

// Generate renders the content of an auto-changeset for packageName (C6):
// a single package line with requiredBump, a summary line, and breaking/
// regular sections listing the dependency updates that forced it.
// breakingDeps names the dependencies the plan engine has classified as
// breaking in this run; updates targeting one of them are listed under the
// breaking section.
func Generate(packageName string, updates []types.DependencyUpdate, requiredBump semver.BumpType, breakingDeps map[string]bool) string {
	var breaking, regular []types.DependencyUpdate
	for _, u := range updates {
		if breakingDeps[u.UpdatedDependency] {
			breaking = append(breaking, u)
		} else {
			regular = append(regular, u)
		}
	}

	fm := frontMatter{Packages: map[string]string{packageName: string(requiredBump)}}
	yamlData, err := yaml.Marshal(fm)
	if err != nil {
		// fm is a plain map of strings; marshaling cannot fail.
		panic(fmt.Sprintf("marshaling changeset frontmatter: %v", err))
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlData)
	b.WriteString("---\n\n")

	if len(breaking) > 0 {
		b.WriteString("Update dependencies (BREAKING CHANGES)\n\n")
		b.WriteString("Breaking updates:\n")
		for _, u := range breaking {
			fmt.Fprintf(&b, "- %s -> %s\n", u.UpdatedDependency, u.NewVersion.String())
		}
		if len(regular) > 0 {
			b.WriteString("\nOther updates:\n")
			for _, u := range regular {
				fmt.Fprintf(&b, "- %s -> %s\n", u.UpdatedDependency, u.NewVersion.String())
			}
		}
	} else {
		b.WriteString("Update dependencies\n\n")
		for _, u := range regular {
			fmt.Fprintf(&b, "- %s -> %s\n", u.UpdatedDependency, u.NewVersion.String())
		}
	}

	return b.String()
}

// WriteAutoChangeset writes Generate's output into repoDir's changeset
// directory under a name of the form dependency-update-<unixMs>-<6
// alphanumeric>.md, regenerating the suffix on collision.
func WriteAutoChangeset(repoDir, packageName string, updates []types.DependencyUpdate, requiredBump semver.BumpType, breakingDeps map[string]bool) (string, error) {
	dir := filepath.Join(repoDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating changeset directory: %w", err)
	}

	content := Generate(packageName, updates, requiredBump, breakingDeps)

	for attempt := 0; attempt < 10; attempt++ {
		suffix, err := randomSuffix(6)
		if err != nil {
			return "", err
		}
		name := fmt.Sprintf("dependency-update-%d-%s.md", time.Now().UnixMilli(), suffix)
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("creating changeset file: %w", err)
		}
		_, werr := f.WriteString(content)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("writing changeset file: %w", werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("closing changeset file: %w", cerr)
		}
		return path, nil
	}
	return "", fmt.Errorf("could not generate a unique changeset filename after 10 attempts")
}

func randomSuffix(n int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating random suffix: %w", err)
	}
	for i := range raw {
		raw[i] = charset[int(raw[i])%len(charset)]
	}
	return string(raw), nil
}
