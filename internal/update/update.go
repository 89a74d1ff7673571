// Package update implements C7's updateManifest operation (§4.7): given a
// repository and the newly published versions of its dependencies, rewrite
// its manifest, stage and commit the change, and optionally attach an
// auto-generated changeset describing the cascade. It sits above
// internal/manifest and internal/ops so neither of those packages needs to
// know about the other.
package update

import (
	"path/filepath"

	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/internal/manifest"
	"github.com/waymark/waymark/internal/ops"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// CommitMessage is the fixed commit message §4.7 specifies for manifest
// updates made after a publish.
const CommitMessage = "update dependencies after publishing"

// Options configures UpdateManifest.
type Options struct {
	Strategy types.RangeStrategy

	// GenerateChangeset additionally writes an auto-changeset via C6
	// describing the cascade, and stages it alongside the manifest.
	GenerateChangeset bool
	RequiredBump      semver.BumpType
	BreakingDeps      map[string]bool
}

// Result reports what UpdateManifest changed.
type Result struct {
	Updated       []manifest.Update
	ChangesetPath string
}

// UpdateManifest implements §4.7's updateManifest: read the manifest, apply
// every update that findUpdatesNeeded reports, write it back, optionally
// attach an auto-changeset, then stage and commit both. Returns a nil
// Result (no error) when there is nothing to update.
func UpdateManifest(git ops.GitOps, repoDir, repoName string, published map[string]semver.Version, opts Options) (*Result, error) {
	path := filepath.Join(repoDir, manifest.FileName)
	m, err := manifest.Read(path)
	if err != nil {
		return nil, err
	}

	updates := manifest.FindUpdatesNeeded(m, published)
	if len(updates) == 0 {
		return nil, nil
	}

	manifest.ApplyUpdates(m, updates, opts.Strategy)
	if err := m.Write(path); err != nil {
		return nil, err
	}

	paths := []string{manifest.FileName}
	result := &Result{Updated: updates}

	if opts.GenerateChangeset {
		changesetPath, err := changeset.WriteAutoChangeset(repoDir, repoName, toDependencyUpdates(repoName, updates), opts.RequiredBump, opts.BreakingDeps)
		if err != nil {
			return nil, err
		}
		result.ChangesetPath = changesetPath
		paths = append(paths, changesetPath)
	}

	if err := git.AddAndCommit(repoDir, paths, CommitMessage); err != nil {
		return nil, err
	}

	return result, nil
}

func toDependencyUpdates(repoName string, updates []manifest.Update) []types.DependencyUpdate {
	out := make([]types.DependencyUpdate, 0, len(updates))
	for _, u := range updates {
		out = append(out, types.DependencyUpdate{
			DependentPackage:  repoName,
			UpdatedDependency: u.Name,
			CurrentRange:      u.Current,
			NewVersion:        u.New,
			Kind:              u.Kind,
			CausesRepublish:   u.Kind.CausesRepublish(),
		})
	}
	return out
}
