package ops

import (
	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/pkg/semver"
)

// Changesets is the production ChangesetOps implementation, delegating
// directly to the internal/changeset package's pure file-reading functions.
type Changesets struct{}

// NewChangesets returns the production ChangesetOps implementation.
func NewChangesets() *Changesets { return &Changesets{} }

func (Changesets) HasChangesets(repoDir string) bool {
	return changeset.HasChangesets(repoDir)
}

func (Changesets) ReadChangesets(repoDir string) ([]*changeset.Changeset, error) {
	return changeset.ReadChangesets(repoDir)
}

func (Changesets) PredictNextVersion(repoDir, repoName string, current semver.Version) (*changeset.Prediction, error) {
	return changeset.PredictNextVersion(repoDir, repoName, current)
}
