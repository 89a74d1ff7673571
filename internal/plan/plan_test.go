package plan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// fakeChangesetOps lets tests seed predictions without touching disk.
type fakeChangesetOps struct {
	predictions map[string]*changeset.Prediction
}

func (f *fakeChangesetOps) HasChangesets(repoDir string) bool {
	_, ok := f.predictions[repoDir]
	return ok
}

func (f *fakeChangesetOps) PredictNextVersion(repoDir, repoName string, current semver.Version) (*changeset.Prediction, error) {
	return f.predictions[repoDir], nil
}

func repo(name, version string, prod map[string]types.Range) *repository.Descriptor {
	return &repository.Descriptor{
		Name:        name,
		Dir:         "/repos/" + name,
		Version:     semver.MustParse(version),
		Prod:        prod,
		Publishable: true,
	}
}

func TestGeneratePlanDirectChangeset(t *testing.T) {
	repos := []*repository.Descriptor{repo("lib", "1.0.0", nil)}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/lib": {Version: semver.MustParse("1.1.0"), BumpType: semver.Minor},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})
	require.Len(t, p.VersionChanges, 1)
	assert.Equal(t, "lib", p.VersionChanges[0].Package)
	assert.Equal(t, "1.1.0", p.VersionChanges[0].To.String())
	assert.True(t, p.VersionChanges[0].HasChangesets)
}

func TestGeneratePlanPropagatesPatchToDependent(t *testing.T) {
	repos := []*repository.Descriptor{
		repo("app", "2.0.0", map[string]types.Range{"lib": "^1.0.0"}),
		repo("lib", "1.0.0", nil),
	}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/lib": {Version: semver.MustParse("1.1.0"), BumpType: semver.Minor},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})
	require.Len(t, p.VersionChanges, 2)

	var appChange *types.VersionChange
	for i := range p.VersionChanges {
		if p.VersionChanges[i].Package == "app" {
			appChange = &p.VersionChanges[i]
		}
	}
	require.NotNil(t, appChange)
	assert.Equal(t, semver.Patch, appChange.BumpType)
	assert.Equal(t, "2.0.1", appChange.To.String())
	assert.True(t, appChange.WillGenerateChangeset)

	require.Len(t, p.DependencyUpdates, 1)
	assert.Equal(t, "app", p.DependencyUpdates[0].DependentPackage)
	assert.Equal(t, "lib", p.DependencyUpdates[0].UpdatedDependency)
}

func TestGeneratePlanMajorBreakingCascadesAndEscalates(t *testing.T) {
	repos := []*repository.Descriptor{
		repo("app", "2.0.0", map[string]types.Range{"lib": "^1.0.0"}),
		repo("lib", "1.0.0", nil),
	}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/lib": {Version: semver.MustParse("2.0.0"), BumpType: semver.Major},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})

	var appChange *types.VersionChange
	for i := range p.VersionChanges {
		if p.VersionChanges[i].Package == "app" {
			appChange = &p.VersionChanges[i]
		}
	}
	require.NotNil(t, appChange)
	assert.Equal(t, semver.Major, appChange.BumpType)
	assert.Equal(t, "3.0.0", appChange.To.String())

	assert.Equal(t, []string{"app"}, p.BreakingCascades["lib"])
}

func TestGeneratePlanEscalatesZeroMajorToMinor(t *testing.T) {
	repos := []*repository.Descriptor{
		repo("app", "0.5.0", map[string]types.Range{"lib": "^1.0.0"}),
		repo("lib", "1.0.0", nil),
	}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/lib": {Version: semver.MustParse("2.0.0"), BumpType: semver.Major},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})
	var appChange *types.VersionChange
	for i := range p.VersionChanges {
		if p.VersionChanges[i].Package == "app" {
			appChange = &p.VersionChanges[i]
		}
	}
	require.NotNil(t, appChange)
	assert.Equal(t, semver.Minor, appChange.BumpType, "pre-1.0 packages escalate to minor, not major")
}

func TestGeneratePlanDevOnlyDependencyNeverCascades(t *testing.T) {
	repos := []*repository.Descriptor{
		{Name: "tool", Dir: "/repos/tool", Version: semver.MustParse("1.0.0"), Dev: map[string]types.Range{"lib": "^1.0.0"}, Publishable: true},
		repo("lib", "1.0.0", nil),
	}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/lib": {Version: semver.MustParse("2.0.0"), BumpType: semver.Major},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})
	for _, ch := range p.VersionChanges {
		assert.NotEqual(t, "tool", ch.Package, "a dev-only dependent must not receive an auto version change")
	}
	assert.Empty(t, p.BreakingCascades["lib"])
}

func TestGeneratePlanNoChangesetsProducesEmptyPlan(t *testing.T) {
	repos := []*repository.Descriptor{repo("lib", "1.0.0", nil)}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})
	assert.Empty(t, p.VersionChanges)
	assert.Empty(t, p.DependencyUpdates)
}

func TestGeneratePlanProductionCycleBlocksWithNoPublishingOrder(t *testing.T) {
	repos := []*repository.Descriptor{
		repo("x", "1.0.0", map[string]types.Range{"y": "^1.0.0"}),
		repo("y", "1.0.0", map[string]types.Range{"x": "^1.0.0"}),
	}
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})

	require.Len(t, p.Errors, 1)
	assert.Contains(t, p.Errors[0], "Production dependency cycle:")
	assert.Contains(t, p.Errors[0], "x → y → x")
	assert.Empty(t, p.PublishingOrder)
	assert.Empty(t, p.VersionChanges)
}

func TestGeneratePlanDivergentChainWarnsAfterMaxIterations(t *testing.T) {
	const depth = 12
	repos := make([]*repository.Descriptor, 0, depth)
	names := make([]string, depth)
	for i := 0; i < depth; i++ {
		names[i] = fmt.Sprintf("pkg%02d", i)
	}
	// pkgNN depends on pkg(NN+1); the leaf (last name) has no dependency.
	for i, name := range names {
		var prod map[string]types.Range
		if i < depth-1 {
			prod = map[string]types.Range{names[i+1]: "^1.0.0"}
		}
		repos = append(repos, repo(name, "1.0.0", prod))
	}

	leaf := names[depth-1]
	ops := &fakeChangesetOps{predictions: map[string]*changeset.Prediction{
		"/repos/" + leaf: {Version: semver.MustParse("2.0.0"), BumpType: semver.Major},
	}}

	p := GeneratePlan(repos, Options{ChangesetOps: ops})

	found := false
	for _, w := range p.Warnings {
		if strings.Contains(w, "maximum iterations") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a warning mentioning maximum iterations, got: %v", p.Warnings)
	assert.Less(t, len(p.VersionChanges), depth)
}
