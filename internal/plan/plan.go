// Package plan implements the fixed-point plan engine (C5, §4.5): given a
// repository set, predict the version every repository will end up at once
// changesets and cross-repository dependency updates are accounted for,
// without touching the registry or the file system beyond reading
// changesets. This is widely considered the hardest part of the system —
// the fixed point has to converge in the presence of escalation (a
// dependency update forcing a bigger bump than a package's own changesets
// asked for) and cascading breakage.
package plan

import (
	"fmt"
	"math"
	"sort"

	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/manifest"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// MaxIterations bounds the fixed-point loop (§4.5 step 2).
const MaxIterations = 10

// ChangesetOps is the subset of changeset operations the plan engine needs,
// injected so it stays pure with respect to the file system in tests.
type ChangesetOps interface {
	HasChangesets(repoDir string) bool
	PredictNextVersion(repoDir, repoName string, current semver.Version) (*changeset.Prediction, error)
}

// defaultChangesetOps reads real changeset files from disk.
type defaultChangesetOps struct{}

func (defaultChangesetOps) HasChangesets(repoDir string) bool {
	return changeset.HasChangesets(repoDir)
}

func (defaultChangesetOps) PredictNextVersion(repoDir, repoName string, current semver.Version) (*changeset.Prediction, error) {
	return changeset.PredictNextVersion(repoDir, repoName, current)
}

// Options configures GeneratePlan.
type Options struct {
	Verbose      bool
	ChangesetOps ChangesetOps
}

// GeneratePlan runs C5's algorithm over repos and returns the resulting Plan.
func GeneratePlan(repos []*repository.Descriptor, opts Options) *types.Plan {
	ops := opts.ChangesetOps
	if ops == nil {
		ops = defaultChangesetOps{}
	}

	byName := repository.ByName(repos)

	validation, err := graph.Validate(repos, graph.ValidateOptions{ThrowOnProductionCycles: false})
	plan := &types.Plan{}
	if err != nil {
		plan.Errors = append(plan.Errors, err.Error())
		return plan
	}

	plan.Warnings = append(plan.Warnings, validation.Warnings...)

	if validation.SortError != nil {
		for _, cycle := range validation.ProductionCycles {
			plan.Errors = append(plan.Errors, "Production dependency cycle: "+formatCycle(cycle))
		}
		return plan
	}

	order := validation.PublishingOrder

	predicted := map[string]semver.Version{}
	breaking := map[string]bool{}
	changes := map[string]*types.VersionChange{}

	var verbose *types.VerboseInfo
	if opts.Verbose {
		verbose = &types.VerboseInfo{}
		for _, n := range validation.Graph.Nodes {
			verbose.EdgeCount += len(n.Deps)
		}
	}
	record := func(iteration int, name string, action types.IterationAction) {
		if verbose != nil {
			verbose.Iterations = append(verbose.Iterations, types.IterationRecord{Iteration: iteration, Package: name, Action: action})
		}
	}

	// 1. Initial scan.
	for _, name := range order {
		repo := byName[name]
		if !ops.HasChangesets(repo.Dir) {
			continue
		}
		pred, predErr := ops.PredictNextVersion(repo.Dir, name, repo.Version)
		if predErr != nil {
			plan.Errors = append(plan.Errors, fmt.Sprintf("%s: %v", name, predErr))
			continue
		}
		if pred == nil {
			continue
		}

		isBreaking := semver.IsBreaking(repo.Version, pred.BumpType)
		if isBreaking {
			breaking[name] = true
		}
		predicted[name] = pred.Version
		changes[name] = &types.VersionChange{
			Package:       name,
			From:          repo.Version,
			To:            pred.Version,
			BumpType:      pred.BumpType,
			Breaking:      isBreaking,
			HasChangesets: true,
		}
		record(0, name, types.ActionPublish)
	}

	// 2. Fixed-point loop.
	var finalUpdates map[string][]types.DependencyUpdate
	iteration := 1
	changedLastIteration := false
	for ; iteration <= MaxIterations; iteration++ {
		finalUpdates = computeDependencyUpdates(order, byName, predicted)
		changedLastIteration = false

		for _, name := range order {
			repo := byName[name]
			updates := finalUpdates[name]
			requiredBump := computeRequiredBump(repo, updates, breaking)
			if requiredBump == "" {
				continue
			}

			existing, hasChange := changes[name]
			if hasChange {
				if semver.CompareBump(requiredBump, existing.BumpType) <= 0 {
					continue
				}
				existingBump := existing.BumpType
				to := semver.Bump(repo.Version, requiredBump)
				isBreaking := semver.IsBreaking(repo.Version, requiredBump)

				existing.BumpType = requiredBump
				existing.To = to
				existing.Breaking = isBreaking
				existing.NeedsBumpEscalation = true
				existing.ExistingBump = existingBump
				existing.RequiredBump = requiredBump

				predicted[name] = to
				if isBreaking {
					breaking[name] = true
				}
				changedLastIteration = true
				record(iteration, name, types.ActionEscalation)
				continue
			}

			to := semver.Bump(repo.Version, requiredBump)
			isBreaking := semver.IsBreaking(repo.Version, requiredBump)
			changes[name] = &types.VersionChange{
				Package:               name,
				From:                  repo.Version,
				To:                    to,
				BumpType:              requiredBump,
				Breaking:              isBreaking,
				HasChangesets:         false,
				WillGenerateChangeset: true,
				RequiredBump:          requiredBump,
			}
			predicted[name] = to
			if isBreaking {
				breaking[name] = true
			}
			changedLastIteration = true
			record(iteration, name, types.ActionAutoChangeset)
		}

		if !changedLastIteration {
			break
		}
	}

	if iteration > MaxIterations && changedLastIteration {
		pending := pendingPackages(order, byName, finalUpdates, breaking)
		remaining := int(math.Ceil(float64(len(pending)) / 2))
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"plan did not converge after reaching the maximum iterations (%d); %d package(s) still eligible for processing (estimated %d more iteration(s) needed): %v",
			MaxIterations, len(pending), remaining, pending))
	}

	// 3. Cascades.
	plan.BreakingCascades = buildCascades(order, finalUpdates, breaking)

	// Assemble the plan.
	plan.PublishingOrder = order
	for _, name := range order {
		if ch, ok := changes[name]; ok {
			plan.VersionChanges = append(plan.VersionChanges, *ch)
		}
	}
	plan.DependencyUpdates = flattenUpdates(finalUpdates)
	plan.Verbose = verbose

	return plan
}

// formatCycle renders a cycle's members (as returned by
// Graph.DetectCyclesByType, which does not repeat the first member) as an
// arrow chain that closes back on itself, e.g. "x → y → x" (§8 scenario 5).
func formatCycle(members []string) string {
	closed := append(append([]string{}, members...), members[0])
	out := closed[0]
	for _, m := range closed[1:] {
		out += " → " + m
	}
	return out
}

// computeDependencyUpdates recomputes, for every repository in order, which
// of its declared dependencies no longer cover the currently predicted
// version of their target (§4.5 step 2, first bullet).
func computeDependencyUpdates(order []string, byName map[string]*repository.Descriptor, predicted map[string]semver.Version) map[string][]types.DependencyUpdate {
	out := make(map[string][]types.DependencyUpdate, len(order))
	for _, name := range order {
		repo := byName[name]
		var updates []types.DependencyUpdate
		for _, dep := range repo.SortedDeps() {
			newVersion, ok := predicted[dep.Name]
			if !ok {
				continue
			}
			if !manifest.NeedsUpdate(dep.Range, newVersion) {
				continue
			}
			updates = append(updates, types.DependencyUpdate{
				DependentPackage:  name,
				UpdatedDependency: dep.Name,
				CurrentRange:      dep.Range,
				NewVersion:        newVersion,
				Kind:              dep.Kind,
				CausesRepublish:   dep.Kind.CausesRepublish(),
			})
		}
		out[name] = updates
	}
	return out
}

// computeRequiredBump implements §4.5 step 2's second bullet.
func computeRequiredBump(repo *repository.Descriptor, updates []types.DependencyUpdate, breaking map[string]bool) semver.BumpType {
	hasProdPeer := false
	hasBreakingTarget := false
	for _, u := range updates {
		if u.Kind != types.Prod && u.Kind != types.Peer {
			continue
		}
		hasProdPeer = true
		if breaking[u.UpdatedDependency] {
			hasBreakingTarget = true
		}
	}

	switch {
	case hasBreakingTarget:
		if repo.Version.Major == 0 {
			return semver.Minor
		}
		return semver.Major
	case hasProdPeer:
		return semver.Patch
	default:
		return ""
	}
}

// buildCascades records, for each breaking source, every dependent whose
// prod/peer update targets it, in first-discovery order (§4.5 step 3).
func buildCascades(order []string, updates map[string][]types.DependencyUpdate, breaking map[string]bool) map[string][]string {
	cascades := map[string][]string{}
	seen := map[string]map[string]bool{}

	for _, name := range order {
		for _, u := range updates[name] {
			if u.Kind != types.Prod && u.Kind != types.Peer {
				continue
			}
			if !breaking[u.UpdatedDependency] {
				continue
			}
			if seen[u.UpdatedDependency] == nil {
				seen[u.UpdatedDependency] = map[string]bool{}
			}
			if seen[u.UpdatedDependency][name] {
				continue
			}
			seen[u.UpdatedDependency][name] = true
			cascades[u.UpdatedDependency] = append(cascades[u.UpdatedDependency], name)
		}
	}
	return cascades
}

// flattenUpdates collects every dependency update across all repositories
// and sorts them by dependent name then dependency name, both ascending
// (§4.5 ordering guarantees).
func flattenUpdates(updates map[string][]types.DependencyUpdate) []types.DependencyUpdate {
	var all []types.DependencyUpdate
	for _, list := range updates {
		all = append(all, list...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DependentPackage != all[j].DependentPackage {
			return all[i].DependentPackage < all[j].DependentPackage
		}
		return all[i].UpdatedDependency < all[j].UpdatedDependency
	})
	return all
}

// pendingPackages lists, in publishing order, packages that still had an
// unresolved prod/peer dependency update against a breaking source when the
// loop exhausted its iteration budget (§4.5 step 4).
func pendingPackages(order []string, byName map[string]*repository.Descriptor, updates map[string][]types.DependencyUpdate, breaking map[string]bool) []string {
	var pending []string
	for _, name := range order {
		bump := computeRequiredBump(byName[name], updates[name], breaking)
		if bump != "" {
			pending = append(pending, name)
		}
	}
	return pending
}
