// Package publish implements C9's publishing orchestrator (§4.9): the
// single sequential pass that turns a plan into published packages,
// propagated manifest updates, and an optional deploy step. Subprocesses,
// registry calls, and git go through the injected ops.Aggregate; manifest
// files are read with internal/manifest and rewritten through
// internal/update, which use the filesystem directly rather than the
// Aggregate's FilesystemOps.
package publish

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/manifest"
	"github.com/waymark/waymark/internal/ops"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/internal/update"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// MaxIterations bounds the outer fixed-point loop over passes (§4.9).
const MaxIterations = 10

// DefaultMaxWaitMs is the registry-availability total timeout budget (§4.9).
const DefaultMaxWaitMs = 600000

// Options configures Publish.
type Options struct {
	DryRun          bool
	UpdateDeps      bool // always true in production; the orchestrator honors false only under test
	VersionStrategy types.RangeStrategy
	Deploy          bool
	MaxWaitMs       int64
	SkipInstall     bool
	RequiredBranch  string
}

// PublishCommand and DeployCommand name the external sub-commands invoked
// via ops.ProcessOps (§6); illustrative names, overridable by callers whose
// environment uses different binaries.
var (
	PublishCommand = "publish"
	DeployCommand  = "deploy"
)

// Publish runs C9's algorithm over repos using agg for every side effect.
func Publish(repos []*repository.Descriptor, opts Options, agg *ops.Aggregate) *types.PublishingResult {
	start := time.Now()
	result := &types.PublishingResult{OK: true}

	strategy := opts.VersionStrategy
	if strategy == "" {
		strategy = types.StrategyCaret
	}
	maxWaitMs := opts.MaxWaitMs
	if maxWaitMs == 0 {
		maxWaitMs = DefaultMaxWaitMs
	}

	if !opts.DryRun && agg.Preflight != nil {
		pf, _ := agg.Preflight.RunPreflightChecks(repos, ops.PreflightOptions{RequiredBranch: opts.RequiredBranch})
		if pf == nil || !pf.OK {
			result.OK = false
			for _, e := range pf.Errors {
				result.Failed = append(result.Failed, types.PublishFailure{Name: "preflight", Error: e})
			}
			result.DurationMs = time.Since(start).Milliseconds()
			return result
		}
	}

	validation, err := graph.Validate(repos, graph.ValidateOptions{ThrowOnProductionCycles: true})
	if err != nil {
		result.OK = false
		result.Failed = append(result.Failed, types.PublishFailure{Name: "graph", Error: err.Error()})
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	byName := repository.ByName(repos)
	order := validation.PublishingOrder

	published := map[string]*types.PublishedVersion{}
	changedRepos := map[string]bool{}
	fatal := false

	for iteration := 0; iteration < MaxIterations && !fatal; iteration++ {
		publishedThisPass := 0
		manifestRewritten := map[string]bool{}

		for _, name := range order {
			if _, done := published[name]; done {
				continue
			}
			repo := byName[name]
			if !agg.Changeset.HasChangesets(repo.Dir) {
				continue
			}

			pv, err := publishOne(agg, repo, opts.DryRun, maxWaitMs)
			if err != nil {
				result.Failed = append(result.Failed, types.PublishFailure{Name: name, Error: err.Error()})
				fatal = true
				break
			}

			published[name] = pv
			publishedThisPass++
			changedRepos[name] = true

			if opts.UpdateDeps || !opts.DryRun {
				if rewritten, err := propagate(agg, repos, name, pv.Version, strategy); err != nil {
					result.Failed = append(result.Failed, types.PublishFailure{Name: name, Error: err.Error()})
					fatal = true
					break
				} else {
					for r := range rewritten {
						manifestRewritten[r] = true
						changedRepos[r] = true
					}
				}
			}
		}

		if publishedThisPass == 0 {
			break
		}

		if !opts.SkipInstall && !opts.DryRun {
			batchInstall(agg, byName, manifestRewritten, result)
		}

		if iteration == MaxIterations-1 {
			result.Warnings = append(result.Warnings, "publishing did not converge within the iteration budget")
		}
	}

	if !opts.DryRun {
		devRewritten := devDependencyPass(agg, repos, published, strategy)
		for r := range devRewritten {
			changedRepos[r] = true
		}
		if !opts.SkipInstall && len(devRewritten) > 0 {
			batchInstall(agg, byName, devRewritten, result)
		}
	}

	if opts.Deploy && !opts.DryRun {
		deployChanged(agg, byName, changedRepos, result)
	}

	for _, name := range order {
		if pv, ok := published[name]; ok {
			result.Published = append(result.Published, *pv)
		}
	}

	result.OK = len(result.Failed) == 0
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

// publishOne runs step 2 and 3 of §4.9's per-package sequence: invoke (or
// simulate) the publish operation, then wait for registry availability.
func publishOne(agg *ops.Aggregate, repo *repository.Descriptor, dryRun bool, maxWaitMs int64) (*types.PublishedVersion, error) {
	if dryRun {
		pred, err := agg.Changeset.PredictNextVersion(repo.Dir, repo.Name, repo.Version)
		if err != nil {
			return nil, err
		}
		if pred == nil {
			return nil, fmt.Errorf("no changesets to predict a version from")
		}
		return &types.PublishedVersion{
			Name:     repo.Name,
			Version:  pred.Version,
			BumpType: pred.BumpType,
			Breaking: semver.IsBreaking(repo.Version, pred.BumpType),
			Commit:   "dry_run",
			DryRun:   true,
		}, nil
	}

	spawnResult, err := agg.Process.Spawn(ops.ProcessSpec{Cmd: PublishCommand, Args: []string{"--no-build"}, Cwd: repo.Dir})
	if err != nil {
		return nil, err
	}
	if !spawnResult.OK {
		return nil, fmt.Errorf("publish failed: %s", firstNonEmpty(spawnResult.Stderr, spawnResult.Message))
	}

	path := filepath.Join(repo.Dir, manifest.FileName)
	m, err := manifest.Read(path)
	if err != nil {
		return nil, fmt.Errorf("re-reading manifest after publish: %w", err)
	}
	newVersion, err := semver.Parse(m.Version)
	if err != nil {
		return nil, fmt.Errorf("parsing published version: %w", err)
	}
	bumpType := semver.DetectBump(repo.Version, newVersion)
	commit, err := agg.Git.CurrentCommit(repo.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading commit after publish: %w", err)
	}

	policy := ops.DefaultWaitPolicy
	policy.Timeout = time.Duration(maxWaitMs) * time.Millisecond
	if err := agg.Registry.WaitForPackage(repo.Name, newVersion, policy); err != nil {
		return nil, err
	}

	return &types.PublishedVersion{
		Name:     repo.Name,
		Version:  newVersion,
		BumpType: bumpType,
		Breaking: semver.IsBreaking(repo.Version, bumpType),
		Commit:   commit,
	}, nil
}

// propagate implements §4.9 step 4: every repository with a prod or peer
// dependency on publishedName whose recorded range does not already cover
// newVersion gets its manifest rewritten via C7. The gate mirrors §4.7's
// needsUpdate rule (manifest.NeedsUpdate), the same check FindUpdatesNeeded
// applies when building the rewrite itself — a range can be compatible with
// newVersion under the looser constraint read (manifest.Satisfies) and
// still be worth bumping forward.
func propagate(agg *ops.Aggregate, repos []*repository.Descriptor, publishedName string, newVersion semver.Version, strategy types.RangeStrategy) (map[string]bool, error) {
	rewritten := map[string]bool{}
	for _, repo := range repos {
		if repo.Name == publishedName {
			continue
		}
		r, ok := prodOrPeerRange(repo, publishedName)
		if !ok || !manifest.NeedsUpdate(r, newVersion) {
			continue
		}
		res, err := update.UpdateManifest(agg.Git, repo.Dir, repo.Name, map[string]semver.Version{publishedName: newVersion}, update.Options{Strategy: strategy})
		if err != nil {
			return rewritten, fmt.Errorf("propagating %s to %s: %w", publishedName, repo.Name, err)
		}
		if res != nil {
			rewritten[repo.Name] = true
		}
	}
	return rewritten, nil
}

// devDependencyPass implements §4.9's final pass: after the outer loop
// converges, update (without republishing) every dev dependency whose
// target was published in this run.
func devDependencyPass(agg *ops.Aggregate, repos []*repository.Descriptor, published map[string]*types.PublishedVersion, strategy types.RangeStrategy) map[string]bool {
	rewritten := map[string]bool{}
	for _, repo := range repos {
		devUpdates := map[string]semver.Version{}
		for name, r := range repo.Dev {
			pv, ok := published[name]
			if !ok {
				continue
			}
			if manifest.NeedsUpdate(r, pv.Version) {
				devUpdates[name] = pv.Version
			}
		}
		if len(devUpdates) == 0 {
			continue
		}
		res, err := update.UpdateManifest(agg.Git, repo.Dir, repo.Name, devUpdates, update.Options{Strategy: strategy})
		if err == nil && res != nil {
			rewritten[repo.Name] = true
		}
	}
	return rewritten
}

func prodOrPeerRange(repo *repository.Descriptor, name string) (types.Range, bool) {
	if r, ok := repo.Prod[name]; ok {
		return r, true
	}
	r, ok := repo.Peer[name]
	return r, ok
}

// batchInstall implements §4.9's install-with-cache-healing wrapper: a
// failure whose stderr matches the "target not matched" family triggers one
// cache-clean-and-retry; any other failure is fatal for that repository but
// does not stop the others.
func batchInstall(agg *ops.Aggregate, byName map[string]*repository.Descriptor, names map[string]bool, result *types.PublishingResult) {
	for _, name := range sortedKeys(names) {
		repo := byName[name]
		res, err := agg.Registry.Install(repo.Dir)
		if err == nil && res.OK {
			continue
		}
		stderr := res.Stderr
		if err != nil {
			stderr = err.Error()
		}
		if isCacheMissError(stderr) {
			_ = agg.Registry.CacheClean(repo.Dir)
			res2, err2 := agg.Registry.Install(repo.Dir)
			if err2 == nil && res2.OK {
				continue
			}
			stderr = res2.Stderr
		}
		result.Failed = append(result.Failed, types.PublishFailure{Name: name, Error: "install failed: " + stderr})
	}
}

// isCacheMissError reports whether stderr matches the registry's
// "target not matched" family of errors that a cache-clean-and-retry can
// resolve (§4.9).
func isCacheMissError(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(stderr, "ETARGET") ||
		strings.Contains(lower, "etarget") ||
		strings.Contains(lower, "no matching version")
}

// deployChanged invokes the deploy operation for every repository changed
// in this run. Deploy failures are warnings, not errors (§4.9).
func deployChanged(agg *ops.Aggregate, byName map[string]*repository.Descriptor, changed map[string]bool, result *types.PublishingResult) {
	for _, name := range sortedKeys(changed) {
		repo := byName[name]
		res, err := agg.Process.Spawn(ops.ProcessSpec{Cmd: DeployCommand, Args: []string{"--no-build"}, Cwd: repo.Dir})
		if err != nil || !res.OK {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: deploy failed: %s", name, firstNonEmpty(res.Stderr, res.Message)))
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
