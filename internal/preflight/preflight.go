// Package preflight implements C8's pre-flight validator (§4.8): a single,
// non-short-circuiting gate run before any mutation touches a repository
// set. Every check accumulates into the result; only a check that actually
// fails produces an error, never a warning.
package preflight

import (
	"fmt"
	"sort"

	"github.com/waymark/waymark/internal/ops"
	"github.com/waymark/waymark/internal/repository"
)

// DefaultRequiredBranch is used when PreflightOptions.RequiredBranch is
// empty.
const DefaultRequiredBranch = "main"

// Checker is the production implementation of ops.PreflightOps.
type Checker struct {
	Git       ops.GitOps
	Build     ops.BuildOps
	Registry  ops.RegistryOps
	Changeset ops.ChangesetOps
}

// New returns a Checker wired from agg's substructures.
func New(agg *ops.Aggregate) *Checker {
	return &Checker{Git: agg.Git, Build: agg.Build, Registry: agg.Registry, Changeset: agg.Changeset}
}

// RunPreflightChecks implements ops.PreflightOps.
func (c *Checker) RunPreflightChecks(repos []*repository.Descriptor, opts ops.PreflightOptions) (*ops.PreflightResult, error) {
	requiredBranch := opts.RequiredBranch
	if requiredBranch == "" {
		requiredBranch = DefaultRequiredBranch
	}

	result := &ops.PreflightResult{}

	names := make([]string, len(repos))
	for i, r := range repos {
		names[i] = r.Name
	}
	sort.Strings(names)
	byName := repository.ByName(repos)

	for _, name := range names {
		repo := byName[name]

		clean, err := c.Git.CleanWorkspace(repo.Dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: checking workspace cleanliness: %v", repo.Name, err))
		} else if !clean {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: working tree is not clean", repo.Name))
		}

		branch, err := c.Git.CurrentBranch(repo.Dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: checking current branch: %v", repo.Name, err))
		} else if branch != requiredBranch {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: on branch %q, required %q", repo.Name, branch, requiredBranch))
		}

		if !repo.Publishable {
			continue
		}

		hasChangesets := c.Changeset.HasChangesets(repo.Dir)
		if hasChangesets {
			result.ReposWithChangesets = append(result.ReposWithChangesets, repo.Name)

			buildResult, err := c.Build.BuildPackage(repo.Dir)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: build failed: %v", repo.Name, err))
			} else if !buildResult.OK {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: build failed:\n%s\n%s", repo.Name, buildResult.Stdout, buildResult.Stderr))
			}
		} else {
			result.ReposWithoutChangesets = append(result.ReposWithoutChangesets, repo.Name)
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no changesets found", repo.Name))
		}
	}

	if err := c.Registry.CheckIdentity(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("registry authentication failed: %v", err))
	}

	result.OK = len(result.Errors) == 0
	return result, nil
}
