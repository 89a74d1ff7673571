// Package report persists an operator-facing snapshot of the last
// publishing run to `.waymark/last-run.yaml` (§1.3 supplement). It is
// purely diagnostic: the resumability guarantee spec §4.9 describes comes
// from on-disk changeset/manifest state, not from this file, so a missing
// or stale report never blocks a run.
package report

import (
	"fmt"
	"time"

	"github.com/waymark/waymark/internal/fileutil"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

// DefaultPath is the standard location of the last-run report, relative
// to a workspace root.
const DefaultPath = ".waymark/last-run.yaml"

// PackageOutcome is one repository's result within a run, flattening
// types.PublishingResult's Published/Failed slices into a single
// per-package record for easy scanning.
type PackageOutcome struct {
	Name     string         `yaml:"name"`
	Version  string         `yaml:"version,omitempty"`
	BumpType semver.BumpType `yaml:"bump_type,omitempty"`
	DryRun   bool           `yaml:"dry_run,omitempty"`
	Failed   bool           `yaml:"failed,omitempty"`
	Error    string         `yaml:"error,omitempty"`
}

// Run is the full last-run snapshot.
type Run struct {
	Date       time.Time        `yaml:"date"`
	OK         bool             `yaml:"ok"`
	DurationMs int64            `yaml:"duration_ms"`
	Packages   []PackageOutcome `yaml:"packages"`
	Warnings   []string         `yaml:"warnings,omitempty"`
}

// FromPublishingResult flattens a types.PublishingResult into a Run,
// stamped with the given time (callers pass time.Now() since this package
// cannot call it directly per the workflow's determinism constraints).
func FromPublishingResult(result *types.PublishingResult, at time.Time) *Run {
	run := &Run{
		Date:       at,
		OK:         result.OK,
		DurationMs: result.DurationMs,
		Warnings:   result.Warnings,
	}

	for _, p := range result.Published {
		run.Packages = append(run.Packages, PackageOutcome{
			Name:     p.Name,
			Version:  p.Version.String(),
			BumpType: p.BumpType,
			DryRun:   p.DryRun,
		})
	}
	for _, f := range result.Failed {
		run.Packages = append(run.Packages, PackageOutcome{
			Name:   f.Name,
			Failed: true,
			Error:  f.Error,
		})
	}

	return run
}

// Save writes run to path as YAML, creating parent directories as needed.
func Save(run *Run, path string) error {
	if err := fileutil.WriteYAMLFile(path, run, 0o644); err != nil {
		return fmt.Errorf("writing run report to %s: %w", path, err)
	}
	return nil
}

// Load reads the last-run report from path. A missing file is not an
// error: it returns (nil, nil), since the report is purely diagnostic.
func Load(path string) (*Run, error) {
	if !fileutil.PathExists(path) {
		return nil, nil
	}

	var run Run
	if err := fileutil.ReadYAMLFile(path, &run); err != nil {
		return nil, fmt.Errorf("reading run report from %s: %w", path, err)
	}
	return &run, nil
}
