package types

import "github.com/waymark/waymark/pkg/semver"

// VersionChange records one repository's predicted version transition
// within a Plan (§3).
type VersionChange struct {
	Package  string
	From     semver.Version
	To       semver.Version
	BumpType semver.BumpType
	Breaking bool

	HasChangesets         bool
	WillGenerateChangeset bool
	NeedsBumpEscalation   bool
	ExistingBump          semver.BumpType
	RequiredBump          semver.BumpType
}

// DependencyUpdate records that dependentPackage's manifest range on
// updatedDependency no longer covers the dependency's predicted or
// published version (§3).
type DependencyUpdate struct {
	DependentPackage   string
	UpdatedDependency  string
	CurrentRange       Range
	NewVersion         semver.Version
	Kind               DependencyKind
	CausesRepublish    bool
}

// Plan is the output of the plan engine (C5): the full picture of what a
// publish run would do, without having touched the registry.
type Plan struct {
	PublishingOrder   []string
	VersionChanges    []VersionChange
	DependencyUpdates []DependencyUpdate
	BreakingCascades  map[string][]string
	Warnings          []string
	Info              []string
	Errors            []string
	Verbose           *VerboseInfo
}

// VerboseInfo carries the plan engine's diagnostic, per-iteration record
// when verbose mode is requested (§4.5).
type VerboseInfo struct {
	Iterations []IterationRecord
	EdgeCount  int
}

// IterationAction classifies what the fixed-point loop did for a package
// in a single iteration.
type IterationAction string

const (
	ActionPublish       IterationAction = "publish"
	ActionEscalation    IterationAction = "escalation"
	ActionAutoChangeset IterationAction = "auto-changeset"
	ActionSkip          IterationAction = "skip"
)

// IterationRecord is one package's decision within one fixed-point pass.
type IterationRecord struct {
	Iteration int
	Package   string
	Action    IterationAction
}

// PublishedVersion records the outcome of successfully publishing one
// repository.
type PublishedVersion struct {
	Name      string
	Version   semver.Version
	BumpType  semver.BumpType
	Breaking  bool
	Commit    string
	DryRun    bool
}

// PublishFailure pairs a repository name with the error that stopped its
// publish.
type PublishFailure struct {
	Name  string
	Error string
}

// PublishingResult is C9's final report (§3).
type PublishingResult struct {
	OK         bool
	Published  []PublishedVersion
	Failed     []PublishFailure
	Warnings   []string
	DurationMs int64
}
