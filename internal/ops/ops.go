// Package ops defines the aggregate side-effect interface (C10, §4.10).
// The orchestrator is injected with the whole Aggregate, the pre-flight
// validator is built from it, the updater takes only its GitOps, and the
// plan engine takes its own changeset interface instead. Every operation returns an explicit error rather than panicking or
// exiting, so the core stays a single cooperative call chain (§5) that a
// caller can wrap, retry, or fake in tests.
package ops

import (
	"time"

	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/semver"
)

// ChangesetOps reads and predicts from a repository's reserved changeset
// directory (§4.2, §4.6).
type ChangesetOps interface {
	HasChangesets(repoDir string) bool
	ReadChangesets(repoDir string) ([]*changeset.Changeset, error)
	PredictNextVersion(repoDir, repoName string, current semver.Version) (*changeset.Prediction, error)
}

// GitOps wraps every git operation the orchestrator and updater need
// against one local clone.
type GitOps interface {
	CurrentBranch(repoDir string) (string, error)
	CurrentCommit(repoDir string) (string, error)
	CleanWorkspace(repoDir string) (bool, error)
	Checkout(repoDir, ref string) error
	Pull(repoDir string) error
	SwitchBranch(repoDir, branch string) error
	HasRemote(repoDir string) (bool, error)
	Add(repoDir string, paths []string) error
	Commit(repoDir, message string) error
	AddAndCommit(repoDir string, paths []string, message string) error
	HasChanges(repoDir string) (bool, error)
	ChangedFiles(repoDir string) ([]string, error)
	Tag(repoDir, tagName, message string) error
	PushTag(repoDir, tagName string) error
	Stash(repoDir string) error
	StashPop(repoDir string) error
	FileChangedBetween(repoDir, path, fromRef, toRef string) (bool, error)
}

// ProcessResult is the discriminated result of a spawned subprocess (§7):
// OK reports success; Stdout/Stderr carry output for diagnostics and the
// cache-healing heuristics in §4.9.
type ProcessResult struct {
	OK      bool
	Stdout  string
	Stderr  string
	Message string
}

// ProcessSpec names the external command to run and where (§6's publish,
// build, and deploy sub-commands all go through this one shape).
type ProcessSpec struct {
	Cmd  string
	Args []string
	Cwd  string
}

// ProcessOps spawns external sub-commands and waits for them to finish.
type ProcessOps interface {
	Spawn(spec ProcessSpec) (ProcessResult, error)
}

// WaitPolicy configures RegistryOps.WaitForPackage's exponential backoff
// (§4.9): Initial is the first delay, Growth multiplies it each attempt up
// to Max, and the whole poll gives up after MaxAttempts or Timeout,
// whichever comes first.
type WaitPolicy struct {
	Initial     time.Duration
	Growth      float64
	Max         time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultWaitPolicy is §4.9's registry-availability policy: 1s initial
// delay, 1.5x growth, capped at 60s, at most 30 attempts, 10 minute total
// budget unless the caller overrides maxWaitMs.
var DefaultWaitPolicy = WaitPolicy{
	Initial:     1 * time.Second,
	Growth:      1.5,
	Max:         60 * time.Second,
	MaxAttempts: 30,
	Timeout:     10 * time.Minute,
}

// RegistryOps is every operation that talks to the package registry.
type RegistryOps interface {
	WaitForPackage(name string, version semver.Version, policy WaitPolicy) error
	IsPackageAvailable(name string, version semver.Version) (bool, error)
	CheckIdentity() error
	Ping() error
	Install(cwd string) (ProcessResult, error)
	CacheClean(cwd string) error
}

// FilesystemOps is a narrow file I/O surface carried on the Aggregate. No
// package reads or writes through it: manifests, changesets, and the run
// report go to disk through their own packages.
type FilesystemOps interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
}

// BuildOps invokes the environment's build sub-command (§6).
type BuildOps interface {
	BuildPackage(repoDir string) (ProcessResult, error)
}

// PreflightOptions configures RunPreflightChecks (§4.8).
type PreflightOptions struct {
	RequiredBranch string // defaults to "main" when empty
}

// PreflightResult is C8's report: ok is false iff any check produced an
// error (warnings alone don't fail a run).
type PreflightResult struct {
	OK                   bool
	Warnings             []string
	Errors               []string
	ReposWithChangesets  []string
	ReposWithoutChangesets []string
}

// PreflightOps runs the pre-flight validator (C8).
type PreflightOps interface {
	RunPreflightChecks(repos []*repository.Descriptor, opts PreflightOptions) (*PreflightResult, error)
}

// Aggregate bundles every C10 substructure into one value (§4.10). The
// orchestrator takes it whole; preflight.New and the updater take parts of
// it, and the plan engine does not take it.
type Aggregate struct {
	Changeset  ChangesetOps
	Git        GitOps
	Process    ProcessOps
	Registry   RegistryOps
	Preflight  PreflightOps
	Filesystem FilesystemOps
	Build      BuildOps
}

// NewDefault wires the production implementations together: real git via
// go-git, real subprocess spawning, a registry at registryURL, and real
// file I/O. Preflight is left nil; callers that need it wire
// internal/preflight.New(aggregate) in after construction, since the
// preflight checker itself depends on this aggregate.
func NewDefault(registryURL string, buildCommand string) *Aggregate {
	process := NewSubprocess()
	return &Aggregate{
		Changeset:  NewChangesets(),
		Git:        NewGitRepo(),
		Process:    process,
		Registry:   NewRegistry(registryURL, process),
		Filesystem: NewFilesystem(),
		Build:      NewBuilder(process, buildCommand),
	}
}
