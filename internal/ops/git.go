package ops

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	waymarkerrors "github.com/waymark/waymark/internal/errors"
)

// Signature is the commit/tag author waymark writes as, grounded on the
// teacher's git package default.
var Signature = object.Signature{Name: "waymark", Email: "waymark@local"}

// GitRepo is the production GitOps implementation, backed by go-git for
// everything go-git supports and by a shelled-out `git` for stash, which
// go-git's porcelain does not expose.
type GitRepo struct{}

// NewGitRepo returns the production GitOps implementation.
func NewGitRepo() *GitRepo { return &GitRepo{} }

func branchRefName(branch string) plumbing.ReferenceName {
	if strings.HasPrefix(branch, "refs/") {
		return plumbing.ReferenceName(branch)
	}
	return plumbing.NewBranchReferenceName(branch)
}

func (GitRepo) open(repoDir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(repoDir)
	if err != nil {
		return nil, waymarkerrors.NewGitError(repoDir, "open repository", err)
	}
	return repo, nil
}

func (g GitRepo) CurrentBranch(repoDir string) (string, error) {
	repo, err := g.open(repoDir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", waymarkerrors.NewGitError(repoDir, "read HEAD", err)
	}
	if !head.Name().IsBranch() {
		return "", waymarkerrors.NewGitError(repoDir, "HEAD is detached", nil)
	}
	return head.Name().Short(), nil
}

func (g GitRepo) CurrentCommit(repoDir string) (string, error) {
	repo, err := g.open(repoDir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", waymarkerrors.NewGitError(repoDir, "read HEAD", err)
	}
	return head.Hash().String(), nil
}

// CleanWorkspace reports whether repoDir has no staged or unstaged changes.
func (g GitRepo) CleanWorkspace(repoDir string) (bool, error) {
	repo, err := g.open(repoDir)
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, waymarkerrors.NewGitError(repoDir, "get status", err)
	}
	return status.IsClean(), nil
}

func (g GitRepo) Checkout(repoDir, ref string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	hash, resolveErr := repo.ResolveRevision(plumbing.Revision(ref))
	opts := &gogit.CheckoutOptions{}
	if resolveErr == nil {
		opts.Hash = *hash
	} else {
		opts.Branch = branchRefName(ref)
	}
	if err := wt.Checkout(opts); err != nil {
		return waymarkerrors.NewGitError(repoDir, "checkout "+ref, err)
	}
	return nil
}

func (g GitRepo) Pull(repoDir string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	if err := wt.Pull(&gogit.PullOptions{}); err != nil && err != gogit.NoErrAlreadyUpToDate {
		return waymarkerrors.NewGitError(repoDir, "pull", err)
	}
	return nil
}

func (g GitRepo) SwitchBranch(repoDir, branch string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: branchRefName(branch)}); err != nil {
		return waymarkerrors.NewGitError(repoDir, "switch to "+branch, err)
	}
	return nil
}

func (g GitRepo) HasRemote(repoDir string) (bool, error) {
	repo, err := g.open(repoDir)
	if err != nil {
		return false, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return false, waymarkerrors.NewGitError(repoDir, "list remotes", err)
	}
	return len(remotes) > 0, nil
}

func (g GitRepo) Add(repoDir string, paths []string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	for _, p := range paths {
		rel := p
		if filepath.IsAbs(p) {
			if r, err := filepath.Rel(repoDir, p); err == nil {
				rel = r
			}
		}
		if _, err := wt.Add(rel); err != nil {
			return waymarkerrors.NewGitError(repoDir, "stage "+rel, err)
		}
	}
	return nil
}

func (g GitRepo) Commit(repoDir, message string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	sig := Signature
	sig.When = time.Now()
	if _, err := wt.Commit(message, &gogit.CommitOptions{Author: &sig}); err != nil {
		return waymarkerrors.NewGitError(repoDir, "commit", err)
	}
	return nil
}

func (g GitRepo) AddAndCommit(repoDir string, paths []string, message string) error {
	if err := g.Add(repoDir, paths); err != nil {
		return err
	}
	return g.Commit(repoDir, message)
}

func (g GitRepo) HasChanges(repoDir string) (bool, error) {
	clean, err := g.CleanWorkspace(repoDir)
	if err != nil {
		return false, err
	}
	return !clean, nil
}

func (g GitRepo) ChangedFiles(repoDir string) ([]string, error) {
	repo, err := g.open(repoDir)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, waymarkerrors.NewGitError(repoDir, "get worktree", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, waymarkerrors.NewGitError(repoDir, "get status", err)
	}
	var files []string
	for path := range status {
		files = append(files, path)
	}
	return files, nil
}

func (g GitRepo) Tag(repoDir, tagName, message string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return waymarkerrors.NewGitError(repoDir, "read HEAD", err)
	}
	sig := Signature
	sig.When = time.Now()
	if _, err := repo.CreateTag(tagName, head.Hash(), &gogit.CreateTagOptions{Tagger: &sig, Message: message}); err != nil {
		return waymarkerrors.NewGitError(repoDir, "create tag "+tagName, err)
	}
	return nil
}

func (g GitRepo) PushTag(repoDir, tagName string) error {
	repo, err := g.open(repoDir)
	if err != nil {
		return err
	}
	refSpec := fmt.Sprintf("refs/tags/%s:refs/tags/%s", tagName, tagName)
	err = repo.Push(&gogit.PushOptions{RefSpecs: []config.RefSpec{config.RefSpec(refSpec)}})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return waymarkerrors.NewGitError(repoDir, "push tag "+tagName, err)
	}
	return nil
}

// Stash and StashPop shell out: go-git's porcelain has no stash support.
func (g GitRepo) Stash(repoDir string) error {
	return runGit(repoDir, "stash", "push", "--include-untracked")
}

func (g GitRepo) StashPop(repoDir string) error {
	return runGit(repoDir, "stash", "pop")
}

func (g GitRepo) FileChangedBetween(repoDir, path, fromRef, toRef string) (bool, error) {
	out, err := gitOutput(repoDir, "diff", "--name-only", fromRef, toRef, "--", path)
	if err != nil {
		return false, waymarkerrors.NewGitError(repoDir, "diff "+fromRef+".."+toRef, err)
	}
	return strings.TrimSpace(out) != "", nil
}

func runGit(repoDir string, args ...string) error {
	_, err := gitOutput(repoDir, args...)
	return err
}

func gitOutput(repoDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
