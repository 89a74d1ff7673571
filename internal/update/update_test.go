package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/internal/manifest"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

type fakeGit struct {
	committed   bool
	commitMsg   string
	stagedPaths []string
}

func (f *fakeGit) CurrentBranch(string) (string, error)                            { return "main", nil }
func (f *fakeGit) CurrentCommit(string) (string, error)                            { return "deadbeef", nil }
func (f *fakeGit) CleanWorkspace(string) (bool, error)                             { return true, nil }
func (f *fakeGit) Checkout(string, string) error                                   { return nil }
func (f *fakeGit) Pull(string) error                                               { return nil }
func (f *fakeGit) SwitchBranch(string, string) error                               { return nil }
func (f *fakeGit) HasRemote(string) (bool, error)                                  { return true, nil }
func (f *fakeGit) Add(repoDir string, paths []string) error {
	f.stagedPaths = append(f.stagedPaths, paths...)
	return nil
}
func (f *fakeGit) Commit(repoDir, message string) error { f.committed = true; f.commitMsg = message; return nil }
func (f *fakeGit) AddAndCommit(repoDir string, paths []string, message string) error {
	if err := f.Add(repoDir, paths); err != nil {
		return err
	}
	return f.Commit(repoDir, message)
}
func (f *fakeGit) HasChanges(string) (bool, error)                                 { return true, nil }
func (f *fakeGit) ChangedFiles(string) ([]string, error)                          { return nil, nil }
func (f *fakeGit) Tag(string, string, string) error                               { return nil }
func (f *fakeGit) PushTag(string, string) error                                   { return nil }
func (f *fakeGit) Stash(string) error                                             { return nil }
func (f *fakeGit) StashPop(string) error                                          { return nil }
func (f *fakeGit) FileChangedBetween(string, string, string, string) (bool, error) { return false, nil }

func writeManifest(t *testing.T, dir string) {
	t.Helper()
	content := "{\n\t\"name\": \"app\",\n\t\"version\": \"1.0.0\",\n\t\"dependencies\": {\n\t\t\"lib\": \"^1.0.0\"\n\t}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0o644))
}

func TestUpdateManifestRewritesAndCommits(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)
	git := &fakeGit{}

	result, err := UpdateManifest(git, dir, "app", map[string]semver.Version{
		"lib": semver.MustParse("1.1.0"),
	}, Options{Strategy: types.StrategyCaret})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Updated, 1)
	assert.Equal(t, "lib", result.Updated[0].Name)

	m, err := manifest.Read(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, "^1.1.0", m.Dependencies["lib"])

	assert.True(t, git.committed)
	assert.Equal(t, CommitMessage, git.commitMsg)
	assert.Contains(t, git.stagedPaths, manifest.FileName)
}

func TestUpdateManifestNoOpWhenNothingNeedsUpdating(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)
	git := &fakeGit{}

	result, err := UpdateManifest(git, dir, "app", map[string]semver.Version{
		"lib": semver.MustParse("0.9.0"),
	}, Options{Strategy: types.StrategyCaret})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, git.committed)
}

func TestUpdateManifestGeneratesChangesetWhenRequested(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)
	git := &fakeGit{}

	result, err := UpdateManifest(git, dir, "app", map[string]semver.Version{
		"lib": semver.MustParse("2.0.0"),
	}, Options{
		Strategy:          types.StrategyCaret,
		GenerateChangeset: true,
		RequiredBump:      semver.Major,
		BreakingDeps:      map[string]bool{"lib": true},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.ChangesetPath)
	assert.Len(t, git.stagedPaths, 2)

	content, err := os.ReadFile(result.ChangesetPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "BREAKING CHANGES")
}
