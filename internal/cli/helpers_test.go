package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes content to dir/name, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeRepo lays out a minimal repository directory: a package.json
// manifest and, optionally, one changeset.
func writeRepo(t *testing.T, root, name, version, depsJSON string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	manifest := `{"name":"` + name + `","version":"` + version + `"` + depsJSON + `}`
	writeFile(t, dir, "package.json", manifest)
	return dir
}

// writeWorkspaceConfig writes .waymark/config.yaml naming every repo in
// repoNames, each resolved as a sibling directory of root.
func writeWorkspaceConfig(t *testing.T, root string, repoNames []string) {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("registry:\n  url: https://registry.example.com\n")
	b.WriteString("repositories:\n")
	for _, name := range repoNames {
		b.WriteString("  - name: " + name + "\n")
		b.WriteString("    path: ./" + name + "\n")
	}
	writeFile(t, root, filepath.Join(".waymark", "config.yaml"), b.String())
}

// runCLI executes RootCmd with args against a fresh stdout capture,
// returning combined stdout and the error Execute produced.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldOut := RootCmd.OutOrStdout()
	_ = oldOut
	r, w, err := os.Pipe()
	require.NoError(t, err)

	oldStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	RootCmd.SetArgs(args)
	runErr := RootCmd.Execute()

	w.Close()
	out, _ := io.ReadAll(r)
	return string(out), runErr
}
