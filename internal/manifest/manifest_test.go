package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

func TestParseRequiresNameAndVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version": "1.0.0"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"name": "lib"}`))
	assert.Error(t, err)
}

func TestParseAndBytesRoundTrip(t *testing.T) {
	src := []byte(`{
	"name": "lib",
	"version": "1.0.0",
	"dependencies": {"a": "^1.0.0"},
	"scripts": {"build": "go build ./..."}
}
`)
	m, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "lib", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, "^1.0.0", m.Dependencies["a"])
	assert.Contains(t, m.Extra, "scripts")

	out, err := m.Bytes()
	require.NoError(t, err)
	assert.True(t, out[len(out)-1] == '\n')
	assert.Contains(t, string(out), "\t\"name\": \"lib\"")

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, m.Name, reparsed.Name)
	assert.Equal(t, m.Dependencies, reparsed.Dependencies)
	assert.Contains(t, reparsed.Extra, "scripts")
}

func TestNeedsUpdate(t *testing.T) {
	v := semver.MustParse("2.0.0")

	assert.True(t, NeedsUpdate(types.Range("^1.0.0"), v))
	assert.False(t, NeedsUpdate(types.Range("^2.0.0"), v))
	assert.False(t, NeedsUpdate(types.Range("^3.0.0"), v))
	assert.True(t, NeedsUpdate(types.Range("*"), v), "wildcard always needs update")
}

func TestFindUpdatesNeeded(t *testing.T) {
	m := &Manifest{
		Name:             "app",
		Version:          "1.0.0",
		Dependencies:     map[string]string{"lib": "^1.0.0"},
		PeerDependencies: map[string]string{"shared": "^1.0.0"},
		DevDependencies:  map[string]string{"tool": "^1.0.0"},
	}
	published := map[string]semver.Version{
		"lib":    semver.MustParse("1.1.0"),
		"shared": semver.MustParse("1.0.0"), // already satisfied
		"tool":   semver.MustParse("2.0.0"),
	}

	updates := FindUpdatesNeeded(m, published)
	require.Len(t, updates, 2)
	assert.Equal(t, "lib", updates[0].Name)
	assert.Equal(t, types.Prod, updates[0].Kind)
	assert.Equal(t, "tool", updates[1].Name)
	assert.Equal(t, types.Dev, updates[1].Kind)
}

func TestApplyUpdatesPreservesPrefix(t *testing.T) {
	m := &Manifest{
		Name:         "app",
		Version:      "1.0.0",
		Dependencies: map[string]string{"lib": "~1.0.0"},
	}
	updates := []Update{{Name: "lib", Current: types.Range("~1.0.0"), New: semver.MustParse("1.2.0"), Kind: types.Prod}}

	ApplyUpdates(m, updates, types.StrategyCaret)
	assert.Equal(t, "~1.2.0", m.Dependencies["lib"])
}

func TestWritePreservesTabIndentAndTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	m := &Manifest{Name: "lib", Version: "1.0.0", Dependencies: map[string]string{"a": "^1.0.0"}}
	require.NoError(t, m.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, data[len(data)-1] == '\n')
	assert.Contains(t, string(data), "\t\"dependencies\"")

	reread, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "lib", reread.Name)
}
