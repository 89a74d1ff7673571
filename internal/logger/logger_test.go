package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("bogus")
	assert.Error(t, err)
}

func TestInitWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	err := Init(&Config{Level: InfoLevel, Output: &buf, Prefix: "waymark"})
	require.NoError(t, err)

	Info("repository planned", "name", "service-a")

	assert.Contains(t, buf.String(), "repository planned")
	assert.Contains(t, buf.String(), "service-a")
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&Config{Level: WarnLevel, Output: &buf}))

	Debug("should not appear")
	Info("also should not appear")
	Warn("this one appears")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "this one appears")
}

func TestInitMirrorsToLogFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	require.NoError(t, Init(&Config{
		Level:      InfoLevel,
		Output:     &buf,
		LogFile:    filepath.Join(".waymark", "logs", "waymark.log"),
		CurrentDir: dir,
	}))
	t.Cleanup(func() { Close() })

	Info("mirrored message")

	assert.Contains(t, buf.String(), "mirrored message")

	data, err := os.ReadFile(filepath.Join(dir, ".waymark", "logs", "waymark.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "mirrored message")
}

func TestGetFallsBackToDefault(t *testing.T) {
	SetGlobal(nil)
	assert.NotNil(t, Get())
}
