package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesErrorsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, cleanup, err := New(Options{Stdout: &stdout, Stderr: &stderr})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("store opened", "path", "x.sqlite3")
	logger.Warn("upgrading schema")
	logger.Error("storage operation failed", "op", "adding user")

	assert.Contains(t, stdout.String(), "msg=\"store opened\"")
	assert.Contains(t, stdout.String(), "level=WARN")
	assert.NotContains(t, stdout.String(), "level=ERROR")
	assert.Contains(t, stderr.String(), "level=ERROR")
	assert.Contains(t, stderr.String(), "op=\"adding user\"")
}

func TestLevelFilter(t *testing.T) {
	var stdout bytes.Buffer
	logger, cleanup, err := New(Options{Level: "warn", Stdout: &stdout, Stderr: &stdout})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hidden")
	logger.Debug("hidden too")
	logger.Warn("shown")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestJSONFormatWithAttrs(t *testing.T) {
	var stdout bytes.Buffer
	logger, cleanup, err := New(Options{Format: "json", Stdout: &stdout, Stderr: &stdout})
	require.NoError(t, err)
	defer cleanup()

	logger.With("component", "store").WithGroup("req").Info("hello", "id", 7)

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"component":"store"`)
	assert.Contains(t, out, `"req":{"id":7}`)
}

func TestLogFileReceivesAllLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockmate.log")
	var discard bytes.Buffer
	logger, cleanup, err := New(Options{File: path, Stdout: &discard, Stderr: &discard})
	require.NoError(t, err)

	logger.Info("info line")
	logger.Error("error line")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "info line")
	assert.Contains(t, string(data), "error line")
}

func TestInvalidOptions(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
