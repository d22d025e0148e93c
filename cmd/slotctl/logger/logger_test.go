package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	closer, err := Init(Options{Enabled: true, LogDir: dir, Level: slog.LevelDebug})
	require.NoError(t, err)
	t.Cleanup(func() { L = slog.New(slog.DiscardHandler) })

	L.Debug("slot released", "index", 3)
	require.NoError(t, closer.Close())

	name := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"slot released"`)
	assert.Contains(t, string(data), `"index":3`)
}

func TestInit_Disabled(t *testing.T) {
	closer, err := Init(Options{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, logPrefix+"2026-01-01"+logSuffix)
	recent := filepath.Join(dir, logPrefix+"2026-02-25"+logSuffix)
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, recent, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, other)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
