package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app-2024-03-01.log", "app-2024-03-04.log", "app-2024-03-10.log", "app-junk.log", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	cleanupOldLogs(dir, 7, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"app-2024-03-04.log", "app-2024-03-10.log", "app-junk.log", "notes.txt"}, names)
}

func TestDailyWriterCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w, err := newDailyWriter(dir, 7)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "app-"+time.Now().Format(time.DateOnly)+".log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(raw))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
