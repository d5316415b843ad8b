package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/omredit/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ExpandsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("OMREDIT_RATIO", "0.4")
	writeFile(t, path, `
app:
  log_level: debug
  log_format: text
editor:
  use_staff_link: false
  use_staff_proximity: true
  gutter_ratio: ${OMREDIT_RATIO}
observability:
  tracing: true
`)

	cfg := config.NewDefault()
	require.NoError(t, config.Load(path, cfg))
	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.Equal(t, config.FormatText, cfg.App.LogFormat)
	assert.False(t, cfg.Editor.UseStaffLink)
	assert.InDelta(t, 0.4, cfg.Editor.GutterRatio, 1e-12)
	assert.True(t, cfg.Editor.MultiDeleteConfirm, "untouched keys keep defaults")
	assert.True(t, cfg.Observability.Tracing)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "editor:\n  gutter_ratio: 1.5\n")
	err := config.Load(bad, config.NewDefault())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")

	format := filepath.Join(dir, "format.yaml")
	writeFile(t, format, "app:\n  log_format: xml\n")
	require.Error(t, config.Load(format, config.NewDefault()))

	require.Error(t, config.Load(filepath.Join(dir, "missing.yaml"), config.NewDefault()))
}

func TestLoadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yaml")
	writeFile(t, def, "editor:\n  gutter_ratio: 0.2\n")

	cfg := config.NewDefault()
	require.NoError(t, config.LoadWithDefaults(filepath.Join(dir, "absent.yaml"), def, cfg))
	assert.InDelta(t, 0.2, cfg.Editor.GutterRatio, 1e-12)

	require.Error(t, config.LoadWithDefaults(filepath.Join(dir, "absent.yaml"), "", cfg))
}

func TestDefaults(t *testing.T) {
	cfg := config.NewDefault()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 0.33, cfg.Editor.GutterRatio, 1e-12)
	assert.True(t, cfg.Editor.UseStaffLink)
	assert.True(t, cfg.Editor.UseStaffProximity)
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "editor:\n  gutter_ratio: 0.3\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, slog.New(slog.DiscardHandler), func(c *config.Config) { got <- c })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "editor:\n  gutter_ratio: 0.25\n")

	select {
	case c := <-got:
		assert.InDelta(t, 0.25, c.Editor.GutterRatio, 1e-12)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	cancel()
	require.NoError(t, <-done)
}
