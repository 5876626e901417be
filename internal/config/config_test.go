package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir)
	require.NoError(t, err)
	assert.FileExists(t, cfg.TodoPath())
	assert.FileExists(t, cfg.DonePath())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, filepath.Join(cfg.Dir(), DefaultTodoFile), loaded.TodoPath())
	assert.True(t, loaded.DateOnAdd)
}

func TestInitKeepsExistingTodoFile(t *testing.T) {
	dir := t.TempDir()
	todo := filepath.Join(dir, DefaultTodoFile)
	require.NoError(t, os.WriteFile(todo, []byte("Buy milk\n"), 0o600))

	_, err := Init(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(todo)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk\n", string(data))
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMigratesV1(t *testing.T) {
	dir := t.TempDir()
	v1 := "version: 1\ntodo_file: todo.txt\ndefaults:\n  sort: number\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, DefaultDoneFile, cfg.DoneFile)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultRefreshInterval, cfg.TUI.RefreshInterval)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 3")
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 99\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing todo file", mutate: func(c *Config) { c.TodoFile = "" }},
		{name: "same files", mutate: func(c *Config) { c.DoneFile = c.TodoFile }},
		{name: "bad priority", mutate: func(c *Config) { c.Defaults.Priority = "AA" }},
		{name: "lowercase priority", mutate: func(c *Config) { c.Defaults.Priority = "a" }},
		{name: "bad sort", mutate: func(c *Config) { c.Defaults.Sort = "size" }},
		{name: "bad threshold", mutate: func(c *Config) { c.Merge.MatchThreshold = 1.5 }},
		{name: "bad margin", mutate: func(c *Config) { c.Merge.PatchMargin = -1 }},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
		{name: "bad refresh", mutate: func(c *Config) { c.TUI.RefreshInterval = "10ms" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			cfg.SetDir(t.TempDir())
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	_, err := Init(filepath.Join(root, DefaultDir))
	require.NoError(t, err)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultDir), got)

	got, err = FindDir(filepath.Join(root, DefaultDir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultDir), got)
}

func TestFindDirMissing(t *testing.T) {
	_, err := FindDir(t.TempDir())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestAbsolutePaths(t *testing.T) {
	cfg := NewDefault()
	cfg.SetDir("/srv/todo")
	cfg.DoneFile = "/var/archive/done.txt"

	assert.Equal(t, "/srv/todo/todo.txt", cfg.TodoPath())
	assert.Equal(t, "/var/archive/done.txt", cfg.DonePath())
	assert.Equal(t, "/srv/todo/.lock", cfg.LockPath())
}
