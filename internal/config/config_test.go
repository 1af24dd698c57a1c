package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ASSETGEN_PROJECT_ROOT", root)
	t.Setenv("ASSETGEN_CONFIG", filepath.Join(root, "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "tasks", cfg.ModuleFolder)
	assert.Equal(t, "Component", cfg.ComponentFolder)
	assert.Equal(t, "assets.py", cfg.AssetsFile)
	assert.Equal(t, "temp", cfg.Exclude)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, filepath.Join(root, "tasks"), cfg.TasksRoot())
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	root := t.TempDir()
	content := "module_folder: scripts\nworkers: 2\nassets_file: generated.py\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	t.Setenv("ASSETGEN_PROJECT_ROOT", root)
	t.Setenv("ASSETGEN_CONFIG", "")
	t.Setenv("ASSETGEN_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "scripts", cfg.ModuleFolder)
	assert.Equal(t, "generated.py", cfg.AssetsFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Workers, "environment overrides the file")
}

func TestLoadInvalid(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ASSETGEN_PROJECT_ROOT", root)
	t.Setenv("ASSETGEN_CONFIG", filepath.Join(root, "missing.yaml"))

	t.Setenv("ASSETGEN_WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ASSETGEN_WORKERS", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0644))
	t.Setenv("ASSETGEN_PROJECT_ROOT", root)
	t.Setenv("ASSETGEN_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := Default(root)
	cfg.Workers = 3
	cfg.Exclude = "scratch"
	path := filepath.Join(root, FileName)
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "project_root")

	t.Setenv("ASSETGEN_PROJECT_ROOT", root)
	t.Setenv("ASSETGEN_CONFIG", "")
	t.Setenv("ASSETGEN_WORKERS", "")
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
