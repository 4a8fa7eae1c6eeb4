package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", Overrides{ProjectRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir := filepath.Join(home, ".config", "modegate")
	require.NoError(t, os.MkdirAll(configDir, 0700))

	configPath := filepath.Join(configDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level: warn\n"), 0600))

	t.Setenv("ROO_LOG_LEVEL", "debug")

	cfg, err := Load(configPath, Overrides{ProjectRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "environment must win over the file")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir := filepath.Join(home, ".config", "modegate")
	require.NoError(t, os.MkdirAll(configDir, 0700))

	configPath := filepath.Join(configDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level: warn\n"), 0600))

	cfg, err := Load(configPath, Overrides{ProjectRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_OverridesWinOverEverything(t *testing.T) {
	t.Setenv("ROO_LOG_LEVEL", "debug")
	cfg, err := Load("", Overrides{ProjectRoot: t.TempDir(), LogLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestValidateConfigPath_RejectsOutsideAllowedDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	err := validateConfigPath("/tmp/evil/config.yaml")
	assert.Error(t, err)
}

func TestValidateConfigFileProperties_RejectsWorldReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	err = validateConfigFileProperties(info)
	assert.Error(t, err)
}
