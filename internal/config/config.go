// Package config provides configuration loading for modegate.
//
// The config surface is closed and enumerated: a typed Config struct,
// not a free-form key/value bag. Values are resolved with environment
// variables taking precedence over a YAML file, which takes precedence
// over hardcoded defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the complete modegate server configuration.
type Config struct {
	// ProjectRoot is the directory searched for the project mode file
	// (.roomodes).
	ProjectRoot string `koanf:"project_root"`

	// ConfigDir holds the global mode file (modes.yaml).
	ConfigDir string `koanf:"config_dir"`

	// SessionTimeout is how long a session may sit idle before the
	// sweeper removes it.
	SessionTimeout Duration `koanf:"session_timeout"`

	// CleanupInterval is how often the sweeper scans for expired sessions.
	CleanupInterval Duration `koanf:"cleanup_interval"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, receives log output instead of stderr.
	LogFile string `koanf:"log_file"`
}

// Default returns configuration with the defaults named in the server's
// external-interface contract.
func Default() *Config {
	home, err := os.UserHomeDir()
	configDir := ""
	if err == nil {
		configDir = filepath.Join(home, ".config", "modegate")
	}

	cwd, err := os.Getwd()
	projectRoot := "."
	if err == nil {
		projectRoot = cwd
	}

	return &Config{
		ProjectRoot:     projectRoot,
		ConfigDir:       configDir,
		SessionTimeout:  Duration(3600 * time.Second),
		CleanupInterval: Duration(300 * time.Second),
		LogLevel:        "info",
		LogFile:         "",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return errors.New("project root is required")
	}
	if err := validatePath(c.ProjectRoot); err != nil {
		return fmt.Errorf("invalid project root: %w", err)
	}
	info, err := os.Stat(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("project root does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", c.ProjectRoot)
	}

	if c.ConfigDir != "" {
		if err := validatePath(c.ConfigDir); err != nil {
			return fmt.Errorf("invalid config dir: %w", err)
		}
	}

	if c.SessionTimeout.Duration() <= 0 {
		return errors.New("session timeout must be positive")
	}
	if c.CleanupInterval.Duration() <= 0 {
		return errors.New("cleanup interval must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// validatePath checks that a path contains no traversal sequence.
func validatePath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("path contains traversal sequence: %s", path)
	}
	if filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		origDepth := strings.Count(path, string(filepath.Separator))
		cleanDepth := strings.Count(clean, string(filepath.Separator))
		if cleanDepth < origDepth-1 {
			return fmt.Errorf("path traversal detected: %s (resolves to %s)", path, clean)
		}
	}
	return nil
}
