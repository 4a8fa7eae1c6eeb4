// internal/config/loader.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Overrides carries values supplied on the command line, which take
// precedence over both the file and the environment.
type Overrides struct {
	ProjectRoot string
	ConfigDir   string
	LogLevel    string
	LogFile     string
}

// Load resolves configuration in precedence order: flags > environment
// (ROO_* prefix) > YAML file (configPath, if given) > defaults.
func Load(configPath string, overrides Overrides) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	defaultBytes, err := yamlMarshalDefaults(defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(defaultBytes), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := validateConfigPath(configPath); err != nil {
			return nil, fmt.Errorf("config path validation failed: %w", err)
		}
		if _, err := os.Stat(configPath); err == nil {
			f, err := os.Open(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return nil, fmt.Errorf("failed to stat config file: %w", err)
			}
			if err := validateConfigFileProperties(info); err != nil {
				return nil, fmt.Errorf("config file validation failed: %w", err)
			}

			content, err := io.ReadAll(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("ROO_", ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, "ROO_")
		return strings.ToLower(trimmed)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if overrides.ProjectRoot != "" {
		_ = k.Set("project_root", overrides.ProjectRoot)
	}
	if overrides.ConfigDir != "" {
		_ = k.Set("config_dir", overrides.ConfigDir)
	}
	if overrides.LogLevel != "" {
		_ = k.Set("log_level", overrides.LogLevel)
	}
	if overrides.LogFile != "" {
		_ = k.Set("log_file", overrides.LogFile)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// EnsureConfigDir creates the modegate config directory if it doesn't exist.
func EnsureConfigDir(configDir string) error {
	if configDir == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}

// validateConfigPath checks that the config file lives in an allowed
// directory, even if the file does not exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	allowedDirs := []string{
		filepath.Join(home, ".config", "modegate"),
		"/etc/modegate",
	}

	for _, dir := range allowedDirs {
		if strings.HasPrefix(resolvedPath, dir) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/modegate/ or /etc/modegate/")
}

// validateConfigFileProperties checks permissions and size on an
// already-opened file descriptor, avoiding a TOCTOU race against the
// stat-then-open pattern.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}

// yamlMarshalDefaults renders defaults as YAML so they can be loaded
// through the same koanf/yaml path as the file and environment layers,
// keeping one merge strategy instead of a separate struct-copy step.
func yamlMarshalDefaults(cfg *Config) ([]byte, error) {
	doc := fmt.Sprintf(
		"project_root: %q\nconfig_dir: %q\nsession_timeout: %q\ncleanup_interval: %q\nlog_level: %q\nlog_file: %q\n",
		cfg.ProjectRoot, cfg.ConfigDir, cfg.SessionTimeout.Duration().String(),
		cfg.CleanupInterval.Duration().String(), cfg.LogLevel, cfg.LogFile,
	)
	return []byte(doc), nil
}
