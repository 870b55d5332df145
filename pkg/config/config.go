package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment variables consumed by the plugin. All are optional; defaults
// derive from the user's home directory.
const (
	EnvRoot       = "PYVM_ROOT"
	EnvCacheDir   = "PYVM_VIRTUALENV_CACHE_PATH"
	EnvDebug      = "PYVM_VIRTUALENV_DEBUG"
	EnvBackendPin = "PYVM_VIRTUALENV_VERSION"

	// Variables explicitly unset before delegating to the backend tool so
	// unrelated configuration does not leak into the created environment.
	EnvVersionOverride   = "PYVM_VERSION"
	EnvPipRequireVenv    = "PIP_REQUIRE_VENV"
	EnvPipRequireVirtual = "PIP_REQUIRE_VIRTUALENV"
)

// Config is the resolved configuration for one invocation
type Config struct {
	Root       string // version-manager root directory
	CacheDir   string // bootstrap artifact cache
	Debug      bool
	BackendPin string // pinned virtualenv version, empty means latest
}

// Load resolves configuration from the environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("debug", false)

	if err := v.BindEnv("root", EnvRoot); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvRoot, err)
	}
	if err := v.BindEnv("cache_dir", EnvCacheDir); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvCacheDir, err)
	}
	if err := v.BindEnv("debug", EnvDebug); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvDebug, err)
	}
	if err := v.BindEnv("backend_pin", EnvBackendPin); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvBackendPin, err)
	}

	root := v.GetString("root")
	if root == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		root = filepath.Join(homeDir, ".pyvm")
	}

	cacheDir := v.GetString("cache_dir")
	if cacheDir == "" {
		cacheDir = filepath.Join(root, "cache")
	}

	// Any non-empty value enables tracing, matching the shell convention of
	// [ -n "$PYVM_VIRTUALENV_DEBUG" ]
	debug := os.Getenv(EnvDebug) != ""

	return &Config{
		Root:       root,
		CacheDir:   cacheDir,
		Debug:      debug,
		BackendPin: v.GetString("backend_pin"),
	}, nil
}

// VersionsDir returns the directory holding installed versions and
// virtual environments
func (c *Config) VersionsDir() string {
	return filepath.Join(c.Root, "versions")
}

// EnvironmentPath returns the target path for a named environment
func (c *Config) EnvironmentPath(name string) string {
	return filepath.Join(c.VersionsDir(), name)
}

// LeakedEnvVars lists the variables stripped from the child environment
// before backend delegation
func LeakedEnvVars() []string {
	return []string{EnvVersionOverride, EnvPipRequireVenv, EnvPipRequireVirtual}
}
