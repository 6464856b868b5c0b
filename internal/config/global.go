// Package config handles the global collab configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/collab/config.yml.
type GlobalConfig struct {
	GitHubToken       string            `yaml:"github_token,omitempty"`
	Endpoint          string            `yaml:"endpoint,omitempty"`
	CachePath         string            `yaml:"cache_path,omitempty"`
	DefaultWindowDays int               `yaml:"default_window_days,omitempty"`
	Concurrency       int               `yaml:"concurrency,omitempty"`
	FanOutPolicy      string            `yaml:"fanout_policy,omitempty"`
	RateLimit         float64           `yaml:"rate_limit,omitempty"`
	Layout            string            `yaml:"layout,omitempty"`
	TTL               map[string]string `yaml:"ttl,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "collab"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// TokenEnv overrides github_token when set.
	TokenEnv = "GITHUB_TOKEN"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/collab/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.CachePath != "" {
		cfg.CachePath = ExpandPath(cfg.CachePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// HelpfulConfigMessage returns a helpful message when no token is configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No GitHub token configured.

Set GITHUB_TOKEN (a .env file in the working directory works too), or create %s:
  mkdir -p %s
  echo 'github_token: ghp_...' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
