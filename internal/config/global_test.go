package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setConfigHome points XDG_CONFIG_HOME at a temp dir and resets the cache.
func setConfigHome(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/collab/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "collab", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	setConfigHome(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.GitHubToken != "" {
		t.Errorf("GitHubToken = %q, want empty", cfg.GitHubToken)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	home := setConfigHome(t)
	writeConfig(t, home, `
github_token: ghp_file
endpoint: https://ghe.example.com/api/graphql
cache_path: ~/collab-cache/collab.db
default_window_days: 30
concurrency: 4
fanout_policy: fail-fast
rate_limit: 2.5
layout: grid
ttl:
  CommitAuthors: 90m
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	if cfg.GitHubToken != "ghp_file" {
		t.Errorf("GitHubToken = %q, want %q", cfg.GitHubToken, "ghp_file")
	}
	if cfg.Endpoint != "https://ghe.example.com/api/graphql" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.DefaultWindowDays != 30 || cfg.Concurrency != 4 || cfg.RateLimit != 2.5 {
		t.Errorf("numeric fields = %d, %d, %g", cfg.DefaultWindowDays, cfg.Concurrency, cfg.RateLimit)
	}
	if cfg.FanOutPolicy != "fail-fast" || cfg.Layout != "grid" {
		t.Errorf("FanOutPolicy = %q, Layout = %q", cfg.FanOutPolicy, cfg.Layout)
	}
	if cfg.TTL["CommitAuthors"] != "90m" {
		t.Errorf("TTL = %v", cfg.TTL)
	}

	userHome, err := os.UserHomeDir()
	if err == nil {
		want := filepath.Join(userHome, "collab-cache", "collab.db")
		if cfg.CachePath != want {
			t.Errorf("CachePath = %q, want %q (tilde expanded)", cfg.CachePath, want)
		}
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	home := setConfigHome(t)
	writeConfig(t, home, "github_token: [unclosed")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() expected error for invalid YAML")
	}
}

func TestLoadGlobalConfig_Cached(t *testing.T) {
	home := setConfigHome(t)
	writeConfig(t, home, "github_token: first\n")

	cfg1, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	writeConfig(t, home, "github_token: second\n")
	cfg2, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg1 != cfg2 || cfg2.GitHubToken != "first" {
		t.Errorf("LoadGlobalConfig() should return the cached config, got %q", cfg2.GitHubToken)
	}

	ResetGlobalConfigCache()
	cfg3, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg3.GitHubToken != "second" {
		t.Errorf("after reset GitHubToken = %q, want %q", cfg3.GitHubToken, "second")
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	msg := HelpfulConfigMessage()
	for _, want := range []string{"GITHUB_TOKEN", "/custom/config/collab/config.yml", "github_token"} {
		if !strings.Contains(msg, want) {
			t.Errorf("HelpfulConfigMessage() missing %q", want)
		}
	}
}
