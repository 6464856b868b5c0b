package config

import (
	"strings"
	"testing"
	"time"

	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
)

func TestResolve_Defaults(t *testing.T) {
	t.Setenv(TokenEnv, "")

	s, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(nil) error = %v", err)
	}

	if s.Endpoint != github.DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", s.Endpoint, github.DefaultEndpoint)
	}
	if s.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", s.WindowDays)
	}
	if s.Concurrency != fetch.DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", s.Concurrency, fetch.DefaultConcurrency)
	}
	if s.FanOutPolicy != fetch.SkipFailed {
		t.Errorf("FanOutPolicy = %q, want %q", s.FanOutPolicy, fetch.SkipFailed)
	}
	if s.RateLimit != github.DefaultRateLimit {
		t.Errorf("RateLimit = %g", s.RateLimit)
	}
	if s.Layout != "force" {
		t.Errorf("Layout = %q, want force", s.Layout)
	}
	if !strings.HasSuffix(s.CachePath, DBFile) {
		t.Errorf("CachePath = %q, want suffix %q", s.CachePath, DBFile)
	}
	if len(s.TTLs) != 0 {
		t.Errorf("TTLs = %v, want empty", s.TTLs)
	}
}

func TestResolve_TokenOverride(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")

	s, err := Resolve(&GlobalConfig{GitHubToken: "from-file"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", s.Token)
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GlobalConfig
		wantErr string
	}{
		{"window", GlobalConfig{DefaultWindowDays: 14}, "default_window_days"},
		{"policy", GlobalConfig{FanOutPolicy: "retry"}, "fanout_policy"},
		{"concurrency", GlobalConfig{Concurrency: -1}, "concurrency"},
		{"rate", GlobalConfig{RateLimit: -2}, "rate_limit"},
		{"layout", GlobalConfig{Layout: "spiral"}, "layout"},
		{"ttl", GlobalConfig{TTL: map[string]string{"CommitAuthors": "soon"}}, "ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&tt.cfg)
			if err == nil {
				t.Fatal("Resolve() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFanOutPolicy(t *testing.T) {
	tests := []struct {
		policy  string
		wantErr bool
	}{
		{"", false},
		{"skip", false},
		{"fail-fast", false},
		{"Skip", true},
		{"ignore", true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			err := ValidateFanOutPolicy(tt.policy)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFanOutPolicy(%q) error = %v, wantErr %v", tt.policy, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWindow(t *testing.T) {
	for _, days := range []int{1, 7, 30} {
		if err := ValidateWindow(days); err != nil {
			t.Errorf("ValidateWindow(%d) error = %v", days, err)
		}
	}
	for _, days := range []int{0, 2, 31} {
		if err := ValidateWindow(days); err == nil {
			t.Errorf("ValidateWindow(%d) expected error", days)
		}
	}
}

func TestParseTTLs(t *testing.T) {
	ttls, err := ParseTTLs(map[string]string{
		fetch.OpCommitAuthors:     "90m",
		fetch.OpFreshRepositories: "48h",
		fetch.OpRepositoryDetails: "1h30m",
	})
	if err != nil {
		t.Fatalf("ParseTTLs() error = %v", err)
	}

	want := map[string]time.Duration{
		fetch.OpCommitAuthors:     90 * time.Minute,
		fetch.OpFreshRepositories: 48 * time.Hour,
		fetch.OpRepositoryDetails: 90 * time.Minute,
	}
	for op, d := range want {
		if ttls[op] != d {
			t.Errorf("ttl[%s] = %v, want %v", op, ttls[op], d)
		}
	}

	for _, bad := range []map[string]string{
		{"NoSuchOp": "1h"},
		{fetch.OpCommitAuthors: "an hour"},
		{fetch.OpCommitAuthors: "0s"},
		{fetch.OpCommitAuthors: "-5m"},
	} {
		if _, err := ParseTTLs(bad); err == nil {
			t.Errorf("ParseTTLs(%v) expected error", bad)
		}
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(abs) = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
	if got := ExpandPath("~/x"); strings.HasPrefix(got, "~") {
		t.Errorf("ExpandPath(~/x) = %q, tilde not expanded", got)
	}
}
