package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matsen/collab/internal/explore"
	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
	"github.com/matsen/collab/internal/viz"
)

const (
	// CacheDir is the directory name under the user cache directory.
	CacheDir = "collab"
	// DBFile is the SQLite file holding the cache, history and preferences.
	DBFile = "collab.db"
)

// Settings is the validated configuration with defaults applied.
type Settings struct {
	Token        string
	Endpoint     string
	CachePath    string
	WindowDays   int
	Concurrency  int
	FanOutPolicy fetch.FanOutPolicy
	RateLimit    float64
	Layout       string
	TTLs         map[string]time.Duration
}

// Resolve validates cfg and fills in defaults. The token honors the
// GITHUB_TOKEN override.
func Resolve(cfg *GlobalConfig) (*Settings, error) {
	if cfg == nil {
		cfg = &GlobalConfig{}
	}

	s := &Settings{
		Token:        cfg.GitHubToken,
		Endpoint:     cfg.Endpoint,
		CachePath:    cfg.CachePath,
		WindowDays:   cfg.DefaultWindowDays,
		Concurrency:  cfg.Concurrency,
		FanOutPolicy: fetch.FanOutPolicy(cfg.FanOutPolicy),
		RateLimit:    cfg.RateLimit,
		Layout:       cfg.Layout,
	}
	if token := os.Getenv(TokenEnv); token != "" {
		s.Token = token
	}
	if s.Endpoint == "" {
		s.Endpoint = github.DefaultEndpoint
	}
	if s.CachePath == "" {
		s.CachePath = DefaultCachePath()
	}
	if s.WindowDays == 0 {
		s.WindowDays = explore.DefaultWindowDays
	}
	if s.Concurrency == 0 {
		s.Concurrency = fetch.DefaultConcurrency
	}
	if s.FanOutPolicy == "" {
		s.FanOutPolicy = fetch.SkipFailed
	}
	if s.RateLimit == 0 {
		s.RateLimit = github.DefaultRateLimit
	}
	if s.Layout == "" {
		s.Layout = viz.DefaultOptions().Layout
	}

	if err := ValidateWindow(s.WindowDays); err != nil {
		return nil, err
	}
	if err := ValidateFanOutPolicy(string(s.FanOutPolicy)); err != nil {
		return nil, err
	}
	if s.Concurrency < 0 {
		return nil, fmt.Errorf("invalid concurrency: %d (must be positive)", s.Concurrency)
	}
	if s.RateLimit < 0 {
		return nil, fmt.Errorf("invalid rate_limit: %g (must be positive)", s.RateLimit)
	}
	if err := viz.ValidateLayout(s.Layout); err != nil {
		return nil, err
	}

	ttls, err := ParseTTLs(cfg.TTL)
	if err != nil {
		return nil, err
	}
	s.TTLs = ttls
	return s, nil
}

// DefaultCachePath returns the database path under the user cache directory,
// falling back to the working directory.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return DBFile
	}
	return filepath.Join(dir, CacheDir, DBFile)
}

// ValidateWindow checks that a default_window_days value is supported.
func ValidateWindow(days int) error {
	if err := explore.ValidateWindow(days); err != nil {
		return fmt.Errorf("invalid default_window_days: %d (valid: %v)", days, explore.ValidWindows)
	}
	return nil
}

// ValidFanOutPolicies lists the supported fanout_policy values.
var ValidFanOutPolicies = []string{string(fetch.SkipFailed), string(fetch.FailFast)}

// ValidateFanOutPolicy checks that the policy value is valid.
func ValidateFanOutPolicy(policy string) error {
	if policy == "" {
		return nil // Empty defaults to "skip"
	}

	for _, valid := range ValidFanOutPolicies {
		if policy == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid fanout_policy: %s (valid: %v)", policy, ValidFanOutPolicies)
}

// ParseTTLs parses the ttl table. Keys are operation names and values are
// Go durations such as "90m" or "12h".
func ParseTTLs(raw map[string]string) (map[string]time.Duration, error) {
	ttls := make(map[string]time.Duration, len(raw))
	for op, value := range raw {
		if _, ok := fetch.DefaultTTLs[op]; !ok {
			return nil, fmt.Errorf("invalid ttl entry %q: unknown operation (valid: %s)", op, strings.Join(knownOps(), ", "))
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid ttl for %s: %w", op, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid ttl for %s: %s (must be positive)", op, value)
		}
		ttls[op] = d
	}
	return ttls, nil
}

func knownOps() []string {
	ops := make([]string, 0, len(fetch.DefaultTTLs))
	for op := range fetch.DefaultTTLs {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
