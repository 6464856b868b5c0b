// Package fetch composes cached, cancellable GitHub queries into the
// operations the graph explorer needs.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/matsen/collab/internal/cache"
	"github.com/matsen/collab/internal/github"
)

// Executor runs a GraphQL query. *github.Client implements it.
type Executor interface {
	Execute(ctx context.Context, q github.Query, vars map[string]any) (json.RawMessage, error)
}

// Operation names used as TTL table keys. Query-backed operations use the
// query name; composite operations have their own names.
const (
	OpRepositoryDetails  = "RepositoryDetails"
	OpCommitAuthors      = "CommitAuthors"
	OpContributorGraph   = "ContributorGraph"
	OpContributorDetails = "ContributorDetails"
	OpRepoContributors   = "RepoContributors"
	OpFreshRepositories  = "FreshRepositories"
	OpActiveContributors = "ActiveContributors"
)

// DefaultTTLs is the per-operation cache lifetime. Discovery feeds change
// slowly and keep entries for a day.
var DefaultTTLs = map[string]time.Duration{
	OpRepositoryDetails:  cache.DefaultTTL,
	OpCommitAuthors:      cache.DefaultTTL,
	OpContributorGraph:   cache.DefaultTTL,
	OpContributorDetails: cache.DefaultTTL,
	OpRepoContributors:   cache.DefaultTTL,
	OpFreshRepositories:  24 * time.Hour,
	OpActiveContributors: 24 * time.Hour,
}

// Defaults for the fetch pipeline.
const (
	DefaultWindow      = 7 * 24 * time.Hour
	DefaultConcurrency = 8
	SearchLimit        = 5
	DiscoveryLimit     = 10
	commitWindow       = 7 * 24 * time.Hour
)

// FanOutPolicy decides what a failed contributor lookup does to the
// contributors-with-repos composite.
type FanOutPolicy string

const (
	// SkipFailed drops failed contributors and reports them in the result.
	SkipFailed FanOutPolicy = "skip"
	// FailFast fails the whole composite on the first contributor error.
	FailFast FanOutPolicy = "fail-fast"
)

// Fetcher runs the fetch operations. It is safe for concurrent use.
type Fetcher struct {
	exec        Executor
	cache       *cache.Cache
	flights     *flightGroup
	ttls        map[string]time.Duration
	concurrency int
	policy      FanOutPolicy
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTTLs overrides entries of the TTL table.
func WithTTLs(ttls map[string]time.Duration) Option {
	return func(f *Fetcher) {
		for op, ttl := range ttls {
			if ttl > 0 {
				f.ttls[op] = ttl
			}
		}
	}
}

// WithConcurrency bounds the number of concurrent contributor lookups.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithFanOutPolicy selects the partial failure policy.
func WithFanOutPolicy(p FanOutPolicy) Option {
	return func(f *Fetcher) {
		if p != "" {
			f.policy = p
		}
	}
}

// WithClock sets the time source used for time windows (for testing).
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher over an executor and a cache.
func New(exec Executor, c *cache.Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		exec:        exec,
		cache:       c,
		flights:     newFlightGroup(),
		ttls:        make(map[string]time.Duration, len(DefaultTTLs)),
		concurrency: DefaultConcurrency,
		policy:      SkipFailed,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for op, ttl := range DefaultTTLs {
		f.ttls[op] = ttl
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ttl returns the cache lifetime for an operation.
func (f *Fetcher) ttl(op string) time.Duration {
	if ttl, ok := f.ttls[op]; ok {
		return ttl
	}
	return cache.DefaultTTL
}

// cachedQuery returns the cached result of q with vars, or runs produce once
// across concurrent callers and caches its result.
func cachedQuery[T any](ctx context.Context, f *Fetcher, q github.Query, vars map[string]any, produce func(context.Context) (T, error)) (T, error) {
	var zero T
	key := cache.Key(q.ID(), vars)
	ttl := f.ttl(q.Name)

	if raw, ok := f.cache.Get(key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	v, err := f.flights.do(ctx, key, func(ctx context.Context) (any, error) {
		return cache.WithCache(ctx, f.cache, key, ttl, produce)
	})
	if err != nil {
		if !github.IsCanceled(err) {
			f.logger.Error("query failed", "op", q.Name, "vars", vars, "error", err)
		}
		return zero, err
	}
	return v.(T), nil
}

// execute runs q and decodes its data into T.
func execute[T any](ctx context.Context, f *Fetcher, q github.Query, vars map[string]any) (T, error) {
	var out T
	data, err := f.exec.Execute(ctx, q, vars)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: decoding %s: %v", github.ErrInvalidResponse, q.Name, err)
	}
	return out, nil
}
