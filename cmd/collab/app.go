package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/matsen/collab/internal/cache"
	"github.com/matsen/collab/internal/config"
	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
	"github.com/matsen/collab/internal/history"
	"github.com/matsen/collab/internal/storage"
)

// kvStore is the key-value store behind the cache, history and prefs.
type kvStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Count(prefix string) (int, error)
}

// app holds the process-wide services a command needs.
type app struct {
	settings *config.Settings
	store    kvStore
	closeDB  func() error
	cache    *cache.Cache
	fetcher  *fetch.Fetcher
	history  *history.History
	prefs    *history.Prefs
}

// mustLoadSettings loads and validates configuration, exits on error.
func mustLoadSettings() *config.Settings {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	settings, err := config.Resolve(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if dbPath != "" {
		settings.CachePath = config.ExpandPath(dbPath)
	}
	return settings
}

// openStore opens the SQLite database at path, or an in-memory store when
// ephemeral is set. The returned func releases the store.
func openStore(path string, ephemeral bool) (kvStore, func() error, error) {
	if ephemeral {
		return storage.NewMemory(), func() error { return nil }, nil
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return db, db.Close, nil
}

// mustOpenApp wires configuration, storage, cache and fetcher. Commands that
// query GitHub pass needToken so a missing token fails before any request.
func mustOpenApp(needToken bool) *app {
	settings := mustLoadSettings()
	if needToken && settings.Token == "" {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}

	logger := slog.Default()
	store, closeDB, err := openStore(settings.CachePath, ephemeral)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	c := cache.New(store, cache.WithLogger(logger))

	client := github.NewClient(
		github.WithToken(settings.Token),
		github.WithEndpoint(settings.Endpoint),
		github.WithRateLimit(settings.RateLimit),
	)
	fetcher := fetch.New(client, c,
		fetch.WithTTLs(settings.TTLs),
		fetch.WithConcurrency(settings.Concurrency),
		fetch.WithFanOutPolicy(settings.FanOutPolicy),
		fetch.WithLogger(logger),
	)

	return &app{
		settings: settings,
		store:    store,
		closeDB:  closeDB,
		cache:    c,
		fetcher:  fetcher,
		history:  history.New(store),
		prefs:    history.NewPrefs(store),
	}
}

// Close releases the database.
func (a *app) Close() {
	slog.Debug("cache stats", "stats", a.cache.Stats())
	if err := a.closeDB(); err != nil {
		slog.Warn("closing database", "error", err)
	}
}

// interruptContext returns a context canceled on Ctrl-C.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
