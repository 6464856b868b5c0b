// Package explore holds the state of an interactive graph search: one search
// at a time, each with its own request identity and cancellable context.
package explore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
	"github.com/matsen/collab/internal/viz"
)

// ErrInvalidInput is returned for search terms and windows rejected before
// any network call.
var ErrInvalidInput = fetch.ErrInvalidInput

// ValidWindows are the supported recency windows in days.
var ValidWindows = []int{1, 7, 30}

// DefaultWindowDays is used when a search does not name a window.
const DefaultWindowDays = 7

// Source is the subset of fetch operations a search needs.
// *fetch.Fetcher implements it.
type Source interface {
	GetRepositoryDetails(ctx context.Context, owner, name string, window time.Duration) (*entity.RepoSummary, error)
	GetRepoContributorsWithContributedRepos(ctx context.Context, owner, name string) (*fetch.ContributorsResult, error)
	GetContributorGraphData(ctx context.Context, login string) (*entity.ContributorSummary, error)
}

// Recorder receives successfully committed search terms.
type Recorder interface {
	Add(term string) error
}

// State is the externally visible result of the current search.
type State struct {
	Fetching  bool               `json:"fetching"`
	Error     string             `json:"error,omitempty"`
	Graph     *viz.Graph         `json:"graph,omitempty"`
	Focal     *viz.Node          `json:"focal,omitempty"`
	RequestID string             `json:"requestId,omitempty"`
	Term      string             `json:"term,omitempty"`
	Window    int                `json:"window,omitempty"`
	Skipped   []fetch.FailedLeaf `json:"skipped,omitempty"`

	// Err is the error behind Error, for callers that classify failures.
	Err error `json:"-"`
}

// Target is a parsed search term.
type Target struct {
	Owner string
	Name  string
	Login string
}

// IsRepo reports whether the target names a repository.
func (t Target) IsRepo() bool {
	return t.Login == ""
}

// String returns the canonical form of the target.
func (t Target) String() string {
	if t.IsRepo() {
		return github.NameWithOwner(t.Owner, t.Name)
	}
	return t.Login
}

// ParseTarget interprets term as a repository ("owner/name" or a GitHub URL)
// or a user login.
func ParseTarget(term string) (Target, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Target{}, fmt.Errorf("%w: empty search", ErrInvalidInput)
	}
	if strings.Contains(term, "/") {
		owner, name, err := github.ParseRepoRef(term)
		if err != nil {
			return Target{}, err
		}
		return Target{Owner: owner, Name: name}, nil
	}
	if !github.ValidLogin(term) {
		return Target{}, fmt.Errorf("%w: %q is not a valid GitHub login or owner/name", ErrInvalidInput, term)
	}
	return Target{Login: term}, nil
}

// ValidateWindow checks that days is one of ValidWindows.
func ValidateWindow(days int) error {
	for _, w := range ValidWindows {
		if days == w {
			return nil
		}
	}
	return fmt.Errorf("%w: window must be 1, 7 or 30 days, got %d", ErrInvalidInput, days)
}

// Explorer runs searches and publishes their State. Starting a search cancels
// the previous one; results of a superseded search are discarded. It is safe
// for concurrent use.
type Explorer struct {
	src      Source
	recorder Recorder
	onChange func(State)
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	state  State
	seq    uint64 // bumped on every state change
	cancel context.CancelFunc
	closed bool

	// notifyMu orders onChange calls by publication.
	notifyMu sync.Mutex
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithOnChange registers a callback invoked with every published State.
// It is called without internal locks held.
func WithOnChange(fn func(State)) Option {
	return func(e *Explorer) {
		e.onChange = fn
	}
}

// WithRecorder records successful search terms (for example in history).
func WithRecorder(r Recorder) Option {
	return func(e *Explorer) {
		e.recorder = r
	}
}

// WithClock sets the clock used to score repositories.
func WithClock(now func() time.Time) Option {
	return func(e *Explorer) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Explorer) {
		e.logger = l
	}
}

// New creates an Explorer over src.
func New(src Source, opts ...Option) *Explorer {
	e := &Explorer{
		src:    src,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current state.
func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Search starts a search for term with the given window in days (0 means
// DefaultWindowDays) and returns a channel closed when it has finished,
// whether it was committed, failed or superseded. An empty term clears the
// state. Invalid input is reported in State without a network call.
func (e *Explorer) Search(parent context.Context, term string, windowDays int) <-chan struct{} {
	done := make(chan struct{})

	if strings.TrimSpace(term) == "" {
		e.Clear()
		close(done)
		return done
	}
	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}

	target, err := ParseTarget(term)
	if err == nil {
		err = ValidateWindow(windowDays)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(done)
		return done
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	id := uuid.NewString()
	if err != nil {
		seq, snapshot := e.setLocked(State{Error: fetch.UserMessage(err), Err: err, RequestID: id, Term: term, Window: windowDays})
		e.mu.Unlock()
		e.notify(seq, snapshot)
		close(done)
		return done
	}

	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	seq, snapshot := e.setLocked(State{Fetching: true, RequestID: id, Term: target.String(), Window: windowDays})
	e.mu.Unlock()
	e.notify(seq, snapshot)

	go func() {
		defer close(done)
		defer cancel()
		e.run(ctx, id, target, windowDays)
	}()
	return done
}

// Clear cancels any running search and resets the state.
func (e *Explorer) Clear() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	seq, snapshot := e.setLocked(State{})
	e.mu.Unlock()
	e.notify(seq, snapshot)
}

// Close cancels any running search. Later searches are ignored.
func (e *Explorer) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.closed = true
}

func (e *Explorer) run(ctx context.Context, id string, target Target, windowDays int) {
	logger := e.logger.With("request_id", id, "term", target.String())
	logger.Debug("search started", "window", windowDays)

	var (
		graph   *viz.Graph
		skipped []fetch.FailedLeaf
		err     error
	)
	if target.IsRepo() {
		graph, skipped, err = e.repoGraph(ctx, target, windowDays)
	} else {
		graph, err = e.userGraph(ctx, target.Login)
	}

	e.mu.Lock()
	if e.closed || e.state.RequestID != id {
		e.mu.Unlock()
		logger.Debug("discarding superseded result")
		return
	}
	next := State{RequestID: id, Term: target.String(), Window: windowDays}
	if err != nil && github.IsCanceled(err) {
		// Canceled by the caller's context rather than a newer search.
		e.cancel = nil
		seq, snapshot := e.setLocked(next)
		e.mu.Unlock()
		logger.Debug("search canceled")
		e.notify(seq, snapshot)
		return
	}
	if err != nil {
		logger.Warn("search failed", "error", err)
		next.Error = fetch.UserMessage(err)
		next.Err = err
	} else {
		next.Graph = graph
		next.Skipped = skipped
		// Builders always seed the graph with the focal node.
		focal := graph.Nodes[0]
		next.Focal = &focal
	}
	e.cancel = nil
	seq, snapshot := e.setLocked(next)
	e.mu.Unlock()
	e.notify(seq, snapshot)

	if err == nil && e.recorder != nil {
		if rerr := e.recorder.Add(target.String()); rerr != nil {
			logger.Warn("recording search", "error", rerr)
		}
	}
}

// repoGraph fetches repository details and contributors concurrently.
func (e *Explorer) repoGraph(ctx context.Context, target Target, windowDays int) (*viz.Graph, []fetch.FailedLeaf, error) {
	var (
		details      *entity.RepoSummary
		contributors *fetch.ContributorsResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = e.src.GetRepositoryDetails(gctx, target.Owner, target.Name, time.Duration(windowDays)*24*time.Hour)
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = e.src.GetRepoContributorsWithContributedRepos(gctx, target.Owner, target.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("%w: %w", github.ErrCanceled, ctx.Err())
		}
		return nil, nil, err
	}

	return viz.BuildRepoCentricGraph(contributors.Contributors, *details, e.now()), contributors.Failed, nil
}

func (e *Explorer) userGraph(ctx context.Context, login string) (*viz.Graph, error) {
	user, err := e.src.GetContributorGraphData(ctx, login)
	if err != nil {
		return nil, err
	}
	return viz.BuildUserCentricGraph(user.RecentRepos, *user, e.now()), nil
}

// setLocked replaces the state and returns its sequence number. e.mu must
// be held.
func (e *Explorer) setLocked(s State) (uint64, State) {
	e.seq++
	e.state = s
	return e.seq, s
}

// notify hands s to onChange unless a newer state has been set since, so
// subscribers never see a superseded state after a newer one.
func (e *Explorer) notify(seq uint64, s State) {
	if e.onChange == nil {
		return
	}
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	current := e.seq == seq
	e.mu.Unlock()
	if current {
		e.onChange(s)
	}
}
