package explore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
)

// fakeSource serves a fixed graph per target. A gated target blocks until
// its gate is closed; with ignoreCancel it also ignores its context, like a
// remote call that cannot be aborted.
type fakeSource struct {
	mu           sync.Mutex
	gates        map[string]chan struct{}
	errs         map[string]error
	ignoreCancel bool
	calls        []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{gates: make(map[string]chan struct{}), errs: make(map[string]error)}
}

func (s *fakeSource) gate(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[key] = ch
	return ch
}

func (s *fakeSource) wait(ctx context.Context, op, key string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op+" "+key)
	gate := s.gates[key]
	err := s.errs[key]
	s.mu.Unlock()

	if gate != nil {
		if s.ignoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", github.ErrCanceled, ctx.Err())
			}
		}
	}
	return err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSource) GetRepositoryDetails(ctx context.Context, owner, name string, window time.Duration) (*entity.RepoSummary, error) {
	key := owner + "/" + name
	if err := s.wait(ctx, "details", key); err != nil {
		return nil, err
	}
	return &entity.RepoSummary{NameWithOwner: key, Owner: owner, Name: name, RecentIssueCount: int(window.Hours() / 24)}, nil
}

func (s *fakeSource) GetRepoContributorsWithContributedRepos(ctx context.Context, owner, name string) (*fetch.ContributorsResult, error) {
	key := owner + "/" + name
	if err := s.wait(ctx, "contributors", key); err != nil {
		return nil, err
	}
	return &fetch.ContributorsResult{
		Contributors: []entity.ContributorSummary{{
			Login:       "alice",
			CommitCount: 3,
			RecentRepos: []entity.RepoSummary{{NameWithOwner: owner + "/other"}},
		}},
	}, nil
}

func (s *fakeSource) GetContributorGraphData(ctx context.Context, login string) (*entity.ContributorSummary, error) {
	if err := s.wait(ctx, "user", login); err != nil {
		return nil, err
	}
	return &entity.ContributorSummary{
		Login:       login,
		RecentRepos: []entity.RepoSummary{{NameWithOwner: "a/one"}, {NameWithOwner: "b/two"}},
	}, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	terms []string
}

func (r *fakeRecorder) Add(term string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms = append(r.terms, term)
	return nil
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("search did not finish")
	}
}

func nodeIDs(s State) []string {
	if s.Graph == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Graph.Nodes))
	for _, n := range s.Graph.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestSearch_RepoScenario(t *testing.T) {
	rec := &fakeRecorder{}
	e := New(newFakeSource(), WithRecorder(rec))

	waitDone(t, e.Search(context.Background(), "octo/demo", 0))

	s := e.State()
	assert.False(t, s.Fetching)
	assert.Empty(t, s.Error)
	assert.Equal(t, "octo/demo", s.Term)
	assert.Equal(t, DefaultWindowDays, s.Window)
	assert.Equal(t, []string{"octo/demo", "alice", "octo/other"}, nodeIDs(s))
	require.Len(t, s.Graph.Links, 2)
	assert.Equal(t, 3, s.Graph.Links[0].Thickness)
	assert.Equal(t, 20, s.Graph.Links[1].Distance)

	require.NotNil(t, s.Focal)
	assert.Equal(t, "octo/demo", s.Focal.ID)
	assert.Equal(t, 7, s.Focal.Repo.RecentIssueCount, "window reaches repository details")
	assert.NotEmpty(t, s.RequestID)
	assert.Equal(t, []string{"octo/demo"}, rec.terms)
}

func TestSearch_UserGraph(t *testing.T) {
	e := New(newFakeSource())

	waitDone(t, e.Search(context.Background(), "alice", 30))

	s := e.State()
	assert.Equal(t, []string{"alice", "a/one", "b/two"}, nodeIDs(s))
	require.NotNil(t, s.Focal)
	assert.Equal(t, "contributor", s.Focal.Kind)
	assert.Equal(t, 30, s.Window)
}

func TestSearch_NewSearchSupersedesPrevious(t *testing.T) {
	src := newFakeSource()
	src.gate("a/b")

	var mu sync.Mutex
	var published []State
	e := New(src, WithOnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, s)
	}))

	first := e.Search(context.Background(), "a/b", 7)
	second := e.Search(context.Background(), "c/d", 7)
	waitDone(t, second)
	waitDone(t, first)

	s := e.State()
	assert.Equal(t, "c/d", s.Term)
	assert.False(t, s.Fetching)
	assert.Empty(t, s.Error)
	assert.Equal(t, []string{"c/d", "alice", "c/other"}, nodeIDs(s))

	mu.Lock()
	defer mu.Unlock()
	for _, p := range published {
		if p.Term == "a/b" {
			assert.True(t, p.Fetching, "a/b must never publish a result, error or cleared loading state")
		}
	}
	assert.Equal(t, "c/d", published[len(published)-1].Term)
}

func TestSearch_LateResultIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.ignoreCancel = true
	gate := src.gate("a/b")
	e := New(src)

	first := e.Search(context.Background(), "a/b", 7)
	second := e.Search(context.Background(), "c/d", 7)
	waitDone(t, second)
	want := e.State()

	close(gate)
	waitDone(t, first)

	assert.Equal(t, want, e.State())
	assert.Equal(t, "c/d", e.State().Term)
}

// blockingRecorder holds Add until release is closed.
type blockingRecorder struct {
	entered chan string
	release chan struct{}
}

func (r *blockingRecorder) Add(term string) error {
	r.entered <- term
	<-r.release
	return nil
}

func TestSearch_SlowRecorderDoesNotReorderPublishing(t *testing.T) {
	src := newFakeSource()
	src.gate("c/d")
	rec := &blockingRecorder{entered: make(chan string, 1), release: make(chan struct{})}

	var mu sync.Mutex
	var published []State
	e := New(src, WithRecorder(rec), WithOnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, s)
	}))

	first := e.Search(context.Background(), "a/b", 7)
	select {
	case term := <-rec.entered:
		require.Equal(t, "a/b", term)
	case <-time.After(2 * time.Second):
		t.Fatal("a/b was never recorded")
	}

	second := e.Search(context.Background(), "c/d", 7)
	third := e.Search(context.Background(), "not a valid//term", 7)
	waitDone(t, third)
	waitDone(t, second)
	close(rec.release)
	waitDone(t, first)

	s := e.State()
	require.NotEmpty(t, s.Error)
	assert.Equal(t, "not a valid//term", s.Term)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, published)
	last := published[len(published)-1]
	assert.Equal(t, s.RequestID, last.RequestID)
	assert.Equal(t, "not a valid//term", last.Term)

	var order []string
	for _, p := range published {
		order = append(order, fmt.Sprintf("%s fetching=%t", p.Term, p.Fetching))
	}
	assert.Equal(t, []string{
		"a/b fetching=true",
		"a/b fetching=false",
		"c/d fetching=true",
		"not a valid//term fetching=false",
	}, order)
}

func TestSearch_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		window  int
		wantErr string
	}{
		{"bad login", "not a login!", 7, "not a valid GitHub login"},
		{"bad repo", "a/b/c", 7, "invalid repository reference"},
		{"bad window", "octo/demo", 5, "window must be 1, 7 or 30 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			e := New(src)

			waitDone(t, e.Search(context.Background(), tt.term, tt.window))

			s := e.State()
			assert.False(t, s.Fetching)
			assert.Contains(t, s.Error, tt.wantErr)
			assert.Nil(t, s.Graph)
			assert.Zero(t, src.callCount(), "invalid input never reaches the network")
		})
	}
}

func TestSearch_NotFound(t *testing.T) {
	src := newFakeSource()
	src.errs["ghost"] = fmt.Errorf("user ghost: %w", fetch.ErrNotFound)
	rec := &fakeRecorder{}
	e := New(src, WithRecorder(rec))

	waitDone(t, e.Search(context.Background(), "ghost", 7))

	s := e.State()
	assert.False(t, s.Fetching)
	assert.Equal(t, fetch.UserMessage(fetch.ErrNotFound), s.Error)
	assert.Nil(t, s.Graph)
	assert.Empty(t, rec.terms, "failed searches are not recorded")
}

func TestSearch_RepoFailureFailsSearch(t *testing.T) {
	src := newFakeSource()
	src.errs["octo/down"] = fmt.Errorf("%w: connection refused", github.ErrNetworkError)
	e := New(src)

	waitDone(t, e.Search(context.Background(), "octo/down", 7))

	s := e.State()
	assert.Equal(t, "Could not load data from GitHub. Please try again.", s.Error)
}

func TestClear_CancelsRunningSearch(t *testing.T) {
	src := newFakeSource()
	src.gate("a/b")
	e := New(src)

	done := e.Search(context.Background(), "a/b", 7)
	assert.True(t, e.State().Fetching)
	e.Clear()
	waitDone(t, done)

	assert.Equal(t, State{}, e.State())
}

func TestSearch_EmptyTermClears(t *testing.T) {
	e := New(newFakeSource())
	waitDone(t, e.Search(context.Background(), "octo/demo", 7))
	require.NotNil(t, e.State().Graph)

	waitDone(t, e.Search(context.Background(), "   ", 7))
	assert.Equal(t, State{}, e.State())
}

func TestSearch_ParentCanceled(t *testing.T) {
	src := newFakeSource()
	src.gate("alice")
	e := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := e.Search(ctx, "alice", 7)
	cancel()
	waitDone(t, done)

	s := e.State()
	assert.False(t, s.Fetching)
	assert.Empty(t, s.Error, "cancellation is never shown as an error")
	assert.Nil(t, s.Graph)
}

func TestClose_IgnoresLaterSearches(t *testing.T) {
	src := newFakeSource()
	e := New(src)
	e.Close()

	waitDone(t, e.Search(context.Background(), "octo/demo", 7))
	assert.Equal(t, State{}, e.State())
	assert.Zero(t, src.callCount())
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    Target
		wantErr bool
	}{
		{input: "octo/demo", want: Target{Owner: "octo", Name: "demo"}},
		{input: "https://github.com/octo/demo", want: Target{Owner: "octo", Name: "demo"}},
		{input: "  alice ", want: Target{Login: "alice"}},
		{input: "", wantErr: true},
		{input: "-alice", wantErr: true},
		{input: "octo/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateWindow(t *testing.T) {
	for _, w := range ValidWindows {
		assert.NoError(t, ValidateWindow(w))
	}
	assert.ErrorIs(t, ValidateWindow(14), ErrInvalidInput)
}
