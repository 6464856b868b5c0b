package fetch

import (
	"context"
	"time"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/github"
)

const (
	freshWindow    = 30 * 24 * time.Hour
	activeCriteria = "followers:>1000 repos:>10 sort:followers-desc"
)

// SearchRepositories returns the first SearchLimit repositories matching
// term. Typeahead results are not cached.
func (f *Fetcher) SearchRepositories(ctx context.Context, term string) ([]entity.RepoSummary, error) {
	return f.searchRepos(ctx, github.SearchRepositories, term, SearchLimit)
}

// SearchUsers returns the first SearchLimit users matching term.
// Organizations are dropped.
func (f *Fetcher) SearchUsers(ctx context.Context, term string) ([]entity.ContributorSummary, error) {
	return f.searchUsers(ctx, github.SearchUsers, term, SearchLimit)
}

// GetFreshRepositories lists popular repositories created in the last 30
// days.
func (f *Fetcher) GetFreshRepositories(ctx context.Context) ([]entity.RepoSummary, error) {
	return cachedQuery(ctx, f, github.FreshRepositories, nil, func(ctx context.Context) ([]entity.RepoSummary, error) {
		since := f.now().Add(-freshWindow).UTC().Format("2006-01-02")
		term := "stars:>500 created:>" + since + " sort:stars-desc"
		return f.searchRepos(ctx, github.FreshRepositories, term, DiscoveryLimit)
	})
}

// GetActiveContributors lists widely followed, prolific users.
func (f *Fetcher) GetActiveContributors(ctx context.Context) ([]entity.ContributorSummary, error) {
	return cachedQuery(ctx, f, github.ActiveContributors, nil, func(ctx context.Context) ([]entity.ContributorSummary, error) {
		return f.searchUsers(ctx, github.ActiveContributors, activeCriteria, DiscoveryLimit)
	})
}

func (f *Fetcher) searchRepos(ctx context.Context, q github.Query, term string, first int) ([]entity.RepoSummary, error) {
	data, err := execute[repoSearchData](ctx, f, q, map[string]any{"term": term, "first": first})
	if err != nil {
		return nil, err
	}
	repos := make([]entity.RepoSummary, 0, len(data.Search.Nodes))
	for _, n := range data.Search.Nodes {
		// Non-repository hits decode as empty nodes.
		if n.NameWithOwner == "" {
			continue
		}
		repos = append(repos, n.summary())
	}
	return repos, nil
}

func (f *Fetcher) searchUsers(ctx context.Context, q github.Query, term string, first int) ([]entity.ContributorSummary, error) {
	data, err := execute[userSearchData](ctx, f, q, map[string]any{"term": term, "first": first})
	if err != nil {
		return nil, err
	}
	users := make([]entity.ContributorSummary, 0, len(data.Search.Nodes))
	for _, n := range data.Search.Nodes {
		if n.Typename != "User" || n.Login == "" {
			continue
		}
		users = append(users, n.summary())
	}
	return users, nil
}
