package fetch

import (
	"context"
	"fmt"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/github"
	"github.com/matsen/collab/internal/rank"
)

// GetContributorGraphData fetches a user's profile basics and the repositories
// they most recently contributed to.
func (f *Fetcher) GetContributorGraphData(ctx context.Context, login string) (*entity.ContributorSummary, error) {
	vars := map[string]any{"login": login}

	return cachedQuery(ctx, f, github.ContributorGraph, vars, func(ctx context.Context) (*entity.ContributorSummary, error) {
		user, err := f.fetchUser(ctx, github.ContributorGraph, login)
		if err != nil {
			return nil, err
		}
		summary := user.summary()
		summary.RecentRepos = rank.MostRecentRepos(user.ContributionsCollection.byRepository(), rank.DefaultRecentLimit)
		return &summary, nil
	})
}

// GetContributorDetails fetches a user's profile with the full per-repository
// contribution breakdown.
func (f *Fetcher) GetContributorDetails(ctx context.Context, login string) (*entity.ContributorDetails, error) {
	vars := map[string]any{"login": login}

	return cachedQuery(ctx, f, github.ContributorDetails, vars, func(ctx context.Context) (*entity.ContributorDetails, error) {
		user, err := f.fetchUser(ctx, github.ContributorDetails, login)
		if err != nil {
			return nil, err
		}
		contributions := user.ContributionsCollection.byRepository()
		details := &entity.ContributorDetails{
			ContributorSummary: user.summary(),
			Contributions:      contributions,
		}
		details.RecentRepos = rank.MostRecentRepos(contributions, rank.DefaultRecentLimit)
		return details, nil
	})
}

func (f *Fetcher) fetchUser(ctx context.Context, q github.Query, login string) (*userNode, error) {
	data, err := execute[userData](ctx, f, q, map[string]any{"login": login})
	if err != nil {
		return nil, notFound(err, "user "+login)
	}
	if data.User == nil {
		return nil, fmt.Errorf("user %s: %w", login, ErrNotFound)
	}
	return data.User, nil
}
