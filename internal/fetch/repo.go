package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/collab/internal/cache"
	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/github"
)

// GetRepositoryDetails fetches a repository summary. Recent issue and pull
// request counts cover the given window; window <= 0 means DefaultWindow.
func (f *Fetcher) GetRepositoryDetails(ctx context.Context, owner, name string, window time.Duration) (*entity.RepoSummary, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	vars := map[string]any{"owner": owner, "name": name}
	keyVars := map[string]any{"owner": owner, "name": name}
	if window != DefaultWindow {
		keyVars["windowDays"] = int(window / (24 * time.Hour))
	}

	// The window is applied locally, so the cache key carries it but the
	// query variables do not.
	repo, err := cachedQuery(ctx, f, github.RepositoryDetails, keyVars, func(ctx context.Context) (*entity.RepoSummary, error) {
		data, err := execute[repoDetailsData](ctx, f, github.RepositoryDetails, vars)
		if err != nil {
			return nil, notFound(err, owner+"/"+name)
		}
		if data.Repository == nil {
			return nil, fmt.Errorf("repository %s/%s: %w", owner, name, ErrNotFound)
		}

		r := data.Repository
		summary := r.summary()
		summary.HasContributingFile = r.Contributing != nil
		for _, l := range r.Labels.Nodes {
			summary.Labels = append(summary.Labels, entity.Label{Name: l.Name, IssueCount: l.Issues.TotalCount})
		}
		cutoff := f.now().Add(-window)
		summary.RecentIssueCount = r.Issues.countSince(cutoff)
		summary.RecentPRCount = r.PullRequests.countSince(cutoff)
		return &summary, nil
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GetRecentCommitAuthors returns one entry per account that authored a
// default-branch commit in the last seven days, in order of first
// appearance. Commits without a linked account are dropped.
func (f *Fetcher) GetRecentCommitAuthors(ctx context.Context, owner, name string) ([]entity.CommitAuthor, error) {
	keyVars := map[string]any{"owner": owner, "name": name}

	return cachedQuery(ctx, f, github.CommitAuthors, keyVars, func(ctx context.Context) ([]entity.CommitAuthor, error) {
		since := f.now().Add(-commitWindow).UTC().Format(time.RFC3339)
		vars := map[string]any{"owner": owner, "name": name, "since": since}

		data, err := execute[commitAuthorsData](ctx, f, github.CommitAuthors, vars)
		if err != nil {
			return nil, notFound(err, owner+"/"+name)
		}
		if data.Repository == nil {
			return nil, fmt.Errorf("repository %s/%s: %w", owner, name, ErrNotFound)
		}

		authors := []entity.CommitAuthor{}
		ref := data.Repository.DefaultBranchRef
		if ref == nil || ref.Target == nil || ref.Target.History == nil {
			return authors, nil
		}

		index := make(map[string]int)
		for _, commit := range ref.Target.History.Nodes {
			if commit.Author == nil || commit.Author.User == nil || commit.Author.User.Login == "" {
				continue
			}
			login := commit.Author.User.Login
			if i, ok := index[login]; ok {
				authors[i].Commits++
				continue
			}
			index[login] = len(authors)
			authors = append(authors, entity.CommitAuthor{Login: login, Commits: 1})
		}
		return authors, nil
	})
}

// FailedLeaf records a contributor whose lookup failed under SkipFailed.
type FailedLeaf struct {
	Login string `json:"login"`
	Error string `json:"error"`
}

// ContributorsResult is the outcome of a contributor fan-out.
type ContributorsResult struct {
	Contributors []entity.ContributorSummary `json:"contributors"`
	Failed       []FailedLeaf                `json:"failed,omitempty"`
}

// GetRepoContributorsWithContributedRepos fetches the recent human commit
// authors of a repository together with each one's recently contributed-to
// repositories. Contributors keep commit-author order.
func (f *Fetcher) GetRepoContributorsWithContributedRepos(ctx context.Context, owner, name string) (*ContributorsResult, error) {
	key := cache.Key(OpRepoContributors, map[string]any{"owner": owner, "name": name})
	if raw, ok := f.cache.Get(key); ok {
		var cached ContributorsResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	authors, err := f.GetRecentCommitAuthors(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	humans := make([]entity.CommitAuthor, 0, len(authors))
	for _, a := range authors {
		if !entity.IsBot(a.Login) {
			humans = append(humans, a)
		}
	}

	summaries := make([]*entity.ContributorSummary, len(humans))
	leafErrs := make([]error, len(humans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, author := range humans {
		g.Go(func() error {
			summary, err := f.GetContributorGraphData(gctx, author.Login)
			if err != nil {
				if f.policy == FailFast || github.IsCanceled(err) {
					return fmt.Errorf("contributor %s: %w", author.Login, err)
				}
				f.logger.Warn("skipping contributor", "op", OpRepoContributors, "login", author.Login, "error", err)
				leafErrs[i] = err
				return nil
			}
			// The summary may be shared with other callers of the same flight.
			s := *summary
			s.CommitCount = author.Commits
			summaries[i] = &s
			return nil
		})
	}
	err = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %w", github.ErrCanceled, ctxErr)
	}
	if err != nil {
		return nil, err
	}

	result := &ContributorsResult{Contributors: make([]entity.ContributorSummary, 0, len(humans))}
	for i, s := range summaries {
		if s != nil {
			result.Contributors = append(result.Contributors, *s)
			continue
		}
		if leafErrs[i] != nil {
			result.Failed = append(result.Failed, FailedLeaf{Login: humans[i].Login, Error: leafErrs[i].Error()})
		}
	}

	if len(result.Failed) == 0 {
		if raw, err := json.Marshal(result); err == nil {
			f.cache.Set(key, raw, f.ttl(OpRepoContributors))
		}
	}
	return result, nil
}

// notFound maps a remote not-found error onto ErrNotFound. Other errors pass
// through unchanged.
func notFound(err error, what string) error {
	if github.IsNotFound(err) && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return err
}
