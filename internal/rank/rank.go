// Package rank orders repositories by recency of contribution and scores how
// welcoming a repository is to new contributors.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/matsen/collab/internal/entity"
)

// DefaultRecentLimit is the number of repositories kept per contributor.
const DefaultRecentLimit = 5

// Score weights.
const (
	ContributingBonus = 10.0
	RecentPushBonus   = 5.0
	RecentPushWindow  = 30 * 24 * time.Hour
	StarsPerPoint     = 100.0
)

// friendlyLabels are matched case-insensitively.
var friendlyLabels = map[string]bool{
	"good first issue":  true,
	"help wanted":       true,
	"beginner friendly": true,
}

// MostRecentRepos returns the repositories of the limit most recently
// contributed-to entries, newest first. Entries without events sort as the
// zero time. Ties keep input order.
func MostRecentRepos(contributions []entity.RepoContribution, limit int) []entity.RepoSummary {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	type ranked struct {
		repo   entity.RepoSummary
		latest time.Time
	}
	items := make([]ranked, len(contributions))
	for i, c := range contributions {
		items[i] = ranked{repo: c.Repository, latest: c.LatestOccurredAt()}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].latest.After(items[j].latest)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	repos := make([]entity.RepoSummary, len(items))
	for i, it := range items {
		repos[i] = it.repo
	}
	return repos
}

// ScoreRepository computes the friendliness score used for node emphasis.
// It never influences graph topology.
func ScoreRepository(repo entity.RepoSummary, now time.Time) float64 {
	var score float64
	for _, l := range repo.Labels {
		if friendlyLabels[strings.ToLower(l.Name)] {
			score += float64(l.IssueCount)
		}
	}
	if repo.HasContributingFile {
		score += ContributingBonus
	}
	if !repo.PushedAt.IsZero() && now.Sub(repo.PushedAt) <= RecentPushWindow {
		score += RecentPushBonus
	}
	score += float64(repo.StargazerCount) / StarsPerPoint
	return score
}
