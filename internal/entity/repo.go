// Package entity defines the repository and contributor records exchanged
// between the fetch pipeline and the graph builder.
package entity

import "time"

// RepoSummary describes a repository as shown in the collaboration graph.
// NameWithOwner ("owner/name") is the stable identity.
type RepoSummary struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	NameWithOwner       string    `json:"nameWithOwner"`
	Owner               string    `json:"owner"`
	URL                 string    `json:"url"`
	StargazerCount      int       `json:"stargazerCount"`
	ForkCount           int       `json:"forkCount"`
	Description         string    `json:"description,omitempty"`
	PrimaryLanguage     string    `json:"primaryLanguage,omitempty"`
	PushedAt            time.Time `json:"pushedAt"`
	HasContributingFile bool      `json:"hasContributingFile"`
	Labels              []Label   `json:"labels,omitempty"`
	RecentIssueCount    int       `json:"recentIssueCount"`
	RecentPRCount       int       `json:"recentPRCount"`
}

// Label is a repository issue label with its open issue count.
type Label struct {
	Name       string `json:"name"`
	IssueCount int    `json:"issueCount"`
}

// RepoContribution pairs a repository with the contribution events a user
// made to it.
type RepoContribution struct {
	Repository RepoSummary         `json:"repository"`
	Events     []ContributionEvent `json:"events"`
}

// Contribution event kinds.
const (
	KindCommit      = "commit"
	KindPullRequest = "pullRequest"
	KindIssue       = "issue"
)

// ContributionEvent is a single dated contribution (a day of commits, an
// opened pull request or issue).
type ContributionEvent struct {
	OccurredAt time.Time `json:"occurredAt"`
	Kind       string    `json:"kind"`
	Count      int       `json:"count"`
}

// LatestOccurredAt returns the most recent event time, or the zero time when
// there are no events.
func (c RepoContribution) LatestOccurredAt() time.Time {
	var latest time.Time
	for _, e := range c.Events {
		if e.OccurredAt.After(latest) {
			latest = e.OccurredAt
		}
	}
	return latest
}
