package entity

import "strings"

// ContributorSummary describes a GitHub account in the collaboration graph.
// Login is the stable identity.
type ContributorSummary struct {
	Login         string `json:"login"`
	Name          string `json:"name,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Company       string `json:"company,omitempty"`
	Email         string `json:"email,omitempty"`
	Location      string `json:"location,omitempty"`
	WebsiteURL    string `json:"websiteUrl,omitempty"`
	FollowerCount int    `json:"followerCount"`

	// CommitCount is the number of recent commits on the focal repository.
	CommitCount int `json:"commitCount,omitempty"`

	RecentRepos []RepoSummary `json:"recentRepos"`
}

// ContributorDetails is a contributor profile with the full per-repository
// contribution breakdown, used for tooltips.
type ContributorDetails struct {
	ContributorSummary
	Contributions []RepoContribution `json:"contributions"`
}

// CommitAuthor is a login with the number of commits it authored.
type CommitAuthor struct {
	Login   string `json:"login"`
	Commits int    `json:"commits"`
}

// IsBot reports whether the login belongs to an app account.
func IsBot(login string) bool {
	return strings.HasSuffix(login, "[bot]")
}
