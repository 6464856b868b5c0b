package fetch

import (
	"time"

	"github.com/matsen/collab/internal/entity"
)

// Raw GraphQL response shapes. Nullable objects are pointers so missing
// optional fields decode to nil instead of failing.

type repoNode struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NameWithOwner   string `json:"nameWithOwner"`
	Owner           *struct {
		Login string `json:"login"`
	} `json:"owner"`
	URL             string `json:"url"`
	StargazerCount  int    `json:"stargazerCount"`
	ForkCount       int    `json:"forkCount"`
	Description     string `json:"description"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	PushedAt time.Time `json:"pushedAt"`
}

func (r repoNode) summary() entity.RepoSummary {
	s := entity.RepoSummary{
		ID:             r.ID,
		Name:           r.Name,
		NameWithOwner:  r.NameWithOwner,
		URL:            r.URL,
		StargazerCount: r.StargazerCount,
		ForkCount:      r.ForkCount,
		Description:    r.Description,
		PushedAt:       r.PushedAt,
	}
	if r.Owner != nil {
		s.Owner = r.Owner.Login
	}
	if r.PrimaryLanguage != nil {
		s.PrimaryLanguage = r.PrimaryLanguage.Name
	}
	return s
}

type createdNodes struct {
	Nodes []struct {
		CreatedAt time.Time `json:"createdAt"`
	} `json:"nodes"`
}

// countSince counts nodes created at or after cutoff.
func (c createdNodes) countSince(cutoff time.Time) int {
	n := 0
	for _, node := range c.Nodes {
		if !node.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

type repoDetailsData struct {
	Repository *struct {
		repoNode
		Contributing *struct {
			ID string `json:"id"`
		} `json:"contributing"`
		Labels struct {
			Nodes []struct {
				Name   string `json:"name"`
				Issues struct {
					TotalCount int `json:"totalCount"`
				} `json:"issues"`
			} `json:"nodes"`
		} `json:"labels"`
		Issues       createdNodes `json:"issues"`
		PullRequests createdNodes `json:"pullRequests"`
	} `json:"repository"`
}

type commitAuthorsData struct {
	Repository *struct {
		DefaultBranchRef *struct {
			Target *struct {
				History *struct {
					Nodes []struct {
						Author *struct {
							User *struct {
								Login string `json:"login"`
							} `json:"user"`
						} `json:"author"`
					} `json:"nodes"`
				} `json:"history"`
			} `json:"target"`
		} `json:"defaultBranchRef"`
	} `json:"repository"`
}

type contributionNodes struct {
	Nodes []struct {
		OccurredAt  time.Time `json:"occurredAt"`
		CommitCount int       `json:"commitCount"`
	} `json:"nodes"`
}

type repoContributions struct {
	Repository    repoNode          `json:"repository"`
	Contributions contributionNodes `json:"contributions"`
}

type contributionsCollection struct {
	Commits      []repoContributions `json:"commitContributionsByRepository"`
	PullRequests []repoContributions `json:"pullRequestContributionsByRepository"`
	Issues       []repoContributions `json:"issueContributionsByRepository"`
}

// byRepository merges the three contribution kinds per repository, keeping
// the order in which repositories first appear.
func (c *contributionsCollection) byRepository() []entity.RepoContribution {
	if c == nil {
		return nil
	}

	var out []entity.RepoContribution
	index := make(map[string]int)

	add := func(groups []repoContributions, kind string) {
		for _, g := range groups {
			id := g.Repository.NameWithOwner
			if id == "" {
				continue
			}
			i, ok := index[id]
			if !ok {
				i = len(out)
				index[id] = i
				out = append(out, entity.RepoContribution{Repository: g.Repository.summary()})
			}
			for _, n := range g.Contributions.Nodes {
				count := n.CommitCount
				if count == 0 {
					count = 1
				}
				out[i].Events = append(out[i].Events, entity.ContributionEvent{
					OccurredAt: n.OccurredAt,
					Kind:       kind,
					Count:      count,
				})
			}
		}
	}

	add(c.Commits, entity.KindCommit)
	add(c.PullRequests, entity.KindPullRequest)
	add(c.Issues, entity.KindIssue)
	return out
}

type userNode struct {
	Typename   string `json:"__typename"`
	Login      string `json:"login"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl"`
	Company    string `json:"company"`
	Email      string `json:"email"`
	Location   string `json:"location"`
	WebsiteURL string `json:"websiteUrl"`
	Followers  *struct {
		TotalCount int `json:"totalCount"`
	} `json:"followers"`
	ContributionsCollection *contributionsCollection `json:"contributionsCollection"`
}

func (u userNode) summary() entity.ContributorSummary {
	s := entity.ContributorSummary{
		Login:      u.Login,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		Company:    u.Company,
		Email:      u.Email,
		Location:   u.Location,
		WebsiteURL: u.WebsiteURL,
	}
	if u.Followers != nil {
		s.FollowerCount = u.Followers.TotalCount
	}
	return s
}

type userData struct {
	User *userNode `json:"user"`
}

type repoSearchData struct {
	Search struct {
		Nodes []repoNode `json:"nodes"`
	} `json:"search"`
}

type userSearchData struct {
	Search struct {
		Nodes []userNode `json:"nodes"`
	} `json:"search"`
}
