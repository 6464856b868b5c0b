package github

import "strconv"

// Query is a fixed, versioned GraphQL document. Callers supply variables;
// the field set never changes at call time.
type Query struct {
	Name     string
	Version  int
	Document string
}

// ID returns the name and version, used to namespace cache keys so a field
// set change never reads entries written for an older document.
func (q Query) ID() string {
	return q.Name + ".v" + strconv.Itoa(q.Version)
}

// repoFields is shared by every query that returns repository summaries.
const repoFields = `
	id
	name
	nameWithOwner
	owner { login }
	url
	stargazerCount
	forkCount
	description
	primaryLanguage { name }
	pushedAt
`

// contributionFields selects contributions grouped by repository.
const contributionFields = `
	contributionsCollection {
		commitContributionsByRepository(maxRepositories: 25) {
			repository {` + repoFields + `}
			contributions(first: 50, orderBy: {field: OCCURRED_AT, direction: DESC}) {
				nodes { occurredAt commitCount }
			}
		}
		pullRequestContributionsByRepository(maxRepositories: 25) {
			repository {` + repoFields + `}
			contributions(first: 50, orderBy: {direction: DESC}) {
				nodes { occurredAt }
			}
		}
		issueContributionsByRepository(maxRepositories: 25) {
			repository {` + repoFields + `}
			contributions(first: 50, orderBy: {direction: DESC}) {
				nodes { occurredAt }
			}
		}
	}
`

// profileFields are the user fields shown in tooltips.
const profileFields = `
	login
	name
	avatarUrl
	company
	email
	location
	websiteUrl
	followers { totalCount }
`

// RepositoryDetails fetches one repository with its labels and its most
// recent issues and pull requests.
var RepositoryDetails = Query{
	Name:    "RepositoryDetails",
	Version: 1,
	Document: `query RepositoryDetails($owner: String!, $name: String!) {
	repository(owner: $owner, name: $name) {` + repoFields + `
		contributing: object(expression: "HEAD:CONTRIBUTING.md") { id }
		labels(first: 50) {
			nodes { name issues(states: OPEN) { totalCount } }
		}
		issues(last: 100, orderBy: {field: CREATED_AT, direction: ASC}) {
			nodes { createdAt }
		}
		pullRequests(last: 100, orderBy: {field: CREATED_AT, direction: ASC}) {
			nodes { createdAt }
		}
	}
}`,
}

// CommitAuthors fetches the authors of the first 100 default-branch commits
// since a timestamp.
var CommitAuthors = Query{
	Name:    "CommitAuthors",
	Version: 1,
	Document: `query CommitAuthors($owner: String!, $name: String!, $since: GitTimestamp!) {
	repository(owner: $owner, name: $name) {
		defaultBranchRef {
			target {
				... on Commit {
					history(first: 100, since: $since) {
						nodes { author { user { login } } }
					}
				}
			}
		}
	}
}`,
}

// ContributorGraph fetches a user's profile basics and contributions by
// repository.
var ContributorGraph = Query{
	Name:    "ContributorGraph",
	Version: 1,
	Document: `query ContributorGraph($login: String!) {
	user(login: $login) {` + profileFields + contributionFields + `}
}`,
}

// ContributorDetails fetches the full profile and contributions by
// repository for tooltips.
var ContributorDetails = Query{
	Name:    "ContributorDetails",
	Version: 1,
	Document: `query ContributorDetails($login: String!) {
	user(login: $login) {` + profileFields + `
		bio
		createdAt
		` + contributionFields + `}
}`,
}

// SearchRepositories is the repository typeahead query.
var SearchRepositories = Query{
	Name:    "SearchRepositories",
	Version: 1,
	Document: `query SearchRepositories($term: String!, $first: Int!) {
	search(query: $term, type: REPOSITORY, first: $first) {
		nodes { ... on Repository {` + repoFields + `} }
	}
}`,
}

// SearchUsers is the user typeahead query. Organizations are returned by
// the API and must be filtered by the caller.
var SearchUsers = Query{
	Name:    "SearchUsers",
	Version: 1,
	Document: `query SearchUsers($term: String!, $first: Int!) {
	search(query: $term, type: USER, first: $first) {
		nodes {
			__typename
			... on User { login name avatarUrl followers { totalCount } }
			... on Organization { login name avatarUrl }
		}
	}
}`,
}

// FreshRepositories lists recently created, already popular repositories.
var FreshRepositories = Query{
	Name:    "FreshRepositories",
	Version: 1,
	Document: `query FreshRepositories($term: String!, $first: Int!) {
	search(query: $term, type: REPOSITORY, first: $first) {
		nodes { ... on Repository {` + repoFields + `} }
	}
}`,
}

// ActiveContributors lists widely followed, prolific users.
var ActiveContributors = Query{
	Name:    "ActiveContributors",
	Version: 1,
	Document: `query ActiveContributors($term: String!, $first: Int!) {
	search(query: $term, type: USER, first: $first) {
		nodes {
			__typename
			... on User {` + profileFields + `}
		}
	}
}`,
}
