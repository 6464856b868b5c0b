package github

import (
	"fmt"
	"regexp"
	"strings"
)

// urlPatterns for parsing repository references.
var (
	// Matches: https://github.com/owner/repo, https://github.com/owner/repo.git, github.com/owner/repo
	fullURLPattern = regexp.MustCompile(`^(?:https?://)?github\.com/([a-zA-Z0-9_.-]+)/([a-zA-Z0-9_.-]+?)(?:\.git)?/?$`)
	// Matches: owner/repo
	shorthandPattern = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)/([a-zA-Z0-9_.-]+)$`)
	// Matches a GitHub login.
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,38})$`)
)

// ParseRepoRef parses a GitHub URL or owner/name shorthand and returns (owner, name).
// Supported formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - github.com/owner/repo
//   - owner/repo
func ParseRepoRef(input string) (owner, name string, err error) {
	input = strings.TrimSpace(input)

	if matches := fullURLPattern.FindStringSubmatch(input); matches != nil {
		return matches[1], matches[2], nil
	}

	if matches := shorthandPattern.FindStringSubmatch(input); matches != nil {
		return matches[1], matches[2], nil
	}

	return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoRef, input)
}

// NameWithOwner joins owner and name in the canonical owner/name form.
func NameWithOwner(owner, name string) string {
	return owner + "/" + name
}

// ValidLogin reports whether s is a syntactically valid GitHub login.
func ValidLogin(s string) bool {
	return loginPattern.MatchString(s)
}
