package github

import (
	"errors"
	"fmt"
)

// Common errors returned by the GitHub client.
var (
	// ErrInvalidRepoRef indicates input that is not owner/name or a github.com URL.
	ErrInvalidRepoRef = errors.New("invalid repository reference (expected owner/name)")

	// ErrUnauthorized indicates a missing or rejected token.
	ErrUnauthorized = errors.New("GitHub API authentication failed")

	// ErrRateLimited indicates the API rate limit has been exceeded.
	ErrRateLimited = errors.New("GitHub API rate limit exceeded")

	// ErrNetworkError indicates a transport failure.
	ErrNetworkError = errors.New("network error connecting to GitHub")

	// ErrInvalidResponse indicates a reply that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from GitHub")

	// ErrCanceled indicates the call was abandoned because its context ended.
	// It is not a failure and is never shown to users.
	ErrCanceled = errors.New("request canceled")
)

// RemoteError is an error reported by the GraphQL API itself.
type RemoteError struct {
	Query      string // Query name that failed
	StatusCode int
	Type       string // GraphQL error type, e.g. NOT_FOUND, FORBIDDEN
	Message    string
	Path       string // Dotted response path the error applies to
	Count      int    // Total number of errors in the reply
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("GitHub API error in %s", e.Query)
	if e.Type != "" {
		msg += fmt.Sprintf(" (%s)", e.Type)
	}
	msg += ": " + e.Message
	if e.Path != "" {
		msg += fmt.Sprintf(" at %s", e.Path)
	}
	if e.Count > 1 {
		msg += fmt.Sprintf(" (+%d more)", e.Count-1)
	}
	return msg
}

// IsNotFound returns true if the API reported that the entity does not exist.
func IsNotFound(err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Type == "NOT_FOUND" || remote.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Type == "RATE_LIMITED" || remote.StatusCode == 429
	}
	return false
}
