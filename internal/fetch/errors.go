package fetch

import (
	"errors"

	"github.com/matsen/collab/internal/github"
)

var (
	// ErrNotFound indicates the API has no repository or user for a
	// well-formed identifier.
	ErrNotFound = errors.New("not found on GitHub")

	// ErrInvalidInput indicates malformed user input, rejected before any
	// network call.
	ErrInvalidInput = errors.New("invalid input")
)

// UserMessage translates an error from this package into the message shown
// to users. Cancellation yields "" because it is never shown.
func UserMessage(err error) string {
	switch {
	case err == nil, github.IsCanceled(err):
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, github.ErrInvalidRepoRef):
		return err.Error()
	case errors.Is(err, ErrNotFound), github.IsNotFound(err):
		return "Nothing found. Check the repository or user name and try again."
	case errors.Is(err, github.ErrUnauthorized):
		return "GitHub rejected the credentials. Check github_token or GITHUB_TOKEN."
	case github.IsRateLimited(err):
		return "GitHub rate limit reached. Wait a few minutes and try again."
	default:
		return "Could not load data from GitHub. Please try again."
	}
}
