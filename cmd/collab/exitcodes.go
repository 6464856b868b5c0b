package main

import (
	"errors"

	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config, missing token)
	ExitInputError  = 3 // Malformed repository reference, login or window
	ExitNotFound    = 4 // Repository or user does not exist
	ExitAPIError    = 5 // GitHub API error (auth, rate limit, network, remote)
)

// exitCodeFor classifies an error from the fetch pipeline.
func exitCodeFor(err error) int {
	var remote *github.RemoteError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, fetch.ErrInvalidInput), errors.Is(err, github.ErrInvalidRepoRef):
		return ExitInputError
	case errors.Is(err, fetch.ErrNotFound), github.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, github.ErrUnauthorized),
		errors.Is(err, github.ErrRateLimited),
		errors.Is(err, github.ErrNetworkError),
		errors.Is(err, github.ErrInvalidResponse),
		errors.As(err, &remote):
		return ExitAPIError
	default:
		return ExitError
	}
}
