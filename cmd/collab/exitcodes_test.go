package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/github"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid input", fmt.Errorf("%w: bad window", fetch.ErrInvalidInput), ExitInputError},
		{"invalid repo ref", github.ErrInvalidRepoRef, ExitInputError},
		{"not found", fmt.Errorf("repository octo/demo: %w", fetch.ErrNotFound), ExitNotFound},
		{"remote not found", &github.RemoteError{Query: "RepositoryDetails", Type: "NOT_FOUND"}, ExitNotFound},
		{"unauthorized", github.ErrUnauthorized, ExitAPIError},
		{"rate limited", fmt.Errorf("CommitAuthors: %w", github.ErrRateLimited), ExitAPIError},
		{"network", github.ErrNetworkError, ExitAPIError},
		{"bad response", github.ErrInvalidResponse, ExitAPIError},
		{"remote", &github.RemoteError{Query: "ContributorGraph", Type: "FORBIDDEN"}, ExitAPIError},
		{"canceled", fmt.Errorf("%w", github.ErrCanceled), ExitError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
