// Package github provides a GraphQL client for the GitHub API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the GitHub GraphQL API endpoint.
	DefaultEndpoint = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the client-side request rate (requests per second).
	DefaultRateLimit = 10.0
)

// Client executes GraphQL queries against the GitHub API.
// It holds only shared transport configuration and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
	endpoint   string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoint sets a custom GraphQL endpoint (for testing or GHES).
func WithEndpoint(url string) ClientOption {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithRateLimit sets the client-side request rate. Non-positive values
// disable limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new GitHub GraphQL client.
// It reads GITHUB_TOKEN from the environment unless WithToken is given.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		token:      os.Getenv("GITHUB_TOKEN"),
		endpoint:   DefaultEndpoint,
		userAgent:  "collab-cli",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the envelope of a GraphQL reply.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// Execute runs q with vars and returns the response's data member.
//
// Errors: ErrCanceled when ctx is done before or during the call,
// ErrNetworkError for transport failures, *RemoteError when the API reports
// errors. Execute never retries.
func (c *Client) Execute(ctx context.Context, q Query, vars map[string]any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx.Err())
		}
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: q.Document, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", q.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, q.Name); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx.Err())
		}
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", ErrInvalidResponse, q.Name, err)
	}

	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return nil, &RemoteError{
			Query:      q.Name,
			StatusCode: resp.StatusCode,
			Type:       first.Type,
			Message:    first.Message,
			Path:       formatPath(first.Path),
			Count:      len(envelope.Errors),
		}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("%w: %s returned no data", ErrInvalidResponse, q.Name)
	}

	return envelope.Data, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, query string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &RemoteError{
			Query:      query,
			StatusCode: resp.StatusCode,
			Type:       "http_error",
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// canceled wraps a context error so callers can tell an aborted call apart
// from real failures.
func canceled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

func formatPath(path []any) string {
	if len(path) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for i, p := range path {
		if i > 0 {
			buf.WriteByte('.')
		}
		fmt.Fprint(&buf, p)
	}
	return buf.String()
}

// IsCanceled reports whether err is a cancellation outcome rather than a
// failure.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
