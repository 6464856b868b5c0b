package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/fetch"
	"github.com/matsen/collab/internal/viz"
)

// Constants for output formatting.
const (
	DescriptionMaxLen = 70 // Used in repository lines
	LabelColumnWidth  = 40
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithFetchError reports a pipeline error with its user-facing message
// and the matching exit code. The full error is logged at debug level.
func exitWithFetchError(err error) {
	slog.Debug("command failed", "error", err)
	msg := fetch.UserMessage(err)
	if msg == "" {
		msg = "canceled"
	}
	exitWithError(exitCodeFor(err), "%s", msg)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OutputResponse is the response when a file was written.
type OutputResponse struct {
	Output string `json:"output"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatRepoLine formats a repository as a one-line summary.
func formatRepoLine(r entity.RepoSummary) string {
	var sb strings.Builder
	sb.WriteString(r.NameWithOwner)
	fmt.Fprintf(&sb, "  ★ %s", humanize.Comma(int64(r.StargazerCount)))
	if r.PrimaryLanguage != "" {
		fmt.Fprintf(&sb, "  %s", r.PrimaryLanguage)
	}
	if !r.PushedAt.IsZero() {
		fmt.Fprintf(&sb, "  pushed %s", humanize.Time(r.PushedAt))
	}
	if r.Description != "" {
		fmt.Fprintf(&sb, "\n    %s", truncateString(r.Description, DescriptionMaxLen))
	}
	return sb.String()
}

// formatContributorLine formats a contributor as a one-line summary.
func formatContributorLine(c entity.ContributorSummary) string {
	var sb strings.Builder
	sb.WriteString(c.Login)
	if c.Name != "" {
		fmt.Fprintf(&sb, " (%s)", c.Name)
	}
	if c.FollowerCount > 0 {
		fmt.Fprintf(&sb, "  %s followers", humanize.Comma(int64(c.FollowerCount)))
	}
	if c.CommitCount > 0 {
		fmt.Fprintf(&sb, "  %s", pluralize(c.CommitCount, "commit"))
	}
	return sb.String()
}

// pluralize formats a count with a singular or plural noun.
func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), noun)
}

// printGraphHuman prints a graph as an indented tree rooted at the focal node.
func printGraphHuman(g *viz.Graph, focal *viz.Node) {
	if g.IsEmpty() || focal == nil {
		fmt.Println("No graph data.")
		return
	}

	children := make(map[string][]viz.Link)
	for _, l := range g.Links {
		children[l.Source] = append(children[l.Source], l)
	}

	fmt.Println(formatNode(*focal))
	for _, l := range children[focal.ID] {
		child := g.Node(l.Target)
		if child == nil {
			continue
		}
		fmt.Printf("  %s\n", formatNode(*child))
		for _, sub := range children[child.ID] {
			if n := g.Node(sub.Target); n != nil {
				fmt.Printf("      %s\n", n.Name)
			}
		}
	}

	fmt.Printf("\n%s, %s\n", pluralize(len(g.Nodes), "node"), pluralize(len(g.Links), "link"))
}

func formatNode(n viz.Node) string {
	switch {
	case n.Repo != nil:
		line := formatRepoLine(*n.Repo)
		if n.Score > 0 {
			line += fmt.Sprintf("  [score %.1f]", n.Score)
		}
		return line
	case n.Contributor != nil:
		return formatContributorLine(*n.Contributor)
	default:
		return n.Name
	}
}

// formatLatest formats the most recent event time of a contribution.
func formatLatest(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
