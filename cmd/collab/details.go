package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/github"
)

func init() {
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details <login>",
	Short: "Show a contributor's profile and per-repository contributions",
	Long: `Show a contributor's profile with every repository they recently
contributed to, and how (commits, pull requests, issues).

Examples:
  collab details octocat
  collab details octocat --human`,
	Args: cobra.ExactArgs(1),
	RunE: runDetails,
}

func runDetails(cmd *cobra.Command, args []string) error {
	login := args[0]
	if !github.ValidLogin(login) {
		exitWithError(ExitInputError, "invalid GitHub login %q", login)
	}

	a := mustOpenApp(true)
	defer a.Close()

	ctx, cancel := interruptContext(cmd.Context())
	defer cancel()

	details, err := a.fetcher.GetContributorDetails(ctx, login)
	if err != nil {
		exitWithFetchError(err)
	}

	if humanOutput {
		printDetailsHuman(details)
		return nil
	}
	return outputJSON(details)
}

func printDetailsHuman(d *entity.ContributorDetails) {
	fmt.Println(formatContributorLine(d.ContributorSummary))
	for _, field := range []struct{ label, value string }{
		{"Company", d.Company},
		{"Location", d.Location},
		{"Website", d.WebsiteURL},
	} {
		if field.value != "" {
			fmt.Printf("  %-10s %s\n", field.label+":", field.value)
		}
	}

	if len(d.Contributions) == 0 {
		fmt.Println("\nNo recent contributions.")
		return
	}

	fmt.Printf("\nContributions (%d):\n", len(d.Contributions))
	for _, c := range d.Contributions {
		fmt.Printf("  %-*s %s  last %s\n",
			LabelColumnWidth,
			truncateString(c.Repository.NameWithOwner, LabelColumnWidth),
			formatEventCounts(c.Events),
			formatLatest(c.LatestOccurredAt()))
	}
}

// formatEventCounts summarizes events as "3 commits, 1 pullRequest".
func formatEventCounts(events []entity.ContributionEvent) string {
	totals := make(map[string]int)
	for _, e := range events {
		totals[e.Kind] += e.Count
	}
	var out string
	for _, kind := range []string{entity.KindCommit, entity.KindPullRequest, entity.KindIssue} {
		n, ok := totals[kind]
		if !ok {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += pluralize(n, kind)
	}
	return out
}
