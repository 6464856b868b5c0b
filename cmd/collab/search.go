package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/collab/internal/entity"
)

func init() {
	searchCmd.AddCommand(searchReposCmd)
	searchCmd.AddCommand(searchUsersCmd)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search GitHub repositories or users",
	Long: `Search GitHub for repositories or users to explore. Results are never
cached.

Examples:
  collab search repos "graph layout"
  collab search users octo`,
}

var searchReposCmd = &cobra.Command{
	Use:   "repos <term>",
	Short: "Search repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(true)
		defer a.Close()

		ctx, cancel := interruptContext(cmd.Context())
		defer cancel()

		repos, err := a.fetcher.SearchRepositories(ctx, strings.Join(args, " "))
		if err != nil {
			exitWithFetchError(err)
		}
		return outputRepos(repos)
	},
}

var searchUsersCmd = &cobra.Command{
	Use:   "users <term>",
	Short: "Search users (organizations are excluded)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(true)
		defer a.Close()

		ctx, cancel := interruptContext(cmd.Context())
		defer cancel()

		users, err := a.fetcher.SearchUsers(ctx, strings.Join(args, " "))
		if err != nil {
			exitWithFetchError(err)
		}
		return outputContributors(users)
	},
}

func outputRepos(repos []entity.RepoSummary) error {
	if !humanOutput {
		return outputJSON(repos)
	}
	if len(repos) == 0 {
		outputHuman("No repositories found.\n")
		return nil
	}
	for i, r := range repos {
		outputHuman("%2d. %s\n", i+1, formatRepoLine(r))
	}
	return nil
}

func outputContributors(users []entity.ContributorSummary) error {
	if !humanOutput {
		return outputJSON(users)
	}
	if len(users) == 0 {
		outputHuman("No users found.\n")
		return nil
	}
	for i, u := range users {
		outputHuman("%2d. %s\n", i+1, formatContributorLine(u))
	}
	return nil
}
