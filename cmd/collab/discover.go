package main

import (
	"github.com/spf13/cobra"
)

func init() {
	discoverCmd.AddCommand(discoverFreshCmd)
	discoverCmd.AddCommand(discoverActiveCmd)
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Starting points for exploration",
	Long: `Show discovery feeds: popular repositories created in the last 30 days,
and widely followed contributors. Feeds are cached for a day.`,
}

var discoverFreshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Popular repositories created in the last 30 days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(true)
		defer a.Close()

		ctx, cancel := interruptContext(cmd.Context())
		defer cancel()

		repos, err := a.fetcher.GetFreshRepositories(ctx)
		if err != nil {
			exitWithFetchError(err)
		}
		return outputRepos(repos)
	},
}

var discoverActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Widely followed contributors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(true)
		defer a.Close()

		ctx, cancel := interruptContext(cmd.Context())
		defer cancel()

		users, err := a.fetcher.GetActiveContributors(ctx)
		if err != nil {
			exitWithFetchError(err)
		}
		return outputContributors(users)
	},
}
