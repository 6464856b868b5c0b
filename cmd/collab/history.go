package main

import (
	"github.com/spf13/cobra"
)

var historyClear bool

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Forget all recent searches")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent successful searches",
	Long: `List the most recent successful searches, newest first. Up to 10 are kept.

Examples:
  collab history
  collab history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// HistoryResponse is the JSON response for the history command.
type HistoryResponse struct {
	Searches []string `json:"searches"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	a := mustOpenApp(false)
	defer a.Close()

	if historyClear {
		if err := a.history.Clear(); err != nil {
			exitWithError(ExitError, "clearing history: %v", err)
		}
		if humanOutput {
			outputHuman("History cleared.\n")
			return nil
		}
		return outputJSON(StatusResponse{Status: "cleared"})
	}

	searches, err := a.history.List()
	if err != nil {
		exitWithError(ExitError, "reading history: %v", err)
	}
	if searches == nil {
		searches = []string{}
	}

	if !humanOutput {
		return outputJSON(HistoryResponse{Searches: searches})
	}
	if len(searches) == 0 {
		outputHuman("No recent searches.\n")
		return nil
	}
	for i, s := range searches {
		outputHuman("%2d. %s\n", i+1, s)
	}
	return nil
}
