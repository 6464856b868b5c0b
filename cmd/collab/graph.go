package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/collab/internal/explore"
	"github.com/matsen/collab/internal/viz"
)

var (
	graphWindow int
	graphHTML   string
	graphLayout string
)

func init() {
	repoCmd.Flags().IntVar(&graphWindow, "window", 0, "Recent issue/PR window in days: 1, 7 or 30 (default: saved preference)")
	for _, cmd := range []*cobra.Command{repoCmd, userCmd} {
		cmd.Flags().StringVar(&graphHTML, "html", "", "Write an interactive HTML page to this file")
		cmd.Flags().StringVar(&graphLayout, "layout", "", "HTML layout: force, circle, or grid (default: saved preference)")
		rootCmd.AddCommand(cmd)
	}
}

var repoCmd = &cobra.Command{
	Use:   "repo <owner/name|url>",
	Short: "Graph a repository's recent contributors",
	Long: `Build the collaboration graph around a repository: everyone who authored
a commit on the default branch in the last 7 days, and the repositories each
of them recently contributed to.

Examples:
  collab repo octo/demo
  collab repo https://github.com/octo/demo --window 30
  collab repo octo/demo --html demo.html --layout circle`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd, args[0], true)
	},
}

var userCmd = &cobra.Command{
	Use:   "user <login>",
	Short: "Graph the repositories a user recently contributed to",
	Long: `Build the collaboration graph around a user and the five repositories
they most recently committed to, opened pull requests or issues on.

Examples:
  collab user octocat
  collab user octocat --html octocat.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd, args[0], false)
	},
}

func runGraph(cmd *cobra.Command, term string, wantRepo bool) error {
	target, err := explore.ParseTarget(term)
	if err != nil {
		exitWithFetchError(err)
	}
	if target.IsRepo() != wantRepo {
		if wantRepo {
			exitWithError(ExitInputError, "%q is not a repository; use owner/name or try 'collab user %s'", term, term)
		}
		exitWithError(ExitInputError, "%q is not a user login; try 'collab repo %s'", term, term)
	}

	a := mustOpenApp(true)
	defer a.Close()

	window := graphWindow
	if window == 0 {
		window = a.prefs.Window(a.settings.WindowDays)
	} else if err := explore.ValidateWindow(window); err == nil {
		if err := a.prefs.SetWindow(window); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	layout := graphLayout
	if layout == "" {
		layout = a.prefs.Layout(a.settings.Layout)
	} else if err := viz.ValidateLayout(layout); err != nil {
		exitWithError(ExitInputError, "%v", err)
	} else if err := a.prefs.SetLayout(layout); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	ctx, cancel := interruptContext(cmd.Context())
	defer cancel()

	explorer := explore.New(a.fetcher, explore.WithRecorder(a.history))
	defer explorer.Close()
	<-explorer.Search(ctx, target.String(), window)

	state := explorer.State()
	if state.Err != nil {
		exitWithFetchError(state.Err)
	}
	if state.Graph == nil {
		exitWithError(ExitError, "canceled")
	}

	if graphHTML != "" {
		return writeGraphHTML(state, layout)
	}

	if humanOutput {
		printGraphHuman(state.Graph, state.Focal)
		for _, f := range state.Skipped {
			outputHuman("  skipped %s: %s\n", f.Login, f.Error)
		}
		return nil
	}
	return outputJSON(state)
}

func writeGraphHTML(state explore.State, layout string) error {
	opts := viz.HTMLOptions{
		Layout:  layout,
		FocalID: state.Focal.ID,
		Title:   fmt.Sprintf("%s - collaboration graph", state.Term),
	}
	html, err := viz.GenerateHTML(state.Graph, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if err := os.WriteFile(graphHTML, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		outputHuman("Visualization written to %s\n", graphHTML)
		return nil
	}
	return outputJSON(OutputResponse{Output: graphHTML})
}
