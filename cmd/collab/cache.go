package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/collab/internal/storage"
)

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local response cache",
}

// CacheInfoResponse is the JSON response for cache info.
type CacheInfoResponse struct {
	Path         string `json:"path"`
	SizeBytes    int64  `json:"size_bytes"`
	CacheEntries int    `json:"cache_entries"`
	History      int    `json:"history_entries"`
	Prefs        int    `json:"pref_entries"`
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cache location and entry counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(false)
		defer a.Close()

		resp := CacheInfoResponse{Path: a.settings.CachePath}
		if ephemeral {
			resp.Path = "(memory)"
		} else if fi, err := os.Stat(a.settings.CachePath); err == nil {
			resp.SizeBytes = fi.Size()
		}

		for _, c := range []struct {
			prefix string
			dst    *int
		}{
			{storage.CachePrefix, &resp.CacheEntries},
			{storage.HistoryPrefix, &resp.History},
			{storage.PrefPrefix, &resp.Prefs},
		} {
			n, err := a.store.Count(c.prefix)
			if err != nil {
				exitWithError(ExitError, "counting entries: %v", err)
			}
			*c.dst = n
		}

		if !humanOutput {
			return outputJSON(resp)
		}
		outputHuman("Path:     %s\n", resp.Path)
		outputHuman("Size:     %s\n", humanize.Bytes(uint64(resp.SizeBytes)))
		outputHuman("Cached:   %s\n", pluralize(resp.CacheEntries, "response"))
		outputHuman("History:  %s\n", pluralize(resp.History, "term"))
		outputHuman("Prefs:    %s\n", pluralize(resp.Prefs, "setting"))
		return nil
	},
}
