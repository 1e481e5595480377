package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Shows queue depth per priority tier and dead-letter counts",
	RunE: func(_ *cobra.Command, _ []string) error {
		var stats struct {
			PendingByTier map[string]int `json:"pending_by_tier"`
			InFlight      int            `json:"in_flight"`
			DeadLettered  int            `json:"dead_lettered"`
		}
		if err := callAPI("GET", "/api/v1/queue/stats", nil, &stats); err != nil {
			return fmt.Errorf("failed to retrieve queue stats: %w", err)
		}

		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(stats)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIER\tPENDING")
		for _, tier := range []string{"express", "standard", "batch"} {
			fmt.Fprintf(w, "%s\t%d\n", tier, stats.PendingByTier[tier])
		}
		fmt.Fprintf(w, "in-flight\t%d\n", stats.InFlight)
		fmt.Fprintf(w, "dead-lettered\t%d\n", stats.DeadLettered)
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
