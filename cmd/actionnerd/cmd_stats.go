package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsReset bool

// statsCmd shows or resets the usage counters that drive ranking.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show action usage statistics",
	Long: `Shows per-action click counts and last-used times. These counters
rank the action palette; more-used actions float to the top.

Use --reset to clear all counters.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "clear all usage counters")
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	if statsReset {
		if err := eng.orch.ResetUsage(); err != nil {
			return err
		}
		fmt.Println("Usage statistics cleared.")
		return nil
	}

	stats := eng.orch.UsageSnapshot()
	if len(stats) == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if stats[ids[i]].Clicks != stats[ids[j]].Clicks {
			return stats[ids[i]].Clicks > stats[ids[j]].Clicks
		}
		return ids[i] < ids[j]
	})

	fmt.Printf("%-24s %8s  %s\n", "ACTION", "CLICKS", "LAST USED")
	for _, id := range ids {
		s := stats[id]
		lastUsed := "never"
		if s.LastUsed != nil {
			lastUsed = s.LastUsed.Local().Format(time.DateTime)
		}
		fmt.Printf("%-24s %8d  %s\n", id, s.Clicks, lastUsed)
	}
	return nil
}
