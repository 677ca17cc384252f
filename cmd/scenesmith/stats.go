package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"scenesmith/cmd/scenesmith/ui"
	"scenesmith/internal/telemetry"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation telemetry summary",
	Long: `Stats summarizes the generation records collected so far: how many
scenes were produced, which backend produced them, how often the
cross-backend fallback fired, and the average quality score.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := telemetry.NewStoreFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to open telemetry store: %w", err)
	}
	defer store.Close()

	sum, err := store.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarize records: %w", err)
	}

	styles := ui.DefaultStyles()

	if sum.TotalRecords == 0 {
		fmt.Println(styles.Muted.Render("No generation records yet. Run `scenesmith generate` first."))
		return nil
	}

	overview := ui.NewTable("Generation Summary", "Metric", "Value")
	overview.AddRow("Records", fmt.Sprintf("%d", sum.TotalRecords))
	overview.AddRow("Fallbacks", fmt.Sprintf("%d (%.1f%%)", sum.FallbackCount, sum.FallbackRate*100))
	overview.AddRow("Training suitable", fmt.Sprintf("%d", sum.SuitableCount))
	overview.AddRow("Average quality", fmt.Sprintf("%.2f", sum.AverageQuality))
	fmt.Println(overview.View(styles))

	if len(sum.BackendCounts) > 0 {
		backends := ui.NewTable("Per Backend", "Backend", "Scenes")
		names := make([]string, 0, len(sum.BackendCounts))
		for name := range sum.BackendCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			backends.AddRow(name, fmt.Sprintf("%d", sum.BackendCounts[name]))
		}
		fmt.Println(backends.View(styles))
	}

	return nil
}
