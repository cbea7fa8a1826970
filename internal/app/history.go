package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repopulse/internal/output"
	"github.com/blackwell-systems/repopulse/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded snapshot history with trends",
	Long: `History reads the SQLite snapshot store and shows how overall and
per-component progress moved across recent cycles. Recording happens
during normal cycles when history.enabled is set in the config.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of snapshots to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	entries, err := db.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history recorded yet. Enable history.enabled in the config and run a cycle.")
		return nil
	}

	fmt.Println(output.Section("Snapshot History"))
	fmt.Println()

	tbl := output.NewTable("Taken", "Overall", "Trend", "Phase", "Commits")
	for i, e := range entries {
		// Entries are newest first; the trend compares each snapshot
		// with the one taken before it.
		trend := output.StyleMuted.Render("─")
		if i+1 < len(entries) {
			trend = output.TrendArrow(float64(e.OverallProgress - entries[i+1].OverallProgress))
		}
		tbl.AddRow(
			e.TakenAt.Local().Format("2006-01-02 15:04"),
			output.ScoreBar(float64(e.OverallProgress), 16),
			trend,
			e.Phase,
			fmt.Sprintf("%d", e.TotalCommits),
		)
	}
	tbl.Print()
	fmt.Println()
	return nil
}
