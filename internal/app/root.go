// Package app contains the Cobra command tree for repopulse.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repopulse/internal/config"
	"github.com/blackwell-systems/repopulse/internal/engine"
	"github.com/blackwell-systems/repopulse/internal/output"
	"github.com/blackwell-systems/repopulse/internal/snapshot"
	"github.com/blackwell-systems/repopulse/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagConfig  string
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool

	flagAuto     bool
	flagInterval int
)

var rootCmd = &cobra.Command{
	Use:   "repopulse",
	Short: "Heuristic progress telemetry for multi-service repositories",
	Long: `repopulse inspects a repository's working tree, probes its runtime
services, reads git metadata, and combines the evidence into a 0-100
completion score per subsystem. The result is written as a JSON
snapshot for the dashboard and summarized on the console.

Run 'repopulse' with no arguments for a single scoring cycle, or
'repopulse --auto' to refresh continuously.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ./repopulse.yaml or ~/.config/repopulse/repopulse.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")

	rootCmd.Flags().BoolVarP(&flagAuto, "auto", "a", false, "Refresh continuously instead of running once")
	rootCmd.Flags().IntVarP(&flagInterval, "interval", "i", 30, "Polling interval in seconds (with --auto)")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Malformed configuration is fatal before any cycle runs.
	if flagInterval < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", flagInterval)
	}

	opts := []engine.Option{
		engine.WithVersion(appVersion),
		engine.WithVerbose(flagVerbose),
	}

	if cfg.History.Enabled {
		db, err := store.Open(cfg.History.DBPath)
		if err != nil {
			// History is an add-on; run the cycle without it.
			fmt.Fprintf(os.Stderr, "warn: history disabled: %v\n", err)
		} else {
			defer func() { _ = db.Close() }()
			opts = append(opts, engine.WithStore(db))
		}
	}

	eng := engine.New(cfg, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if flagAuto {
		interval := time.Duration(flagInterval) * time.Second
		fmt.Printf("repopulse watching %s (refreshing every %s)\n", cfg.ProjectRoot, interval)
		err := eng.Run(ctx, interval)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nStopped.")
			return nil
		}
		return err
	}

	snap, err := eng.RunOnce(ctx)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Print(snapshot.Render(snap))
	return nil
}

// loadConfig loads, validates, and applies output settings. Shared by
// the root, history, and doctor commands.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color {
		output.SetNoColor(true)
	} else {
		output.AutoDetect()
	}
	return cfg, nil
}
