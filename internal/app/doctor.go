package app

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repopulse/internal/output"
	"github.com/blackwell-systems/repopulse/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and environment before monitoring",
	Long: `Doctor verifies everything a scoring cycle depends on: the config
parses and validates, the project root exists, git is available, the
snapshot path is writable, and the history database opens.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// check is one doctor verification with its outcome.
type check struct {
	name string
	err  error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []check

	cfg, err := loadConfig()
	checks = append(checks, check{"configuration parses and validates", err})
	if err != nil {
		printChecks(checks)
		return fmt.Errorf("doctor found problems")
	}

	if info, statErr := os.Stat(cfg.ProjectRoot); statErr != nil {
		checks = append(checks, check{"project root exists", statErr})
	} else if !info.IsDir() {
		checks = append(checks, check{"project root exists", fmt.Errorf("%s is not a directory", cfg.ProjectRoot)})
	} else {
		checks = append(checks, check{"project root exists", nil})
	}

	_, gitErr := exec.LookPath("git")
	checks = append(checks, check{"git binary available", gitErr})

	checks = append(checks, check{"snapshot path writable", checkWritable(cfg.SnapshotPath)})

	if cfg.History.Enabled {
		db, dbErr := store.Open(cfg.History.DBPath)
		if dbErr == nil {
			_ = db.Close()
		}
		checks = append(checks, check{"history database opens", dbErr})
	}

	failed := printChecks(checks)
	if failed > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failed)
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// checkWritable verifies a file can be created next to the target path.
func checkWritable(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

// printChecks renders the results and returns the number of failures.
func printChecks(checks []check) int {
	fmt.Println(output.Section("Doctor"))
	fmt.Println()

	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
			fmt.Printf(" %s %s: %v\n", output.StyleError.Render("✗"), c.name, c.err)
			continue
		}
		fmt.Printf(" %s %s\n", output.StyleSuccess.Render("✓"), c.name)
	}
	return failed
}
