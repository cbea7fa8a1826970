// Package gitstats reads version-control metadata for a repository by
// invoking git with explicit argument arrays and bounded timeouts.
package gitstats

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GitStats is a read-only reflection of repository state. Field names
// are stable: they appear verbatim in the persisted snapshot.
type GitStats struct {
	TotalCommits      int      `json:"totalCommits"`
	ModifiedFiles     int      `json:"modifiedFiles"`
	LastCommitTime    string   `json:"lastCommitTime"`
	LastCommitMessage string   `json:"lastCommitMessage"`
	CurrentBranch     string   `json:"currentBranch"`
	RecentCommits     []string `json:"recentCommits"`
}

// maxRecentCommits caps the recent-commit list for bounded output.
const maxRecentCommits = 5

// commandTimeout bounds each individual git invocation.
const commandTimeout = 5 * time.Second

// DefaultBranch is reported when the branch cannot be determined.
const DefaultBranch = "main"

// Collect gathers git metadata for repoRoot. Every underlying command
// failure softens to a documented default (zero counts, DefaultBranch,
// empty recent list) and is returned as a warning; Collect itself never
// fails, so a broken or absent git never aborts a scoring cycle.
func Collect(ctx context.Context, repoRoot string) (GitStats, []error) {
	stats := GitStats{
		CurrentBranch: DefaultBranch,
		RecentCommits: []string{},
	}
	var warnings []error

	warn := func(what string, err error) {
		warnings = append(warnings, fmt.Errorf("git %s: %w", what, err))
	}

	if out, err := runGit(ctx, repoRoot, "rev-list", "--count", "HEAD"); err != nil {
		warn("rev-list", err)
	} else if n, err := strconv.Atoi(strings.TrimSpace(out)); err == nil {
		stats.TotalCommits = n
	}

	if out, err := runGit(ctx, repoRoot, "status", "--porcelain"); err != nil {
		warn("status", err)
	} else {
		stats.ModifiedFiles = countLines(out)
	}

	if out, err := runGit(ctx, repoRoot, "log", "-1", "--format=%cr"); err != nil {
		warn("log time", err)
	} else {
		stats.LastCommitTime = strings.TrimSpace(out)
	}

	if out, err := runGit(ctx, repoRoot, "log", "-1", "--format=%s"); err != nil {
		warn("log message", err)
	} else {
		stats.LastCommitMessage = strings.TrimSpace(out)
	}

	if out, err := runGit(ctx, repoRoot, "rev-parse", "--abbrev-ref", "HEAD"); err != nil {
		warn("rev-parse", err)
	} else if branch := strings.TrimSpace(out); branch != "" {
		stats.CurrentBranch = branch
	}

	if out, err := runGit(ctx, repoRoot, "log", "--oneline", "-"+strconv.Itoa(maxRecentCommits)); err != nil {
		warn("log oneline", err)
	} else {
		stats.RecentCommits = splitLines(out, maxRecentCommits)
	}

	return stats, warnings
}

// runGit executes a single git command in repoRoot with its own timeout
// derived from the parent context.
func runGit(ctx context.Context, repoRoot string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "git", args...)
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// countLines counts non-empty lines in command output.
func countLines(out string) int {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, "\n"))
}

// splitLines splits command output into at most max non-empty lines.
func splitLines(out string, max int) []string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return []string{}
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > max {
		lines = lines[:max]
	}
	return lines
}
