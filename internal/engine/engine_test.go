package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/repopulse/internal/config"
	"github.com/blackwell-systems/repopulse/internal/gitstats"
	"github.com/blackwell-systems/repopulse/internal/probe"
	"github.com/blackwell-systems/repopulse/internal/score"
	"github.com/blackwell-systems/repopulse/internal/snapshot"
	"github.com/blackwell-systems/repopulse/internal/store"
)

// testConfig builds a small, fully-scorable project config rooted at root.
func testConfig(root string) *config.Config {
	return &config.Config{
		ProjectRoot:  root,
		SnapshotPath: filepath.Join(root, "progress-snapshot.json"),
		ExcludeDirs:  []string{".git", "node_modules"},
		Components: map[string]config.Component{
			"backend":  {Subtree: "backend", Patterns: []string{"*.go"}, Service: "backend", Targets: score.Targets{Files: 2}},
			"database": {Subtree: "db", Patterns: []string{"*.sql"}, Service: "database", Targets: score.Targets{Files: 1}},
			"tests":    {Subtree: ".", Patterns: []string{"*_test.go"}, Targets: score.Targets{Files: 2}},
		},
		Services: []config.Service{
			{Name: "backend", Port: 8000, HealthPath: "/health"},
			{Name: "database", Port: 5432},
		},
		Metrics: map[string]config.Metric{
			"testFiles": {Subtree: ".", Patterns: []string{"*_test.go"}},
		},
		RouteFiles:      []string{"backend/routes.go"},
		Caps:            config.DefaultCaps,
		PrimaryServices: []string{"backend", "database"},
		TestMetric:      "testFiles",
		TestThreshold:   1,
	}
}

// populateHealthyTree creates files meeting every target in testConfig.
func populateHealthyTree(t *testing.T, root string) {
	t.Helper()
	for _, p := range []string{
		"backend/server.go", "backend/handlers.go",
		"db/schema.sql",
		"api_test.go", "db_test.go",
	} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	routes := "router.get(\"/items\")\nrouter.post(\"/items\")\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "backend", "routes.go"), []byte(routes), 0o644))
}

// stubProbe returns a ProbeFunc with fixed per-service health.
func stubProbe(health map[string]string) ProbeFunc {
	return func(ctx context.Context, specs []probe.Spec) map[string]probe.ServiceStatus {
		out := make(map[string]probe.ServiceStatus, len(specs))
		for _, s := range specs {
			h := health[s.Name]
			out[s.Name] = probe.ServiceStatus{
				Name:    s.Name,
				Port:    s.Port,
				Running: h == probe.HealthHealthy || h == probe.HealthRunning,
				Health:  h,
			}
		}
		return out
	}
}

// stubGit returns a GitFunc with fixed stats and no warnings.
func stubGit(stats gitstats.GitStats) GitFunc {
	return func(ctx context.Context, repoRoot string) (gitstats.GitStats, []error) {
		return stats, nil
	}
}

func allHealthy() ProbeFunc {
	return stubProbe(map[string]string{
		"backend":  probe.HealthHealthy,
		"database": probe.HealthHealthy,
	})
}

func allStopped() ProbeFunc {
	return stubProbe(map[string]string{
		"backend":  probe.HealthStopped,
		"database": probe.HealthStopped,
	})
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC) }
}

func TestBuildSnapshot_HealthyFullSystem(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)

	eng := New(testConfig(root),
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 150, CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
	)
	snap := eng.BuildSnapshot(context.Background())

	for name, c := range snap.Components {
		if c.Progress != 100 {
			t.Errorf("component %s: expected 100, got %d", name, c.Progress)
		}
	}
	require.Equal(t, 100, snap.OverallProgress)
	require.Equal(t, score.PhaseProductionReady, snap.Phase)
	require.Empty(t, snap.CriticalIssues)
	require.Equal(t, 2, snap.RealMetrics["testFiles"])

	require.Len(t, snap.APIRoutes, 1)
	require.True(t, snap.APIRoutes[0].Exists)
	require.Equal(t, 2, snap.APIRoutes[0].Endpoints)
}

func TestBuildSnapshot_StoppedDatabaseScenario(t *testing.T) {
	// Empty tree, everything stopped, no git history.
	root := t.TempDir()

	eng := New(testConfig(root),
		WithProbe(allStopped()),
		WithGit(stubGit(gitstats.GitStats{CurrentBranch: gitstats.DefaultBranch, RecentCommits: []string{}})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
	)
	snap := eng.BuildSnapshot(context.Background())

	require.Equal(t, score.StatusConfigured, snap.Components["database"].Status)
	require.Equal(t, 0, snap.Components["database"].Progress)

	found := false
	for _, issue := range snap.CriticalIssues {
		if strings.Contains(issue, "database service is not running") {
			found = true
		}
	}
	require.True(t, found, "expected database-down issue, got %v", snap.CriticalIssues)

	require.Equal(t, score.PhaseInitialSetup, snap.Phase)
	require.Equal(t, 0, snap.OverallProgress)
}

func TestBuildSnapshot_Deterministic(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)

	eng := New(testConfig(root),
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 10, CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
	)

	first := eng.BuildSnapshot(context.Background())
	second := eng.BuildSnapshot(context.Background())
	require.Equal(t, first, second)
}

func TestBuildSnapshot_AggregateConsistency(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)
	// Remove one backend file so scores are mixed.
	require.NoError(t, os.Remove(filepath.Join(root, "backend", "handlers.go")))

	eng := New(testConfig(root),
		WithProbe(stubProbe(map[string]string{
			"backend":  probe.HealthRunning,
			"database": probe.HealthStopped,
		})),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 5, CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
	)
	snap := eng.BuildSnapshot(context.Background())

	sum := 0
	for _, c := range snap.Components {
		require.GreaterOrEqual(t, c.Progress, 0)
		require.LessOrEqual(t, c.Progress, 100)
		sum += c.Progress
	}
	mean := float64(sum) / float64(len(snap.Components))
	require.Equal(t, int(mean+0.5), snap.OverallProgress)
}

func TestBuildSnapshot_MissingSubtreeScoresOtherDimensions(t *testing.T) {
	// Only test files exist; backend and db subtrees are absent.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a_test.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b_test.go"), []byte("x"), 0o644))

	var log strings.Builder
	eng := New(testConfig(root),
		WithProbe(allStopped()),
		WithGit(stubGit(gitstats.GitStats{CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(&log),
	)
	snap := eng.BuildSnapshot(context.Background())

	require.Equal(t, 100, snap.Components["tests"].Progress)
	require.Equal(t, 0, snap.Components["backend"].Progress)
	require.Contains(t, log.String(), "missing")
	require.Equal(t, true, snap.Components["backend"].Details["subtreeMissing"])
}

func TestRunOnce_WritesSnapshotFile(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)
	cfg := testConfig(root)

	eng := New(cfg,
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 1, CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
	)

	snap, err := eng.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	onDisk, err := snapshot.Read(cfg.SnapshotPath)
	require.NoError(t, err)
	require.Equal(t, snap.OverallProgress, onDisk.OverallProgress)

	// No temp files left behind next to the snapshot.
	entries, err := os.ReadDir(filepath.Dir(cfg.SnapshotPath))
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), ".snapshot-"), "leftover temp file %s", e.Name())
	}
}

func TestRunOnce_RecordsHistoryWhenStoreAttached(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)

	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	eng := New(testConfig(root),
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 9, CurrentBranch: "main"})),
		WithClock(fixedClock()),
		WithLogWriter(io.Discard),
		WithStore(db),
		WithVersion("test"),
	)

	_, err = eng.RunOnce(context.Background())
	require.NoError(t, err)

	entries, err := db.Recent(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 100, entries[0].OverallProgress)
}

func TestRun_StopsCleanlyWithCompleteSnapshot(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)
	cfg := testConfig(root)

	eng := New(cfg,
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 1, CurrentBranch: "main"})),
		WithLogWriter(io.Discard),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, 20*time.Millisecond) }()

	time.Sleep(70 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	// Whatever is on disk must be a complete, parseable snapshot.
	_, err := snapshot.Read(cfg.SnapshotPath)
	require.NoError(t, err)
}

func TestRun_ContinuesPastPersistenceFailure(t *testing.T) {
	root := t.TempDir()
	populateHealthyTree(t, root)
	cfg := testConfig(root)
	// Point the snapshot at an unwritable location.
	cfg.SnapshotPath = filepath.Join(root, "missing", "\x00bad", "snapshot.json")

	var log strings.Builder
	eng := New(cfg,
		WithProbe(allHealthy()),
		WithGit(stubGit(gitstats.GitStats{TotalCommits: 1, CurrentBranch: "main"})),
		WithLogWriter(&log),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	err := eng.Run(ctx, 20*time.Millisecond)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Contains(t, log.String(), "cycle failed")
}
