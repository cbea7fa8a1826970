package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/repopulse/internal/probe"
	"github.com/blackwell-systems/repopulse/internal/snapshot"
)

func testSnapshot(progress int, phase string) *snapshot.Snapshot {
	s := snapshot.New(time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC))
	s.OverallProgress = progress
	s.Phase = phase
	s.GitStats.TotalCommits = 57
	s.GitStats.ModifiedFiles = 3
	s.Components["backend"] = snapshot.ComponentReport{
		Name: "backend", FileCount: 120, Progress: progress, Status: "ACTIVE",
	}
	s.Components["tests"] = snapshot.ComponentReport{
		Name: "tests", FileCount: 30, Progress: 40, Status: "IN_PROGRESS",
	}
	s.Services["backend"] = probe.ServiceStatus{
		Name: "backend", Port: 8000, Running: true, Health: "healthy",
	}
	return s
}

func TestRecordAndRecent(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id, err := db.Record(testSnapshot(55, "Core Development"), "test")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	_, err = db.Record(testSnapshot(60, "Integration & Testing"), "test")
	require.NoError(t, err)

	entries, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, 60, entries[0].OverallProgress)
	require.Equal(t, "Integration & Testing", entries[0].Phase)
	require.Equal(t, 55, entries[1].OverallProgress)

	require.Equal(t, 57, entries[0].TotalCommits)
	require.Equal(t, 3, entries[0].ModifiedFiles)

	// Component progress rides along.
	require.Equal(t, 60, entries[0].Components["backend"])
	require.Equal(t, 40, entries[0].Components["tests"])
}

func TestRecent_RespectsLimit(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for i := 0; i < 5; i++ {
		_, err := db.Record(testSnapshot(10*i, "Foundation Building"), "test")
		require.NoError(t, err)
	}

	entries, err := db.Recent(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 40, entries[0].OverallProgress)
}

func TestRecent_EmptyStore(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	entries, err := db.Recent(10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestOpen_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir + "/nested/history.db")
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
