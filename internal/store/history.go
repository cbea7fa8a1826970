package store

import (
	"time"

	"github.com/blackwell-systems/repopulse/internal/snapshot"
)

// HistoryEntry is one recorded cycle, loaded for trend display.
type HistoryEntry struct {
	ID              int64          `json:"id"`
	TakenAt         time.Time      `json:"taken_at"`
	OverallProgress int            `json:"overall_progress"`
	Phase           string         `json:"phase"`
	TotalCommits    int            `json:"total_commits"`
	ModifiedFiles   int            `json:"modified_files"`
	Components      map[string]int `json:"components"` // component -> progress
}

// Record inserts one snapshot with its component and service rows in a
// single transaction.
func (db *DB) Record(s *snapshot.Snapshot, version string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO snapshots (taken_at, overall_progress, phase, total_commits, modified_files, version)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.Timestamp, s.OverallProgress, s.Phase,
		s.GitStats.TotalCommits, s.GitStats.ModifiedFiles, version,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, c := range s.Components {
		if _, err := tx.Exec(
			`INSERT INTO component_scores (snapshot_id, component, progress, file_count, status)
			 VALUES (?, ?, ?, ?, ?)`,
			id, c.Name, c.Progress, c.FileCount, c.Status,
		); err != nil {
			return 0, err
		}
	}

	for _, svc := range s.Services {
		if _, err := tx.Exec(
			`INSERT INTO service_states (snapshot_id, service, port, running, health)
			 VALUES (?, ?, ?, ?, ?)`,
			id, svc.Name, svc.Port, svc.Running, svc.Health,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Recent returns the most recent entries, newest first, with their
// per-component progress values attached.
func (db *DB) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.Query(
		`SELECT id, taken_at, overall_progress, phase, total_commits, modified_files
		 FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var takenAt string
		if err := rows.Scan(&e.ID, &takenAt, &e.OverallProgress, &e.Phase, &e.TotalCommits, &e.ModifiedFiles); err != nil {
			return nil, err
		}
		e.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		e.Components = make(map[string]int)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if err := db.loadComponents(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// loadComponents fills an entry's component progress map.
func (db *DB) loadComponents(e *HistoryEntry) error {
	rows, err := db.conn.Query(
		"SELECT component, progress FROM component_scores WHERE snapshot_id = ?", e.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var progress int
		if err := rows.Scan(&name, &progress); err != nil {
			return err
		}
		e.Components[name] = progress
	}
	return rows.Err()
}
