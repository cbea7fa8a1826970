// Package snapshot defines the progress snapshot artifact and its
// persistence. Field names are part of the contract with the dashboard
// and must stay stable.
package snapshot

import (
	"time"

	"github.com/blackwell-systems/repopulse/internal/fsmetrics"
	"github.com/blackwell-systems/repopulse/internal/gitstats"
	"github.com/blackwell-systems/repopulse/internal/probe"
)

// ComponentReport is one scored subsystem within a snapshot. Progress
// is always derived by the scorer, never set directly.
type ComponentReport struct {
	Name      string         `json:"name"`
	FileCount int            `json:"fileCount"`
	Progress  int            `json:"progress"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details"`
}

// Snapshot is one complete, timestamped output of a full scoring
// cycle. It is created fresh every cycle and superseded, never merged.
type Snapshot struct {
	Timestamp       string                          `json:"timestamp"`
	OverallProgress int                             `json:"overallProgress"`
	Phase           string                          `json:"phase"`
	RealMetrics     map[string]int                  `json:"realMetrics"`
	GitStats        gitstats.GitStats               `json:"gitStats"`
	Components      map[string]ComponentReport      `json:"components"`
	Services        map[string]probe.ServiceStatus  `json:"services"`
	APIRoutes       []fsmetrics.RouteFile           `json:"apiRoutes"`
	CriticalIssues  []string                        `json:"criticalIssues"`
	Achievements    []string                        `json:"achievements"`
	NextSteps       []string                        `json:"nextSteps"`
}

// New returns an empty snapshot stamped with the given time.
func New(now time.Time) *Snapshot {
	return &Snapshot{
		Timestamp:      now.UTC().Format(time.RFC3339),
		RealMetrics:    make(map[string]int),
		Components:     make(map[string]ComponentReport),
		Services:       make(map[string]probe.ServiceStatus),
		CriticalIssues: []string{},
		Achievements:   []string{},
		NextSteps:      []string{},
	}
}
