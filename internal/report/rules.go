package report

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/repopulse/internal/probe"
	"github.com/blackwell-systems/repopulse/internal/score"
	"github.com/blackwell-systems/repopulse/internal/snapshot"
)

// --- Issue rules ---

// ServiceDownIssues flags every configured service that is not
// listening, primary services first.
func ServiceDownIssues(s *snapshot.Snapshot, th Thresholds) []string {
	primary := make(map[string]bool, len(th.PrimaryServices))
	for _, name := range th.PrimaryServices {
		primary[name] = true
	}

	var issues []string
	for _, name := range sortedServiceNames(s, primary) {
		svc := s.Services[name]
		if svc.Health == probe.HealthStopped {
			issues = append(issues, fmt.Sprintf("%s service is not running (port %d)", svc.Name, svc.Port))
		}
	}
	return issues
}

// NoHistoryIssue flags a repository with no commit history.
func NoHistoryIssue(s *snapshot.Snapshot, _ Thresholds) []string {
	if s.GitStats.TotalCommits == 0 {
		return []string{"no commit history found; version control may not be initialized"}
	}
	return nil
}

// StalledComponentIssues flags components with implementation evidence
// but critically low progress.
func StalledComponentIssues(s *snapshot.Snapshot, _ Thresholds) []string {
	var issues []string
	for _, name := range sortedComponentNames(s) {
		c := s.Components[name]
		if c.Status == score.StatusInProgress && c.Progress < 15 {
			issues = append(issues, fmt.Sprintf("%s progress is critically low (%d%%)", c.Name, c.Progress))
		}
	}
	return issues
}

// --- Achievement rules ---

// TestCoverageAchievement fires when the test-file count clears the
// configured threshold.
func TestCoverageAchievement(s *snapshot.Snapshot, th Thresholds) []string {
	count, ok := s.RealMetrics[th.TestMetric]
	if !ok || count <= th.TestThreshold {
		return nil
	}
	return []string{fmt.Sprintf("%d test files exceed the %d-file target", count, th.TestThreshold)}
}

// CompletedComponentAchievements fires per component at or above 90%.
func CompletedComponentAchievements(s *snapshot.Snapshot, _ Thresholds) []string {
	var achievements []string
	for _, name := range sortedComponentNames(s) {
		c := s.Components[name]
		if c.Progress >= 90 {
			achievements = append(achievements, fmt.Sprintf("%s is %d%% complete", c.Name, c.Progress))
		}
	}
	return achievements
}

// AllServicesHealthyAchievement fires when every probed service passed
// its health check.
func AllServicesHealthyAchievement(s *snapshot.Snapshot, _ Thresholds) []string {
	if len(s.Services) == 0 {
		return nil
	}
	for _, svc := range s.Services {
		if svc.Health != probe.HealthHealthy {
			return nil
		}
	}
	return []string{fmt.Sprintf("all %d services are healthy", len(s.Services))}
}

// CommitMomentumAchievement fires once the repository has substantial
// commit history.
func CommitMomentumAchievement(s *snapshot.Snapshot, _ Thresholds) []string {
	if s.GitStats.TotalCommits >= 100 {
		return []string{fmt.Sprintf("%d commits on %s", s.GitStats.TotalCommits, s.GitStats.CurrentBranch)}
	}
	return nil
}

// --- Next-step rules ---

// StartStoppedPrimaries asks for stopped primary services to be brought
// up before anything else.
func StartStoppedPrimaries(s *snapshot.Snapshot, th Thresholds) []string {
	var steps []string
	for _, name := range th.PrimaryServices {
		if svc, ok := s.Services[name]; ok && svc.Health == probe.HealthStopped {
			steps = append(steps, fmt.Sprintf("start the %s service on port %d", svc.Name, svc.Port))
		}
	}
	return steps
}

// FocusLowestComponents points at the two lowest-scoring components,
// sorted ascending by progress.
func FocusLowestComponents(s *snapshot.Snapshot, _ Thresholds) []string {
	type entry struct {
		name     string
		progress int
	}
	entries := make([]entry, 0, len(s.Components))
	for _, name := range sortedComponentNames(s) {
		c := s.Components[name]
		if c.Progress < 100 {
			entries = append(entries, entry{c.Name, c.Progress})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].progress < entries[j].progress
	})

	var steps []string
	for i, e := range entries {
		if i >= 2 {
			break
		}
		steps = append(steps, fmt.Sprintf("raise %s completion (currently %d%%)", e.name, e.progress))
	}
	return steps
}

// sortedComponentNames returns component names in stable order.
func sortedComponentNames(s *snapshot.Snapshot) []string {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedServiceNames returns service names with primaries first, each
// group alphabetical.
func sortedServiceNames(s *snapshot.Snapshot, primary map[string]bool) []string {
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := primary[names[i]], primary[names[j]]
		if pi != pj {
			return pi
		}
		return names[i] < names[j]
	})
	return names
}
