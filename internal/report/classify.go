// Package report interprets a completed snapshot into human-readable
// issues, achievements, and next steps. Rules are declarative and
// ordered, and see only the snapshot's already-computed fields; this
// package never touches the filesystem or the network.
package report

import "github.com/blackwell-systems/repopulse/internal/snapshot"

// Thresholds carries the few configured values the rules depend on.
type Thresholds struct {
	TestMetric      string
	TestThreshold   int
	PrimaryServices []string
}

// Rule inspects a snapshot and returns zero or more findings.
type Rule func(*snapshot.Snapshot, Thresholds) []string

// Bounded list sizes: the dashboard shows short lists, not logs.
const (
	maxIssues       = 5
	maxAchievements = 5
	maxNextSteps    = 4
)

var (
	issueRules = []Rule{
		ServiceDownIssues,
		NoHistoryIssue,
		StalledComponentIssues,
	}
	achievementRules = []Rule{
		TestCoverageAchievement,
		CompletedComponentAchievements,
		AllServicesHealthyAchievement,
		CommitMomentumAchievement,
	}
	nextStepRules = []Rule{
		StartStoppedPrimaries,
		FocusLowestComponents,
	}
)

// Classify runs all rule sets against the snapshot and fills in its
// criticalIssues, achievements, and nextSteps lists.
func Classify(s *snapshot.Snapshot, th Thresholds) {
	s.CriticalIssues = runRules(issueRules, s, th, maxIssues)
	s.Achievements = runRules(achievementRules, s, th, maxAchievements)
	s.NextSteps = runRules(nextStepRules, s, th, maxNextSteps)
}

// runRules executes rules in order and truncates the combined findings.
func runRules(rules []Rule, s *snapshot.Snapshot, th Thresholds, limit int) []string {
	findings := []string{}
	for _, rule := range rules {
		findings = append(findings, rule(s, th)...)
		if len(findings) >= limit {
			return findings[:limit]
		}
	}
	return findings
}
