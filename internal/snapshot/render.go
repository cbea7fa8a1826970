package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blackwell-systems/repopulse/internal/output"
)

// Render produces the fixed-width console summary of a snapshot:
// overall progress bar, per-component bars, service liveness, git
// state, and the classified issue/achievement/next-step lists.
func Render(s *Snapshot) string {
	var sb strings.Builder

	sb.WriteString(output.Section("Project Progress"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, " %s %s\n",
		output.StyleLabel.Render("Overall:"),
		output.ScoreBar(float64(s.OverallProgress), 30))
	fmt.Fprintf(&sb, " %s %s\n",
		output.StyleLabel.Render("Phase:"),
		output.StyleValue.Render(s.Phase))
	fmt.Fprintf(&sb, " %s %s\n",
		output.StyleLabel.Render("Taken:"),
		output.StyleMuted.Render(s.Timestamp))

	sb.WriteString(output.Section("Components"))
	sb.WriteString("\n\n")
	tbl := output.NewTable("Component", "Progress", "Status", "Files")
	for _, name := range sortedKeys(s.Components) {
		c := s.Components[name]
		tbl.AddRow(
			c.Name,
			output.ScoreBar(float64(c.Progress), 20),
			styleStatus(c.Status),
			fmt.Sprintf("%d", c.FileCount),
		)
	}
	sb.WriteString(tbl.Render())

	sb.WriteString(output.Section("Services"))
	sb.WriteString("\n\n")
	for _, name := range sortedKeys(s.Services) {
		svc := s.Services[name]
		fmt.Fprintf(&sb, " %s %-16s :%-5d %s\n",
			output.HealthIcon(svc.Health), svc.Name, svc.Port, svc.Health)
	}

	if s.GitStats.TotalCommits > 0 {
		sb.WriteString(output.Section("Repository"))
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, " %s %d commits on %s, %d modified\n",
			output.StyleLabel.Render("Git:"),
			s.GitStats.TotalCommits, s.GitStats.CurrentBranch, s.GitStats.ModifiedFiles)
		if s.GitStats.LastCommitMessage != "" {
			fmt.Fprintf(&sb, " %s %s (%s)\n",
				output.StyleLabel.Render("Last commit:"),
				s.GitStats.LastCommitMessage, s.GitStats.LastCommitTime)
		}
	}

	renderList(&sb, "Critical Issues", s.CriticalIssues, output.StyleError)
	renderList(&sb, "Achievements", s.Achievements, output.StyleSuccess)
	renderList(&sb, "Next Steps", s.NextSteps, output.StyleWarning)

	sb.WriteString("\n")
	return sb.String()
}

func renderList(sb *strings.Builder, title string, items []string, style interface{ Render(...string) string }) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(output.Section(title))
	sb.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(sb, " %s %s\n", style.Render("•"), item)
	}
}

func styleStatus(status string) string {
	switch status {
	case "ACTIVE":
		return output.StyleSuccess.Render(status)
	case "IN_PROGRESS":
		return output.StyleWarning.Render(status)
	default:
		return output.StyleMuted.Render(status)
	}
}

// sortedKeys returns map keys in stable order so two renders of the
// same snapshot are byte-identical.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
