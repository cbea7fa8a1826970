package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual progress bar for a 0-100 score.
// Example: "████████░░ 80%"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case score >= 70:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case score >= 40:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%3.0f%%", score)))
}

// TrendArrow returns a styled trend indicator for a progress delta
// between two snapshots. Higher is always better for progress scores.
func TrendArrow(delta float64) string {
	switch {
	case delta > 0:
		return StyleSuccess.Render(fmt.Sprintf("▲ +%.0f", delta))
	case delta < 0:
		return StyleError.Render(fmt.Sprintf("▼ %.0f", delta))
	default:
		return StyleMuted.Render("─")
	}
}

// HealthIcon returns a styled indicator for a service health value.
func HealthIcon(health string) string {
	switch health {
	case "healthy":
		return StyleSuccess.Render("●")
	case "running":
		return StyleWarning.Render("◐")
	case "stopped":
		return StyleError.Render("○")
	default:
		return StyleMuted.Render("?")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
