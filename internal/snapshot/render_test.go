package snapshot

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/repopulse/internal/output"
)

func TestRender_ContainsSummarySections(t *testing.T) {
	output.SetNoColor(true)

	s := sampleSnapshot()
	s.GitStats.TotalCommits = 42
	s.GitStats.CurrentBranch = "main"
	s.NextSteps = []string{"raise frontend completion (currently 20%)"}

	out := Render(s)

	for _, want := range []string{
		"Project Progress",
		"Core Development",
		"Components",
		"backend",
		"ACTIVE",
		"Services",
		"healthy",
		"Critical Issues",
		"database service is not running",
		"Next Steps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	output.SetNoColor(true)

	s := sampleSnapshot()
	s.Components["frontend"] = ComponentReport{Name: "frontend", Progress: 20, Status: "IN_PROGRESS"}
	s.Components["tests"] = ComponentReport{Name: "tests", Progress: 50, Status: "IN_PROGRESS"}

	if first, second := Render(s), Render(s); first != second {
		t.Error("two renders of the same snapshot must be byte-identical")
	}
}
