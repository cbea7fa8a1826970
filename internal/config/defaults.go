// Package config provides configuration loading and defaults for repopulse.
package config

import "github.com/blackwell-systems/repopulse/internal/score"

// DefaultProjectRoot is the repository to measure when none is configured.
const DefaultProjectRoot = "."

// DefaultSnapshotPath is the well-known snapshot location consumed by
// the dashboard collaborator.
const DefaultSnapshotPath = "progress-snapshot.json"

// DefaultConfigDir is the default location for repopulse configuration.
const DefaultConfigDir = "~/.config/repopulse"

// DefaultDBName is the filename for the SQLite history database.
const DefaultDBName = "history.db"

// DefaultExcludeDirs are pruned from every traversal. Dependency caches
// and VCS internals would otherwise dominate every count.
var DefaultExcludeDirs = []string{
	".git", "node_modules", "vendor", "__pycache__", ".venv", "venv",
	"dist", "build", ".next", "target", ".idea", ".vscode",
}

// DefaultCaps are the sub-score contribution limits. They sum to 100 so
// that a fully-applicable component's score is the plain sum of its
// sub-scores.
var DefaultCaps = score.Caps{
	Files:       40,
	Structure:   20,
	Integration: 20,
	Liveness:    20,
}

// DefaultComponents describes a conventional full-stack layout. The
// targets encode the heuristic's maturity assumptions (a mature backend
// has ~240 source files) and are meant to be overridden per project.
var DefaultComponents = map[string]Component{
	"backend": {
		Subtree:     "backend",
		Patterns:    []string{"*.py", "*.go", "*.ts", "*.js"},
		Structure:   Submetric{Subtree: "backend/app", Patterns: []string{"*.py", "*.go"}},
		Integration: Submetric{Subtree: "backend/app/api", Patterns: []string{"*.py", "*.go"}},
		Service:     "backend",
		Targets:     score.Targets{Files: 240, Structure: 60, Integration: 20},
	},
	"frontend": {
		Subtree:     "frontend",
		Patterns:    []string{"*.tsx", "*.jsx", "*.ts", "*.js", "*.vue", "*.svelte"},
		Structure:   Submetric{Subtree: "frontend/src/components", Patterns: []string{"*.tsx", "*.jsx", "*.vue", "*.svelte"}},
		Integration: Submetric{Subtree: "frontend/src/pages", Patterns: []string{"*.tsx", "*.jsx", "*.vue", "*.svelte"}},
		Service:     "frontend",
		Targets:     score.Targets{Files: 150, Structure: 40, Integration: 15},
	},
	"database": {
		Subtree:  "backend",
		Patterns: []string{"*model*", "*schema*", "*migration*"},
		Service:  "database",
		Targets:  score.Targets{Files: 25},
	},
	"ai-services": {
		Subtree:     "ai",
		Patterns:    []string{"*.py"},
		Integration: Submetric{Subtree: "ai/pipelines", Patterns: []string{"*.py"}},
		Service:     "ai-services",
		Targets:     score.Targets{Files: 40, Integration: 8},
	},
	"tests": {
		Subtree:  ".",
		Patterns: []string{"test_*.py", "*_test.py", "*_test.go", "*.test.ts", "*.test.js", "*.spec.ts", "*.spec.js"},
		Targets:  score.Targets{Files: 50},
	},
	"infrastructure": {
		Subtree:  ".",
		Patterns: []string{"Dockerfile", "docker-compose*.yml", "*.tf", "*.yaml", "*.yml", "Makefile"},
		Targets:  score.Targets{Files: 15},
	},
}

// DefaultServices are the runtime services probed each cycle.
var DefaultServices = []Service{
	{Name: "backend", Port: 8000, HealthPath: "/health"},
	{Name: "frontend", Port: 3000},
	{Name: "database", Port: 5432},
	{Name: "ai-services", Port: 8001, HealthPath: "/health"},
}

// DefaultMetrics are the named counts reported under realMetrics.
var DefaultMetrics = map[string]Metric{
	"backendFiles":  {Subtree: "backend", Patterns: []string{"*.py", "*.go"}},
	"frontendFiles": {Subtree: "frontend", Patterns: []string{"*.tsx", "*.jsx", "*.ts", "*.js"}},
	"testFiles":     {Subtree: ".", Patterns: []string{"test_*.py", "*_test.py", "*_test.go", "*.test.ts", "*.spec.ts"}},
	"configFiles":   {Subtree: ".", Patterns: []string{"*.yaml", "*.yml", "*.toml", "*.ini"}},
	"docFiles":      {Subtree: "docs", Patterns: []string{"*.md"}},
}

// DefaultRouteFiles are inspected for endpoint declarations.
var DefaultRouteFiles = []string{
	"backend/app/api/routes.py",
	"backend/app/main.py",
}

// DefaultPrimaryServices must all be live before the project can leave
// the Integration & Testing phase.
var DefaultPrimaryServices = []string{"backend", "database"}

// DefaultTestMetric is the realMetrics key used for test-count gating.
const DefaultTestMetric = "testFiles"

// DefaultTestThreshold is the test-file count above which the tests
// achievement fires and Beta Testing can be left behind.
const DefaultTestThreshold = 25

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
