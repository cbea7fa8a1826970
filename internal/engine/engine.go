// Package engine drives scoring cycles: it fans collector evidence into
// the scorer, classifies the result, and persists the snapshot, either
// once or on a timer.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/blackwell-systems/repopulse/internal/config"
	"github.com/blackwell-systems/repopulse/internal/fsmetrics"
	"github.com/blackwell-systems/repopulse/internal/gitstats"
	"github.com/blackwell-systems/repopulse/internal/probe"
	"github.com/blackwell-systems/repopulse/internal/report"
	"github.com/blackwell-systems/repopulse/internal/score"
	"github.com/blackwell-systems/repopulse/internal/snapshot"
	"github.com/blackwell-systems/repopulse/internal/store"
)

// ProbeFunc matches probe.CheckAll; injectable so tests can run cycles
// against fixed service states.
type ProbeFunc func(ctx context.Context, specs []probe.Spec) map[string]probe.ServiceStatus

// GitFunc matches gitstats.Collect.
type GitFunc func(ctx context.Context, repoRoot string) (gitstats.GitStats, []error)

// Engine runs scoring cycles for one configured project.
type Engine struct {
	cfg     *config.Config
	db      *store.DB // nil when history is disabled
	version string
	verbose bool
	logw    io.Writer

	probeFn ProbeFunc
	gitFn   GitFunc
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore enables snapshot history recording.
func WithStore(db *store.DB) Option {
	return func(e *Engine) { e.db = db }
}

// WithVersion tags recorded history entries with the CLI version.
func WithVersion(v string) Option {
	return func(e *Engine) { e.version = v }
}

// WithVerbose enables per-collector progress logging.
func WithVerbose(v bool) Option {
	return func(e *Engine) { e.verbose = v }
}

// WithLogWriter redirects engine logging (default stderr).
func WithLogWriter(w io.Writer) Option {
	return func(e *Engine) { e.logw = w }
}

// WithProbe substitutes the service prober, for tests.
func WithProbe(fn ProbeFunc) Option {
	return func(e *Engine) { e.probeFn = fn }
}

// WithGit substitutes the git metadata collector, for tests.
func WithGit(fn GitFunc) Option {
	return func(e *Engine) { e.gitFn = fn }
}

// WithClock substitutes the snapshot timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine for the given configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		logw:    os.Stderr,
		probeFn: probe.CheckAll,
		gitFn:   gitstats.Collect,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildSnapshot executes one full scoring cycle and returns the
// resulting snapshot without persisting it. Collector failures soften
// to logged defaults; this function only fails if the context dies.
func (e *Engine) BuildSnapshot(ctx context.Context) *snapshot.Snapshot {
	snap := snapshot.New(e.now())
	root := e.cfg.ProjectRoot

	// Liveness probes for all configured services.
	specs := make([]probe.Spec, 0, len(e.cfg.Services))
	for _, svc := range e.cfg.Services {
		specs = append(specs, probe.Spec{Name: svc.Name, Port: svc.Port, HealthPath: svc.HealthPath})
	}
	snap.Services = e.probeFn(ctx, specs)
	e.debugf("probed %d services", len(specs))

	// Version-control metadata, fail-soft.
	git, warnings := e.gitFn(ctx, root)
	snap.GitStats = git
	for _, w := range warnings {
		e.warnf("git metadata: %v", w)
	}

	// Named top-level counts.
	for name, m := range e.cfg.Metrics {
		res := fsmetrics.CountFiles(filepath.Join(root, m.Subtree), m.Patterns, e.cfg.ExcludeDirs)
		if res.Missing {
			e.warnf("metric %s: subtree %s missing, counting 0", name, m.Subtree)
		}
		snap.RealMetrics[name] = res.Count
	}

	// API route inspection.
	snap.APIRoutes = fsmetrics.InspectRoutes(root, e.cfg.RouteFiles)

	// Score each component from its collected evidence.
	// The overall score is the rounded mean of the reported (already
	// rounded) component values, so the persisted numbers always agree.
	progresses := make([]float64, 0, len(e.cfg.Components))
	for _, name := range sortedComponentNames(e.cfg.Components) {
		comp := e.cfg.Components[name]
		rep := e.scoreComponent(name, comp, snap.Services)
		snap.Components[name] = rep
		progresses = append(progresses, float64(rep.Progress))
	}
	snap.OverallProgress = score.Overall(progresses)

	snap.Phase = score.Phase(snap.OverallProgress, score.PhaseSignals{
		PrimaryServicesLive: e.primaryServicesLive(snap.Services),
		TestFiles:           snap.RealMetrics[e.cfg.TestMetric],
		TestThreshold:       e.cfg.TestThreshold,
	})

	report.Classify(snap, report.Thresholds{
		TestMetric:      e.cfg.TestMetric,
		TestThreshold:   e.cfg.TestThreshold,
		PrimaryServices: e.cfg.PrimaryServices,
	})

	return snap
}

// scoreComponent gathers one component's file evidence and maps it to a
// report entry.
func (e *Engine) scoreComponent(name string, comp config.Component, services map[string]probe.ServiceStatus) snapshot.ComponentReport {
	root := e.cfg.ProjectRoot
	excludes := e.cfg.ComponentExcludes(comp)

	files := fsmetrics.CountFiles(filepath.Join(root, comp.Subtree), comp.Patterns, excludes)
	if files.Missing {
		e.warnf("component %s: subtree %s missing, counting 0", name, comp.Subtree)
	}
	if files.Err != nil {
		e.warnf("component %s: partial traversal: %v", name, files.Err)
	}

	ev := score.Evidence{Files: files.Count}

	details := map[string]any{
		"files":          files.Count,
		"subtreeMissing": files.Missing,
	}

	if comp.Structure.Subtree != "" {
		res := fsmetrics.CountFiles(filepath.Join(root, comp.Structure.Subtree), comp.Structure.Patterns, excludes)
		ev.Structure = res.Count
		details["structure"] = res.Count
	}
	if comp.Integration.Subtree != "" {
		res := fsmetrics.CountFiles(filepath.Join(root, comp.Integration.Subtree), comp.Integration.Patterns, excludes)
		ev.Integration = res.Count
		details["integration"] = res.Count
	}

	if comp.Service != "" {
		if svc, ok := services[comp.Service]; ok {
			ev.HasService = true
			ev.Health = svc.Health
			details["service"] = comp.Service
			details["liveness"] = svc.Health
		}
	}

	progress := score.Compute(ev, e.cfg.Caps, comp.Targets)
	e.debugf("component %s: %d files, score %.1f", name, files.Count, progress)

	return snapshot.ComponentReport{
		Name:      name,
		FileCount: files.Count,
		Progress:  int(progress + 0.5),
		Status:    score.Status(ev, progress),
		Details:   details,
	}
}

// primaryServicesLive reports whether every configured primary service
// is at least listening.
func (e *Engine) primaryServicesLive(services map[string]probe.ServiceStatus) bool {
	for _, name := range e.cfg.PrimaryServices {
		svc, ok := services[name]
		if !ok || !svc.Running {
			return false
		}
	}
	return len(e.cfg.PrimaryServices) > 0
}

// RunOnce executes one cycle, persists the snapshot file, and records
// history when enabled.
func (e *Engine) RunOnce(ctx context.Context) (*snapshot.Snapshot, error) {
	snap := e.BuildSnapshot(ctx)

	if err := snapshot.Write(snap, e.cfg.SnapshotPath); err != nil {
		return snap, fmt.Errorf("persisting snapshot: %w", err)
	}
	e.debugf("snapshot written to %s", e.cfg.SnapshotPath)

	if e.db != nil {
		if _, err := e.db.Record(snap, e.version); err != nil {
			// History is an add-on; a recording failure never fails the cycle.
			e.warnf("recording history: %v", err)
		}
	}
	return snap, nil
}

// Run executes cycles at the given interval until the context is
// cancelled. The first cycle runs immediately. Cycles run sequentially
// and never overlap: the next tick is consumed only after the previous
// cycle completes. A persistence failure is logged and the loop
// continues; transient write errors must not kill long-running
// monitoring.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if _, err := e.RunOnce(ctx); err != nil {
		e.warnf("cycle failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil {
				e.warnf("cycle failed: %v", err)
			}
		}
	}
}

// warnf logs a timestamped warning line.
func (e *Engine) warnf(format string, args ...any) {
	fmt.Fprintf(e.logw, "[%s] warn: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// debugf logs only when verbose mode is on.
func (e *Engine) debugf(format string, args ...any) {
	if !e.verbose {
		return
	}
	fmt.Fprintf(e.logw, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// sortedComponentNames keeps cycle ordering, logging, and rounding
// deterministic across runs.
func sortedComponentNames(components map[string]config.Component) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
