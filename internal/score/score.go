// Package score turns raw per-component evidence into normalized 0-100
// progress values. Everything here is pure: no I/O, no clock, no
// globals, so the heuristic model is directly unit-testable.
package score

import (
	"math"

	"github.com/blackwell-systems/repopulse/internal/probe"
)

// Component status classifications.
const (
	StatusActive     = "ACTIVE"      // service is up, or a no-service component near completion
	StatusConfigured = "CONFIGURED"  // present in config but no implementation evidence yet
	StatusInProgress = "IN_PROGRESS" // implementation evidence exists, not yet live/complete
)

// Caps are the maximum contribution of each sub-score, in points of the
// final 0-100 value. They live in configuration, not in code, because
// they encode auditable domain assumptions.
type Caps struct {
	Files       float64 `mapstructure:"files"`
	Structure   float64 `mapstructure:"structure"`
	Integration float64 `mapstructure:"integration"`
	Liveness    float64 `mapstructure:"liveness"`
}

// Targets are the per-component expected counts at which each
// sub-score saturates (e.g. "a mature backend has ~240 source files").
// A zero target removes that dimension from scoring entirely.
type Targets struct {
	Files       int `mapstructure:"files"`
	Structure   int `mapstructure:"structure"`
	Integration int `mapstructure:"integration"`
}

// Evidence is the raw input for one component's score.
type Evidence struct {
	Files       int
	Structure   int
	Integration int

	// HasService indicates a liveness probe is bound to this component.
	// Health carries the probe result when it is.
	HasService bool
	Health     string
}

// livenessRunningFactor is the fraction of the liveness cap awarded to
// a service that is listening but failed its health check.
const livenessRunningFactor = 0.5

// Compute maps evidence to a 0-100 score as a weighted sum of
// independently-capped sub-scores. Dimensions that do not apply to a
// component (zero target, or no bound service) drop out of both the
// numerator and the denominator, so a tests-only component can still
// reach 100 without a liveness probe.
func Compute(ev Evidence, caps Caps, targets Targets) float64 {
	var raw, applicable float64

	if targets.Files > 0 {
		raw += cappedRatio(ev.Files, targets.Files, caps.Files)
		applicable += caps.Files
	}
	if targets.Structure > 0 {
		raw += cappedRatio(ev.Structure, targets.Structure, caps.Structure)
		applicable += caps.Structure
	}
	if targets.Integration > 0 {
		raw += cappedRatio(ev.Integration, targets.Integration, caps.Integration)
		applicable += caps.Integration
	}
	if ev.HasService {
		raw += livenessScore(ev.Health, caps.Liveness)
		applicable += caps.Liveness
	}

	if applicable <= 0 {
		return 0
	}
	return clamp(raw/applicable*100, 0, 100)
}

// cappedRatio is min(limit, observed/target*limit). A non-positive
// target yields 0 rather than a division error.
func cappedRatio(observed, target int, limit float64) float64 {
	if target <= 0 || observed <= 0 {
		return 0
	}
	v := float64(observed) / float64(target) * limit
	if v > limit {
		return limit
	}
	return v
}

// livenessScore awards the full cap for a healthy service, half for a
// listening-but-degraded one, and nothing otherwise.
func livenessScore(health string, limit float64) float64 {
	switch health {
	case probe.HealthHealthy:
		return limit
	case probe.HealthRunning:
		return limit * livenessRunningFactor
	default:
		return 0
	}
}

// Status classifies a component from its evidence and computed score.
func Status(ev Evidence, progress float64) string {
	if ev.HasService {
		switch ev.Health {
		case probe.HealthHealthy, probe.HealthRunning:
			return StatusActive
		}
	}
	if ev.Files == 0 {
		return StatusConfigured
	}
	if !ev.HasService && progress >= 75 {
		return StatusActive
	}
	return StatusInProgress
}

// Overall is the rounded mean of all component progress values.
func Overall(progresses []float64) int {
	if len(progresses) == 0 {
		return 0
	}
	var sum float64
	for _, p := range progresses {
		sum += p
	}
	return int(math.Round(sum / float64(len(progresses))))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
