// Package engine applies the apply/skip policy on top of the matcher's raw
// score. It is pure: no I/O, no synchronization needed.
package engine

import (
	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/matching"
)

// Decision is the engine's verdict for one job.
type Decision string

const (
	DecisionApply Decision = "apply"
	DecisionSkip  Decision = "skip"

	// DefaultMatchThreshold is the score a job must reach to be worth
	// applying to.
	DefaultMatchThreshold = 70
)

// Config carries the externally configured thresholds. Passed explicitly to
// the constructor; the engine never reads ambient configuration.
type Config struct {
	MatchThreshold int
}

// Result is the outcome of evaluating one job.
type Result struct {
	Decision        Decision
	Score           int
	Analysis        matching.Analysis
	PassesThreshold bool
}

// Engine wraps a Matcher with decision thresholds.
type Engine struct {
	matcher   *matching.Matcher
	threshold int
}

// New creates an Engine. A non-positive threshold falls back to the default.
func New(matcher *matching.Matcher, cfg Config) *Engine {
	threshold := cfg.MatchThreshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	return &Engine{matcher: matcher, threshold: threshold}
}

// Threshold reports the configured match threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Evaluate scores the job and decides apply or skip. Side-effect free; safe
// to call from concurrent batch runs.
func (e *Engine) Evaluate(j job.Record) Result {
	score, analysis := e.matcher.Score(j.Description, j.RequiredSkills, j.ExperienceRequired)
	passes := score >= e.threshold

	decision := DecisionSkip
	if passes {
		decision = DecisionApply
	}

	return Result{
		Decision:        decision,
		Score:           score,
		Analysis:        analysis,
		PassesThreshold: passes,
	}
}
