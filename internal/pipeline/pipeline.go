// Package pipeline drives a list of candidate jobs through evaluation,
// capacity and duplicate checks, and submission, producing one disposition
// per input job. The matcher and engine run freely; all ledger writes are
// serialized by the ledger itself.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/ai"
	"github.com/zafaraftab1/careercopilot/internal/engine"
	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/logger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
	"github.com/zafaraftab1/careercopilot/internal/submit"
)

// Disposition reasons surfaced on skipped and error outcomes.
const (
	ReasonDailyLimit     = "daily limit reached"
	ReasonAlreadyApplied = "already applied to this job"
)

// Disposition is the terminal outcome for one job in a batch. Every input
// job yields exactly one disposition, in input order.
type Disposition struct {
	Job           job.Record
	Status        ledger.Status
	Reason        string
	MatchScore    int
	Analysis      *matching.Analysis
	ApplicationID string
}

// Summary aggregates a batch for the stats ledger and the notifier.
type Summary struct {
	Processed int
	Matched   int
	Applied   int
	Skipped   int
	Errors    int
}

// Deps aggregates the processor's collaborators. Composer is optional; when
// nil the configured default message is used as-is.
type Deps struct {
	Engine    *engine.Engine
	Ledger    *ledger.Ledger
	Submitter submit.Submitter
	Composer  ai.Composer
	Logger    *zap.Logger
}

// Config tunes per-batch behavior.
type Config struct {
	// SubmitTimeout bounds one submission attempt. Zero means
	// submit.DefaultTimeout.
	SubmitTimeout time.Duration
	// DefaultMessage is attached to applications when no composer is
	// configured or composing fails.
	DefaultMessage string
}

// Processor orchestrates one batch run.
type Processor struct {
	deps           Deps
	submitTimeout  time.Duration
	defaultMessage string
}

// New creates a Processor.
func New(deps Deps, cfg Config) *Processor {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = submit.DefaultTimeout
	}

	return &Processor{
		deps:           deps,
		submitTimeout:  timeout,
		defaultMessage: cfg.DefaultMessage,
	}
}

// Process evaluates every job in order and returns the per-job dispositions.
// Capacity is captured once at batch start and decremented locally as the
// batch applies, so one run sees a stable, shrinking budget; the ledger
// re-checks the cap atomically on every create, so overlapping runs cannot
// jointly overshoot it. A submission failure costs no quota and never blocks
// the jobs after it.
func (p *Processor) Process(ctx context.Context, jobs []job.Record, candidateID string) ([]Disposition, Summary, error) {
	remaining, err := p.deps.Ledger.RemainingCapacity(ctx, time.Time{})
	if err != nil {
		return nil, Summary{}, fmt.Errorf("remaining capacity: %w", err)
	}

	p.deps.Logger.Info("starting batch",
		zap.Int("jobs", len(jobs)),
		zap.Int("remaining_capacity", remaining),
		zap.String("candidate_id", candidateID),
	)

	dispositions := make([]Disposition, 0, len(jobs))
	summary := Summary{Processed: len(jobs)}

	for _, j := range jobs {
		d := p.processOne(ctx, j, candidateID, &remaining, &summary)
		dispositions = append(dispositions, d)

		switch d.Status {
		case ledger.StatusApplied:
			summary.Applied++
		case ledger.StatusError:
			summary.Errors++
		default:
			summary.Skipped++
		}
	}

	p.deps.Logger.Info("batch complete",
		zap.Int("processed", summary.Processed),
		zap.Int("matched", summary.Matched),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)

	return dispositions, summary, nil
}

func (p *Processor) processOne(ctx context.Context, j job.Record, candidateID string, remaining *int, summary *Summary) Disposition {
	if *remaining <= 0 {
		return Disposition{Job: j, Status: ledger.StatusSkipped, Reason: ReasonDailyLimit}
	}

	duplicate, err := p.deps.Ledger.IsDuplicate(ctx, j.PortalJobID, candidateID)
	if err != nil {
		return Disposition{Job: j, Status: ledger.StatusError, Reason: fmt.Sprintf("duplicate check: %v", err)}
	}
	if duplicate {
		return Disposition{Job: j, Status: ledger.StatusSkipped, Reason: ReasonAlreadyApplied}
	}

	result := p.deps.Engine.Evaluate(j)
	if result.PassesThreshold {
		summary.Matched++
	}

	if result.Decision == engine.DecisionSkip {
		p.deps.Logger.Debug("job below threshold",
			zap.String("portal_job_id", j.PortalJobID),
			zap.Int("match_score", result.Score),
		)
		analysis := result.Analysis
		return Disposition{
			Job:        j,
			Status:     ledger.StatusSkipped,
			Reason:     fmt.Sprintf("below match threshold (%d%%)", result.Score),
			MatchScore: result.Score,
			Analysis:   &analysis,
		}
	}

	if err := p.submit(ctx, j, candidateID); err != nil {
		p.deps.Logger.Warn("submission failed",
			zap.String("portal_job_id", j.PortalJobID),
			zap.Error(err),
		)
		analysis := result.Analysis
		return Disposition{
			Job:        j,
			Status:     ledger.StatusError,
			Reason:     err.Error(),
			MatchScore: result.Score,
			Analysis:   &analysis,
		}
	}

	rec, err := p.deps.Ledger.CreateApplication(ctx, j, candidateID, result.Score, result.Analysis, ledger.StatusApplied)
	if err != nil {
		// A concurrent run won the race for this pair; an expected outcome.
		if errors.Is(err, ledger.ErrDuplicate) {
			return Disposition{Job: j, Status: ledger.StatusSkipped, Reason: ReasonAlreadyApplied}
		}
		// A concurrent run consumed the capacity this batch observed at
		// start; the ledger is authoritative, so the rest of the batch is
		// cut off too.
		if errors.Is(err, ledger.ErrDailyLimitReached) {
			*remaining = 0
			return Disposition{Job: j, Status: ledger.StatusSkipped, Reason: ReasonDailyLimit}
		}
		analysis := result.Analysis
		return Disposition{
			Job:        j,
			Status:     ledger.StatusError,
			Reason:     fmt.Sprintf("recording application: %v", err),
			MatchScore: result.Score,
			Analysis:   &analysis,
		}
	}

	*remaining--

	p.deps.Logger.Info("applied to job",
		append(logger.PortalFields(j.Portal, candidateID),
			zap.String("portal_job_id", j.PortalJobID),
			zap.String("job_title", j.Title),
			zap.Int("match_score", result.Score),
			zap.Int("remaining_capacity", *remaining),
		)...,
	)

	analysis := result.Analysis
	return Disposition{
		Job:           j,
		Status:        ledger.StatusApplied,
		MatchScore:    result.Score,
		Analysis:      &analysis,
		ApplicationID: rec.ID,
	}
}

// submit runs one timeout-bounded submission attempt, composing the
// application message first when a composer is available.
func (p *Processor) submit(parent context.Context, j job.Record, candidateID string) error {
	ctx, cancel := context.WithTimeout(parent, p.submitTimeout)
	defer cancel()

	message := p.defaultMessage
	if p.deps.Composer != nil {
		composed, err := p.deps.Composer.Compose(ctx, j)
		if err != nil {
			p.deps.Logger.Warn("composing application message failed, using default",
				zap.String("portal_job_id", j.PortalJobID),
				zap.Error(err),
			)
		} else if composed != "" {
			message = composed
		}
	}

	return p.deps.Submitter.Submit(ctx, submit.Request{
		Job:         j,
		CandidateID: candidateID,
		Message:     message,
	})
}
