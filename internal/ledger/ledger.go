package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/matching"
)

// DefaultDailyLimit caps how many applications may be submitted per calendar
// day.
const DefaultDailyLimit = 20

// Config carries the externally configured limits. Passed explicitly to the
// constructor; the ledger never reads ambient configuration.
type Config struct {
	DailyLimit    int
	ResumeVersion string
}

// Ledger mediates all ApplicationRecord writes. A single mutex serializes
// duplicate-check-then-create and limit-check-then-count, so two concurrent
// batch runs cannot both pass the duplicate check for one (job, candidate)
// pair or jointly overshoot the daily cap. Backends with transactional
// uniqueness (the postgres store) enforce the same invariants a second time.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger

	dailyLimit    int
	resumeVersion string

	// now is swappable in tests.
	now func() time.Time
}

// New creates a Ledger over the given store.
func New(store Store, cfg Config, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = DefaultDailyLimit
	}

	resumeVersion := strings.TrimSpace(cfg.ResumeVersion)
	if resumeVersion == "" {
		resumeVersion = "latest"
	}

	return &Ledger{
		store:         store,
		logger:        logger,
		dailyLimit:    limit,
		resumeVersion: resumeVersion,
		now:           time.Now,
	}
}

// DailyLimit reports the configured cap.
func (l *Ledger) DailyLimit() int { return l.dailyLimit }

// DailyApplicationCount counts applications with status applied submitted on
// the given date. A zero date means today in the ledger's local clock.
func (l *Ledger) DailyApplicationCount(ctx context.Context, date time.Time) (int, error) {
	if date.IsZero() {
		date = l.now()
	}

	return l.store.CountAppliedOn(ctx, date)
}

// RemainingCapacity returns max(0, dailyLimit - dailyApplicationCount).
func (l *Ledger) RemainingCapacity(ctx context.Context, date time.Time) (int, error) {
	count, err := l.DailyApplicationCount(ctx, date)
	if err != nil {
		return 0, err
	}

	remaining := l.dailyLimit - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// IsDuplicate reports whether an active (applied or interview_received)
// application exists for the pair.
func (l *Ledger) IsDuplicate(ctx context.Context, portalJobID, candidateID string) (bool, error) {
	existing, err := l.store.FindActiveApplication(ctx, portalJobID, candidateID)
	if err != nil {
		return false, err
	}

	return existing != nil, nil
}

// CreateApplication upserts the job by its natural key and inserts the
// application record. Returns ErrMissingPortalJobID when the natural key is
// absent, ErrDuplicate when the record would violate the active-application
// invariant, and ErrDailyLimitReached when an applied record would exceed the
// daily cap. Checks and insert run under the ledger lock, so two concurrent
// batch runs cannot jointly overshoot the cap or both pass the duplicate
// check.
func (l *Ledger) CreateApplication(ctx context.Context, j job.Record, candidateID string, score int, analysis matching.Analysis, status Status) (*ApplicationRecord, error) {
	if strings.TrimSpace(j.PortalJobID) == "" {
		return nil, ErrMissingPortalJobID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if status.active() {
		existing, err := l.store.FindActiveApplication(ctx, j.PortalJobID, candidateID)
		if err != nil {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicate
		}
	}

	if status == StatusApplied {
		count, err := l.store.CountAppliedOn(ctx, l.now())
		if err != nil {
			return nil, fmt.Errorf("daily limit check: %w", err)
		}
		if count >= l.dailyLimit {
			return nil, ErrDailyLimitReached
		}
	}

	if err := l.store.UpsertJob(ctx, j); err != nil {
		return nil, fmt.Errorf("upsert job %s: %w", j.PortalJobID, err)
	}

	rec := ApplicationRecord{
		ID:            uuid.NewString(),
		PortalJobID:   j.PortalJobID,
		CandidateID:   candidateID,
		MatchScore:    score,
		Analysis:      analysis,
		Status:        status,
		AppliedAt:     l.now(),
		ResumeVersion: l.resumeVersion,
	}

	if err := l.store.InsertApplication(ctx, rec, l.dailyLimit); err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	l.logger.Debug("application recorded",
		zap.String("portal_job_id", j.PortalJobID),
		zap.String("candidate_id", candidateID),
		zap.Int("match_score", score),
		zap.String("status", string(status)),
	)

	return &rec, nil
}

// UpdateStatus transitions an existing record to the given status. A move to
// interview_received also bumps the day's interview counter.
func (l *Ledger) UpdateStatus(ctx context.Context, id string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.UpdateApplicationStatus(ctx, id, status); err != nil {
		return err
	}

	if status == StatusInterviewReceived {
		if _, err := l.store.AccumulateDailyStats(ctx, l.now(), StatsDelta{Interviews: 1}); err != nil {
			return fmt.Errorf("bump interview counter: %w", err)
		}
	}

	return nil
}

// RecordDailyStats accumulates the scrape/match/apply counters for today,
// creating the day's row if absent.
func (l *Ledger) RecordDailyStats(ctx context.Context, scraped, matched, applied int) (DailyStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.AccumulateDailyStats(ctx, l.now(), StatsDelta{
		Scraped: scraped,
		Matched: matched,
		Applied: applied,
	})
}

// DailyStatsOn reads the counters for a date. A zero date means today.
func (l *Ledger) DailyStatsOn(ctx context.Context, date time.Time) (DailyStats, error) {
	if date.IsZero() {
		date = l.now()
	}

	return l.store.DailyStatsOn(ctx, date)
}
