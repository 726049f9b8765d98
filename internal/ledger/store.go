package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

var (
	// ErrMissingPortalJobID is returned when an application references a job
	// without its natural key. Fatal to the single operation, never retried.
	ErrMissingPortalJobID = errors.New("portal job id is required")

	// ErrDuplicate is returned when an active application already exists for
	// the (job, candidate) pair. An expected outcome under concurrent runs,
	// surfaced to callers as a skipped disposition.
	ErrDuplicate = errors.New("active application already exists for this job")

	// ErrNotFound is returned when a referenced application record does not
	// exist.
	ErrNotFound = errors.New("application record not found")

	// ErrDailyLimitReached is returned when recording an applied application
	// would exceed the daily cap. Like ErrDuplicate it is an expected outcome
	// under concurrent runs, surfaced as a skipped disposition.
	ErrDailyLimitReached = errors.New("daily application limit reached")
)

// Store is the persistence collaborator behind the Ledger. Implementations
// must keep at most one job row per portal_job_id (upsert-by-natural-key) and
// should enforce the active-application uniqueness constraint themselves when
// the backend can express it; the Ledger serializes writes either way.
type Store interface {
	// UpsertJob inserts the job or updates the existing row with the same
	// portal_job_id. Never duplicates job rows.
	UpsertJob(ctx context.Context, j job.Record) error

	// InsertApplication persists a new application record. When dailyLimit > 0
	// and the record's status is applied, implementations must refuse the
	// insert with ErrDailyLimitReached once the record's day already holds
	// dailyLimit applied records, atomically with the insert itself, so
	// writers outside the ledger lock cannot overshoot the cap.
	InsertApplication(ctx context.Context, rec ApplicationRecord, dailyLimit int) error

	// FindActiveApplication returns the applied or interview_received record
	// for the pair, or nil when none exists.
	FindActiveApplication(ctx context.Context, portalJobID, candidateID string) (*ApplicationRecord, error)

	// UpdateApplicationStatus changes the status of an existing record.
	UpdateApplicationStatus(ctx context.Context, id string, status Status) error

	// CountAppliedOn counts records with status applied whose application
	// date falls on the given calendar date.
	CountAppliedOn(ctx context.Context, date time.Time) (int, error)

	// AccumulateDailyStats adds the delta to the date's counters, creating
	// the row when absent, and returns the resulting totals.
	AccumulateDailyStats(ctx context.Context, date time.Time, delta StatsDelta) (DailyStats, error)

	// DailyStatsOn returns the counters for the date; a zero-valued DailyStats
	// when the day has no row yet.
	DailyStatsOn(ctx context.Context, date time.Time) (DailyStats, error)
}
