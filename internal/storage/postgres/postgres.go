// Package postgres implements the ledger.Store interface on PostgreSQL via
// pgx. The schema carries the invariants as constraints: a unique key on
// portal_job_id for jobs and a partial unique index over (portal_job_id,
// candidate_id) for active applications, so concurrent writers outside this
// process cannot violate them either.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
)

const uniqueViolationCode = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS job_listings (
	portal_job_id       TEXT PRIMARY KEY,
	job_title           TEXT NOT NULL,
	company             TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	portal              TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL DEFAULT '',
	required_skills     JSONB NOT NULL DEFAULT '[]',
	experience_required TEXT NOT NULL DEFAULT '',
	salary_range        TEXT NOT NULL DEFAULT '',
	job_url             TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_applications (
	id               UUID PRIMARY KEY,
	portal_job_id    TEXT NOT NULL REFERENCES job_listings(portal_job_id),
	candidate_id     TEXT NOT NULL,
	match_score      INT NOT NULL DEFAULT 0,
	match_analysis   JSONB NOT NULL DEFAULT '{}',
	status           TEXT NOT NULL DEFAULT 'applied',
	application_date TIMESTAMPTZ NOT NULL DEFAULT now(),
	resume_version   TEXT NOT NULL DEFAULT 'latest'
);

CREATE UNIQUE INDEX IF NOT EXISTS job_applications_active_unique
	ON job_applications (portal_job_id, candidate_id)
	WHERE status IN ('applied', 'interview_received');

CREATE TABLE IF NOT EXISTS daily_application_logs (
	date                DATE PRIMARY KEY,
	jobs_scraped        INT NOT NULL DEFAULT 0,
	jobs_matched        INT NOT NULL DEFAULT 0,
	jobs_applied        INT NOT NULL DEFAULT 0,
	interviews_received INT NOT NULL DEFAULT 0
);
`

// Store is a pgx-backed ledger.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Connect creates and verifies a pgxpool connection pool and ensures the
// schema exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) UpsertJob(ctx context.Context, j job.Record) error {
	skills, err := json.Marshal(j.RequiredSkills)
	if err != nil {
		return fmt.Errorf("marshal required skills: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO job_listings (
			portal_job_id, job_title, company, location, portal, description,
			required_skills, experience_required, salary_range, job_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (portal_job_id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			portal = EXCLUDED.portal,
			description = EXCLUDED.description,
			required_skills = EXCLUDED.required_skills,
			experience_required = EXCLUDED.experience_required,
			salary_range = EXCLUDED.salary_range,
			job_url = EXCLUDED.job_url,
			updated_at = now()`,
		j.PortalJobID, j.Title, j.Company, j.Location, j.Portal, j.Description,
		skills, j.ExperienceRequired, j.SalaryRange, j.URL,
	)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}

	return nil
}

func (s *Store) InsertApplication(ctx context.Context, rec ledger.ApplicationRecord, dailyLimit int) error {
	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert application: %w", err)
	}
	defer tx.Rollback(ctx)

	if dailyLimit > 0 && rec.Status == ledger.StatusApplied {
		// A per-day advisory lock serializes cap-check-then-insert across
		// processes; the ledger mutex only covers this one.
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext('job_applications:' || $1::date))`,
			rec.AppliedAt,
		); err != nil {
			return fmt.Errorf("acquire daily limit lock: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, `
			SELECT count(*) FROM job_applications
			WHERE status = 'applied' AND application_date::date = $1::date`,
			rec.AppliedAt,
		).Scan(&count); err != nil {
			return fmt.Errorf("daily limit check: %w", err)
		}
		if count >= dailyLimit {
			return ledger.ErrDailyLimitReached
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO job_applications (
			id, portal_job_id, candidate_id, match_score, match_analysis,
			status, application_date, resume_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.PortalJobID, rec.CandidateID, rec.MatchScore, analysis,
		string(rec.Status), rec.AppliedAt, rec.ResumeVersion,
	)
	if err != nil {
		// The partial unique index rejects a second active record for the
		// pair even when another process slipped past the ledger lock.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ledger.ErrDuplicate
		}
		return fmt.Errorf("insert application: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert application: %w", err)
	}

	return nil
}

func (s *Store) FindActiveApplication(ctx context.Context, portalJobID, candidateID string) (*ledger.ApplicationRecord, error) {
	var (
		rec          ledger.ApplicationRecord
		analysisJSON []byte
		status       string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT id, portal_job_id, candidate_id, match_score, match_analysis,
		       status, application_date, resume_version
		FROM job_applications
		WHERE portal_job_id = $1 AND candidate_id = $2
		  AND status IN ('applied', 'interview_received')
		LIMIT 1`,
		portalJobID, candidateID,
	).Scan(
		&rec.ID, &rec.PortalJobID, &rec.CandidateID, &rec.MatchScore,
		&analysisJSON, &status, &rec.AppliedAt, &rec.ResumeVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active application: %w", err)
	}

	rec.Status = ledger.Status(status)
	if len(analysisJSON) > 0 {
		var analysis matching.Analysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		rec.Analysis = analysis
	}

	return &rec, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status ledger.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_applications SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) CountAppliedOn(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM job_applications
		WHERE status = 'applied' AND application_date::date = $1::date`,
		date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applied: %w", err)
	}

	return count, nil
}

func (s *Store) AccumulateDailyStats(ctx context.Context, date time.Time, delta ledger.StatsDelta) (ledger.DailyStats, error) {
	var stats ledger.DailyStats

	// Atomic increment-and-read; the upsert keeps exactly one row per date.
	err := s.pool.QueryRow(ctx, `
		INSERT INTO daily_application_logs (
			date, jobs_scraped, jobs_matched, jobs_applied, interviews_received
		) VALUES ($1::date, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			jobs_scraped = daily_application_logs.jobs_scraped + EXCLUDED.jobs_scraped,
			jobs_matched = daily_application_logs.jobs_matched + EXCLUDED.jobs_matched,
			jobs_applied = daily_application_logs.jobs_applied + EXCLUDED.jobs_applied,
			interviews_received = daily_application_logs.interviews_received + EXCLUDED.interviews_received
		RETURNING date, jobs_scraped, jobs_matched, jobs_applied, interviews_received`,
		date, delta.Scraped, delta.Matched, delta.Applied, delta.Interviews,
	).Scan(&stats.Date, &stats.JobsScraped, &stats.JobsMatched, &stats.JobsApplied, &stats.InterviewsReceived)
	if err != nil {
		return ledger.DailyStats{}, fmt.Errorf("accumulate daily stats: %w", err)
	}

	return stats, nil
}

func (s *Store) DailyStatsOn(ctx context.Context, date time.Time) (ledger.DailyStats, error) {
	var stats ledger.DailyStats
	err := s.pool.QueryRow(ctx, `
		SELECT date, jobs_scraped, jobs_matched, jobs_applied, interviews_received
		FROM daily_application_logs
		WHERE date = $1::date`,
		date,
	).Scan(&stats.Date, &stats.JobsScraped, &stats.JobsMatched, &stats.JobsApplied, &stats.InterviewsReceived)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.DailyStats{Date: date}, nil
	}
	if err != nil {
		return ledger.DailyStats{}, fmt.Errorf("daily stats: %w", err)
	}

	return stats, nil
}
