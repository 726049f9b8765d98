// Package ledger tracks job applications: per-day counts, duplicate
// prevention and daily statistics. All ApplicationRecord writes go through
// the Ledger so the uniqueness and rate-limiting invariants hold under
// concurrent batch runs.
package ledger

import (
	"time"

	"github.com/zafaraftab1/careercopilot/internal/matching"
)

// Status is the lifecycle state of an application record.
type Status string

const (
	StatusApplied           Status = "applied"
	StatusSkipped           Status = "skipped"
	StatusRejected          Status = "rejected"
	StatusInterviewReceived Status = "interview_received"
	StatusError             Status = "error"
)

// active reports whether the status counts toward the duplicate-prevention
// invariant: at most one record per (job, candidate) pair may hold an active
// status.
func (s Status) active() bool {
	return s == StatusApplied || s == StatusInterviewReceived
}

// ApplicationRecord links a job and a candidate with the score and analysis
// that justified the application. Records are never deleted.
type ApplicationRecord struct {
	ID            string
	PortalJobID   string
	CandidateID   string
	MatchScore    int
	Analysis      matching.Analysis
	Status        Status
	AppliedAt     time.Time
	ResumeVersion string
}

// DailyStats holds the monotonically-increasing counters for one calendar
// date. Exactly one row exists per date; it is created lazily on first write
// and updated by accumulation, never overwritten.
type DailyStats struct {
	Date               time.Time
	JobsScraped        int
	JobsMatched        int
	JobsApplied        int
	InterviewsReceived int
}

// StatsDelta is one accumulation step for a day's counters. All fields are
// non-negative increments.
type StatsDelta struct {
	Scraped    int
	Matched    int
	Applied    int
	Interviews int
}
