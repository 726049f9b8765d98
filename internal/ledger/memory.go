package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

// MemoryStore is an in-memory Store for tests and dry runs. It mirrors the
// postgres store's semantics, including upsert-by-natural-key.
type MemoryStore struct {
	mu           sync.RWMutex
	jobs         map[string]job.Record
	applications []ApplicationRecord
	stats        map[string]DailyStats
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]job.Record),
		stats: make(map[string]DailyStats),
	}
}

func (s *MemoryStore) UpsertJob(_ context.Context, j job.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[j.PortalJobID] = j
	return nil
}

// JobCount reports how many distinct jobs have been stored.
func (s *MemoryStore) JobCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.jobs)
}

func (s *MemoryStore) InsertApplication(_ context.Context, rec ApplicationRecord, dailyLimit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Status.active() {
		for _, existing := range s.applications {
			if existing.PortalJobID == rec.PortalJobID &&
				existing.CandidateID == rec.CandidateID &&
				existing.Status.active() {
				return ErrDuplicate
			}
		}
	}

	if dailyLimit > 0 && rec.Status == StatusApplied {
		count := 0
		for _, existing := range s.applications {
			if existing.Status == StatusApplied && sameDay(existing.AppliedAt, rec.AppliedAt) {
				count++
			}
		}
		if count >= dailyLimit {
			return ErrDailyLimitReached
		}
	}

	s.applications = append(s.applications, rec)
	return nil
}

func (s *MemoryStore) FindActiveApplication(_ context.Context, portalJobID, candidateID string) (*ApplicationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.applications {
		rec := s.applications[i]
		if rec.PortalJobID == portalJobID && rec.CandidateID == candidateID && rec.Status.active() {
			return &rec, nil
		}
	}

	return nil, nil
}

func (s *MemoryStore) UpdateApplicationStatus(_ context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.applications {
		if s.applications[i].ID == id {
			s.applications[i].Status = status
			return nil
		}
	}

	return ErrNotFound
}

func (s *MemoryStore) CountAppliedOn(_ context.Context, date time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.applications {
		if rec.Status == StatusApplied && sameDay(rec.AppliedAt, date) {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStore) AccumulateDailyStats(_ context.Context, date time.Time, delta StatsDelta) (DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(date)
	stats, ok := s.stats[key]
	if !ok {
		stats = DailyStats{Date: truncateToDay(date)}
	}

	stats.JobsScraped += delta.Scraped
	stats.JobsMatched += delta.Matched
	stats.JobsApplied += delta.Applied
	stats.InterviewsReceived += delta.Interviews

	s.stats[key] = stats
	return stats, nil
}

func (s *MemoryStore) DailyStatsOn(_ context.Context, date time.Time) (DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[dayKey(date)]
	if !ok {
		return DailyStats{Date: truncateToDay(date)}, nil
	}

	return stats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
