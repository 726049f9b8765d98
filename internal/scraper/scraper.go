// Package scraper collects job listings from the configured portals and
// hands them to the store. The rest of the system does not care whether a
// record came from a JSON API, an HTML listing page or a fixture set; it
// only sees job.Record values that passed boundary validation.
package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/logger"
	"github.com/zafaraftab1/careercopilot/internal/profile"
)

// Query is one portal search.
type Query struct {
	Keywords string
	Location string
}

// Source supplies job records for one portal.
type Source interface {
	Portal() string
	Fetch(ctx context.Context, q Query) ([]job.Record, error)
}

// Service runs a scrape cycle: every source, over the candidate's preferred
// roles and locations, with validation, seen-cache dedup and upsert into the
// store.
type Service struct {
	sources []Source
	store   ledger.Store
	seen    *SeenCache
	logger  *zap.Logger
}

// NewService creates a scrape Service. seen may be nil; dedup then falls
// entirely on the store's upsert.
func NewService(sources []Source, store ledger.Store, seen *SeenCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		sources: sources,
		store:   store,
		seen:    seen,
		logger:  logger,
	}
}

// Run executes one scrape cycle for the candidate and returns the fresh
// records plus the total number of listings scraped (including ones already
// seen). Individual source failures are logged and skipped; one portal being
// down must not starve the others.
func (s *Service) Run(ctx context.Context, candidate *profile.Profile) ([]job.Record, int, error) {
	var fresh []job.Record
	scraped := 0

	for _, source := range s.sources {
		for _, role := range candidate.PreferredRoles {
			for _, location := range candidate.PreferredLocations {
				records, err := source.Fetch(ctx, Query{Keywords: role, Location: location})
				if err != nil {
					s.logger.Warn("source fetch failed",
						append(logger.PortalFields(source.Portal(), candidate.Email),
							zap.String("role", role),
							zap.String("location", location),
							zap.Error(err),
						)...,
					)
					continue
				}

				scraped += len(records)
				fresh = append(fresh, s.ingest(ctx, records)...)
			}
		}
	}

	s.logger.Info("scrape cycle complete",
		zap.Int("scraped", scraped),
		zap.Int("fresh", len(fresh)),
	)

	return fresh, scraped, nil
}

// ingest validates, dedups and upserts one batch of records.
func (s *Service) ingest(ctx context.Context, records []job.Record) []job.Record {
	fresh := make([]job.Record, 0, len(records))

	for _, rec := range records {
		rec.Normalize()
		if err := rec.Validate(); err != nil {
			s.logger.Debug("dropping invalid job record",
				zap.String("portal", rec.Portal),
				zap.String("portal_job_id", rec.PortalJobID),
				zap.Error(err),
			)
			continue
		}

		seen, err := s.seen.MarkSeen(ctx, rec.Portal, rec.PortalJobID)
		if err != nil {
			s.logger.Warn("seen cache unavailable", zap.Error(err))
		}

		if err := s.store.UpsertJob(ctx, rec); err != nil {
			s.logger.Warn("upsert job failed",
				zap.String("portal_job_id", rec.PortalJobID),
				zap.Error(err),
			)
			continue
		}

		if !seen {
			fresh = append(fresh, rec)
		}
	}

	return fresh
}
