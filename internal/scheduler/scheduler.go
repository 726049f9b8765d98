// Package scheduler drives the daily automation loop: scrape in the morning,
// process the batch, and send the summary in the evening.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/notify"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
	"github.com/zafaraftab1/careercopilot/internal/profile"
	"github.com/zafaraftab1/careercopilot/internal/scraper"
)

const (
	// defaultCycleSpec fires the scrape-and-apply cycle each morning.
	defaultCycleSpec = "0 9 * * *"
	// defaultSummarySpec sends the daily report each evening.
	defaultSummarySpec = "0 19 * * *"
)

// Config holds the cron specs. Zero values fall back to the defaults above.
type Config struct {
	CycleSpec   string
	SummarySpec string
	// RunOnStart fires one cycle immediately instead of waiting for the
	// first tick.
	RunOnStart bool
}

// Scheduler wires the scrape service, the batch processor and the notifier
// onto a cron runner.
type Scheduler struct {
	cron      *cron.Cron
	scraper   *scraper.Service
	processor *pipeline.Processor
	ledger    *ledger.Ledger
	notifier  notify.Notifier
	candidate *profile.Profile
	cfg       Config
	logger    *zap.Logger

	// lastDispositions feeds the evening summary from the day's cycle.
	lastMu           sync.Mutex
	lastDispositions []pipeline.Disposition
}

// New creates a Scheduler. notifier may be nil; the summary job is then not
// registered.
func New(
	scr *scraper.Service,
	proc *pipeline.Processor,
	led *ledger.Ledger,
	notifier notify.Notifier,
	candidate *profile.Profile,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if cfg.CycleSpec == "" {
		cfg.CycleSpec = defaultCycleSpec
	}
	if cfg.SummarySpec == "" {
		cfg.SummarySpec = defaultSummarySpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		scraper:   scr,
		processor: proc,
		ledger:    led,
		notifier:  notifier,
		candidate: candidate,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron runner. It returns
// immediately; Stop shuts the runner down.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.CycleSpec, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("registering cycle job: %w", err)
	}

	if s.notifier != nil {
		if _, err := s.cron.AddFunc(s.cfg.SummarySpec, func() { s.runSummary(ctx) }); err != nil {
			return fmt.Errorf("registering summary job: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("cycle_spec", s.cfg.CycleSpec),
		zap.String("summary_spec", s.cfg.SummarySpec),
	)

	if s.cfg.RunOnStart {
		go s.runCycle(ctx)
	}

	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// Scrape runs one scrape pass for the configured candidate.
func (s *Scheduler) Scrape(ctx context.Context) ([]job.Record, int, error) {
	return s.scraper.Run(ctx, s.candidate)
}

// Apply processes the scraped batch, records the day's stats and caches the
// dispositions for the evening summary. An empty batch is accepted so callers
// can record the scraped count even when nothing gets processed.
func (s *Scheduler) Apply(ctx context.Context, jobs []job.Record, scraped int) ([]pipeline.Disposition, pipeline.Summary, error) {
	dispositions, summary, err := s.processor.Process(ctx, jobs, s.candidate.Email)
	if err != nil {
		return dispositions, summary, fmt.Errorf("processing batch: %w", err)
	}

	if _, err := s.ledger.RecordDailyStats(ctx, scraped, summary.Matched, summary.Applied); err != nil {
		s.logger.Warn("recording daily stats failed", zap.Error(err))
	}

	s.lastMu.Lock()
	s.lastDispositions = dispositions
	s.lastMu.Unlock()

	return dispositions, summary, nil
}

// RunCycle executes one scrape-and-apply cycle synchronously. The run
// command uses the Scrape and Apply halves directly, with its confirmation
// prompt in between.
func (s *Scheduler) RunCycle(ctx context.Context) ([]pipeline.Disposition, pipeline.Summary, error) {
	jobs, scraped, err := s.Scrape(ctx)
	if err != nil {
		return nil, pipeline.Summary{}, fmt.Errorf("scrape cycle: %w", err)
	}

	return s.Apply(ctx, jobs, scraped)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.logger.Info("scheduled cycle started")

	_, summary, err := s.RunCycle(ctx)
	if err != nil {
		s.logger.Error("scheduled cycle failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled cycle complete",
		zap.Int("processed", summary.Processed),
		zap.Int("matched", summary.Matched),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
}

func (s *Scheduler) runSummary(ctx context.Context) {
	now := time.Now()

	stats, err := s.ledger.DailyStatsOn(ctx, now)
	if err != nil {
		s.logger.Error("loading daily stats failed", zap.Error(err))
		return
	}

	s.lastMu.Lock()
	dispositions := s.lastDispositions
	s.lastMu.Unlock()

	report := notify.Report{
		Date:         now,
		Stats:        stats,
		Dispositions: dispositions,
	}

	if err := s.notifier.SendDailySummary(ctx, report); err != nil {
		s.logger.Error("sending daily summary failed", zap.Error(err))
		return
	}

	s.logger.Info("daily summary delivered")
}
