package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/zafaraftab1/careercopilot/internal/engine"
	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
	"github.com/zafaraftab1/careercopilot/internal/profile"
	"github.com/zafaraftab1/careercopilot/internal/scraper"
	"github.com/zafaraftab1/careercopilot/internal/submit"
)

type fixedSource struct {
	records []job.Record
}

func (f *fixedSource) Portal() string { return "naukri" }

func (f *fixedSource) Fetch(_ context.Context, _ scraper.Query) ([]job.Record, error) {
	return f.records, nil
}

func testScheduler(t *testing.T, records []job.Record) (*Scheduler, *ledger.Ledger) {
	t.Helper()

	store := ledger.NewMemoryStore()
	led := ledger.New(store, ledger.Config{DailyLimit: 20}, nil)

	matcher := matching.New([]string{"python", "aws"}, matching.Config{ExperienceYears: 4})
	eng := engine.New(matcher, engine.Config{MatchThreshold: 70})

	proc := pipeline.New(pipeline.Deps{
		Engine:    eng,
		Ledger:    led,
		Submitter: submit.NewDryRun(nil),
	}, pipeline.Config{})

	svc := scraper.NewService([]scraper.Source{&fixedSource{records: records}}, store, nil, nil)

	candidate := &profile.Profile{
		Email:              "cand@example.com",
		PreferredRoles:     []string{"Python Developer"},
		PreferredLocations: []string{"Hyderabad"},
	}

	return New(svc, proc, led, nil, candidate, Config{}, nil), led
}

func TestRunCycleRecordsStats(t *testing.T) {
	t.Parallel()

	records := []job.Record{
		{Title: "Python Developer", Portal: "naukri", PortalJobID: "naukri-1", RequiredSkills: []string{"Python", "AWS"}},
		{Title: "Mainframe Engineer", Portal: "naukri", PortalJobID: "naukri-2", RequiredSkills: []string{"COBOL", "VHDL"}},
	}

	sched, led := testScheduler(t, records)

	dispositions, summary, err := sched.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	if len(dispositions) != 2 {
		t.Fatalf("expected 2 dispositions, got %d", len(dispositions))
	}
	if summary.Applied != 1 || summary.Matched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stats, err := led.DailyStatsOn(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("daily stats: %v", err)
	}
	if stats.JobsScraped != 2 || stats.JobsMatched != 1 || stats.JobsApplied != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestApplyEmptyBatchRecordsScrapedCount(t *testing.T) {
	t.Parallel()

	sched, led := testScheduler(t, nil)

	// A run that scraped listings but applied to none, for example after a
	// declined confirmation, still counts the scrape in the day's stats.
	_, summary, err := sched.Apply(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if summary.Processed != 0 || summary.Applied != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stats, err := led.DailyStatsOn(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("daily stats: %v", err)
	}
	if stats.JobsScraped != 7 || stats.JobsApplied != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunCycleIsIdempotentForSeenJobs(t *testing.T) {
	t.Parallel()

	records := []job.Record{
		{Title: "Python Developer", Portal: "naukri", PortalJobID: "naukri-1", RequiredSkills: []string{"Python", "AWS"}},
	}

	sched, led := testScheduler(t, records)

	if _, _, err := sched.RunCycle(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	_, summary, err := sched.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Applied != 0 {
		t.Fatalf("the second cycle must not re-apply, got %d applications", summary.Applied)
	}

	count, err := led.DailyApplicationCount(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("daily count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 application after two cycles, got %d", count)
	}
}
