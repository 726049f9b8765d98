package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/zafaraftab1/careercopilot/internal/engine"
	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
	"github.com/zafaraftab1/careercopilot/internal/submit"
)

// stubSubmitter records requests and fails for configured job ids.
type stubSubmitter struct {
	requests []submit.Request
	failFor  map[string]error
}

func (s *stubSubmitter) Submit(_ context.Context, req submit.Request) error {
	if err, ok := s.failFor[req.Job.PortalJobID]; ok {
		return err
	}
	s.requests = append(s.requests, req)
	return nil
}

// stubComposer returns a fixed message or an error.
type stubComposer struct {
	message string
	err     error
}

func (c *stubComposer) Compose(_ context.Context, _ job.Record) (string, error) {
	return c.message, c.err
}

func testProcessor(t *testing.T, limit int, submitter submit.Submitter, cfg Config) (*Processor, *ledger.Ledger) {
	t.Helper()

	led := ledger.New(ledger.NewMemoryStore(), ledger.Config{DailyLimit: limit}, nil)
	matcher := matching.New([]string{"python", "aws", "django"}, matching.Config{ExperienceYears: 4})
	eng := engine.New(matcher, engine.Config{MatchThreshold: 70})

	proc := New(Deps{
		Engine:    eng,
		Ledger:    led,
		Submitter: submitter,
	}, cfg)

	return proc, led
}

func goodJob(id string) job.Record {
	return job.Record{
		Title:          "Python Developer",
		Portal:         "naukri",
		PortalJobID:    id,
		RequiredSkills: []string{"Python", "AWS"},
	}
}

func badJob(id string) job.Record {
	return job.Record{
		Title:          "Mainframe Engineer",
		Portal:         "naukri",
		PortalJobID:    id,
		RequiredSkills: []string{"COBOL", "Fortran", "VHDL"},
	}
}

func TestProcessRespectsDailyLimit(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	proc, _ := testProcessor(t, 20, submitter, Config{})

	jobs := make([]job.Record, 0, 25)
	for i := 0; i < 25; i++ {
		jobs = append(jobs, goodJob(fmt.Sprintf("naukri-%d", i)))
	}

	dispositions, summary, err := proc.Process(context.Background(), jobs, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if summary.Applied != 20 {
		t.Fatalf("expected 20 applied, got %d", summary.Applied)
	}
	if summary.Skipped != 5 {
		t.Fatalf("expected 5 skipped, got %d", summary.Skipped)
	}

	// Batch order decides who gets the budget: the first 20 apply, the last
	// 5 are cut off.
	for i, d := range dispositions {
		if i < 20 {
			if d.Status != ledger.StatusApplied {
				t.Fatalf("job %d: expected applied, got %s (%s)", i, d.Status, d.Reason)
			}
			continue
		}
		if d.Status != ledger.StatusSkipped || d.Reason != ReasonDailyLimit {
			t.Fatalf("job %d: expected daily limit skip, got %s (%s)", i, d.Status, d.Reason)
		}
	}
}

// gatedSubmitter blocks every submission until release is closed, holding
// concurrent batches between their capacity snapshot and the ledger write.
type gatedSubmitter struct {
	arrived chan struct{}
	release chan struct{}
}

func (s *gatedSubmitter) Submit(_ context.Context, _ submit.Request) error {
	s.arrived <- struct{}{}
	<-s.release
	return nil
}

func TestConcurrentBatchesCannotOvershootDailyLimit(t *testing.T) {
	t.Parallel()

	submitter := &gatedSubmitter{
		arrived: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	proc, led := testProcessor(t, 1, submitter, Config{})

	type outcome struct {
		dispositions []Disposition
		summary      Summary
		err          error
	}
	results := make(chan outcome, 2)

	for _, id := range []string{"naukri-1", "naukri-2"} {
		go func() {
			d, s, err := proc.Process(context.Background(), []job.Record{goodJob(id)}, "cand")
			results <- outcome{d, s, err}
		}()
	}

	// Both batches have observed a remaining capacity of 1 and sit inside
	// their submission; whichever records first must win the single slot.
	for i := 0; i < 2; i++ {
		<-submitter.arrived
	}
	close(submitter.release)

	applied, limited := 0, 0
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			t.Fatalf("process: %v", res.err)
		}
		applied += res.summary.Applied
		for _, d := range res.dispositions {
			if d.Status == ledger.StatusSkipped && d.Reason == ReasonDailyLimit {
				limited++
			}
		}
	}

	if applied != 1 {
		t.Fatalf("expected exactly 1 applied across both batches, got %d", applied)
	}
	if limited != 1 {
		t.Fatalf("expected the losing batch to skip on the daily limit, got %d", limited)
	}

	count, err := led.DailyApplicationCount(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("daily count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded application with limit 1, got %d", count)
	}
}

func TestProcessSkipsDuplicateWithinBatch(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	proc, _ := testProcessor(t, 20, submitter, Config{})

	jobs := []job.Record{goodJob("naukri-1"), goodJob("naukri-1")}

	dispositions, summary, err := proc.Process(context.Background(), jobs, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if summary.Applied != 1 {
		t.Fatalf("expected 1 applied, got %d", summary.Applied)
	}
	if dispositions[1].Status != ledger.StatusSkipped || dispositions[1].Reason != ReasonAlreadyApplied {
		t.Fatalf("expected already-applied skip, got %s (%s)", dispositions[1].Status, dispositions[1].Reason)
	}
}

func TestProcessSkipsDuplicateFromHistory(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	proc, led := testProcessor(t, 20, submitter, Config{})

	// A previous run already applied to this job.
	if _, err := led.CreateApplication(context.Background(), goodJob("naukri-1"), "cand", 90, matching.Analysis{}, ledger.StatusApplied); err != nil {
		t.Fatalf("seeding history: %v", err)
	}

	dispositions, _, err := proc.Process(context.Background(), []job.Record{goodJob("naukri-1")}, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if dispositions[0].Status != ledger.StatusSkipped || dispositions[0].Reason != ReasonAlreadyApplied {
		t.Fatalf("expected already-applied skip, got %s (%s)", dispositions[0].Status, dispositions[0].Reason)
	}
	if len(submitter.requests) != 0 {
		t.Fatalf("a duplicate must never be submitted")
	}
}

func TestProcessSkipsBelowThreshold(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	proc, _ := testProcessor(t, 20, submitter, Config{})

	dispositions, summary, err := proc.Process(context.Background(), []job.Record{badJob("naukri-1")}, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	d := dispositions[0]
	if d.Status != ledger.StatusSkipped {
		t.Fatalf("expected skip, got %s", d.Status)
	}
	if !strings.HasPrefix(d.Reason, "below match threshold") {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
	if d.Analysis == nil {
		t.Fatalf("a threshold skip must carry its analysis")
	}
	if summary.Matched != 0 {
		t.Fatalf("expected 0 matched, got %d", summary.Matched)
	}
}

func TestProcessSubmissionFailureCostsNoQuota(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{
		failFor: map[string]error{"naukri-0": errors.New("portal timeout")},
	}
	proc, led := testProcessor(t, 1, submitter, Config{})

	jobs := []job.Record{goodJob("naukri-0"), goodJob("naukri-1")}

	dispositions, summary, err := proc.Process(context.Background(), jobs, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if dispositions[0].Status != ledger.StatusError {
		t.Fatalf("expected error disposition, got %s", dispositions[0].Status)
	}
	// The failed submission must not consume the single slot.
	if dispositions[1].Status != ledger.StatusApplied {
		t.Fatalf("expected second job applied, got %s (%s)", dispositions[1].Status, dispositions[1].Reason)
	}
	if summary.Errors != 1 || summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	count, err := led.DailyApplicationCount(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("daily count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded application, got %d", count)
	}
}

func TestProcessComposerFailureFallsBack(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	led := ledger.New(ledger.NewMemoryStore(), ledger.Config{DailyLimit: 20}, nil)
	matcher := matching.New([]string{"python", "aws"}, matching.Config{ExperienceYears: 4})
	eng := engine.New(matcher, engine.Config{MatchThreshold: 70})

	proc := New(Deps{
		Engine:    eng,
		Ledger:    led,
		Submitter: submitter,
		Composer:  &stubComposer{err: errors.New("quota exceeded")},
	}, Config{DefaultMessage: "Hello, I would like to apply."})

	_, _, err := proc.Process(context.Background(), []job.Record{goodJob("naukri-1")}, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(submitter.requests) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(submitter.requests))
	}
	if submitter.requests[0].Message != "Hello, I would like to apply." {
		t.Fatalf("expected fallback message, got %q", submitter.requests[0].Message)
	}
}

func TestProcessComposedMessageIsUsed(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	led := ledger.New(ledger.NewMemoryStore(), ledger.Config{DailyLimit: 20}, nil)
	matcher := matching.New([]string{"python", "aws"}, matching.Config{ExperienceYears: 4})
	eng := engine.New(matcher, engine.Config{MatchThreshold: 70})

	proc := New(Deps{
		Engine:    eng,
		Ledger:    led,
		Submitter: submitter,
		Composer:  &stubComposer{message: "Dear hiring team, my Python and AWS background fits."},
	}, Config{DefaultMessage: "fallback"})

	_, _, err := proc.Process(context.Background(), []job.Record{goodJob("naukri-1")}, "cand")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if submitter.requests[0].Message != "Dear hiring team, my Python and AWS background fits." {
		t.Fatalf("expected composed message, got %q", submitter.requests[0].Message)
	}
}
