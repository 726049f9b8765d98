// Package submit performs the actual application action for a job. The
// pipeline only sees the Submitter interface; implementations range from a
// no-op dry run to a headless-browser click-through.
package submit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

// DefaultTimeout bounds one submission attempt. Browser round trips are the
// slowest operation in the whole system.
const DefaultTimeout = 90 * time.Second

// Request is everything a submitter needs to act on one job.
type Request struct {
	Job         job.Record
	CandidateID string
	// Message is the application note to attach where the portal supports
	// one. May be empty.
	Message string
}

// Submitter attempts to apply to a job on its portal. Failure is reported,
// not raised: the caller converts it into an error disposition and the batch
// continues.
type Submitter interface {
	Submit(ctx context.Context, req Request) error
}

// DryRun reports success without side effects. Used by tests and the
// --dry-run flag.
type DryRun struct {
	logger *zap.Logger
}

// NewDryRun creates a DryRun submitter.
func NewDryRun(logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{logger: logger}
}

func (d *DryRun) Submit(_ context.Context, req Request) error {
	d.logger.Info("dry run: would submit application",
		zap.String("portal_job_id", req.Job.PortalJobID),
		zap.String("job_title", req.Job.Title),
		zap.String("job_url", req.Job.URL),
	)
	return nil
}
