// Package ai defines the optional language-model collaborators used around
// the core engine. The matching pipeline itself is deterministic; AI only
// enriches the application with a tailored note.
package ai

import (
	"context"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

// Composer writes a short application message for a job. Failures degrade to
// the configured default message; they never block a submission.
type Composer interface {
	Compose(ctx context.Context, j job.Record) (string, error)
}
