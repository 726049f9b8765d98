// Package notify delivers the end-of-day application summary.
package notify

import (
	"context"
	"time"

	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
)

// Report is everything a daily summary message carries.
type Report struct {
	Date         time.Time
	Stats        ledger.DailyStats
	Dispositions []pipeline.Disposition
}

// Notifier sends a daily report to the candidate.
type Notifier interface {
	SendDailySummary(ctx context.Context, report Report) error
}
