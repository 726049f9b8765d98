package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
)

func testReport() Report {
	return Report{
		Date: time.Date(2025, time.March, 10, 19, 0, 0, 0, time.UTC),
		Stats: ledger.DailyStats{
			JobsScraped: 42,
			JobsMatched: 12,
			JobsApplied: 8,
		},
		Dispositions: []pipeline.Disposition{
			{
				Job: job.Record{
					Title:    "Senior Python Developer",
					Company:  "Acme Analytics",
					Location: "Hyderabad",
				},
				Status:     ledger.StatusApplied,
				MatchScore: 92,
				Analysis:   &matching.Analysis{Reasoning: "Matched 5/5 required skills."},
			},
			{
				Job:        job.Record{Title: "Staff Architect", Company: "Globex"},
				Status:     ledger.StatusSkipped,
				Reason:     "below match threshold (54%)",
				MatchScore: 54,
			},
		},
	}
}

func TestSendDailySummary(t *testing.T) {
	t.Parallel()

	notifier, err := NewEmailNotifier(EmailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Sender:    "bot@example.com",
		Password:  "secret",
		Recipient: "candidate@example.com",
	}, nil)
	require.NoError(t, err)

	var sentAddr, sentFrom string
	var sentTo []string
	var sentMsg []byte
	notifier.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sentAddr, sentFrom, sentTo, sentMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, notifier.SendDailySummary(context.Background(), testReport()))

	assert.Equal(t, "smtp.example.com:587", sentAddr)
	assert.Equal(t, "bot@example.com", sentFrom)
	assert.Equal(t, []string{"candidate@example.com"}, sentTo)

	body := string(sentMsg)
	assert.Contains(t, body, "Subject: Daily Job Application Summary - 2025-03-10")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.Contains(t, body, "Senior Python Developer")
	assert.Contains(t, body, "Acme Analytics")
	assert.Contains(t, body, "92%")
	assert.Contains(t, body, "below match threshold (54%)")
	assert.Contains(t, body, "Matched 5/5 required skills.")
}

func TestRenderSplitsAppliedAndSkipped(t *testing.T) {
	t.Parallel()

	notifier, err := NewEmailNotifier(EmailConfig{}, nil)
	require.NoError(t, err)

	body, err := notifier.render(testReport())
	require.NoError(t, err)

	assert.Contains(t, body, "Applied Jobs (1)")
	assert.Contains(t, body, "Skipped Jobs (1)")
	assert.Contains(t, body, "<strong>2025-03-10</strong>")
}

func TestRenderTruncatesSkippedList(t *testing.T) {
	t.Parallel()

	notifier, err := NewEmailNotifier(EmailConfig{}, nil)
	require.NoError(t, err)

	report := Report{Date: time.Now()}
	for i := 0; i < 12; i++ {
		report.Dispositions = append(report.Dispositions, pipeline.Disposition{
			Job:    job.Record{Title: "Skipped Role"},
			Status: ledger.StatusSkipped,
			Reason: "below match threshold (40%)",
		})
	}

	body, err := notifier.render(report)
	require.NoError(t, err)

	assert.Contains(t, body, "Skipped Jobs (12)", "the headline counts every skip")
	assert.Equal(t, maxSkippedShown, strings.Count(body, "Skipped Role"), "the list itself is capped")
}

func TestSendDailySummaryCancelledContext(t *testing.T) {
	t.Parallel()

	notifier, err := NewEmailNotifier(EmailConfig{}, nil)
	require.NoError(t, err)

	notifier.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called with a cancelled context")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, notifier.SendDailySummary(ctx, testReport()))
}
