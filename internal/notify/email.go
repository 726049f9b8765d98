package notify

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
)

//go:embed summary.html.tmpl
var summaryTemplate string

// maxSkippedShown keeps long skip lists out of the email body.
const maxSkippedShown = 5

// EmailConfig holds SMTP delivery settings. Sender doubles as the login user.
type EmailConfig struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
}

// EmailNotifier renders the daily summary to HTML and ships it over SMTP
// with STARTTLS.
type EmailNotifier struct {
	cfg    EmailConfig
	tmpl   *template.Template
	logger *zap.Logger

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier parses the embedded summary template.
func NewEmailNotifier(cfg EmailConfig, logger *zap.Logger) (*EmailNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.New("summary").Parse(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing summary template: %w", err)
	}

	return &EmailNotifier{
		cfg:    cfg,
		tmpl:   tmpl,
		logger: logger,
		send:   smtp.SendMail,
	}, nil
}

type summaryView struct {
	Date    string
	Stats   ledger.DailyStats
	Applied []pipeline.Disposition
	Skipped []pipeline.Disposition
	// SkippedTotal can exceed len(Skipped) when the list was truncated.
	SkippedTotal int
}

// SendDailySummary renders and sends the report. The context only bounds the
// rendering step; net/smtp does not take one.
func (n *EmailNotifier) SendDailySummary(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := n.render(report)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Daily Job Application Summary - %s", report.Date.Format("2006-01-02"))
	msg := buildMessage(n.cfg.Sender, n.cfg.Recipient, subject, body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Host)

	if err := n.send(addr, auth, n.cfg.Sender, []string{n.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("sending summary email: %w", err)
	}

	n.logger.Info("daily summary sent",
		zap.String("recipient", n.cfg.Recipient),
		zap.Int("applied", report.Stats.JobsApplied),
	)

	return nil
}

func (n *EmailNotifier) render(report Report) (string, error) {
	view := summaryView{
		Date:  report.Date.Format("2006-01-02"),
		Stats: report.Stats,
	}

	for _, d := range report.Dispositions {
		switch d.Status {
		case ledger.StatusApplied:
			view.Applied = append(view.Applied, d)
		case ledger.StatusSkipped:
			view.SkippedTotal++
			if len(view.Skipped) < maxSkippedShown {
				view.Skipped = append(view.Skipped, d)
			}
		}
	}

	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("rendering summary template: %w", err)
	}

	return buf.String(), nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
