package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Browser submits applications through a headless Chrome session. Submission
// on a third-party portal is best effort: selectors drift and portals differ,
// so every failure surfaces as an error for the pipeline to record rather
// than abort on.
type Browser struct {
	logger   *zap.Logger
	email    string
	password string
	timeout  time.Duration
}

// BrowserConfig carries portal credentials and the per-attempt timeout.
type BrowserConfig struct {
	Email    string
	Password string
	Timeout  time.Duration
}

// NewBrowser creates a Browser submitter.
func NewBrowser(cfg BrowserConfig, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Browser{
		logger:   logger,
		email:    cfg.Email,
		password: cfg.Password,
		timeout:  timeout,
	}
}

// Submit opens the job page and walks the apply flow. The whole attempt is
// bounded by the configured timeout and cancellable through ctx.
func (b *Browser) Submit(ctx context.Context, req Request) error {
	url := strings.TrimSpace(req.Job.URL)
	if url == "" {
		return errors.New("job has no url to submit against")
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	b.logger.Info("submitting application through browser",
		zap.String("portal_job_id", req.Job.PortalJobID),
		zap.String("job_url", url),
	)

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before touching the DOM.
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners when present; absence is fine.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.ActionFunc(b.ensureLoggedIn),
		chromedp.ActionFunc(b.clickApply),
	)
	if err != nil {
		return fmt.Errorf("browser submission: %w", err)
	}

	b.logger.Info("application submitted",
		zap.String("portal_job_id", req.Job.PortalJobID),
	)

	return nil
}

// ensureLoggedIn fills the portal login form when the page presents one and
// credentials are configured. Pages without a login form pass through.
func (b *Browser) ensureLoggedIn(ctx context.Context) error {
	if b.email == "" {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := chromedp.WaitVisible(`input[type="email"], input[name*="username"]`).Do(probeCtx); err != nil {
		// No login form on this page.
		return nil
	}

	return chromedp.Tasks{
		chromedp.SendKeys(`input[type="email"], input[name*="username"]`, b.email),
		chromedp.SendKeys(`input[type="password"]`, b.password),
		chromedp.Click(`button[type="submit"]`, chromedp.NodeVisible),
		chromedp.Sleep(2 * time.Second),
	}.Do(ctx)
}

// clickApply tries the apply buttons the supported portals use.
func (b *Browser) clickApply(ctx context.Context) error {
	selectors := []string{
		`button#apply-button`,
		`button.apply-button`,
		`button[class*="quick-apply"]`,
		`a[class*="apply"]`,
	}

	for _, sel := range selectors {
		clickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := chromedp.Click(sel, chromedp.NodeVisible).Do(clickCtx)
		cancel()
		if err == nil {
			return nil
		}
	}

	return errors.New("no apply control found on page")
}
