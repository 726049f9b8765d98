package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

// Selectors tell the HTML source where job fields live on a portal's listing
// page. Portals redesign; keeping these as data means a selector change is a
// config change, not a code change.
type Selectors struct {
	Card        string
	Title       string
	Company     string
	Location    string
	Salary      string
	Experience  string
	Description string
	Link        string
}

// HTMLSource is a Source for portals without a JSON search API. It fetches
// the listing page and extracts job cards with goquery.
type HTMLSource struct {
	portal    string
	searchURL string
	selectors Selectors
	logger    *zap.Logger
	client    *http.Client
}

// NewHTMLSource creates an HTML scraping source. searchURL must contain the
// placeholders {keywords} and {location}.
func NewHTMLSource(portal, searchURL string, selectors Selectors, logger *zap.Logger) *HTMLSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTMLSource{
		portal:    portal,
		searchURL: searchURL,
		selectors: selectors,
		logger:    logger,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Portal reports which portal this source scrapes.
func (h *HTMLSource) Portal() string { return h.portal }

// Fetch loads one listing page and parses every job card on it.
func (h *HTMLSource) Fetch(ctx context.Context, q Query) ([]job.Record, error) {
	target := strings.ReplaceAll(h.searchURL, "{keywords}", url.QueryEscape(q.Keywords))
	target = strings.ReplaceAll(target, "{location}", url.QueryEscape(q.Location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s listing: %w", h.portal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s listing: %w", h.portal, err)
	}

	return h.parseCards(doc), nil
}

func (h *HTMLSource) parseCards(doc *goquery.Document) []job.Record {
	var records []job.Record

	doc.Find(h.selectors.Card).Each(func(_ int, card *goquery.Selection) {
		rec := job.Record{
			Portal:             h.portal,
			Title:              text(card, h.selectors.Title),
			Company:            text(card, h.selectors.Company),
			Location:           text(card, h.selectors.Location),
			SalaryRange:        text(card, h.selectors.Salary),
			ExperienceRequired: text(card, h.selectors.Experience),
			Description:        text(card, h.selectors.Description),
		}

		if href, ok := card.Find(h.selectors.Link).Attr("href"); ok {
			rec.URL = strings.TrimSpace(href)
		}

		// Listing pages rarely expose a stable id; the link is the most
		// stable identifier available, so it doubles as the natural key.
		rec.PortalJobID = jobIDFromURL(h.portal, rec.URL)

		if rec.Title == "" || rec.PortalJobID == "" {
			h.logger.Debug("dropping unparseable job card", zap.String("portal", h.portal))
			return
		}

		records = append(records, rec)
	})

	return records
}

func text(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// jobIDFromURL derives the portal job id from the last path segment of the
// job URL.
func jobIDFromURL(portal, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	return fmt.Sprintf("%s-%s", portal, segments[len(segments)-1])
}
