package scraper

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
	// Max items per search page most portal APIs accept.
	perPage = "100"

	defaultUserAgent = "careercopilot/1.0 (aftab.work86@gmail.com)"
)

// Client is a Source backed by a portal's JSON search API. It pages through
// the full result set of one query.
type Client struct {
	portal     string
	baseURL    string
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

// NewClient creates a portal API client. token may be empty for portals with
// open search endpoints.
func NewClient(portal, baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		portal:  portal,
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: defaultUserAgent,
	}
}

// Portal reports which portal this client talks to.
func (c *Client) Portal() string { return c.portal }

// Fetch runs one search and returns every page of results as job records.
func (c *Client) Fetch(ctx context.Context, q Query) ([]job.Record, error) {
	params := url.Values{}
	params.Set("keywords", q.Keywords)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("per_page", perPage)

	items, err := c.getItems(ctx, c.baseURL+"/jobs", params)
	if err != nil {
		return nil, err
	}

	var records []job.Record
	cfg := &mapstructure.DecoderConfig{
		Result:  &records,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode %s items: %w", c.portal, err)
	}

	for i := range records {
		records[i].Portal = c.portal
	}

	return records, nil
}

type itemResponse struct {
	Items   []any
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

// getItems makes a GET request to the portal API and returns items from all
// pages.
func (c *Client) getItems(ctx context.Context, endpoint string, q url.Values) ([]any, error) {
	var items []any

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.URL.RawQuery = q.Encode()

	response, err := c.requestPage(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got search response",
		zap.String("portal", c.portal),
		zap.Int("found", response.Found),
		zap.Int("pages", response.Pages),
	)

	items = append(items, response.Items...)

	for response.Page < (response.Pages - 1) {
		response, err = c.requestPage(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (c *Client) requestPage(req *http.Request) (*itemResponse, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return parseItemResponse(resp)
}

func parseItemResponse(resp *http.Response) (*itemResponse, error) {
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.ReadCloser
	var err error
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		body, err = gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		defer resp.Body.Close()
	default:
		body = resp.Body
	}
	defer body.Close()

	var response *itemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}

	return response, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
}

// addPage adds the page parameter to the request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
