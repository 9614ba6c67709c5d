// Package pagespeed provides a thin client for the PageSpeed Insights
// runPagespeed endpoint.
package pagespeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5"

// Client runs Lighthouse audits against the PageSpeed Insights API.
type Client interface {
	Run(ctx context.Context, targetURL string) (*RunResponse, error)
}

// RunResponse is the subset of the runPagespeed payload the pipeline
// reads.
type RunResponse struct {
	LighthouseResult *LighthouseResult `json:"lighthouseResult"`
}

// LighthouseResult holds category scores and audits.
type LighthouseResult struct {
	Categories Categories       `json:"categories"`
	Audits     map[string]Audit `json:"audits"`
}

// Categories holds the performance category.
type Categories struct {
	Performance *Category `json:"performance"`
}

// Category is a scored Lighthouse category; Score is 0-1 upstream.
type Category struct {
	Score *float64 `json:"score"`
}

// Audit is a single Lighthouse audit entry.
type Audit struct {
	DisplayValue string        `json:"displayValue,omitempty"`
	Details      *AuditDetails `json:"details,omitempty"`
}

// AuditDetails carries the metrics audit items.
type AuditDetails struct {
	Items []map[string]any `json:"items,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a PageSpeed Insights client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			// Lighthouse runs are slow; the API routinely takes >30s.
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Run(ctx context.Context, targetURL string) (*RunResponse, error) {
	q := url.Values{}
	q.Set("url", targetURL)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/runPagespeed?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pagespeed: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result RunResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "pagespeed: unmarshal response")
	}

	return &result, nil
}
