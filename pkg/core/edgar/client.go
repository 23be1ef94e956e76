// Package edgar discovers filings through the SEC EDGAR submissions API and
// retrieves filing documents.
// API documentation: https://www.sec.gov/developer
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	defaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
	defaultTickerMapURL   = "https://www.sec.gov/files/company_tickers.json"

	// SEC guidelines require a descriptive User-Agent on every request.
	defaultUserAgent = "FolioTracker/1.0 (contact@example.com)"
)

// TrackedForms are the form types the pipeline extracts schedules from.
var TrackedForms = []string{"10-K", "10-Q"}

// Client talks to SEC EDGAR. All requests pass through a rate limiter because
// the SEC enforces a requests-per-second ceiling per client.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	limiter        *rate.Limiter
	submissionsURL string
	archivesURL    string
	tickerMapURL   string
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// NewClient creates an EDGAR client with SEC-compliant defaults
// (10 requests per second, 30 second timeout).
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		userAgent:      defaultUserAgent,
		limiter:        rate.NewLimiter(rate.Limit(10), 10),
		submissionsURL: defaultSubmissionsURL,
		archivesURL:    defaultArchivesURL,
		tickerMapURL:   defaultTickerMapURL,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUserAgent sets the client-identification header value.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithRateLimit overrides the default requests-per-second ceiling.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

// WithBaseURLs redirects index, archive and ticker-mapping lookups, used by
// tests.
func WithBaseURLs(submissionsURL, archivesURL, tickerMapURL string) ClientOption {
	return func(c *Client) {
		c.submissionsURL = submissionsURL
		c.archivesURL = archivesURL
		c.tickerMapURL = tickerMapURL
	}
}

func (c *Client) get(ctx context.Context, url string, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.httpClient.Do(req)
}

// PadCIK zero-pads a CIK to the 10-digit width the submissions endpoint
// expects.
func PadCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

// DiscoverFilings returns the company's 10-K and 10-Q filings whose filing
// date falls within the lookback window, sorted chronologically (oldest
// first). The document URL is constructed from CIK, accession number with
// separators stripped, and the primary document filename.
func (c *Client) DiscoverFilings(ctx context.Context, cik string, yearsBack int) ([]Filing, error) {
	padded := PadCIK(cik)
	url := fmt.Sprintf(c.submissionsURL, padded)

	resp, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, &DiscoveryError{CIK: cik, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DiscoveryError{CIK: cik, Err: fmt.Errorf("submissions endpoint returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DiscoveryError{CIK: cik, Err: fmt.Errorf("reading response: %w", err)}
	}

	var subs submissionsResponse
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, &DiscoveryError{CIK: cik, Err: fmt.Errorf("parsing response: %w", err)}
	}

	cutoff := time.Now().UTC().AddDate(-yearsBack, 0, 0)
	tracked := make(map[string]bool, len(TrackedForms))
	for _, f := range TrackedForms {
		tracked[f] = true
	}

	recent := subs.Filings.Recent
	var filings []Filing
	for i := range recent.AccessionNumber {
		if i >= len(recent.Form) || !tracked[recent.Form[i]] {
			continue
		}
		filingDate, err := time.Parse("2006-01-02", at(recent.FilingDate, i))
		if err != nil || filingDate.Before(cutoff) {
			continue
		}
		reportDate, _ := time.Parse("2006-01-02", at(recent.ReportDate, i))

		accession := recent.AccessionNumber[i]
		primaryDoc := at(recent.PrimaryDocument, i)
		docURL := fmt.Sprintf(c.archivesURL,
			strings.TrimLeft(padded, "0"),
			strings.ReplaceAll(accession, "-", ""),
			primaryDoc,
		)

		filings = append(filings, Filing{
			AccessionNumber: accession,
			CIK:             cik,
			FormType:        recent.Form[i],
			FilingDate:      filingDate,
			ReportDate:      reportDate,
			PrimaryDocument: primaryDoc,
			DocumentURL:     docURL,
		})
	}

	sort.Slice(filings, func(i, j int) bool {
		return filings[i].FilingDate.Before(filings[j].FilingDate)
	})
	return filings, nil
}

// FetchDocument retrieves a filing document body by URL.
func (c *Client) FetchDocument(ctx context.Context, url string) (string, error) {
	resp, err := c.get(ctx, url, "")
	if err != nil {
		return "", &RetrievalError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RetrievalError{URL: url, Err: fmt.Errorf("document endpoint returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RetrievalError{URL: url, Err: fmt.Errorf("reading document body: %w", err)}
	}
	return string(body), nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// LookupCIKByTicker resolves a ticker through the SEC company_tickers.json
// mapping, used when seeding the tracked-company universe.
func (c *Client) LookupCIKByTicker(ctx context.Context, ticker string) (string, error) {
	resp, err := c.get(ctx, c.tickerMapURL, "application/json")
	if err != nil {
		return "", fmt.Errorf("fetching ticker mapping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticker mapping returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ticker mapping: %w", err)
	}

	// Response shape: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
	var mapping map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return "", fmt.Errorf("parsing ticker mapping: %w", err)
	}

	ticker = strings.ToUpper(ticker)
	for _, entry := range mapping {
		if entry.Ticker == ticker {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}
	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}
