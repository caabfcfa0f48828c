package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves and parses an HTML page.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages with a plain HTTP GET. One attempt per call.
type HTTPFetcher struct {
	httpClient     *http.Client
	userAgent      string
	allowedDomains []string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string, allowedDomains []string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent:      userAgent,
		allowedDomains: allowedDomains,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*goquery.Document, error) {
	if err := checkURL(urlStr, f.allowedDomains); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %s: %w", urlStr, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", urlStr, err)
	}
	return doc, nil
}

// checkURL enforces http(s) and, when allowedDomains is non-empty, a hostname allowlist.
func checkURL(urlStr string, allowedDomains []string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: only http and https allowed", parsedURL.Scheme)
	}

	if len(allowedDomains) == 0 {
		return nil
	}
	hostname := parsedURL.Hostname()
	for _, domain := range allowedDomains {
		if hostname == domain {
			return nil
		}
	}
	return fmt.Errorf("security violation: URL hostname %s is not in allowlist", hostname)
}
