package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome before parsing them. The
// store front builds the promotion block client-side, so a plain GET can
// come back without it.
type BrowserFetcher struct {
	timeout        time.Duration
	settle         time.Duration
	userAgent      string
	allowedDomains []string
}

func NewBrowserFetcher(timeout time.Duration, userAgent string, allowedDomains []string) *BrowserFetcher {
	return &BrowserFetcher{
		timeout:        timeout,
		settle:         2 * time.Second,
		userAgent:      userAgent,
		allowedDomains: allowedDomains,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (*goquery.Document, error) {
	if err := checkURL(urlStr, f.allowedDomains); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	var outerHTML string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render URL %s: %w", urlStr, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outerHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML from %s: %w", urlStr, err)
	}
	return doc, nil
}
