package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/util"
)

type Scraper interface {
	FetchPromotion(ctx context.Context) (*models.PromotionRecord, error)
	FetchPrice(ctx context.Context, pageURL string) float64
}

type Client struct {
	fetcher   Fetcher
	config    *config.Config
	selectors SelectorConfig
}

func New(cfg *config.Config, selectors SelectorConfig) *Client {
	return NewWithFetcher(cfg, selectors, newFetcher(cfg))
}

// NewWithFetcher builds a Client around an explicit Fetcher.
func NewWithFetcher(cfg *config.Config, selectors SelectorConfig, f Fetcher) *Client {
	return &Client{
		fetcher:   f,
		config:    cfg,
		selectors: selectors,
	}
}

func newFetcher(cfg *config.Config) Fetcher {
	if cfg.FetchMode == config.FetchModeBrowser {
		return NewBrowserFetcher(cfg.HTTPTimeout, cfg.UserAgent, cfg.AllowedDomains)
	}
	return NewHTTPFetcher(cfg.HTTPTimeout, cfg.UserAgent, cfg.AllowedDomains)
}

// FetchPromotion fetches the promotion page and extracts this week's record.
// Transport failures are returned as errors. A page without the promotion
// block yields (nil, nil).
func (c *Client) FetchPromotion(ctx context.Context) (*models.PromotionRecord, error) {
	slog.Info("Fetching promotion page", "url", c.config.PromotionURL, "mode", c.config.FetchMode)
	doc, err := c.fetcher.Fetch(ctx, c.config.PromotionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch promotion page: %w", err)
	}

	rec, found := ExtractPromotion(doc, c.selectors.Promotion)
	if !found {
		return nil, nil
	}

	rec.ImageURL = c.absolute(rec.ImageURL, "image")
	rec.ClaimURL = util.StripTracking(c.absolute(rec.ClaimURL, "claim_link"))
	return rec, nil
}

// FetchPrice looks up the regular price on an asset detail page. Any failure
// yields 0, meaning the savings totals are left alone.
func (c *Client) FetchPrice(ctx context.Context, pageURL string) float64 {
	if pageURL == "" {
		return 0
	}
	doc, err := c.fetcher.Fetch(ctx, c.absolute(pageURL, "price_page"))
	if err != nil {
		slog.Error("Failed to fetch asset detail page", "url", pageURL, "error", err)
		return 0
	}
	return ExtractPrice(doc, c.selectors.Price.Price)
}

func (c *Client) absolute(ref, field string) string {
	resolved, err := util.ResolveURL(c.config.SiteOrigin, ref)
	if err != nil {
		slog.Warn("Could not resolve URL against site origin", "field", field, "value", ref, "error", err)
		return ref
	}
	return resolved
}
