package scraper

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/util"
)

// promoCodeRegex matches a code-like token: 5+ uppercase letters, digits or hyphens.
var promoCodeRegex = regexp.MustCompile(`\b[A-Z0-9-]{5,}\b`)

// ExtractPromotion pulls the promotion fields out of doc. It returns false when
// no element matches the root selector; the record is nil in that case.
// URL fields are returned as found on the page, unresolved.
func ExtractPromotion(doc *goquery.Document, sel PromotionSelectors) (*models.PromotionRecord, bool) {
	roots := doc.Find(sel.Root)
	if roots.Length() == 0 {
		slog.Warn("Promotion block not found", "selector", sel.Root)
		return nil, false
	}
	if roots.Length() > 1 {
		slog.Debug("Multiple promotion blocks matched, using the first", "selector", sel.Root, "count", roots.Length())
	}
	root := roots.First()

	var missing []string
	textField := func(selector, field, fallback string) string {
		s := root.Find(selector).First()
		if s.Length() == 0 {
			missing = append(missing, field)
			return fallback
		}
		return strings.TrimSpace(s.Text())
	}
	attrField := func(selector, field, fallback string, attrs ...string) string {
		s := root.Find(selector).First()
		if s.Length() == 0 {
			missing = append(missing, field)
			return fallback
		}
		for _, attr := range attrs {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		missing = append(missing, field)
		return fallback
	}

	rec := &models.PromotionRecord{
		Name:        textField(sel.Name, "name", models.FallbackName),
		ImageURL:    attrField(sel.Image, "image", models.FallbackImageURL, "src", "data-src"),
		Description: textField(sel.Description, "description", models.FallbackDescription),
		ClaimURL:    attrField(sel.ClaimLink, "claim_link", models.FallbackClaimURL, "href"),
		PromoCode:   ExtractPromoCode(root, sel.Name),
	}

	if len(missing) > 0 {
		slog.Warn("Promotion fields not found, using fallbacks", "fields", strings.Join(missing, ","), "name", rec.Name)
	}
	return rec, true
}

// ExtractPromoCode scans every text node under root, in document order, and
// returns the first code-like token. Elements matching exclude (the asset name
// heading) are skipped so a capitalised name is not taken for a code. It
// returns "" when nothing matches.
func ExtractPromoCode(root *goquery.Selection, exclude string) string {
	skip := make(map[*html.Node]bool)
	if exclude != "" {
		for _, n := range root.Find(exclude).Nodes {
			skip[n] = true
		}
	}

	var code string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if skip[n] {
			return false
		}
		if n.Type == html.TextNode {
			if m := promoCodeRegex.FindString(n.Data); m != "" {
				code = m
				return true
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	for _, n := range root.Nodes {
		if walk(n) {
			break
		}
	}
	return code
}

// ExtractPrice reads the current price from the element matching selector.
// When the element holds both an original and a discounted price, the last
// non-blank child node wins. Falls back to JSON-LD product offers; returns 0
// when no price can be determined.
func ExtractPrice(doc *goquery.Document, selector string) float64 {
	if selector != "" {
		el := doc.Find(selector).First()
		if el.Length() > 0 {
			if price := util.ParsePrice(lastChildText(el)); price > 0 {
				return price
			}
			slog.Warn("Price element found but held no amount", "selector", selector, "text", strings.TrimSpace(el.Text()))
		} else {
			slog.Warn("Price element not found", "selector", selector)
		}
	}

	if price := jsonLDPrice(doc); price > 0 {
		slog.Info("Using JSON-LD offer price", "price", price)
		return price
	}
	return 0
}

func lastChildText(el *goquery.Selection) string {
	contents := el.Contents()
	for i := contents.Length() - 1; i >= 0; i-- {
		if text := strings.TrimSpace(contents.Eq(i).Text()); text != "" {
			return text
		}
	}
	return ""
}
