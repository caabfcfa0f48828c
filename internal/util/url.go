package util

import (
	"fmt"
	"net/url"
	"strings"
)

// trackingParams are stripped from scraped links before they are mailed out.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// ResolveURL resolves ref against origin. Absolute and protocol-relative
// references keep their own host. An empty ref resolves to an empty string.
func ResolveURL(origin, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	base, err := url.Parse(origin)
	if err != nil {
		return ref, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	parsedRef, err := url.Parse(ref)
	if err != nil {
		return ref, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return base.ResolveReference(parsedRef).String(), nil
}

// StripTracking removes utm_* query parameters from rawURL.
func StripTracking(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.RawQuery == "" {
		return rawURL
	}
	queryParams := parsedURL.Query()
	for _, param := range trackingParams {
		queryParams.Del(param)
	}
	parsedURL.RawQuery = queryParams.Encode()
	return parsedURL.String()
}
