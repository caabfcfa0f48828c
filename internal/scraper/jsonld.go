package scraper

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pauljones0/free-asset-notifier/internal/util"
)

// jsonLDNode is the subset of a schema.org node needed to find a product price.
type jsonLDNode struct {
	Type   jsonLDTypes  `json:"@type"`
	Offers jsonLDOffers `json:"offers"`
	Graph  []jsonLDNode `json:"@graph"`
}

type jsonLDOffer struct {
	Price         jsonLDNumber `json:"price"`
	LowPrice      jsonLDNumber `json:"lowPrice"`
	PriceCurrency string       `json:"priceCurrency"`
}

// jsonLDTypes accepts "@type" as either a string or a list of strings.
type jsonLDTypes []string

func (t *jsonLDTypes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = jsonLDTypes{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

func (t jsonLDTypes) has(name string) bool {
	for _, v := range t {
		if v == name {
			return true
		}
	}
	return false
}

// jsonLDOffers accepts "offers" as a single object or a list.
type jsonLDOffers []jsonLDOffer

func (o *jsonLDOffers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var many []jsonLDOffer
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var single jsonLDOffer
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*o = jsonLDOffers{single}
	return nil
}

// jsonLDNumber accepts a price written as a JSON number or a string.
type jsonLDNumber string

func (n *jsonLDNumber) UnmarshalJSON(data []byte) error {
	*n = jsonLDNumber(strings.Trim(string(data), `"`))
	return nil
}

// jsonLDPrice returns the first positive Product offer price in the page's
// JSON-LD blocks, or 0.
func jsonLDPrice(doc *goquery.Document) float64 {
	var price float64
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, node := range parseJSONLD(s.Text()) {
			if p := productPrice(node); p > 0 {
				price = p
				return false
			}
		}
		return true
	})
	return price
}

func parseJSONLD(raw string) []jsonLDNode {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil
	}
	if data[0] == '[' {
		var nodes []jsonLDNode
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil
		}
		return nodes
	}
	var node jsonLDNode
	if err := json.Unmarshal(data, &node); err != nil {
		return nil
	}
	return []jsonLDNode{node}
}

func productPrice(node jsonLDNode) float64 {
	if node.Type.has("Product") {
		for _, offer := range node.Offers {
			if p := util.ParsePrice(string(offer.Price)); p > 0 {
				return p
			}
			if p := util.ParsePrice(string(offer.LowPrice)); p > 0 {
				return p
			}
		}
	}
	for _, child := range node.Graph {
		if p := productPrice(child); p > 0 {
			return p
		}
	}
	return 0
}
