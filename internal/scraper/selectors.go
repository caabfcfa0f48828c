package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

type SelectorConfig struct {
	Promotion PromotionSelectors `json:"promotion"`
	Price     PriceSelectors     `json:"price"`
}

type PromotionSelectors struct {
	Root        string `json:"root"`        // e.g., "[data-type='FreeAsset']"
	Name        string `json:"name"`        // e.g., "h2"
	Image       string `json:"image"`       // read via src
	Description string `json:"description"` // e.g., "p"
	ClaimLink   string `json:"claim_link"`  // read via href
}

type PriceSelectors struct {
	Price string `json:"price"` // container whose last child holds the current price
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// Fields left empty are filled from DefaultSelectors.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}
	if config.Promotion.Root == "" {
		return SelectorConfig{}, fmt.Errorf("selector config is missing promotion.root")
	}

	return config.withDefaults(), nil
}

func (c SelectorConfig) withDefaults() SelectorConfig {
	d := DefaultSelectors()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Promotion.Name, d.Promotion.Name)
	fill(&c.Promotion.Image, d.Promotion.Image)
	fill(&c.Promotion.Description, d.Promotion.Description)
	fill(&c.Promotion.ClaimLink, d.Promotion.ClaimLink)
	fill(&c.Price.Price, d.Price.Price)
	return c
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
// The embedded selectors.json should be preferred.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Promotion: PromotionSelectors{
			Root:        "[data-type='FreeAsset']",
			Name:        "h2",
			Image:       "img",
			Description: "p",
			ClaimLink:   "a[href]",
		},
		Price: PriceSelectors{
			Price: "[data-test='price']",
		},
	}
}
