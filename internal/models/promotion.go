package models

import "errors"

var (
	// ErrPromotionNotFound is returned when the promotion block could not be fetched or located.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrIncompletePromotion is returned when a required promotion field is missing after extraction.
	ErrIncompletePromotion = errors.New("promotion data incomplete")
	// ErrNoContacts is returned by list-based notifiers when the subscriber list is empty.
	ErrNoContacts = errors.New("no subscriber contacts found")
)

// Fallback values substituted when a field's selector finds nothing.
const (
	FallbackName        = "Asset Name Not Found"
	FallbackImageURL    = ""
	FallbackDescription = "Asset Description Not Found"
	FallbackClaimURL    = ""
)

// PromotionRecord represents the structured information for this week's free asset.
type PromotionRecord struct {
	Name        string `json:"name" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required,url"`
	Description string `json:"description" validate:"required"`
	ClaimURL    string `json:"claimUrl" validate:"required,url"`

	// Best-effort; empty when no code-like token was found.
	PromoCode string `json:"promoCode,omitempty"`
}

// HasPromoCode reports whether a promo code was picked up from the page.
func (p PromotionRecord) HasPromoCode() bool {
	return p.PromoCode != ""
}
