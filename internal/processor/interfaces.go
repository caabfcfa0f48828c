package processor

import (
	"context"

	"github.com/pauljones0/free-asset-notifier/internal/models"
	"github.com/pauljones0/free-asset-notifier/internal/notifier"
)

// PromotionSource abstracts the promotion page and asset detail lookups.
type PromotionSource interface {
	FetchPromotion(ctx context.Context) (*models.PromotionRecord, error)
	FetchPrice(ctx context.Context, pageURL string) float64
}

// Notifier abstracts the delivery back end.
type Notifier interface {
	Deliver(ctx context.Context, rec models.PromotionRecord, expiry string) (notifier.Result, error)
}

// LedgerStore abstracts the savings ledger file.
type LedgerStore interface {
	Load() models.Ledger
	Store(l models.Ledger) error
}
