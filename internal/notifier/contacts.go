package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/models"
)

// ContactsClient writes the promotion into custom fields on every list
// contact. The vendor's automation sends the actual email when those fields change.
type ContactsClient struct {
	api         *apiClient
	batchSize   int
	rateLimiter *rate.Limiter
}

func NewContacts(cfg config.EmailAPIConfig) *ContactsClient {
	return &ContactsClient{
		api:         newAPIClient(cfg),
		batchSize:   cfg.BatchSize,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
	}
}

type contactUpdate struct {
	Email      string            `json:"email"`
	Attributes map[string]string `json:"attributes"`
}

type batchUpdateRequest struct {
	Contacts []contactUpdate `json:"contacts"`
}

func (c *ContactsClient) Deliver(ctx context.Context, rec models.PromotionRecord, expiry string) (Result, error) {
	emails, err := c.api.listContacts(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(emails) == 0 {
		return Result{}, models.ErrNoContacts
	}
	slog.Info("Updating contact fields", "contacts", len(emails), "batch_size", c.batchSize)

	attrs := templateFields(rec, expiry)
	updated := 0
	for start := 0; start < len(emails); start += c.batchSize {
		end := min(start+c.batchSize, len(emails))

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return Result{Recipients: updated}, err
		}

		req := batchUpdateRequest{Contacts: make([]contactUpdate, 0, end-start)}
		for _, email := range emails[start:end] {
			req.Contacts = append(req.Contacts, contactUpdate{Email: email, Attributes: attrs})
		}

		resp, err := c.api.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post("/contacts/batch")
		if err != nil {
			return Result{Recipients: updated}, fmt.Errorf("failed to update contacts %d-%d: %w", start, end, err)
		}
		if resp.IsError() {
			return Result{Recipients: updated}, statusError(fmt.Sprintf("update contacts %d-%d", start, end), resp)
		}
		updated += end - start
	}

	slog.Info("Contact fields updated", "contacts", updated)
	return Result{Recipients: updated}, nil
}
