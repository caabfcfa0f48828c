package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/models"
)

// TransactionalClient sends a single templated email with the whole list in BCC.
type TransactionalClient struct {
	api        *apiClient
	sender     string
	templateID int64
}

func NewTransactional(cfg config.EmailAPIConfig) *TransactionalClient {
	return &TransactionalClient{
		api:        newAPIClient(cfg),
		sender:     cfg.Sender,
		templateID: cfg.TemplateID,
	}
}

type emailAddress struct {
	Email string `json:"email"`
}

type transactionalRequest struct {
	Sender     emailAddress      `json:"sender"`
	To         []emailAddress    `json:"to"`
	Bcc        []emailAddress    `json:"bcc"`
	TemplateID int64             `json:"templateId"`
	Params     map[string]string `json:"params"`
}

type transactionalResponse struct {
	MessageID string `json:"messageId"`
}

func (c *TransactionalClient) Deliver(ctx context.Context, rec models.PromotionRecord, expiry string) (Result, error) {
	emails, err := c.api.listContacts(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(emails) == 0 {
		return Result{}, models.ErrNoContacts
	}

	params := templateFields(rec, expiry)
	params[fieldPromoCode] = rec.PromoCode

	req := transactionalRequest{
		Sender:     emailAddress{Email: c.sender},
		To:         []emailAddress{{Email: c.sender}},
		Bcc:        make([]emailAddress, 0, len(emails)),
		TemplateID: c.templateID,
		Params:     params,
	}
	for _, email := range emails {
		req.Bcc = append(req.Bcc, emailAddress{Email: email})
	}

	var out transactionalResponse
	resp, err := c.api.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/smtp/email")
	if err != nil {
		return Result{}, fmt.Errorf("failed to send templated email: %w", err)
	}
	if resp.IsError() {
		return Result{}, statusError("send templated email", resp)
	}

	slog.Info("Templated email sent", "message_id", out.MessageID, "recipients", len(emails))
	return Result{Recipients: len(emails)}, nil
}
