package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/pauljones0/free-asset-notifier/internal/config"
	"github.com/pauljones0/free-asset-notifier/internal/models"
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPClient mails the promotion directly from the sender's mailbox.
type SMTPClient struct {
	sender    string
	receivers []string
	dialer    mailSender
}

func NewSMTP(cfg config.SMTPConfig) *SMTPClient {
	return &SMTPClient{
		sender:    cfg.Sender,
		receivers: cfg.Receivers,
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.AppPassword),
	}
}

func (c *SMTPClient) Deliver(ctx context.Context, rec models.PromotionRecord, expiry string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m, err := c.buildMessage(rec, expiry)
	if err != nil {
		return Result{}, err
	}
	if err := c.dialer.DialAndSend(m); err != nil {
		return Result{}, fmt.Errorf("failed to send email: %w", err)
	}
	slog.Info("Email sent successfully", "recipients", len(c.receivers))
	return Result{Recipients: len(c.receivers)}, nil
}

func (c *SMTPClient) buildMessage(rec models.PromotionRecord, expiry string) (*gomail.Message, error) {
	plain, html, err := renderBodies(rec, expiry)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.sender)
	if len(c.receivers) == 1 {
		m.SetHeader("To", c.receivers[0])
	} else {
		// Keep subscribers from seeing each other's addresses.
		m.SetHeader("To", c.sender)
		m.SetHeader("Bcc", c.receivers...)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", html)
	return m, nil
}
