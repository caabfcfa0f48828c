package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pauljones0/free-asset-notifier/internal/config"
)

// contactPageSize is the largest page the list endpoint serves.
const contactPageSize = 500

// apiClient talks to the email-marketing vendor's REST API.
type apiClient struct {
	client *resty.Client
	listID string
}

func newAPIClient(cfg config.EmailAPIConfig) *apiClient {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("api-key", cfg.APIKey)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(30 * time.Second)

	return &apiClient{client: client, listID: cfg.ListID}
}

type listContactsResponse struct {
	Contacts []struct {
		Email            string `json:"email"`
		EmailBlacklisted bool   `json:"emailBlacklisted"`
	} `json:"contacts"`
	Count int `json:"count"`
}

// listContacts pages through the subscriber list and returns every mailable address.
func (a *apiClient) listContacts(ctx context.Context) ([]string, error) {
	var emails []string
	offset := 0
	for {
		var page listContactsResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetPathParam("listID", a.listID).
			SetQueryParams(map[string]string{
				"limit":  strconv.Itoa(contactPageSize),
				"offset": strconv.Itoa(offset),
			}).
			SetResult(&page).
			Get("/contacts/lists/{listID}/contacts")
		if err != nil {
			return nil, fmt.Errorf("failed to list contacts: %w", err)
		}
		if resp.IsError() {
			return nil, statusError("list contacts", resp)
		}

		for _, c := range page.Contacts {
			if c.Email != "" && !c.EmailBlacklisted {
				emails = append(emails, c.Email)
			}
		}

		offset += len(page.Contacts)
		if len(page.Contacts) < contactPageSize || (page.Count > 0 && offset >= page.Count) {
			break
		}
	}
	return emails, nil
}

func statusError(op string, resp *resty.Response) error {
	return fmt.Errorf("%s failed: status %s, body: %s", op, resp.Status(), resp.String())
}
