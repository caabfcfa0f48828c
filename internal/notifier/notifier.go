package notifier

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/pauljones0/free-asset-notifier/internal/models"
)

// Notifier delivers one promotion to subscribers.
type Notifier interface {
	Deliver(ctx context.Context, rec models.PromotionRecord, expiry string) (Result, error)
}

// Result describes a completed delivery.
type Result struct {
	Recipients int
}

const subject = "Unity Publisher of the Week - Free Asset!"

// Custom field names shared by the list and template back ends.
const (
	fieldName        = "ASSET_NAME"
	fieldImage       = "ASSET_IMAGE"
	fieldDescription = "ASSET_DESCRIPTION"
	fieldURL         = "ASSET_URL"
	fieldExpiry      = "ASSET_EXPIRY"
	fieldPromoCode   = "PROMO_CODE"
)

type messageData struct {
	models.PromotionRecord
	Expiry string
}

var textBody = template.Must(template.New("text").Parse(`Hi there!

This week's free asset from the Unity Asset Store is:

{{.Name}}

{{.Description}}
{{if .PromoCode}}
Promo code: {{.PromoCode}}
{{end}}
Claim it here: {{.ClaimURL}}

Hurry, the offer ends {{.Expiry}}.

Enjoy!
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif;">
<h2>This week's free asset</h2>
<p><a href="{{.ClaimURL}}"><img src="{{.ImageURL}}" alt="{{.Name}}" style="max-width: 100%;"></a></p>
<h3>{{.Name}}</h3>
<p>{{.Description}}</p>
{{if .PromoCode}}<p>Promo code: <strong>{{.PromoCode}}</strong></p>{{end}}
<p><a href="{{.ClaimURL}}">Claim it on the Asset Store</a></p>
<p>Hurry, the offer ends <strong>{{.Expiry}}</strong>.</p>
</body></html>
`))

func renderBodies(rec models.PromotionRecord, expiry string) (plain, html string, err error) {
	data := messageData{PromotionRecord: rec, Expiry: expiry}

	var pb bytes.Buffer
	if err := textBody.Execute(&pb, data); err != nil {
		return "", "", fmt.Errorf("failed to render text body: %w", err)
	}
	var hb bytes.Buffer
	if err := htmlBody.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to render html body: %w", err)
	}
	return pb.String(), hb.String(), nil
}

// templateFields are the attribute values pushed to list contacts and
// template parameters.
func templateFields(rec models.PromotionRecord, expiry string) map[string]string {
	return map[string]string{
		fieldName:        rec.Name,
		fieldImage:       rec.ImageURL,
		fieldDescription: rec.Description,
		fieldURL:         rec.ClaimURL,
		fieldExpiry:      expiry,
	}
}

// Preview renders the plain-text message for dry runs.
func Preview(rec models.PromotionRecord, expiry string) (string, error) {
	plain, _, err := renderBodies(rec, expiry)
	return plain, err
}
