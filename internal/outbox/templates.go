// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/tomtom215/launchpad/internal/models"
)

// PaymentConfirmation is the data for a payment receipt.
type PaymentConfirmation struct {
	EventID     string
	Email       string
	Name        string
	AmountCents int64
	Currency    string
	SiteName    string
}

// ContactNotification is the data for an admin new-message alert.
type ContactNotification struct {
	AdminEmail string
	Message    *models.ContactMessage
	SiteName   string
	Dashboard  string
}

const paymentText = `Hi {{.Name}},

Thank you for your purchase. We received your payment of {{.Amount}}.

Reference: {{.EventID}}

- The {{.SiteName}} team
`

const paymentHTML = `<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hi {{.Name}},</p>
<p>Thank you for your purchase. We received your payment of <strong>{{.Amount}}</strong>.</p>
<p style="color:#666;font-size:12px">Reference: {{.EventID}}</p>
<p>The {{.SiteName}} team</p>
</body></html>`

const contactText = `New contact message on {{.SiteName}}

From: {{.Message.Name}} <{{.Message.Email}}>

{{.Message.Message}}

Review it at {{.Dashboard}}
`

const contactHTML = `<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<h2>New contact message</h2>
<p><strong>{{.Message.Name}}</strong> &lt;{{.Message.Email}}&gt;</p>
<blockquote style="white-space:pre-wrap">{{.Message.Message}}</blockquote>
<p><a href="{{.Dashboard}}">Open the dashboard</a></p>
</body></html>`

var (
	paymentTextTmpl = texttemplate.Must(texttemplate.New("payment.txt").Parse(paymentText))
	paymentHTMLTmpl = htmltemplate.Must(htmltemplate.New("payment.html").Parse(paymentHTML))
	contactTextTmpl = texttemplate.Must(texttemplate.New("contact.txt").Parse(contactText))
	contactHTMLTmpl = htmltemplate.Must(htmltemplate.New("contact.html").Parse(contactHTML))
)

// PaymentJobID is the idempotency key for a payment event's receipt.
func PaymentJobID(eventID string) string { return "payment:" + eventID }

// ContactJobID is the idempotency key for a contact message notification.
func ContactJobID(contactID string) string { return "contact:" + contactID }

// NewPaymentConfirmation renders the receipt job for a paid checkout.
func NewPaymentConfirmation(p PaymentConfirmation) (*models.OutboxJob, error) {
	if p.Name == "" {
		p.Name = "there"
	}
	if p.SiteName == "" {
		p.SiteName = "Launchpad"
	}
	data := struct {
		PaymentConfirmation
		Amount string
	}{p, FormatAmount(p.AmountCents, p.Currency)}

	text, html, err := render(paymentTextTmpl, paymentHTMLTmpl, data)
	if err != nil {
		return nil, err
	}
	return &models.OutboxJob{
		ID:       PaymentJobID(p.EventID),
		Kind:     models.OutboxKindPaymentConfirmation,
		To:       p.Email,
		Subject:  "Payment confirmation",
		TextBody: text,
		HTMLBody: html,
	}, nil
}

// NewContactNotification renders the admin alert for a contact message.
func NewContactNotification(n ContactNotification) (*models.OutboxJob, error) {
	if n.SiteName == "" {
		n.SiteName = "Launchpad"
	}
	text, html, err := render(contactTextTmpl, contactHTMLTmpl, n)
	if err != nil {
		return nil, err
	}
	return &models.OutboxJob{
		ID:       ContactJobID(n.Message.ID),
		Kind:     models.OutboxKindContactNotification,
		To:       n.AdminEmail,
		Subject:  "New contact message from " + n.Message.Name,
		TextBody: text,
		HTMLBody: html,
	}, nil
}

// FormatAmount renders minor units as "12.34 USD".
func FormatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, strings.ToUpper(currency))
}

func render(text *texttemplate.Template, html *htmltemplate.Template, data any) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", text.Name(), err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", html.Name(), err)
	}
	return tb.String(), hb.String(), nil
}
