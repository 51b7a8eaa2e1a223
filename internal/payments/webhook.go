// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tomtom215/launchpad/internal/apperr"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance is the maximum accepted age of a signed webhook.
const DefaultTolerance = 300 * time.Second

// Event types handled by the webhook consumer.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	PaymentStatusPaid      = "paid"
)

var (
	// ErrMissingSignature means the header is absent or has no v1 entries.
	ErrMissingSignature = fmt.Errorf("%w: missing webhook signature", apperr.ErrValidation)

	// ErrInvalidSignature means no v1 signature matched the payload.
	ErrInvalidSignature = fmt.Errorf("%w: invalid webhook signature", apperr.ErrValidation)

	// ErrTimestampOutOfRange means the signed timestamp is outside the tolerance.
	ErrTimestampOutOfRange = fmt.Errorf("%w: webhook timestamp outside tolerance", apperr.ErrValidation)

	// ErrMalformedEvent means the verified payload is not an event envelope.
	ErrMalformedEvent = fmt.Errorf("%w: malformed webhook event", apperr.ErrValidation)
)

// Event is a verified processor event. Object is the raw data.object.
type Event struct {
	ID      string
	Type    string
	Created time.Time
	Object  gjson.Result
}

// CheckoutCompleted holds the fields of a completed checkout session.
type CheckoutCompleted struct {
	SessionID     string
	PaymentStatus string
	Email         string
	Name          string
	AmountTotal   int64
	Currency      string
}

// Paid reports whether the session was paid and has a customer email.
func (c *CheckoutCompleted) Paid() bool {
	return c.PaymentStatus == PaymentStatusPaid && c.Email != ""
}

// CheckoutCompleted extracts the checkout session from a
// checkout.session.completed event.
func (e *Event) CheckoutCompleted() (*CheckoutCompleted, bool) {
	if e.Type != EventCheckoutCompleted {
		return nil, false
	}
	o := e.Object
	email := o.Get("customer_details.email").String()
	if email == "" {
		email = o.Get("customer_email").String()
	}
	return &CheckoutCompleted{
		SessionID:     o.Get("id").String(),
		PaymentStatus: o.Get("payment_status").String(),
		Email:         email,
		Name:          o.Get("customer_details.name").String(),
		AmountTotal:   o.Get("amount_total").Int(),
		Currency:      o.Get("currency").String(),
	}, true
}

// WebhookVerifier authenticates webhook deliveries.
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewWebhookVerifier returns a verifier for secret. A non-positive tolerance
// selects DefaultTolerance.
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &WebhookVerifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Verify checks header against payload and parses the event. Nothing is
// parsed from an unverified payload.
func (v *WebhookVerifier) Verify(payload []byte, header string) (*Event, error) {
	if len(v.secret) == 0 {
		return nil, apperr.Configuration("STRIPE_WEBHOOK_SECRET")
	}

	ts, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return nil, ErrTimestampOutOfRange
	}

	expected := computeSignature(v.secret, ts, payload)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrInvalidSignature
	}

	return parseEvent(payload)
}

// SignPayload builds a header value for payload signed at ts.
func SignPayload(secret string, ts time.Time, payload []byte) string {
	sig := computeSignature([]byte(secret), ts.Unix(), payload)
	return "t=" + strconv.FormatInt(ts.Unix(), 10) + ",v1=" + hex.EncodeToString(sig)
}

func computeSignature(secret []byte, ts int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// parseSignatureHeader reads "t=<unix>,v1=<hex>[,v1=<hex>...]". Other
// schemes (v0) are ignored.
func parseSignatureHeader(header string) (int64, [][]byte, error) {
	if header == "" {
		return 0, nil, ErrMissingSignature
	}
	var (
		ts     int64
		haveTS bool
		sigs   [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			ts, haveTS = n, true
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			sigs = append(sigs, sig)
		}
	}
	if !haveTS || len(sigs) == 0 {
		return 0, nil, ErrMissingSignature
	}
	return ts, sigs, nil
}

func parseEvent(payload []byte) (*Event, error) {
	if !gjson.ValidBytes(payload) {
		return nil, ErrMalformedEvent
	}
	fields := gjson.GetManyBytes(payload, "id", "type", "created", "data.object")
	if fields[0].String() == "" || fields[1].String() == "" {
		return nil, ErrMalformedEvent
	}
	return &Event{
		ID:      fields[0].String(),
		Type:    fields[1].String(),
		Created: time.Unix(fields[2].Int(), 0).UTC(),
		Object:  fields[3],
	}, nil
}
