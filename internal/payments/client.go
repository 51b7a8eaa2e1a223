// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package payments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// maxResponseBytes bounds how much of a processor response is read.
const maxResponseBytes = 4 << 20

// StatusError is a non-2xx processor response.
type StatusError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment processor returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("payment processor returned HTTP %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

func (e *StatusError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Balance is the account balance in the configured currency.
type Balance struct {
	Currency  string
	Available int64
	Pending   int64
}

// Client calls the processor's REST API.
type Client struct {
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	apiBase    string
	secretKey  string
	currency   string
	timeout    time.Duration
	successURL string
	cancelURL  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client. siteURL is the public base URL used for the
// checkout success and cancel redirects.
func NewClient(cfg config.PaymentsConfig, siteURL string, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	siteURL = strings.TrimRight(siteURL, "/")

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		cb:         newBreaker(breakerName),
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		secretKey:  cfg.SecretKey,
		currency:   currency,
		timeout:    timeout,
		successURL: siteURL + cfg.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  siteURL + cfg.CancelPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a secret key is set.
func (c *Client) Configured() bool { return c.secretKey != "" }

// Currency returns the lower-case ISO currency code used for checkouts.
func (c *Client) Currency() string { return c.currency }

// CreateCheckoutSession creates a hosted payment page for items.
func (c *Client) CreateCheckoutSession(ctx context.Context, items []models.CheckoutItem, customerEmail string) (*models.CheckoutSession, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	if customerEmail != "" {
		form.Set("customer_email", customerEmail)
	}
	for i, item := range items {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		form.Set(prefix+"[quantity]", strconv.FormatInt(qty, 10))
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.AmountCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
	}

	body, err := c.do(ctx, "create_checkout", http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	session := &models.CheckoutSession{
		ID:  gjson.GetBytes(body, "id").String(),
		URL: gjson.GetBytes(body, "url").String(),
	}
	if session.URL == "" {
		return nil, apperr.Upstream("payments", fmt.Errorf("checkout session %q has no url", session.ID))
	}
	return session, nil
}

// ListCharges returns the most recent charges, newest first.
func (c *Client) ListCharges(ctx context.Context, limit int) ([]models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, "list_charges", http.MethodGet, "/v1/charges?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return parseCharges(body), nil
}

// Balance returns the available and pending balance in the client currency.
func (c *Client) Balance(ctx context.Context) (*Balance, error) {
	body, err := c.do(ctx, "balance", http.MethodGet, "/v1/balance", nil)
	if err != nil {
		return nil, err
	}
	return parseBalance(body, c.currency), nil
}

func parseCharges(body []byte) []models.Payment {
	data := gjson.GetBytes(body, "data")
	payments := make([]models.Payment, 0, len(data.Array()))
	data.ForEach(func(_, ch gjson.Result) bool {
		email := ch.Get("billing_details.email").String()
		if email == "" {
			email = ch.Get("receipt_email").String()
		}
		payments = append(payments, models.Payment{
			ID:         ch.Get("id").String(),
			Amount:     ch.Get("amount").Int(),
			Currency:   ch.Get("currency").String(),
			Status:     ch.Get("status").String(),
			PayerEmail: email,
			PayerName:  ch.Get("billing_details.name").String(),
			CreatedAt:  time.Unix(ch.Get("created").Int(), 0).UTC(),
		})
		return true
	})
	return payments
}

func parseBalance(body []byte, currency string) *Balance {
	b := &Balance{Currency: currency}
	sum := func(path string) int64 {
		var total int64
		gjson.GetBytes(body, path).ForEach(func(_, v gjson.Result) bool {
			if strings.EqualFold(v.Get("currency").String(), currency) {
				total += v.Get("amount").Int()
			}
			return true
		})
		return total
	}
	b.Available = sum("available")
	b.Pending = sum("pending")
	return b
}

// do sends one request through the circuit breaker. Errors are wrapped as
// apperr.ErrUpstream, or apperr.ErrConfiguration when no key is set.
func (c *Client) do(ctx context.Context, operation, method, path string, form url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, apperr.Configuration("STRIPE_SECRET_KEY")
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, form)
	})
	recordBreakerResult(breakerName, err)
	metrics.RecordPaymentRequest(operation, time.Since(start), err)

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("operation", operation).Msg("Payment processor request failed")
		return nil, apperr.Upstream("payments", err)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader = http.NoBody
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Type:       gjson.GetBytes(body, "error.type").String(),
			Message:    gjson.GetBytes(body, "error.message").String(),
		}
	}
	return body, nil
}
