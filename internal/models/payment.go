// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import "time"

// Payment is a charge read live from the payment processor. It is never
// persisted.
type Payment struct {
	ID         string    `json:"id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	PayerEmail string    `json:"email"`
	PayerName  string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaymentList is the /api/payments payload. Fallback is true when the
// processor was unreachable and placeholder data was substituted.
type PaymentList struct {
	Payments []Payment `json:"payments"`
	Fallback bool      `json:"fallback"`
}

// Stats is the dashboard summary served by /api/stats.
type Stats struct {
	TotalRevenue    int64   `json:"totalRevenue"`
	Currency        string  `json:"currency"`
	PaymentCount    int     `json:"paymentCount"`
	SuccessfulCount int     `json:"successfulCount"`
	AvailableCents  int64   `json:"availableBalance"`
	PendingCents    int64   `json:"pendingBalance"`
	Users           int64   `json:"users"`
	Posts           int64   `json:"posts"`
	NewMessages     int64   `json:"newMessages"`
	ConversionRate  float64 `json:"conversionRate"`
	Fallback        bool    `json:"fallback"`
}

// CheckoutSession is the result of creating a hosted checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount"`
	Quantity    int64  `json:"quantity"`
}
