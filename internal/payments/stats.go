// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package payments

import (
	"math"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// StatusSucceeded is the charge status counted as revenue.
const StatusSucceeded = "succeeded"

// Summarize fills the payment part of the dashboard stats. Store counts are
// left for the caller.
func Summarize(charges []models.Payment, balance *Balance) models.Stats {
	var s models.Stats
	s.PaymentCount = len(charges)
	for _, ch := range charges {
		if ch.Status != StatusSucceeded {
			continue
		}
		s.SuccessfulCount++
		s.TotalRevenue += ch.Amount
	}
	if s.PaymentCount > 0 {
		rate := float64(s.SuccessfulCount) / float64(s.PaymentCount) * 100
		s.ConversionRate = math.Round(rate*10) / 10
	}
	if balance != nil {
		s.Currency = balance.Currency
		s.AvailableCents = balance.Available
		s.PendingCents = balance.Pending
	}
	return s
}

// FallbackPayments is the placeholder list shown while the processor is
// unreachable. Timestamps are relative to now.
func FallbackPayments(now time.Time) models.PaymentList {
	day := 24 * time.Hour
	return models.PaymentList{
		Fallback: true,
		Payments: []models.Payment{
			{ID: "demo_payment_1", Amount: 4900, Currency: "usd", Status: StatusSucceeded, PayerEmail: "customer1@example.com", PayerName: "Sample Customer", CreatedAt: now.Add(-1 * day).UTC()},
			{ID: "demo_payment_2", Amount: 9900, Currency: "usd", Status: StatusSucceeded, PayerEmail: "customer2@example.com", PayerName: "Sample Customer", CreatedAt: now.Add(-2 * day).UTC()},
			{ID: "demo_payment_3", Amount: 2900, Currency: "usd", Status: "pending", PayerEmail: "customer3@example.com", PayerName: "Sample Customer", CreatedAt: now.Add(-3 * day).UTC()},
		},
	}
}

// FallbackStats is the placeholder summary matching FallbackPayments.
func FallbackStats(now time.Time) models.Stats {
	s := Summarize(FallbackPayments(now).Payments, &Balance{Currency: "usd", Available: 14800, Pending: 2900})
	s.Fallback = true
	return s
}
