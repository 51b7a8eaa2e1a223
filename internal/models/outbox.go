// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import "time"

// OutboxStatus is the delivery state of an outbox job.
type OutboxStatus string

// Outbox job states. pending -> sending -> sent | pending (retry) | failed.
const (
	OutboxPending OutboxStatus = "pending"
	OutboxSending OutboxStatus = "sending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// Valid reports whether s is a known status.
func (s OutboxStatus) Valid() bool {
	switch s {
	case OutboxPending, OutboxSending, OutboxSent, OutboxFailed:
		return true
	}
	return false
}

// Terminal reports whether no further delivery will be attempted.
func (s OutboxStatus) Terminal() bool {
	return s == OutboxSent || s == OutboxFailed
}

// Outbox job kinds.
const (
	OutboxKindPaymentConfirmation = "payment_confirmation"
	OutboxKindContactNotification = "contact_notification"
)

// OutboxJob is one email queued for delivery. ID is the idempotency key:
// enqueueing an existing ID is a no-op.
type OutboxJob struct {
	ID            string       `json:"id"`
	Kind          string       `json:"kind"`
	To            string       `json:"to"`
	Subject       string       `json:"subject"`
	TextBody      string       `json:"textBody,omitempty"`
	HTMLBody      string       `json:"htmlBody,omitempty"`
	Status        OutboxStatus `json:"status"`
	Attempts      int          `json:"attempts"`
	LastError     string       `json:"lastError,omitempty"`
	NextAttemptAt time.Time    `json:"nextAttemptAt"`
	SentAt        *time.Time   `json:"sentAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
