// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/outbox"
	"github.com/tomtom215/launchpad/internal/payments"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// maxWebhookBody bounds the raw body read before signature verification.
const maxWebhookBody = 1 << 20

// Webhook godoc
// @Summary      Payment processor webhook
// @Description  Verifies the Stripe-Signature header. Unverified deliveries get
// @Description  400 with no side effects; verified ones always get 200.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "t=<unix>,v1=<hex hmac>"
// @Success      200
// @Failure      400  {object}  APIResponse
// @Router       /webhooks [post]
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		rw.AppError(apperr.Validation("unreadable webhook body"))
		return
	}

	event, err := h.webhooks.Verify(payload, r.Header.Get(payments.SignatureHeader))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		if errors.Is(err, apperr.ErrConfiguration) {
			rw.AppError(err)
			return
		}
		log.Warn().Err(err).Msg("Webhook signature verification failed")
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "Webhook signature verification failed")
		return
	}

	result := h.handleEvent(r, event)
	metrics.WebhookEvents.WithLabelValues(event.Type, result).Inc()
	writeRawJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// handleEvent applies a verified event and returns the metrics result label.
// Errors are logged, never returned: the processor must see 200 once the
// signature is good, otherwise it redelivers forever.
func (h *Handler) handleEvent(r *http.Request, event *payments.Event) string {
	log := logging.Ctx(r.Context()).With().Str("event_id", event.ID).Str("event_type", event.Type).Logger()

	checkout, ok := event.CheckoutCompleted()
	if !ok {
		log.Debug().Msg("Ignoring webhook event")
		return "ignored"
	}
	if !checkout.Paid() {
		log.Info().Str("payment_status", checkout.PaymentStatus).Msg("Checkout completed without payment or email")
		return "ignored"
	}

	job, err := outbox.NewPaymentConfirmation(outbox.PaymentConfirmation{
		EventID:     event.ID,
		Email:       checkout.Email,
		Name:        checkout.Name,
		AmountCents: checkout.AmountTotal,
		Currency:    checkout.Currency,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render payment confirmation")
		return "error"
	}
	created, err := h.outbox.Enqueue(r.Context(), job)
	if err != nil {
		log.Error().Err(err).Msg("Failed to queue payment confirmation")
		return "error"
	}
	if !created {
		log.Info().Msg("Duplicate webhook delivery, confirmation already queued")
		return "duplicate"
	}

	h.ClearCache()
	h.broadcast(func(hub *ws.Hub) {
		hub.BroadcastPaymentCompleted(ws.PaymentCompletedData{
			EventID:  event.ID,
			Email:    checkout.Email,
			Name:     checkout.Name,
			Amount:   checkout.AmountTotal,
			Currency: checkout.Currency,
		})
	})
	log.Info().Str("email", logging.SanitizeEmail(checkout.Email)).Int64("amount", checkout.AmountTotal).Msg("Payment confirmation queued")
	return "processed"
}
