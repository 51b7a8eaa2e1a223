// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/cache"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/payments"
)

const (
	cacheKeyPayments = "payments:list"
	cacheKeyStats    = "payments:stats"
	chargesPageSize  = 100
)

// Checkout godoc
// @Summary      Create a hosted checkout session
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      CheckoutRequest  true  "Line items"
// @Success      200   {object}  APIResponse{data=models.CheckoutSession}
// @Failure      400   {object}  APIResponse
// @Failure      500   {object}  APIResponse
// @Router       /checkout [post]
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req CheckoutRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	items := make([]models.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		items[i] = models.CheckoutItem{Name: it.Name, Description: it.Description, AmountCents: it.Amount, Quantity: qty}
	}

	session, err := h.payments.CreateCheckoutSession(r.Context(), items, req.Email)
	if err != nil {
		if apperr.IsUpstream(err) {
			rw.ExternalServiceError("payments", err)
			return
		}
		rw.AppError(err)
		return
	}
	rw.Success(session)
}

// Payments godoc
// @Summary      Recent payments
// @Description  Served from the processor; on any upstream failure placeholder
// @Description  data is returned with fallback=true.
// @Tags         payments
// @Produce      json
// @Success      200  {object}  APIResponse{data=models.PaymentList}
// @Failure      401  {object}  APIResponse
// @Router       /payments [get]
func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	list, err := cache.GetOrLoad(h.cache, cacheKeyPayments, func() (models.PaymentList, error) {
		charges, err := h.payments.ListCharges(r.Context(), chargesPageSize)
		if err != nil {
			return models.PaymentList{}, err
		}
		return models.PaymentList{Payments: charges}, nil
	})
	if err != nil {
		h.logFallback(r.Context(), "payments", err)
		list = payments.FallbackPayments(h.now())
	}
	NewResponseWriter(w, r).Success(list)
}

// Stats godoc
// @Summary      Dashboard statistics
// @Description  Revenue from the processor plus user, post and message counts.
// @Description  Processor failures fall back to placeholder figures.
// @Tags         payments
// @Produce      json
// @Success      200  {object}  APIResponse{data=models.Stats}
// @Failure      401  {object}  APIResponse
// @Router       /stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := cache.GetOrLoad(h.cache, cacheKeyStats, func() (models.Stats, error) {
		charges, err := h.payments.ListCharges(ctx, chargesPageSize)
		if err != nil {
			return models.Stats{}, err
		}
		balance, err := h.payments.Balance(ctx)
		if err != nil {
			return models.Stats{}, err
		}
		return payments.Summarize(charges, balance), nil
	})
	if err != nil {
		h.logFallback(ctx, "stats", err)
		stats = payments.FallbackStats(h.now())
	}

	if err := h.fillStoreCounts(ctx, &stats); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Store counts unavailable for stats")
		stats.Fallback = true
	}
	NewResponseWriter(w, r).Success(stats)
}

func (h *Handler) fillStoreCounts(ctx context.Context, s *models.Stats) error {
	users, err := h.store.Users().Count(ctx)
	if err != nil {
		return err
	}
	posts, err := h.store.Posts().Count(ctx)
	if err != nil {
		return err
	}
	msgs, err := h.store.Contacts().CountByStatus(ctx, models.ContactNew)
	if err != nil {
		return err
	}
	s.Users, s.Posts, s.NewMessages = users, posts, msgs
	return nil
}

func (h *Handler) logFallback(ctx context.Context, endpoint string, err error) {
	metrics.PaymentFallbacks.WithLabelValues(endpoint).Inc()
	ev := logging.Ctx(ctx).Warn()
	if errors.Is(err, apperr.ErrConfiguration) {
		ev = logging.Ctx(ctx).Debug()
	}
	ev.Err(err).Str("endpoint", endpoint).Msg("Payment processor unavailable, serving placeholder data")
}
