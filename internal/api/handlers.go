// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/cache"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/payments"
	"github.com/tomtom215/launchpad/internal/store"
	"github.com/tomtom215/launchpad/internal/upload"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// OutboxQueue is the part of the outbox the handlers use.
type OutboxQueue interface {
	Enqueue(ctx context.Context, job *models.OutboxJob) (bool, error)
	List(ctx context.Context, status models.OutboxStatus, limit int) ([]models.OutboxJob, error)
	CountByStatus(ctx context.Context) (map[models.OutboxStatus]int, error)
}

// PaymentProcessor is the part of the payments client the handlers use.
type PaymentProcessor interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, items []models.CheckoutItem, customerEmail string) (*models.CheckoutSession, error)
	ListCharges(ctx context.Context, limit int) ([]models.Payment, error)
	Balance(ctx context.Context) (*payments.Balance, error)
}

// Deps are the collaborators NewHandler wires together. OIDC and Hub may be
// nil; every other field is required.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Sessions *auth.SessionIssuer
	Admin    *auth.AdminGate
	Verifier *auth.CredentialVerifier
	Lockout  *auth.LockoutManager
	OIDC     *auth.OIDCProvider
	Payments PaymentProcessor
	Webhooks *payments.WebhookVerifier
	Outbox   OutboxQueue
	Uploader *upload.Uploader
	Hub      *ws.Hub
	Cache    *cache.Cache
}

// Handler serves the JSON API.
//
// Handler methods are split across files by resource:
//   - handlers_auth.go: sign-up, sign-in, sessions, OIDC, admin gate
//   - handlers_contact.go: contact form and inbox
//   - handlers_posts.go: blog posts
//   - handlers_payments.go: checkout, payments, stats
//   - handlers_webhook.go: payment processor webhook
//   - handlers_admin.go: users, outbox, live events
//   - handlers_health.go: liveness
type Handler struct {
	cfg       *config.Config
	store     store.Store
	sessions  *auth.SessionIssuer
	admin     *auth.AdminGate
	verifier  *auth.CredentialVerifier
	lockout   *auth.LockoutManager
	oidc      *auth.OIDCProvider
	payments  PaymentProcessor
	webhooks  *payments.WebhookVerifier
	outbox    OutboxQueue
	uploader  *upload.Uploader
	hub       *ws.Hub
	cache     *cache.Cache
	startTime time.Time
	now       func() time.Time
}

// NewHandler builds a Handler. A nil Cache gets one with the configured
// payments TTL.
func NewHandler(d Deps) *Handler {
	c := d.Cache
	if c == nil {
		c = cache.New(d.Config.Payments.CacheTTL)
	}
	return &Handler{
		cfg:       d.Config,
		store:     d.Store,
		sessions:  d.Sessions,
		admin:     d.Admin,
		verifier:  d.Verifier,
		lockout:   d.Lockout,
		oidc:      d.OIDC,
		payments:  d.Payments,
		webhooks:  d.Webhooks,
		outbox:    d.Outbox,
		uploader:  d.Uploader,
		hub:       d.Hub,
		cache:     c,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// ClearCache drops cached processor reads.
func (h *Handler) ClearCache() {
	h.cache.Clear()
}

func (h *Handler) siteURL() string {
	return h.cfg.Server.BaseURL
}

// broadcast runs fn only when a hub is attached.
func (h *Handler) broadcast(fn func(*ws.Hub)) {
	if h.hub != nil {
		fn(h.hub)
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("Route not found")
}
