// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/outbox"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// CreateContact godoc
// @Summary      Submit the contact form
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      ContactRequest  true  "Message"
// @Success      201   {object}  APIResponse{data=models.ContactMessage}
// @Failure      400   {object}  APIResponse
// @Router       /contact [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req ContactRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   models.NormalizeEmail(req.Email),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactNew,
	}
	if err := h.store.Contacts().Create(r.Context(), msg); err != nil {
		rw.AppError(err)
		return
	}

	h.notifyAdmin(r.Context(), msg)
	h.broadcast(func(hub *ws.Hub) { hub.BroadcastContactCreated(msg) })
	rw.Created(msg)
}

// notifyAdmin queues the admin alert for msg. Failures are logged; the
// message itself is already stored.
func (h *Handler) notifyAdmin(ctx context.Context, msg *models.ContactMessage) {
	email := h.cfg.Email
	if !email.Enabled || !email.NotifyAdmin || h.cfg.Security.AdminEmail == "" {
		return
	}
	job, err := outbox.NewContactNotification(outbox.ContactNotification{
		AdminEmail: h.cfg.Security.AdminEmail,
		Message:    msg,
		Dashboard:  strings.TrimRight(h.siteURL(), "/") + "/dashboard/messages",
	})
	if err == nil {
		_, err = h.outbox.Enqueue(ctx, job)
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("contact_id", msg.ID).Msg("Failed to queue admin notification")
	}
}

// ListContacts godoc
// @Summary      List contact messages
// @Tags         contact
// @Produce      json
// @Param        status  query     string  false  "new, read, replied or all"
// @Param        search  query     string  false  "Case-insensitive match on name, email and message"
// @Param        sort    query     string  false  "newest (default), oldest or name"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  APIResponse{data=[]models.ContactMessage}
// @Failure      400     {object}  APIResponse
// @Failure      401     {object}  APIResponse
// @Router       /contact [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	opts := models.ContactListOptions{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}
	if opts.Status != "" && opts.Status != "all" && !models.ValidContactStatus(opts.Status) {
		rw.AppError(apperr.Validation("status must be one of new, read, replied, all"))
		return
	}
	switch opts.Sort {
	case "", models.SortNewest, models.SortOldest, models.SortName:
	default:
		rw.AppError(apperr.Validation("sort must be one of newest, oldest, name"))
		return
	}

	var err error
	if opts.Limit, err = queryInt(r, "limit", defaultPageSize, maxPageSize); err != nil {
		rw.AppError(err)
		return
	}
	if opts.Offset, err = queryInt(r, "offset", 0, 0); err != nil {
		rw.AppError(err)
		return
	}

	msgs, err := h.store.Contacts().List(r.Context(), opts)
	if err != nil {
		rw.AppError(err)
		return
	}
	rw.SuccessWithPagination(msgs, &PaginationMeta{
		Count:   len(msgs),
		Offset:  opts.Offset,
		Limit:   opts.Limit,
		HasMore: opts.Limit > 0 && len(msgs) == opts.Limit,
	})
}

// UpdateContactStatus godoc
// @Summary      Change a message's status
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      ContactStatusRequest  true  "id and status"
// @Success      200   {object}  APIResponse{data=models.ContactMessage}
// @Failure      400   {object}  APIResponse
// @Failure      404   {object}  APIResponse
// @Router       /contact [patch]
func (h *Handler) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req ContactStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	msg, err := h.store.Contacts().UpdateStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		rw.AppError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("contact_id", msg.ID).Str("status", msg.Status).Msg("Contact status updated")
	rw.Success(msg)
}
