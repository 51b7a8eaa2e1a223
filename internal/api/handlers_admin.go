// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// OutboxResponse is the admin view of the outbox.
type OutboxResponse struct {
	Jobs   []models.OutboxJob          `json:"jobs"`
	Counts map[models.OutboxStatus]int `json:"counts"`
}

// ListUsers godoc
// @Summary      List registered users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  APIResponse{data=[]models.User}
// @Failure      401  {object}  APIResponse
// @Router       /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	users, err := h.store.Users().List(r.Context())
	if err != nil {
		rw.AppError(err)
		return
	}
	rw.Success(users)
}

// ListOutbox godoc
// @Summary      Inspect queued notifications
// @Tags         admin
// @Produce      json
// @Param        status  query     string  false  "pending, sending, sent or failed"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  APIResponse{data=OutboxResponse}
// @Failure      400     {object}  APIResponse
// @Router       /outbox [get]
func (h *Handler) ListOutbox(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := models.OutboxStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		rw.AppError(apperr.Validation("status must be one of pending, sending, sent, failed"))
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize, maxPageSize)
	if err != nil {
		rw.AppError(err)
		return
	}

	jobs, err := h.outbox.List(r.Context(), status, limit)
	if err != nil {
		rw.AppError(err)
		return
	}
	counts, err := h.outbox.CountByStatus(r.Context())
	if err != nil {
		rw.AppError(err)
		return
	}
	if jobs == nil {
		jobs = []models.OutboxJob{}
	}
	rw.Success(OutboxResponse{Jobs: jobs, Counts: counts})
}

// Events godoc
// @Summary      Live dashboard events
// @Description  Upgrades to a WebSocket that streams contact.created,
// @Description  post.created, payment.completed and outbox.updated messages.
// @Tags         admin
// @Success      101
// @Failure      401  {object}  APIResponse
// @Router       /events/ws [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).NotFound("Live events are disabled")
		return
	}
	ws.Handler(h.hub, h.cfg.Security.CORSOrigins, func(r *http.Request) string {
		return logging.ActorFromContext(r.Context())
	})(w, r)
}
