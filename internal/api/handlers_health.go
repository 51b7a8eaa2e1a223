// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/launchpad/internal/logging"
)

// HealthStatus is the liveness report.
type HealthStatus struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	Payments      string  `json:"payments"`
	Uptime        float64 `json:"uptime"`
	LiveClients   int     `json:"liveClients"`
	Version       string  `json:"version,omitempty"`
	DatabaseError string  `json:"databaseError,omitempty"`
}

// Version is set at build time via -ldflags.
var Version = "dev"

// Health godoc
// @Summary      Liveness and dependency status
// @Description  Always 200; status is "degraded" when the store is unreachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  APIResponse{data=HealthStatus}
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:   "healthy",
		Database: "connected",
		Payments: "not_configured",
		Uptime:   time.Since(h.startTime).Seconds(),
		Version:  Version,
	}
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: store unreachable")
		health.Status = "degraded"
		health.Database = "unreachable"
		health.DatabaseError = err.Error()
	}
	if h.payments != nil && h.payments.Configured() {
		health.Payments = "configured"
	}
	if h.hub != nil {
		health.LiveClients = h.hub.GetClientCount()
	}
	NewResponseWriter(w, r).Success(health)
}
