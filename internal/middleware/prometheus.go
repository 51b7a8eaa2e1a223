// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package middleware holds router-agnostic net/http middleware.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/launchpad/internal/metrics"
)

// RoutePattern resolves the route label for a request. Using the matched
// pattern (e.g. /api/posts/{id}) instead of the raw path keeps label
// cardinality bounded.
type RoutePattern func(r *http.Request) string

// PrometheusMetrics records request count, latency and in-flight requests.
func PrometheusMetrics(route RoutePattern) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			label := r.URL.Path
			if route != nil {
				if p := route(r); p != "" {
					label = p
				}
			}
			metrics.RecordAPIRequest(r.Method, label, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer (needed by
// the websocket upgrade).
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
