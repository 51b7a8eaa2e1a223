// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/validation"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"metadata,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	// Code is machine-readable, see the ErrCode constants.
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta carries tracing and paging information.
type APIMeta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs int64           `json:"duration_ms"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta describes a limit/offset page.
type PaginationMeta struct {
	Count   int  `json:"count"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// Error codes
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeConfiguration       = "CONFIGURATION_ERROR"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

// ResponseWriter writes envelopes for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a writer for w and r.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

func (rw *ResponseWriter) meta(m *APIMeta) *APIMeta {
	if m == nil {
		m = &APIMeta{}
	}
	m.Timestamp = time.Now().UTC()
	m.DurationMs = time.Since(rw.startTime).Milliseconds()
	m.RequestID = logging.RequestIDFromContext(rw.r.Context())
	return m
}

// Success writes 200 with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta(nil)})
}

// SuccessWithPagination writes 200 with data and paging metadata.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, page *PaginationMeta) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta(&APIMeta{Pagination: page})})
}

// Created writes 201 with data.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, APIResponse{Success: true, Data: data, Meta: rw.meta(nil)})
}

// Error writes an error envelope.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error envelope with details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	m := rw.meta(nil)
	rw.writeJSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: m.RequestID,
		},
		Meta: m,
	})
}

// BadRequest writes 400 BAD_REQUEST.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes 401.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound writes 404.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// TooManyRequests writes 429 with Retry-After.
func (rw *ResponseWriter) TooManyRequests(message string, retryAfter time.Duration) {
	if retryAfter > 0 {
		secs := int(retryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		rw.w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	rw.Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, message)
}

// InternalError writes 500 INTERNAL_ERROR.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ValidationError writes 400 VALIDATION_ERROR from a validator result.
func (rw *ResponseWriter) ValidationError(verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	var details interface{}
	if apiErr.Details != nil {
		details = apiErr.Details
	}
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, details)
}

// DatabaseError writes 500 DATABASE_ERROR.
func (rw *ResponseWriter) DatabaseError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Database error")
	rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred")
}

// ExternalServiceError writes 500 EXTERNAL_SERVICE_FAILED.
func (rw *ResponseWriter) ExternalServiceError(service string, err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Str("service", service).Msg("External service error")
	rw.Error(http.StatusInternalServerError, ErrCodeExternalServiceFail, "External service unavailable: "+service)
}

// AppError maps an apperr sentinel to its envelope. Upstream failures are
// reported as database errors; callers talking to the payment processor use
// ExternalServiceError instead.
func (rw *ResponseWriter) AppError(err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		rw.ValidationError(verr)
	case errors.Is(err, apperr.ErrConfiguration):
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Configuration error")
		rw.Error(http.StatusInternalServerError, ErrCodeConfiguration, err.Error())
	case errors.Is(err, apperr.ErrValidation):
		rw.Error(http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		rw.BadRequest(err.Error())
	case errors.Is(err, apperr.ErrAuth):
		rw.Unauthorized("Authentication required")
	case errors.Is(err, apperr.ErrForbidden):
		rw.Error(http.StatusForbidden, ErrCodeForbidden, "Access denied")
	case errors.Is(err, apperr.ErrNotFound):
		rw.NotFound("Not found")
	case apperr.IsUpstream(err):
		rw.DatabaseError(err)
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Unhandled error")
		rw.InternalError("Internal server error")
	}
}

func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteAppError is the auth.DenyFunc used by the session issuer, the admin
// gate and the authorization middleware.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	NewResponseWriter(w, r).AppError(err)
}

// writeRawJSON writes v without the envelope. Only the webhook endpoint uses
// it, because the processor expects {"received": true}.
func writeRawJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
