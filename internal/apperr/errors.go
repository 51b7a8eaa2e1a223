// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package apperr defines the error taxonomy shared by stores, services and
// HTTP handlers. Lower layers wrap one of the sentinels with fmt.Errorf("%w")
// and the API layer maps it to a status code with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration means a required setting is missing. Surfaced as 500.
	ErrConfiguration = errors.New("configuration error")

	// ErrConnectivity means the database could not be reached or refused the
	// credentials. It is a kind of upstream failure.
	ErrConnectivity = errors.New("connectivity error")

	// ErrValidation means the request was missing or had malformed fields.
	ErrValidation = errors.New("validation error")

	// ErrAuth means bad credentials or a missing/invalid session.
	ErrAuth = errors.New("authentication failed")

	// ErrForbidden means the caller is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("conflict")

	// ErrUpstream means the database or payment processor failed.
	ErrUpstream = errors.New("upstream failure")
)

// Configuration wraps ErrConfiguration with the missing setting's name.
func Configuration(setting string) error {
	return fmt.Errorf("%w: %s is not set", ErrConfiguration, setting)
}

// Validation wraps ErrValidation with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Upstream wraps err as an upstream failure of the named dependency.
func Upstream(dependency string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, dependency, err)
}

// IsUpstream reports whether err is an upstream or connectivity failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrConnectivity)
}

// HTTPStatus maps an error to the status code the API should return.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
