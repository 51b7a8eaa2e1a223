// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("title is required"), http.StatusBadRequest},
		{fmt.Errorf("create user: %w", ErrConflict), http.StatusBadRequest},
		{ErrAuth, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("post 42: %w", ErrNotFound), http.StatusNotFound},
		{Configuration("MONGODB_URI"), http.StatusInternalServerError},
		{Upstream("stripe", errors.New("timeout")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: i/o timeout")
	err := Upstream("mongodb", cause)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause in chain: %v", err)
	}
	if !IsUpstream(fmt.Errorf("wrap: %w", ErrConnectivity)) {
		t.Error("connectivity errors should count as upstream")
	}
}
