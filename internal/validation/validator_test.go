// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package validation

import (
	"strings"
	"testing"
)

type signupLike struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,bcrypt_len"`
}

type statusLike struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required,contact_status"`
	Post   string `json:"postStatus" validate:"omitempty,post_status"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	req := signupLike{Name: "Ada", Email: "ada@example.com", Password: "correcthorse"}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	// 36 runes, 72 bytes: the byte limit, not the rune count, applies.
	req.Password = strings.Repeat("é", 36)
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("72-byte password should be valid, got %v", err)
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  interface{}
		want string
	}{
		{"short password", &signupLike{Name: "A", Email: "a@example.com", Password: "short"}, "password must be at least 8 characters"},
		{"bad email", &signupLike{Name: "A", Email: "nope", Password: "longenough"}, "email must be a valid email address"},
		{"blank name", &signupLike{Name: "   ", Email: "a@example.com", Password: "longenough"}, "name must not be blank"},
		{"password over 72 bytes", &signupLike{Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 40)}, "password must be at most 72 bytes"},
		{"missing id", &statusLike{Status: "new"}, "id is required"},
		{"bad contact status", &statusLike{ID: "1", Status: "archived"}, "status must be one of: new, read, replied"},
		{"bad post status", &statusLike{ID: "1", Status: "read", Post: "scheduled"}, "postStatus must be one of: draft, published"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&signupLike{})
	if err == nil {
		t.Fatal("expected errors for empty request")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %q", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("expected per-field details for multiple failures, got %v", apiErr.Details)
	}

	single := ValidateStruct(&statusLike{Status: "new"}).ToAPIError()
	if single.Details["field"] != "id" {
		t.Errorf("expected single-field detail, got %v", single.Details)
	}
}
