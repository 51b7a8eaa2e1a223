// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/validation"
)

// SignUpRequest is the body of POST /api/auth/signup.
type SignUpRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,bcrypt_len"`
}

// SignInRequest is the body of POST /api/auth/signin and /api/admin-auth.
type SignInRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=72"`
	CallbackURL string `json:"callbackUrl,omitempty" validate:"omitempty,max=2048"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,notblank,max=1000"`
}

// ContactStatusRequest is the body of PATCH /api/contact.
type ContactStatusRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required,contact_status"`
}

// CreatePostRequest is the body of POST /api/posts. Image is an optional
// base64 data URI stored through the upload helper.
type CreatePostRequest struct {
	Title         string `json:"title" validate:"required,notblank,max=150"`
	Content       string `json:"content" validate:"required,notblank"`
	Excerpt       string `json:"excerpt" validate:"omitempty,max=500"`
	Status        string `json:"status" validate:"omitempty,post_status"`
	FeaturedImage string `json:"featuredImage" validate:"omitempty,max=2048"`
	Image         string `json:"image" validate:"omitempty"`
}

// UpdatePostRequest is the body of PATCH /api/posts/{id}. Absent fields are
// left unchanged.
type UpdatePostRequest struct {
	Title         *string `json:"title" validate:"omitempty,notblank,max=150"`
	Content       *string `json:"content" validate:"omitempty,notblank"`
	Excerpt       *string `json:"excerpt" validate:"omitempty,max=500"`
	Status        *string `json:"status" validate:"omitempty,post_status"`
	FeaturedImage *string `json:"featuredImage" validate:"omitempty,max=2048"`
	Image         *string `json:"image" validate:"omitempty"`
}

// CheckoutItemRequest is one line item.
type CheckoutItemRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Amount      int64  `json:"amount" validate:"required,min=50"`
	Quantity    int64  `json:"quantity" validate:"omitempty,min=1,max=100"`
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,max=20,dive"`
	Email string                `json:"email" validate:"omitempty,email"`
}

// decodeAndValidate reads a JSON body into dst and runs the validator.
// Malformed JSON, oversized bodies and rule failures all wrap
// apperr.ErrValidation or are *validation.RequestValidationError.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validation("malformed JSON body")
		}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// queryInt parses a non-negative integer query parameter, clamped to max.
func queryInt(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", name)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}
