// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
)

// Message is one email handed to a Sender.
type Message struct {
	ID       string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a message. Implementations return a *SendError so the
// dispatcher can tell transient failures from permanent ones.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"
	ErrorCodeInvalidRecipient  = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeContentTooLarge   = "CONTENT_TOO_LARGE"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeServerError       = "SERVER_ERROR"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeUnknown           = "UNKNOWN"
)

// SendError is a classified delivery failure.
type SendError struct {
	Code      string
	Transient bool
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying. Unclassified errors are
// treated as transient unless they are context cancellations.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *SendError
	if errors.As(err, &se) {
		return se.Transient
	}
	return !errors.Is(err, context.Canceled)
}

// classifySMTPError maps an SMTP failure to an error code. Reply codes are
// authoritative when present: 4xx is temporary, 5xx permanent.
func classifySMTPError(err error) *SendError {
	var tp *textproto.Error
	if errors.As(err, &tp) {
		switch {
		case tp.Code == 421 || tp.Code == 450 || tp.Code == 451 || tp.Code == 452:
			return &SendError{Code: ErrorCodeServerError, Transient: true, Err: err}
		case tp.Code == 535 || tp.Code == 534 || tp.Code == 530:
			return &SendError{Code: ErrorCodeAuthFailed, Err: err}
		case tp.Code == 550 || tp.Code == 551 || tp.Code == 553:
			return &SendError{Code: ErrorCodeRecipientNotFound, Err: err}
		case tp.Code == 552:
			return &SendError{Code: ErrorCodeContentTooLarge, Err: err}
		case tp.Code >= 400 && tp.Code < 500:
			return &SendError{Code: ErrorCodeServerError, Transient: true, Err: err}
		default:
			return &SendError{Code: ErrorCodeServerError, Err: err}
		}
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &SendError{Code: ErrorCodeTimeout, Transient: true, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SendError{Code: ErrorCodeTimeout, Transient: true, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &SendError{Code: ErrorCodeConnectionFailed, Transient: true, Err: err}
	}
	return &SendError{Code: ErrorCodeUnknown, Transient: true, Err: err}
}
