// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package logging

import (
	"strings"
	"unicode"
)

// Auth event names written in the "event" field of security log lines.
const (
	EventSignIn        = "auth.signin"
	EventSignInFailed  = "auth.signin_failed"
	EventSignUp        = "auth.signup"
	EventSignOut       = "auth.signout"
	EventAdminSignIn   = "admin.signin"
	EventAdminFailed   = "admin.signin_failed"
	EventLockout       = "auth.lockout"
	EventWebhookReject = "webhook.rejected"
)

// Security logs an auth-related event at info level (warn for failures).
// Emails and IPs are passed through SanitizeValue.
func Security(event, email, ip, reason string) {
	e := Info()
	if strings.HasSuffix(event, "_failed") || event == EventLockout || event == EventWebhookReject {
		e = Warn()
	}
	e = e.Str("event", event).Str("ip", ip)
	if email != "" {
		e = e.Str("email", SanitizeEmail(email))
	}
	if reason != "" {
		e = e.Str("reason", reason)
	}
	e.Msg("security event")
}

// SanitizeToken keeps the first and last four characters of a token.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail masks the local part of an email: "jane.doe@x.io" -> "ja***@x.io".
func SanitizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if email == "" {
		return ""
	}
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"authorization": {},
	"cookie":        {},
	"session":       {},
	"signature":     {},
	"api_key":       {},
}

// SanitizeValue masks value when key names a secret or value looks like an email.
func SanitizeValue(key, value string) string {
	if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

// SanitizeLogValue strips control characters and truncates user input before
// it reaches a log line.
func SanitizeLogValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
