// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"sort"
	"strings"
	"time"
)

// Contact message statuses.
const (
	ContactNew     = "new"
	ContactRead    = "read"
	ContactReplied = "replied"
)

// MaxContactMessageLen is the longest accepted contact message.
const MaxContactMessageLen = 1000

// Contact sort orders.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidContactStatus reports whether s is a known status.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied:
		return true
	}
	return false
}

// ContactListOptions filters and orders the admin contact listing.
type ContactListOptions struct {
	// Status is "", "all", or one of the contact statuses.
	Status string
	// Search matches name, email and message case-insensitively.
	Search string
	// Sort is newest (default), oldest or name.
	Sort   string
	Limit  int
	Offset int
}

// FilterStatus returns the status to filter on, or "" for no filter.
func (o ContactListOptions) FilterStatus() string {
	if o.Status == "all" {
		return ""
	}
	return o.Status
}

// Matches reports whether m satisfies the status and search filters. Stores
// that cannot push the filter down to the database use it directly.
func (o ContactListOptions) Matches(m *ContactMessage) bool {
	if s := o.FilterStatus(); s != "" && m.Status != s {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(o.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), term) ||
		strings.Contains(strings.ToLower(m.Email), term) ||
		strings.Contains(strings.ToLower(m.Message), term)
}

// SortContacts orders msgs in place according to order.
func SortContacts(msgs []*ContactMessage, order string) {
	switch order {
	case SortOldest:
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	case SortName:
		sort.SliceStable(msgs, func(i, j int) bool {
			return strings.ToLower(msgs[i].Name) < strings.ToLower(msgs[j].Name)
		})
	default:
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	}
}

// Page applies offset and limit to a slice. A non-positive limit means no
// limit.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
