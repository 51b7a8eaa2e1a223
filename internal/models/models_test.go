// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	t.Parallel()

	hash := "$2a$12$abcdefghijklmnopqrstuv"
	u := User{ID: "1", Email: "a@example.com", PasswordHash: &hash, Role: RoleUser}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "password") || strings.Contains(string(data), hash) {
		t.Fatalf("password hash leaked: %s", data)
	}
	if !u.HasPassword() {
		t.Error("expected HasPassword true")
	}
	if (&User{}).HasPassword() {
		t.Error("OAuth-only user should not have a password")
	}
}

func TestContactListOptionsMatches(t *testing.T) {
	t.Parallel()

	msg := &ContactMessage{Name: "Ada Lovelace", Email: "ada@example.com", Message: "Pricing question", Status: ContactNew}
	tests := []struct {
		name string
		opts ContactListOptions
		want bool
	}{
		{"no filter", ContactListOptions{}, true},
		{"all", ContactListOptions{Status: "all"}, true},
		{"status match", ContactListOptions{Status: ContactNew}, true},
		{"status mismatch", ContactListOptions{Status: ContactRead}, false},
		{"name case-insensitive", ContactListOptions{Search: "LOVELACE"}, true},
		{"email", ContactListOptions{Search: "ADA@EXAMPLE"}, true},
		{"message", ContactListOptions{Search: "pricing"}, true},
		{"miss", ContactListOptions{Search: "refund"}, false},
	}
	for _, tt := range tests {
		if got := tt.opts.Matches(msg); got != tt.want {
			t.Errorf("%s: Matches = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSortContactsAndPage(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := []*ContactMessage{
		{ID: "b", Name: "bob", CreatedAt: base.Add(time.Hour)},
		{ID: "a", Name: "Alice", CreatedAt: base},
		{ID: "c", Name: "carol", CreatedAt: base.Add(2 * time.Hour)},
	}

	SortContacts(msgs, SortNewest)
	if msgs[0].ID != "c" || msgs[2].ID != "a" {
		t.Errorf("newest order wrong: %s %s %s", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
	SortContacts(msgs, SortOldest)
	if msgs[0].ID != "a" {
		t.Errorf("oldest order wrong: first=%s", msgs[0].ID)
	}
	SortContacts(msgs, SortName)
	if msgs[0].ID != "a" || msgs[1].ID != "b" {
		t.Errorf("name order wrong: %s %s", msgs[0].ID, msgs[1].ID)
	}

	if got := Page(msgs, 1, 1); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Page(1,1) unexpected: %v", got)
	}
	if got := Page(msgs, 5, 10); len(got) != 0 {
		t.Errorf("expected empty page past end, got %d", len(got))
	}
}

func TestPostUpdateApply(t *testing.T) {
	t.Parallel()

	p := &Post{Title: "Old", Status: PostDraft}
	status := PostPublished
	now := time.Now()
	PostUpdate{Status: &status}.Apply(p, now)
	if p.Status != PostPublished || p.Title != "Old" || !p.UpdatedAt.Equal(now) {
		t.Errorf("unexpected post after update: %+v", p)
	}
}
