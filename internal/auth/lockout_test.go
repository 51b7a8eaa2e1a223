// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
)

func newTestLockout(now *time.Time) *LockoutManager {
	m := NewLockoutManager(config.LockoutConfig{
		Enabled:     true,
		MaxAttempts: 3,
		Window:      15 * time.Minute,
		Duration:    time.Minute,
	}, nil)
	m.now = func() time.Time { return *now }
	return m
}

func TestLockoutManager_LocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		locked, _, err := m.RecordFailure(ctx, "Ada@Example.com")
		if err != nil || locked {
			t.Fatalf("attempt %d: locked=%v err=%v", i, locked, err)
		}
	}
	locked, d, err := m.RecordFailure(ctx, "ada@example.com")
	if err != nil || !locked || d != time.Minute {
		t.Fatalf("third attempt should lock for 1m: locked=%v d=%v err=%v", locked, d, err)
	}

	if locked, _, _ := m.CheckLocked(ctx, "ADA@example.com"); !locked {
		t.Error("subject should be locked (case-insensitive)")
	}

	now = now.Add(2 * time.Minute)
	if locked, _, _ := m.CheckLocked(ctx, "ada@example.com"); locked {
		t.Error("lock should have expired")
	}
}

func TestLockoutManager_WindowResets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)
	ctx := context.Background()

	_, _, _ = m.RecordFailure(ctx, "a@example.com")
	_, _, _ = m.RecordFailure(ctx, "a@example.com")
	now = now.Add(20 * time.Minute)
	if locked, _, _ := m.RecordFailure(ctx, "a@example.com"); locked {
		t.Error("attempts outside the window must not accumulate")
	}
}

func TestLockoutManager_SuccessClears(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)
	ctx := context.Background()

	_, _, _ = m.RecordFailure(ctx, "a@example.com")
	_, _, _ = m.RecordFailure(ctx, "a@example.com")
	if err := m.RecordSuccess(ctx, "a@example.com"); err != nil {
		t.Fatal(err)
	}
	if locked, _, _ := m.RecordFailure(ctx, "a@example.com"); locked {
		t.Error("success should reset the failure count")
	}
	if err := m.RecordSuccess(ctx, "never-failed@example.com"); err != nil {
		t.Errorf("clearing an unknown subject should not fail: %v", err)
	}
}

func TestLockoutManager_Disabled(t *testing.T) {
	t.Parallel()

	m := NewLockoutManager(config.LockoutConfig{Enabled: false, MaxAttempts: 1}, nil)
	for i := 0; i < 5; i++ {
		if locked, _, _ := m.RecordFailure(context.Background(), "a@example.com"); locked {
			t.Fatal("disabled manager must never lock")
		}
	}
}

func TestLockoutDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		previous int
		want     time.Duration
	}{
		{0, 15 * time.Minute},
		{1, 30 * time.Minute},
		{2, time.Hour},
		{10, 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := lockoutDuration(15*time.Minute, tt.previous); got != tt.want {
			t.Errorf("lockoutDuration(15m, %d) = %v, want %v", tt.previous, got, tt.want)
		}
	}
}

func TestLockoutManager_Cleanup(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)
	ctx := context.Background()
	_, _, _ = m.RecordFailure(ctx, "a@example.com")

	now = now.Add(48 * time.Hour)
	n, err := m.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Errorf("Cleanup = %d, %v; want 1", n, err)
	}
}
