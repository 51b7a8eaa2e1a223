// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type countingCloser struct {
	calls atomic.Int32
	err   error
	ctxOK atomic.Bool
}

func (c *countingCloser) Close(ctx context.Context) error {
	c.calls.Add(1)
	c.ctxOK.Store(ctx.Err() == nil)
	return c.err
}

func TestCloserService_ClosesOnShutdown(t *testing.T) {
	t.Parallel()

	c := &countingCloser{}
	svc := NewCloserService("database-pool", c, time.Second)
	var _ suture.Service = svc

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if c.calls.Load() != 0 {
		t.Fatal("closed before shutdown")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if c.calls.Load() != 1 {
		t.Errorf("Close called %d times, want 1", c.calls.Load())
	}
	if !c.ctxOK.Load() {
		t.Error("Close should receive a live context")
	}
}

func TestCloserService_ReportsCloseError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	svc := NewCloserService("outbox-store", CloseFunc(func() error { return boom }), 0)
	if svc.timeout != 5*time.Second {
		t.Errorf("default timeout = %v", svc.timeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, boom) {
		t.Errorf("Serve = %v, want boom", err)
	}
	if svc.String() != "outbox-store" {
		t.Errorf("String = %q", svc.String())
	}
}
