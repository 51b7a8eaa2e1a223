// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/config"
)

// offlineDialer returns a real but unconnected client (mongo.Connect does no
// I/O) and counts invocations.
func offlineDialer(t *testing.T, calls *atomic.Int32) Dialer {
	t.Helper()
	return func(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
		calls.Add(1)
		return mongo.Connect(options.Client().ApplyURI(cfg.URI))
	}
}

func testConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Driver: config.DriverMongo, URI: "mongodb://127.0.0.1:1", Name: "launchpad_test"}
}

func TestEnsure_ReturnsSameHandle(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := NewPool(testConfig(), WithDialer(offlineDialer(t, &calls)), WithoutIndexes())
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	first, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if first != second {
		t.Error("expected the same client instance on the second call")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 dial, got %d", calls.Load())
	}
	if !p.Connected() {
		t.Error("expected Connected() after Ensure")
	}
}

func TestEnsure_ConcurrentFirstUseDialsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := NewPool(testConfig(), WithDialer(offlineDialer(t, &calls)), WithoutIndexes())
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	var wg sync.WaitGroup
	clients := make([]*mongo.Client, 16)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := p.Ensure(context.Background())
			if err != nil {
				t.Errorf("Ensure: %v", err)
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one dial, got %d", calls.Load())
	}
	for _, c := range clients[1:] {
		if c != clients[0] {
			t.Fatal("goroutines received different clients")
		}
	}
}

func TestEnsure_MissingURI(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cfg := testConfig()
	cfg.URI = "  "
	p := NewPool(cfg, WithDialer(offlineDialer(t, &calls)))

	_, err := p.Ensure(context.Background())
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("dialer must not run without a URI")
	}
}

func TestEnsure_FailureIsNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	dialErr := errors.New("server selection error: context deadline exceeded")
	fail := true
	p := NewPool(testConfig(), WithoutIndexes(), WithDialer(func(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
		calls.Add(1)
		if fail {
			return nil, dialErr
		}
		return mongo.Connect(options.Client().ApplyURI(cfg.URI))
	}))
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	_, err := p.Ensure(context.Background())
	if !errors.Is(err, apperr.ErrConnectivity) || !errors.Is(err, dialErr) {
		t.Fatalf("expected wrapped connectivity error, got %v", err)
	}

	fail = false
	if _, err := p.Ensure(context.Background()); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 dials, got %d", calls.Load())
	}
}

func TestEnsure_RetriesIndexBootstrap(t *testing.T) {
	t.Parallel()

	var dials, attempts atomic.Int32
	p := NewPool(testConfig(),
		WithDialer(offlineDialer(t, &dials)),
		WithBootstrapRetry(0),
		WithBootstrap(func(ctx context.Context, db *mongo.Database) error {
			if attempts.Add(1) == 1 {
				return errors.New("server selection timeout")
			}
			return nil
		}),
	)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	if _, err := p.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure must not fail on index errors: %v", err)
	}
	if p.IndexesReady() {
		t.Fatal("indexes reported ready after a failed bootstrap")
	}
	for i := 0; i < 3; i++ {
		if _, err := p.Ensure(context.Background()); err != nil {
			t.Fatalf("Ensure #%d: %v", i+2, err)
		}
	}

	if dials.Load() != 1 {
		t.Errorf("expected 1 dial, got %d", dials.Load())
	}
	if attempts.Load() != 2 {
		t.Errorf("expected bootstrap to stop after the first success (2 attempts), got %d", attempts.Load())
	}
	if !p.IndexesReady() {
		t.Error("expected indexes ready after a successful retry")
	}
}

func TestEnsure_BootstrapThrottled(t *testing.T) {
	t.Parallel()

	var dials, attempts atomic.Int32
	p := NewPool(testConfig(),
		WithDialer(offlineDialer(t, &dials)),
		WithBootstrapRetry(time.Hour),
		WithBootstrap(func(context.Context, *mongo.Database) error {
			attempts.Add(1)
			return errors.New("boom")
		}),
	)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	for i := 0; i < 3; i++ {
		if _, err := p.Ensure(context.Background()); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
	}
	if attempts.Load() != 1 {
		t.Errorf("expected a single attempt inside the retry window, got %d", attempts.Load())
	}
	if p.IndexesReady() {
		t.Error("indexes must not be ready")
	}
}

func TestEnsure_BootstrapIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := NewPool(testConfig(),
		WithDialer(offlineDialer(t, &dials)),
		WithBootstrap(func(ctx context.Context, _ *mongo.Database) error {
			return ctx.Err()
		}),
	)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !p.IndexesReady() {
		t.Error("a canceled request context must not abort index creation")
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{errors.New("lookup _mongodb._tcp.cluster0.example.net on 8.8.8.8:53: no such host"), HintDNS},
		{errors.New("connection() error occurred during connection handshake: auth error: sasl conversation error: unable to authenticate using mechanism \"SCRAM-SHA-1\": (AtlasError) bad auth : authentication failed"), HintCredentials},
		{errors.New("server selection error: server selection timeout"), HintAllowList},
		{context.DeadlineExceeded, HintAllowList},
		{errors.New("something odd"), HintUnknown},
	}
	for _, tt := range tests {
		if got, hint := Diagnose(tt.err); got != tt.want || hint == "" {
			t.Errorf("Diagnose(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCloseWithoutConnectIsNoop(t *testing.T) {
	t.Parallel()

	p := NewPool(testConfig())
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close on unconnected pool: %v", err)
	}
}
