// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/launchpad/internal/api"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/outbox"
	"github.com/tomtom215/launchpad/internal/payments"
	"github.com/tomtom215/launchpad/internal/store/badgerstore"
	"github.com/tomtom215/launchpad/internal/upload"
)

// stubServer records lifecycle calls. With block set, ListenAndServe runs
// until Shutdown.
type stubServer struct {
	serveErr    error
	shutdownErr error
	block       bool

	serves    atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stopped   chan struct{}
}

func newStubServer(block bool) *stubServer {
	return &stubServer{
		block:   block,
		started: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (s *stubServer) ListenAndServe() error {
	s.serves.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}
	if s.serveErr != nil {
		return s.serveErr
	}
	if s.block {
		<-s.stopped
		return http.ErrServerClosed
	}
	return nil
}

func (s *stubServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	close(s.stopped)
	return s.shutdownErr
}

func (s *stubServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(time.Second):
		t.Fatal("ListenAndServe was not called")
	}
}

// listenerServer serves on a pre-bound listener so tests learn the port
// before Serve starts.
type listenerServer struct {
	*http.Server
	ln net.Listener
}

func (s listenerServer) ListenAndServe() error { return s.Serve(s.ln) }

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"explicit", 3 * time.Second, 3 * time.Second},
		{"zero uses default", 0, 10 * time.Second},
		{"negative uses default", -time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService(newStubServer(false), tt.in)
		assert.Equal(t, tt.want, svc.shutdownTimeout, tt.name)
	}

	svc := NewHTTPServerService(&http.Server{Addr: "127.0.0.1:3857"}, 0)
	assert.Equal(t, "127.0.0.1:3857", svc.addr)
	assert.Equal(t, "http-server", svc.String())
	var _ suture.Service = svc
}

func TestHTTPServerService_CancelShutsDown(t *testing.T) {
	t.Parallel()

	server := newStubServer(true)
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	server.waitStarted(t)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	assert.EqualValues(t, 1, server.serves.Load())
	assert.EqualValues(t, 1, server.shutdowns.Load())
}

func TestHTTPServerService_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bind failure", func(t *testing.T) {
		t.Parallel()
		bindErr := errors.New("listen tcp :3857: bind: address already in use")
		server := newStubServer(false)
		server.serveErr = bindErr

		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		assert.ErrorIs(t, err, bindErr)
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		shutdownErr := errors.New("context deadline exceeded while draining")
		server := newStubServer(true)
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		server.waitStarted(t)
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, shutdownErr)
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	t.Parallel()

	server := newStubServer(true)
	sup := suture.New("test-tree", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	server.waitStarted(t)
	cancel()
	<-errCh

	assert.GreaterOrEqual(t, server.shutdowns.Load(), int32(1))
}

// newLaunchpadHandler builds the API router over in-memory stores.
func newLaunchpadHandler(t *testing.T) (http.Handler, *badgerstore.Store) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:3857", MaxBodyBytes: 1 << 20},
		Security: config.SecurityConfig{
			JWTSecret:         "service-test-secret-at-least-32-characters",
			SessionTTL:        time.Hour,
			SessionCookie:     "session-token",
			AdminEmail:        "admin@example.com",
			AdminPassword:     "correct horse battery staple",
			AdminTTL:          time.Hour,
			AdminLoginPath:    "/admin/login",
			RateLimitDisabled: true,
		},
		Payments: config.PaymentsConfig{CacheTTL: time.Minute, Currency: "usd"},
		Upload:   config.UploadConfig{PublicDir: t.TempDir(), URLPrefix: "/uploads", Placeholder: "/images/placeholder.png"},
	}

	db, err := database.OpenBadger("")
	require.NoError(t, err)
	st := badgerstore.New(db, true)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	outboxDB, err := database.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = outboxDB.Close() })

	sessions, err := auth.NewSessionIssuer(&cfg.Security)
	require.NoError(t, err)
	gate, err := auth.NewAdminGate(&cfg.Security)
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer("")
	require.NoError(t, err)
	t.Cleanup(enforcer.Close)

	h := api.NewHandler(api.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Admin:    gate,
		Verifier: auth.NewCredentialVerifier(st.Users()),
		Lockout:  auth.NewLockoutManager(cfg.Security.Lockout, nil),
		Webhooks: payments.NewWebhookVerifier("whsec_test", 0),
		Outbox:   outbox.NewBadgerStore(outboxDB),
		Uploader: upload.New(upload.NewLocalBackend(cfg.Upload.PublicDir, cfg.Upload.URLPrefix), cfg.Upload.Placeholder),
	})
	return api.NewRouter(cfg, h, enforcer).Handler(), st
}

func TestHTTPServerService_ServesLaunchpadRouter(t *testing.T) {
	t.Parallel()

	router, st := newLaunchpadHandler(t)
	ctx := context.Background()
	require.NoError(t, st.Posts().Create(ctx, &models.Post{Title: "Shipped", Content: "v1", Status: models.PostPublished}))
	require.NoError(t, st.Posts().Create(ctx, &models.Post{Title: "Unannounced", Content: "wip", Status: models.PostDraft}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := listenerServer{
		Server: &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
	}
	svc := NewHTTPServerService(server, 2*time.Second)

	serveCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(serveCtx) }()

	base := "http://" + ln.Addr().String()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/health")
	require.NoError(t, err)
	var health struct {
		Success bool `json:"success"`
		Data    struct {
			Status   string `json:"status"`
			Database string `json:"database"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, health.Success)
	assert.Equal(t, "healthy", health.Data.Status)
	assert.Equal(t, "connected", health.Data.Database)

	resp, err = client.Get(base + "/api/posts")
	require.NoError(t, err)
	var posts struct {
		Data []models.Post `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	resp.Body.Close()
	require.Len(t, posts.Data, 1)
	assert.Equal(t, "Shipped", posts.Data[0].Title)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	_, err = client.Get(base + "/health")
	assert.Error(t, err, "listener should be closed after shutdown")
}
