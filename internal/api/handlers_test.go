// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/outbox"
	"github.com/tomtom215/launchpad/internal/payments"
	"github.com/tomtom215/launchpad/internal/store"
	"github.com/tomtom215/launchpad/internal/store/badgerstore"
	"github.com/tomtom215/launchpad/internal/upload"
)

const (
	testJWTSecret     = "test-secret-that-is-at-least-32-characters-long"
	testWebhookSecret = "whsec_test"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery staple"
)

// fakeProcessor is a PaymentProcessor with canned results.
type fakeProcessor struct {
	mu         sync.Mutex
	configured bool
	charges    []models.Payment
	balance    *payments.Balance
	err        error
	calls      int
}

func (f *fakeProcessor) Configured() bool { return f.configured }

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, items []models.CheckoutItem, _ string) (*models.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com/cs_test"}, nil
}

func (f *fakeProcessor) ListCharges(context.Context, int) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.charges, nil
}

func (f *fakeProcessor) Balance(context.Context) (*payments.Balance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balance, nil
}

type testEnv struct {
	cfg      *config.Config
	handler  http.Handler
	store    store.Store
	outbox   *outbox.BadgerStore
	payments *fakeProcessor
	gate     *auth.AdminGate
	sessions *auth.SessionIssuer
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL:      "http://localhost:3857",
			MaxBodyBytes: 1 << 20,
		},
		Security: config.SecurityConfig{
			JWTSecret:         testJWTSecret,
			SessionTTL:        time.Hour,
			SessionCookie:     "session-token",
			AdminEmail:        testAdminEmail,
			AdminPassword:     testAdminPassword,
			AdminTTL:          24 * time.Hour,
			AdminLoginPath:    "/admin/login",
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitDisabled: true,
		},
		Payments: config.PaymentsConfig{
			WebhookSecret: testWebhookSecret,
			CacheTTL:      time.Minute,
			Currency:      "usd",
		},
		Upload: config.UploadConfig{
			PublicDir:   t.TempDir(),
			URLPrefix:   "/uploads",
			Placeholder: "/images/placeholder.png",
		},
	}
}

// newTestEnv builds the router over in-memory stores. opts may adjust Deps
// before the handler is built.
func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.OpenBadger("")
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	st := badgerstore.New(db, true)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	outboxDB, err := database.OpenBadger("")
	if err != nil {
		t.Fatalf("open outbox badger: %v", err)
	}
	t.Cleanup(func() { _ = outboxDB.Close() })
	queue := outbox.NewBadgerStore(outboxDB)

	sessions, err := auth.NewSessionIssuer(&cfg.Security)
	if err != nil {
		t.Fatalf("session issuer: %v", err)
	}
	gate, err := auth.NewAdminGate(&cfg.Security)
	if err != nil {
		t.Fatalf("admin gate: %v", err)
	}
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	t.Cleanup(enforcer.Close)

	proc := &fakeProcessor{configured: true, balance: &payments.Balance{Currency: "usd"}}
	deps := Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Admin:    gate,
		Verifier: auth.NewCredentialVerifier(st.Users()),
		Lockout:  auth.NewLockoutManager(cfg.Security.Lockout, nil),
		Payments: proc,
		Webhooks: payments.NewWebhookVerifier(testWebhookSecret, 0),
		Outbox:   queue,
		Uploader: upload.New(upload.NewLocalBackend(cfg.Upload.PublicDir, cfg.Upload.URLPrefix), cfg.Upload.Placeholder),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h := NewHandler(deps)

	return &testEnv{
		cfg:      cfg,
		handler:  NewRouter(cfg, h, enforcer).Handler(),
		store:    st,
		outbox:   queue,
		payments: proc,
		gate:     gate,
		sessions: sessions,
	}
}

// adminCookies signs in through the gate and returns its cookies.
func (e *testEnv) adminCookies(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := e.gate.SignIn(rec, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("admin sign in: %v", err)
	}
	return rec.Result().Cookies()
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		case []byte:
			buf.Write(b)
		default:
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded response with Data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"metadata"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestSignUp(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "supersecret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Errorf("response leaks password material: %s", rec.Body.String())
	}
	var user models.User
	decodeData(t, rec, &user)
	if user.Email != "ada@example.com" || user.ID == "" {
		t.Errorf("unexpected user %+v", user)
	}

	dup := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada again", "email": "ada@example.com", "password": "anothersecret",
	})
	if dup.Code != http.StatusBadRequest {
		t.Errorf("duplicate status = %d, want 400", dup.Code)
	}
	if n, _ := env.store.Users().Count(context.Background()); n != 1 {
		t.Errorf("user count = %d, want 1", n)
	}
}

func TestSignUp_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email", "password": "supersecret"}},
		{"password over 72 bytes", map[string]string{"name": "A", "email": "a@example.com", "password": strings.Repeat("é", 40)}},
		{"malformed json", "{"},
		{"empty body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/signup", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if e := decodeEnvelope(t, rec); e.Error == nil || e.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", e.Error, ErrCodeValidation)
			}
		})
	}
}

func TestSignUp_MultibytePassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	password := strings.Repeat("é", 20) + "ñ"
	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Zoë", "email": "zoe@example.com", "password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	signin := env.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "zoe@example.com", "password": password})
	if signin.Code != http.StatusOK {
		t.Errorf("signin status = %d, body %s", signin.Code, signin.Body.String())
	}
}

func TestSignIn_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "supersecret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	wrong := env.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	unknown := env.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "bob@example.com", "password": "nope-nope"})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401", wrong.Code, unknown.Code)
	}
	if a, b := decodeEnvelope(t, wrong).Error.Message, decodeEnvelope(t, unknown).Error.Message; a != b {
		t.Errorf("messages differ: %q vs %q", a, b)
	}

	ok := env.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ADA@example.com", "password": "supersecret"})
	if ok.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", ok.Code, ok.Body.String())
	}
	var session *http.Cookie
	for _, c := range ok.Result().Cookies() {
		if c.Name == "session-token" {
			session = c
		}
	}
	if session == nil || !session.HttpOnly {
		t.Fatalf("expected an HttpOnly session cookie, got %+v", ok.Result().Cookies())
	}

	me := env.do(t, http.MethodGet, "/api/auth/session", nil, session)
	var resp SessionResponse
	decodeData(t, me, &resp)
	if resp.Email != "ada@example.com" || resp.Role != models.RoleUser {
		t.Errorf("unexpected session %+v", resp)
	}

	// A plain user is authenticated but not an admin.
	if rec := env.do(t, http.MethodGet, "/api/users", nil, session); rec.Code != http.StatusForbidden {
		t.Errorf("user on admin route: status = %d, want 403", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	bad := env.do(t, http.MethodPost, "/api/admin-auth", map[string]string{"email": testAdminEmail, "password": "wrong-password"})
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status = %d", bad.Code)
	}

	good := env.do(t, http.MethodPost, "/api/admin-auth", map[string]string{
		"email": testAdminEmail, "password": testAdminPassword, "callbackUrl": "/dashboard/messages",
	})
	if good.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", good.Code, good.Body.String())
	}
	var resp AdminAuthResponse
	decodeData(t, good, &resp)
	if !resp.Authenticated || resp.Redirect != "/dashboard/messages" {
		t.Errorf("unexpected response %+v", resp)
	}

	open := env.do(t, http.MethodPost, "/api/admin-auth", map[string]string{
		"email": testAdminEmail, "password": testAdminPassword, "callbackUrl": "//evil.example.com",
	})
	decodeData(t, open, &resp)
	if resp.Redirect != "/dashboard" {
		t.Errorf("open redirect accepted: %q", resp.Redirect)
	}
}

func TestDashboardRedirectsToLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/messages?status=new", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := "/admin/login?callbackUrl=%2Fdashboard%2Fmessages%3Fstatus%3Dnew"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	if rec := env.do(t, http.MethodGet, "/dashboard", nil, env.adminCookies(t)...); rec.Code != http.StatusOK {
		t.Errorf("admin dashboard status = %d, want 200", rec.Code)
	}

	login := env.do(t, http.MethodGet, "/admin/login?callbackUrl=%2Fdashboard%2Fposts", nil)
	if login.Code != http.StatusOK || !strings.Contains(login.Body.String(), `value="/dashboard/posts"`) {
		t.Errorf("login page status = %d, body %s", login.Code, login.Body.String())
	}
}

func TestContact(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookies(t)

	for _, m := range []map[string]string{
		{"name": "Alice", "email": "alice@example.com", "message": "Pricing question"},
		{"name": "Bob", "email": "bob@example.com", "message": "Love the PRODUCT"},
		{"name": "Carol", "email": "carol@example.com", "message": "Partnership"},
	} {
		rec := env.do(t, http.MethodPost, "/api/contact", m)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	if rec := env.do(t, http.MethodGet, "/api/contact", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list status = %d, want 401", rec.Code)
	}

	var all []models.ContactMessage
	decodeData(t, env.do(t, http.MethodGet, "/api/contact?sort=name", nil, admin...), &all)
	if len(all) != 3 || all[0].Name != "Alice" || all[0].Status != models.ContactNew {
		t.Fatalf("unexpected list %+v", all)
	}

	var found []models.ContactMessage
	decodeData(t, env.do(t, http.MethodGet, "/api/contact?search=product", nil, admin...), &found)
	if len(found) != 1 || found[0].Name != "Bob" {
		t.Errorf("search result %+v", found)
	}

	upd := env.do(t, http.MethodPatch, "/api/contact", map[string]string{"id": all[0].ID, "status": "read"}, admin...)
	if upd.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", upd.Code, upd.Body.String())
	}

	var unread []models.ContactMessage
	decodeData(t, env.do(t, http.MethodGet, "/api/contact?status=new", nil, admin...), &unread)
	if len(unread) != 2 {
		t.Errorf("status=new returned %d messages, want 2", len(unread))
	}

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing status", map[string]string{"id": all[0].ID}, http.StatusBadRequest},
		{"missing id", map[string]string{"status": "read"}, http.StatusBadRequest},
		{"bad status", map[string]string{"id": all[0].ID, "status": "archived"}, http.StatusBadRequest},
		{"unknown id", map[string]string{"id": "does-not-exist", "status": "read"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPatch, "/api/contact", tt.body, admin...); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if rec := env.do(t, http.MethodGet, "/api/contact?status=archived", nil, admin...); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", rec.Code)
	}
}

func TestPosts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookies(t)

	if rec := env.do(t, http.MethodPost, "/api/posts", map[string]string{"title": "Hi", "content": "x"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/posts", map[string]string{
		"title":   "Launch day",
		"content": "We shipped.",
		"image":   "data:image/jpeg;base64,aGVsbG8=",
	}, admin...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var post models.Post
	decodeData(t, rec, &post)
	if post.Status != models.PostDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
	if !strings.HasPrefix(post.FeaturedImage, "/uploads/") || !strings.HasSuffix(post.FeaturedImage, ".jpg") {
		t.Errorf("featured image = %q", post.FeaturedImage)
	}

	bad := env.do(t, http.MethodPost, "/api/posts", map[string]string{
		"title": "Broken image", "content": "x", "image": "!!!not base64!!!",
	}, admin...)
	var broken models.Post
	decodeData(t, bad, &broken)
	if broken.FeaturedImage != "/images/placeholder.png" {
		t.Errorf("bad image path = %q, want placeholder", broken.FeaturedImage)
	}

	for _, path := range []string{"/api/posts", "/api/posts?status=draft"} {
		var visible []models.Post
		decodeData(t, env.do(t, http.MethodGet, path, nil), &visible)
		if len(visible) != 0 {
			t.Errorf("anonymous %s lists drafts: %+v", path, visible)
		}
	}
	if rec := env.do(t, http.MethodGet, "/api/posts/"+post.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("anonymous draft get status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/posts/"+post.ID, nil, admin...); rec.Code != http.StatusOK {
		t.Errorf("admin draft get status = %d, want 200", rec.Code)
	}
	var drafts []models.Post
	decodeData(t, env.do(t, http.MethodGet, "/api/posts?status=draft", nil, admin...), &drafts)
	if len(drafts) != 2 {
		t.Errorf("admin drafts = %d, want 2", len(drafts))
	}

	pub := env.do(t, http.MethodPatch, "/api/posts/"+post.ID, map[string]string{"status": "published"}, admin...)
	if pub.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", pub.Code, pub.Body.String())
	}

	var published []models.Post
	decodeData(t, env.do(t, http.MethodGet, "/api/posts?status=published", nil), &published)
	if len(published) != 1 || published[0].ID != post.ID {
		t.Errorf("published = %+v", published)
	}
	var anonymous []models.Post
	decodeData(t, env.do(t, http.MethodGet, "/api/posts", nil), &anonymous)
	if len(anonymous) != 1 || anonymous[0].ID != post.ID {
		t.Errorf("anonymous list = %+v, want only the published post", anonymous)
	}

	if rec := env.do(t, http.MethodGet, "/api/posts/"+post.ID, nil); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	for _, id := range []string{"unknown-id", "not-a-uuid"} {
		if rec := env.do(t, http.MethodGet, "/api/posts/"+id, nil); rec.Code != http.StatusNotFound {
			t.Errorf("get %q status = %d, want 404", id, rec.Code)
		}
	}
}

func TestUsersNeverExposePasswordHash(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "supersecret",
	})
	rec := env.do(t, http.MethodGet, "/api/users", nil, env.adminCookies(t)...)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := strings.ToLower(rec.Body.String())
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Errorf("users response leaks hash: %s", rec.Body.String())
	}
}

func TestPaymentsFallback(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookies(t)
	env.payments.err = apperr.Upstream("payments", errors.New("connection refused"))

	var list models.PaymentList
	decodeData(t, env.do(t, http.MethodGet, "/api/payments", nil, admin...), &list)
	if !list.Fallback || len(list.Payments) == 0 {
		t.Errorf("expected placeholder payments, got %+v", list)
	}

	var stats models.Stats
	decodeData(t, env.do(t, http.MethodGet, "/api/stats", nil, admin...), &stats)
	if !stats.Fallback {
		t.Errorf("expected fallback stats, got %+v", stats)
	}
}

func TestPaymentsLiveIsCached(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookies(t)
	env.payments.charges = []models.Payment{{ID: "ch_1", Amount: 4900, Currency: "usd", Status: payments.StatusSucceeded}}

	for i := 0; i < 2; i++ {
		var list models.PaymentList
		decodeData(t, env.do(t, http.MethodGet, "/api/payments", nil, admin...), &list)
		if list.Fallback || len(list.Payments) != 1 {
			t.Fatalf("unexpected list %+v", list)
		}
	}
	if env.payments.calls != 1 {
		t.Errorf("processor called %d times, want 1", env.payments.calls)
	}
}

func TestCheckout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checkout", map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Pro plan", "amount": 4900}},
	})
	var session models.CheckoutSession
	decodeData(t, rec, &session)
	if session.URL == "" {
		t.Errorf("missing checkout URL: %s", rec.Body.String())
	}

	if rec := env.do(t, http.MethodPost, "/api/checkout", map[string]interface{}{"items": []interface{}{}}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty items status = %d, want 400", rec.Code)
	}

	env.payments.err = apperr.Upstream("payments", errors.New("503"))
	failed := env.do(t, http.MethodPost, "/api/checkout", map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Pro plan", "amount": 4900}},
	})
	if failed.Code != http.StatusInternalServerError || decodeEnvelope(t, failed).Error.Code != ErrCodeExternalServiceFail {
		t.Errorf("upstream failure = %d %s", failed.Code, failed.Body.String())
	}
}

var paidEvent = []byte(`{"id":"evt_paid_1","type":"checkout.session.completed","created":1767225600,
"data":{"object":{"id":"cs_1","payment_status":"paid","amount_total":4900,"currency":"usd",
"customer_details":{"email":"buyer@example.com","name":"Ada Lovelace"}}}}`)

func (e *testEnv) webhook(t *testing.T, payload []byte, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", bytes.NewReader(payload))
	req.Header.Set(payments.SignatureHeader, header)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_InvalidSignatureHasNoSideEffects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong secret", payments.SignPayload("whsec_other", time.Now(), paidEvent)},
		{"stale", payments.SignPayload(testWebhookSecret, time.Now().Add(-time.Hour), paidEvent)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.webhook(t, paidEvent, tt.header); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	jobs, err := env.outbox.List(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Errorf("unverified deliveries queued %d jobs", len(jobs))
	}
}

func TestWebhook_PaidCheckoutQueuesOneConfirmation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		rec := env.webhook(t, paidEvent, payments.SignPayload(testWebhookSecret, time.Now(), paidEvent))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d status = %d, body %s", i, rec.Code, rec.Body.String())
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"received":true}` {
			t.Errorf("body = %s", got)
		}
	}

	jobs, err := env.outbox.List(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(jobs))
	}
	if jobs[0].ID != outbox.PaymentJobID("evt_paid_1") || jobs[0].To != "buyer@example.com" {
		t.Errorf("unexpected job %+v", jobs[0])
	}

	admin := env.adminCookies(t)
	var resp OutboxResponse
	decodeData(t, env.do(t, http.MethodGet, "/api/outbox?status=pending", nil, admin...), &resp)
	if len(resp.Jobs) != 1 || resp.Counts[models.OutboxPending] != 1 {
		t.Errorf("outbox view %+v", resp)
	}
}

func TestWebhook_IgnoresUnpaidAndOtherEvents(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, payload := range [][]byte{
		[]byte(`{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"payment_status":"unpaid","customer_email":"a@example.com"}}}`),
		[]byte(`{"id":"evt_3","type":"invoice.paid","data":{"object":{}}}`),
	} {
		rec := env.webhook(t, payload, payments.SignPayload(testWebhookSecret, time.Now(), payload))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	}
	jobs, _ := env.outbox.List(context.Background(), "", 10)
	if len(jobs) != 0 {
		t.Errorf("queued %d jobs, want 0", len(jobs))
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var health HealthStatus
	decodeData(t, env.do(t, http.MethodGet, "/health", nil), &health)
	if health.Status != "healthy" || health.Payments != "configured" {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWebhookRateLimitIsSeparate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(d *Deps) { d.Config.Security.RateLimitDisabled = false })

	// Exhaust the general budget from one address.
	for i := 0; i < RateLimitAPI.Requests; i++ {
		env.do(t, http.MethodGet, "/api/posts", nil)
	}
	if rec := env.do(t, http.MethodGet, "/api/posts", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("general budget not enforced, status = %d", rec.Code)
	}

	for i := 0; i < RateLimitAPI.Requests+10; i++ {
		rec := env.do(t, http.MethodPost, "/api/webhooks", `{"id":"evt_x"}`)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("webhook %d throttled by the general budget", i)
		}
	}
}
