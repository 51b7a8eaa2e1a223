// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/logging"
)

// loginPageHTML is served when DashboardDir has no login.html.
const loginPageHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Admin sign-in</title></head>
<body>
<form id="login">
  <input type="hidden" name="callbackUrl" value="{{.Callback}}">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
  <p id="error" hidden></p>
</form>
<script>
document.getElementById("login").addEventListener("submit", async (e) => {
  e.preventDefault();
  const f = new FormData(e.target);
  const res = await fetch("/api/admin-auth", {
    method: "POST",
    credentials: "same-origin",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(Object.fromEntries(f)),
  });
  const body = await res.json();
  if (body.success) { window.location = body.data.redirect; return; }
  const el = document.getElementById("error");
  el.textContent = body.error.message;
  el.hidden = false;
});
</script>
</body>
</html>
`

const dashboardPlaceholder = `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Dashboard</title></head><body><p>Dashboard assets are not installed.</p></body></html>`

// serveLogin renders the admin login page. A file named login.html in the
// dashboard directory takes precedence over the built-in form.
func (router *Router) serveLogin(w http.ResponseWriter, r *http.Request) {
	if dir := router.server.DashboardDir; dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "login.html")); err == nil {
			http.ServeFile(w, r, filepath.Join(dir, "login.html"))
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if router.loginTemplate == nil {
		http.Error(w, "login page unavailable", http.StatusInternalServerError)
		return
	}
	data := struct{ Callback string }{
		Callback: auth.SafeCallback(r.URL.Query().Get(auth.CallbackParam), "/dashboard"),
	}
	if err := router.loginTemplate.Execute(w, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render login page")
	}
}

// serveDashboard serves static dashboard assets. Unknown paths fall back to
// index.html so client-side routes like /dashboard/messages work.
func (router *Router) serveDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	dir := router.server.DashboardDir
	if dir == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardPlaceholder))
		return
	}

	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, "/dashboard")), "/")
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		http.ServeFile(w, r, target)
		return
	}
	http.ServeFile(w, r, filepath.Join(dir, "index.html"))
}
