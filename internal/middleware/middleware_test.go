package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
)

func gated(store session.Store, hit *bool) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
	log := logger.NewNop()
	return SessionContext(store, "vet_session", log)(RequireSession(log)(h))
}

func TestRequireSession_RejectsWithoutCookie(t *testing.T) {
	var hit bool
	h := gated(memory.NewSessionStore(time.Hour), &hit)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))

	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("expected 401 without reaching handler, got %d hit=%v", rec.Code, hit)
	}
	if !strings.Contains(rec.Body.String(), MsgUnauthorized) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireSession_RejectsUnknownAndUnauthenticated(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	anon, _ := store.Create(context.Background(), session.Data{IsAuthenticated: false})

	for _, id := range []string{"forged", anon.ID} {
		var hit bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "vet_session", Value: id})
		rec := httptest.NewRecorder()
		gated(store, &hit).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized || hit {
			t.Fatalf("cookie %q: expected 401, got %d", id, rec.Code)
		}
	}
}

func TestRequireSession_AllowsAuthenticated(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	s, _ := store.Create(context.Background(), session.Data{IsAuthenticated: true, UserID: "u-1"})

	var hit bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "vet_session", Value: s.ID})
	rec := httptest.NewRecorder()
	gated(store, &hit).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !hit {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	opts := CookieOptions{Name: "vet_session", Secure: true, TTL: 24 * time.Hour}
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, opts, session.Session{ID: "abc", ExpiresAt: time.Now().Add(24 * time.Hour)})

	c := rec.Result().Cookies()[0]
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.MaxAge != 86400 || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie: %+v", c)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, opts)
	if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expected cleared cookie, got %+v", c)
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:3000/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/clients", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("unexpected preflight: %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin must not be allowed")
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "fonts.googleapis.com") {
		t.Fatalf("missing csp")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff")
	}
}

func TestRequireSession_PassesAccessTokenDownstream(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	s, _ := store.Create(context.Background(), session.Data{IsAuthenticated: true, UserID: "u-1", AccessToken: "user-tok"})

	var got string
	log := logger.NewNop()
	h := SessionContext(store, "vet_session", log)(RequireSession(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.AccessTokenFrom(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/clients", nil)
	req.AddCookie(&http.Cookie{Name: "vet_session", Value: s.ID})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "user-tok" {
		t.Fatalf("expected session access token in context, got %q", got)
	}
}
