package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sessiondomain "user-auth-service/internal/session/domain"
	sessionservice "user-auth-service/internal/session/service"
)

type fakeValidator struct {
	valid map[string]*sessiondomain.Session
	err   error
}

func (f *fakeValidator) ValidateAccess(_ context.Context, token string) (*sessiondomain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.valid[token]; ok {
		return s, nil
	}
	return nil, sessionservice.ErrSessionInvalid
}

func identityEcho(t *testing.T, want Identity) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		got, ok := GetIdentity(r.Context())
		if !ok || got != want {
			t.Errorf("identity = %+v, want %+v", got, want)
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireAuth(t *testing.T) {
	v := &fakeValidator{valid: map[string]*sessiondomain.Session{
		"good": {ID: "sess-1", UserID: "user-1", UserEmail: "ada@example.com", UserName: "Ada"},
	}}
	h := RequireAuth(v)(identityEcho(t, Identity{
		UserID:    "user-1",
		Email:     "ada@example.com",
		Name:      "Ada",
		SessionID: "sess-1",
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid credential: got %d", rec.Code)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	v := &fakeValidator{valid: map[string]*sessiondomain.Session{}}
	h := RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	for _, header := range []string{"", "Bearer bad", "Basic Zm9v"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: got %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthStoreFailure(t *testing.T) {
	v := &fakeValidator{err: errors.New("connection refused")}
	h := RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("store failure: got %d, want 500", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	v := &fakeValidator{valid: map[string]*sessiondomain.Session{
		"good": {ID: "sess-1", UserID: "user-1", UserEmail: "ada@example.com", UserName: "Ada"},
	}}

	// Valid credential attaches identity.
	h := OptionalAuth(v)(identityEcho(t, Identity{
		UserID:    "user-1",
		Email:     "ada@example.com",
		Name:      "Ada",
		SessionID: "sess-1",
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	// Invalid or missing credentials pass through anonymously.
	h = OptionalAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); ok {
			t.Error("anonymous request must carry no identity")
		}
		w.WriteHeader(http.StatusOK)
	}))
	for _, header := range []string{"", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: got %d, want 200", header, rec.Code)
		}
	}
}

func TestOriginFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4242"
	req.Header.Set("User-Agent", "cli")
	o := OriginFromRequest(req)
	if o.IPAddress != "192.0.2.10" || o.UserAgent != "cli" {
		t.Fatalf("unexpected origin: %+v", o)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if o := OriginFromRequest(req); o.IPAddress != "203.0.113.7" {
		t.Fatalf("forwarded ip must win: %+v", o)
	}
}
