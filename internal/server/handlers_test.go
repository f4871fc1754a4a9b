package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authservice "user-auth-service/internal/auth/service"
	sessiondomain "user-auth-service/internal/session/domain"
	sessionservice "user-auth-service/internal/session/service"
	tokenservice "user-auth-service/internal/token/service"
	userdomain "user-auth-service/internal/user/domain"
)

// fakeAuth returns canned outcomes keyed by input values.
type fakeAuth struct {
	loggedOut []string
}

func (f *fakeAuth) Register(_ context.Context, email, _, name, _ string, _ sessiondomain.Origin) (*userdomain.Summary, error) {
	switch email {
	case "taken@example.com":
		return nil, authservice.ErrEmailAlreadyRegistered
	case "bad":
		return nil, authservice.ErrValidation
	}
	return &userdomain.Summary{ID: "user-1", Email: email, Name: name}, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string, _ sessiondomain.Origin) (*authservice.LoginResult, error) {
	switch {
	case email == "locked@example.com":
		return nil, authservice.ErrAccountLocked
	case email == "inactive@example.com":
		return nil, authservice.ErrAccountInactive
	case password != "right-pass-1":
		return nil, authservice.ErrInvalidCredentials
	}
	return &authservice.LoginResult{
		User:         userdomain.Summary{ID: "user-1", Email: email},
		SessionID:    "sess-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken != "refresh-1" {
		return "", time.Time{}, sessionservice.ErrSessionInvalid
	}
	return "access-2", time.Now().Add(time.Hour), nil
}

func (f *fakeAuth) Logout(_ context.Context, sessionID, _ string, _ sessiondomain.Origin) error {
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

func (f *fakeAuth) ForgotPassword(_ context.Context, _ string, _ sessiondomain.Origin) error {
	return nil
}

func (f *fakeAuth) ResetPassword(_ context.Context, token, _ string, _ sessiondomain.Origin) error {
	if token != "good-token" {
		return tokenservice.ErrTokenInvalid
	}
	return nil
}

func (f *fakeAuth) VerifyEmail(_ context.Context, token string, _ sessiondomain.Origin) error {
	if token != "good-token" {
		return tokenservice.ErrTokenInvalid
	}
	return nil
}

func (f *fakeAuth) Me(_ context.Context, userID string) (*userdomain.Summary, error) {
	if userID != "user-1" {
		return nil, authservice.ErrUserNotFound
	}
	return &userdomain.Summary{ID: "user-1", Email: "ada@example.com"}, nil
}

type fakeValidator struct{}

func (fakeValidator) ValidateAccess(_ context.Context, token string) (*sessiondomain.Session, error) {
	if token != "access-1" {
		return nil, sessionservice.ErrSessionInvalid
	}
	return &sessiondomain.Session{ID: "sess-1", UserID: "user-1"}, nil
}

func newTestServer() (http.Handler, *fakeAuth) {
	auth := &fakeAuth{}
	return NewRouter(auth, fakeValidator{}), auth
}

func doJSON(t *testing.T, h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	h, _ := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"right-pass-1","name":"Ada","mobile_number":"+15550001111"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var u userdomain.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil || u.Email != "ada@example.com" {
		t.Fatalf("bad body: %s (%v)", rec.Body.String(), err)
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/auth/register",
		`{"email":"taken@example.com","password":"right-pass-1","name":"X","mobile_number":"1"}`, ""); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: got %d, want 409", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/auth/register", `{not-json`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body: got %d, want 400", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	h, _ := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"right-pass-1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var res loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.AccessToken != "access-1" || res.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected tokens: %+v", res)
	}

	cases := []struct {
		body string
		want int
	}{
		{`{"email":"ada@example.com","password":"wrong"}`, http.StatusUnauthorized},
		{`{"email":"locked@example.com","password":"right-pass-1"}`, http.StatusLocked},
		{`{"email":"inactive@example.com","password":"right-pass-1"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if rec := doJSON(t, h, http.MethodPost, "/api/auth/login", tc.body, ""); rec.Code != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.body, rec.Code, tc.want)
		}
	}
}

func TestRefreshEndpoint(t *testing.T) {
	h, _ := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"refresh-1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"nope"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid refresh: got %d, want 401", rec.Code)
	}
}

func TestForgotPasswordIsUniform(t *testing.T) {
	h, _ := newTestServer()

	known := doJSON(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"ada@example.com"}`, "")
	unknown := doJSON(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`, "")
	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("got %d/%d, want 200/200", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses must be indistinguishable: %q vs %q", known.Body.String(), unknown.Body.String())
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	h, _ := newTestServer()

	if rec := doJSON(t, h, http.MethodPost, "/api/auth/reset-password",
		`{"token":"good-token","new_password":"brand-new-1"}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/auth/reset-password",
		`{"token":"burned","new_password":"brand-new-1"}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad token: got %d, want 400", rec.Code)
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	h, _ := newTestServer()

	if rec := doJSON(t, h, http.MethodGet, "/api/auth/verify-email?token=good-token", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/auth/verify-email?token=burned", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad token: got %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/auth/verify-email", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing token: got %d, want 400", rec.Code)
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	h, auth := newTestServer()

	if rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous logout: got %d, want 401", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "", "access-1"); rec.Code != http.StatusNoContent {
		t.Fatalf("got %d", rec.Code)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "sess-1" {
		t.Fatalf("expected session revoked, got %v", auth.loggedOut)
	}
}

func TestMeEndpoint(t *testing.T) {
	h, _ := newTestServer()

	if rec := doJSON(t, h, http.MethodGet, "/api/users/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: got %d, want 401", rec.Code)
	}
	rec := doJSON(t, h, http.MethodGet, "/api/users/me", "", "access-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var u userdomain.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil || u.ID != "user-1" {
		t.Fatalf("bad body: %s (%v)", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer()
	if rec := doJSON(t, h, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
}
