package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	sessiondomain "user-auth-service/internal/session/domain"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// Identity is the authenticated caller attached to the request context by the
// auth gate.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
}

// WithIdentity returns a context carrying the caller's identity.
// Handlers read it back via GetIdentity or the field accessors.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller identity and true if set.
func GetIdentity(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey).(Identity)
	return v, ok
}

// GetUserID returns the caller's user id and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.UserID, ok
}

// GetSessionID returns the caller's session id and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.SessionID, ok
}

// GetUserEmail returns the caller's email and true if set; otherwise "", false.
func GetUserEmail(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.Email, ok
}

// GetUserName returns the caller's display name and true if set; otherwise "", false.
func GetUserName(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.Name, ok
}

// OriginFromRequest extracts the client IP and user agent. X-Forwarded-For wins
// over the socket address so origins survive a reverse proxy.
func OriginFromRequest(r *http.Request) sessiondomain.Origin {
	ip := r.Header.Get("X-Forwarded-For")
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return sessiondomain.Origin{IPAddress: ip, UserAgent: r.UserAgent()}
}

// BearerToken returns the credential from an "Authorization: Bearer x" header,
// or "" when absent or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
