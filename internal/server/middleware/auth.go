// Package middleware carries the HTTP auth gate and request identity context.
package middleware

import (
	"context"
	"errors"
	"net/http"

	sessiondomain "user-auth-service/internal/session/domain"
	sessionservice "user-auth-service/internal/session/service"
)

// SessionValidator authorizes a presented access credential against both its
// signature and the live session store.
type SessionValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*sessiondomain.Session, error)
}

// RequireAuth rejects requests without a valid access credential with 401 and
// puts the caller's identity on the request context for the handler.
func RequireAuth(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, `{"error":"missing credentials"}`, http.StatusUnauthorized)
				return
			}
			sess, err := v.ValidateAccess(r.Context(), token)
			if err != nil {
				// Only a rejected credential reads as 401; a store failure is not
				// an authorization verdict.
				if errors.Is(err, sessionservice.ErrSessionInvalid) {
					http.Error(w, `{"error":"invalid or expired session"}`, http.StatusUnauthorized)
					return
				}
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identityOf(sess))))
		})
	}
}

// OptionalAuth attaches the caller's identity when a valid credential is
// presented but lets anonymous requests straight through. An invalid credential
// is treated as anonymous, not rejected.
func OptionalAuth(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := BearerToken(r); token != "" {
				if sess, err := v.ValidateAccess(r.Context(), token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identityOf(sess)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityOf(sess *sessiondomain.Session) Identity {
	return Identity{
		UserID:    sess.UserID,
		Email:     sess.UserEmail,
		Name:      sess.UserName,
		SessionID: sess.ID,
	}
}
