// Package server wires the auth endpoints into an HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"user-auth-service/internal/server/middleware"
)

// NewRouter builds the full route tree. validator gates the authenticated
// endpoints; the router is wrapped with otelhttp so every request is traced.
func NewRouter(auth AuthAPI, validator middleware.SessionValidator) http.Handler {
	h := NewHandlers(auth)

	r := chi.NewRouter()
	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
	)

	r.Get("/healthz", Healthz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Get("/verify-email", h.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator))
			r.Post("/logout", h.Logout)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator))
			r.Get("/me", h.Me)
		})
	})

	return otelhttp.NewHandler(r, "http.server")
}
