package repository

import (
	"context"
	"time"

	"user-auth-service/internal/session/domain"
)

// Repository defines persistence for sessions. Lookup methods return (nil, nil)
// for missing rows; errors are database failures only.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// GetLiveByAccessToken returns the session with the given access credential,
	// joined with its owning user, only while the session is active and inside
	// its access window.
	GetLiveByAccessToken(ctx context.Context, token string) (*domain.Session, error)
	// GetLiveByRefreshToken is GetLiveByAccessToken for the refresh credential
	// and the refresh window.
	GetLiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// UpdateAccessToken binds a newly issued access credential and expiry to an
	// existing session row (rotation; no new row).
	UpdateAccessToken(ctx context.Context, sessionID, token string, expiresAt time.Time) error
	TouchLastAccessed(ctx context.Context, sessionID string) error
	Deactivate(ctx context.Context, sessionID string) error
	DeactivateAllByUser(ctx context.Context, userID string) error
	// DeleteExpired removes sessions past their access expiry. Idempotent.
	DeleteExpired(ctx context.Context) (int64, error)
}
