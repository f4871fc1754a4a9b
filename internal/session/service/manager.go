// Package service implements the session manager: paired access+refresh
// credentials bound to a user, validated against both the credential signature
// and the stored session row.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"user-auth-service/internal/security"
	"user-auth-service/internal/session/domain"
)

// ErrSessionInvalid covers signature failure, missing or expired sessions, and
// locked or inactive owners uniformly, so callers cannot distinguish the cases.
var ErrSessionInvalid = errors.New("invalid or expired session")

// Repo is the minimal session repository needed by the manager.
type Repo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetLiveByAccessToken(ctx context.Context, token string) (*domain.Session, error)
	GetLiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	UpdateAccessToken(ctx context.Context, sessionID, token string, expiresAt time.Time) error
	TouchLastAccessed(ctx context.Context, sessionID string) error
	Deactivate(ctx context.Context, sessionID string) error
	DeactivateAllByUser(ctx context.Context, userID string) error
}

// Manager issues, validates, rotates, and revokes sessions.
type Manager struct {
	repo       Repo
	tokens     *security.TokenProvider
	refreshTTL time.Duration
}

// NewManager returns a Manager with the given dependencies.
func NewManager(repo Repo, tokens *security.TokenProvider, refreshTTL time.Duration) *Manager {
	return &Manager{repo: repo, tokens: tokens, refreshTTL: refreshTTL}
}

// Create issues a signed access credential and an opaque refresh credential for the
// user and persists the session active.
func (m *Manager) Create(ctx context.Context, userID string, origin domain.Origin) (*domain.Session, error) {
	sessionID := uuid.New().String()
	accessToken, accessExp, err := m.tokens.IssueAccess(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("issue access credential: %w", err)
	}
	refreshToken, err := security.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("issue refresh credential: %w", err)
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:               sessionID,
		UserID:           userID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: now.Add(m.refreshTTL),
		IsActive:         true,
		CreatedAt:        now,
		IPAddress:        origin.IPAddress,
		UserAgent:        origin.UserAgent,
	}
	if err := m.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ValidateAccess authorizes a presented access credential. Two independent checks must
// both pass: the signature must verify, and the stored session row must be active,
// unexpired, and owned by an active, unlocked user. On success last_accessed_at is
// stamped and the joined session returned. Every failure is ErrSessionInvalid.
func (m *Manager) ValidateAccess(ctx context.Context, accessToken string) (*domain.Session, error) {
	sessionID, userID, err := m.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	sess, err := m.repo.GetLiveByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.ID != sessionID || sess.UserID != userID {
		return nil, ErrSessionInvalid
	}
	if !sess.UserIsActive || sess.UserAccountLocked {
		return nil, ErrSessionInvalid
	}
	if err := m.repo.TouchLastAccessed(ctx, sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// Rotate exchanges a refresh credential for a new signed access credential bound to the
// same session row. The refresh credential itself is not rotated and stays usable until
// its own expiry or revocation. Every validation failure is ErrSessionInvalid.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (string, time.Time, error) {
	sess, err := m.repo.GetLiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if sess == nil {
		return "", time.Time{}, ErrSessionInvalid
	}
	if !sess.UserIsActive || sess.UserAccountLocked {
		return "", time.Time{}, ErrSessionInvalid
	}
	accessToken, accessExp, err := m.tokens.IssueAccess(sess.ID, sess.UserID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access credential: %w", err)
	}
	if err := m.repo.UpdateAccessToken(ctx, sess.ID, accessToken, accessExp); err != nil {
		return "", time.Time{}, err
	}
	return accessToken, accessExp, nil
}

// Revoke marks one session inactive with a logout timestamp.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	return m.repo.Deactivate(ctx, sessionID)
}

// RevokeAll marks every active session for the user inactive. Used after password
// reset to force re-authentication everywhere.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	return m.repo.DeactivateAllByUser(ctx, userID)
}
