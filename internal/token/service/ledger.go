// Package service implements the single-use token ledger used by the password
// reset and contact verification flows.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"user-auth-service/internal/security"
	"user-auth-service/internal/token/domain"
)

// ErrTokenInvalid covers unknown, already-used, and expired tokens uniformly.
var ErrTokenInvalid = errors.New("invalid or expired token")

// Repo is the minimal token repository needed by the ledger.
type Repo interface {
	Create(ctx context.Context, t *domain.Token) error
	Redeem(ctx context.Context, purpose domain.Purpose, value string) (*domain.Token, error)
	DeleteIssued(ctx context.Context, purpose domain.Purpose, subject string) error
	DeleteExpired(ctx context.Context, purpose domain.Purpose) (int64, error)
}

// Ledger issues and redeems single-use tokens. Each purpose has its own TTL.
type Ledger struct {
	repo            Repo
	resetTTL        time.Duration
	verificationTTL time.Duration
}

// NewLedger returns a Ledger with the given dependencies.
func NewLedger(repo Repo, resetTTL, verificationTTL time.Duration) *Ledger {
	return &Ledger{repo: repo, resetTTL: resetTTL, verificationTTL: verificationTTL}
}

// IssueReset mints a reset token for the user. Any earlier reset tokens for the
// same user are discarded first, so at most one reset token is outstanding.
func (l *Ledger) IssueReset(ctx context.Context, userID, ip, userAgent string) (*domain.Token, error) {
	if err := l.repo.DeleteIssued(ctx, domain.PurposeReset, userID); err != nil {
		return nil, fmt.Errorf("discard earlier reset tokens: %w", err)
	}
	t, err := l.mint(domain.PurposeReset, l.resetTTL)
	if err != nil {
		return nil, err
	}
	t.UserID = userID
	t.IPAddress, t.UserAgent = ip, userAgent
	if err := l.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// IssueVerification mints a verification token for the contact. Earlier tokens
// for the contact stay valid until they expire or are redeemed.
func (l *Ledger) IssueVerification(ctx context.Context, contactValue string, contactType domain.ContactType, ip, userAgent string) (*domain.Token, error) {
	t, err := l.mint(domain.PurposeVerification, l.verificationTTL)
	if err != nil {
		return nil, err
	}
	t.ContactValue = contactValue
	t.ContactType = contactType
	t.IPAddress, t.UserAgent = ip, userAgent
	if err := l.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Redeem consumes the live token with the given value. Exactly one call per
// token succeeds; any repeat, expired, or unknown value gets ErrTokenInvalid.
func (l *Ledger) Redeem(ctx context.Context, purpose domain.Purpose, value string) (*domain.Token, error) {
	t, err := l.repo.Redeem(ctx, purpose, value)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTokenInvalid
	}
	return t, nil
}

// PurgeExpired removes expired tokens of both purposes and returns the total removed.
func (l *Ledger) PurgeExpired(ctx context.Context) (int64, error) {
	var total int64
	for _, p := range []domain.Purpose{domain.PurposeReset, domain.PurposeVerification} {
		n, err := l.repo.DeleteExpired(ctx, p)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (l *Ledger) mint(purpose domain.Purpose, ttl time.Duration) (*domain.Token, error) {
	value, err := security.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	now := time.Now().UTC()
	return &domain.Token{
		ID:        uuid.New().String(),
		Purpose:   purpose,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
