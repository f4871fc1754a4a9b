package repository

import (
	"context"

	"user-auth-service/internal/token/domain"
)

// Repository defines persistence for single-use tokens. Lookup methods return
// (nil, nil) for missing rows; errors are database failures only.
type Repository interface {
	Create(ctx context.Context, t *domain.Token) error
	// Redeem marks the live token with the given value used and returns it.
	// The mark is conditional on the token being unused and unexpired, so under
	// concurrent redemption exactly one caller gets the token and the rest get
	// (nil, nil).
	Redeem(ctx context.Context, purpose domain.Purpose, value string) (*domain.Token, error)
	// DeleteIssued removes all tokens previously issued to the subject: the
	// user ID for reset tokens, the contact value for verification tokens.
	DeleteIssued(ctx context.Context, purpose domain.Purpose, subject string) error
	// DeleteExpired removes tokens past their expiry, used or not. Idempotent.
	DeleteExpired(ctx context.Context, purpose domain.Purpose) (int64, error)
}
