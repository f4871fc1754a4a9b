package repository

import (
	"context"

	"user-auth-service/internal/user/domain"
)

// Repository defines persistence for users. Lookup methods return (nil, nil)
// for missing rows; errors are database failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByMobileNumber(ctx context.Context, mobile string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// RecordFailedLogin increments failed_login_attempts and sets account_locked
	// when the post-increment count reaches threshold, in one conditional statement.
	// Returns the post-increment count and lock state.
	RecordFailedLogin(ctx context.Context, id string, threshold int) (attempts int, locked bool, err error)
	// RecordLogin resets failed_login_attempts and stamps last_login_at.
	RecordLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetEmailVerified(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	Lock(ctx context.Context, id string) error
	// Unlock clears account_locked and resets the counter; the only path that
	// clears a policy lock.
	Unlock(ctx context.Context, id string) error
}
