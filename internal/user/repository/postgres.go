package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"user-auth-service/internal/db"
	"user-auth-service/internal/user/domain"
)

const userColumns = `id, email, password, name, mobile_number, is_active, email_verified,
	account_locked, failed_login_attempts, last_login_at,
	social_login_provider, social_login_provider_id, social_login_provider_image_url,
	created_on, updated_on`

type PostgresRepository struct {
	pool db.DBTX
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
// Operations join a context transaction when one is present (db.Conn).
func NewPostgresRepository(pool *sql.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email (case-sensitive exact match),
// or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByMobileNumber returns the user with the given mobile number, or nil if not found.
func (r *PostgresRepository) GetByMobileNumber(ctx context.Context, mobile string) (*domain.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE mobile_number = $1`, mobile)
}

func (r *PostgresRepository) getBy(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := db.Conn(ctx, r.pool).QueryRowContext(ctx, query, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	const query = `
		INSERT INTO users (id, email, password, name, mobile_number, is_active, email_verified,
			account_locked, failed_login_attempts, social_login_provider, social_login_provider_id,
			social_login_provider_image_url, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query,
		u.ID,
		u.Email,
		nullString(u.PasswordHash),
		u.Name,
		u.MobileNumber,
		u.IsActive,
		u.EmailVerified,
		u.AccountLocked,
		u.FailedLoginAttempts,
		nullString(u.SocialProvider),
		nullString(u.SocialProviderID),
		nullString(u.SocialProviderImage),
		u.CreatedOn,
		u.UpdatedOn,
	)
	// Pre-insert duplicate checks can lose the race; the unique constraints
	// are the authority.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "mobile_number") {
			return domain.ErrDuplicateMobileNumber
		}
		return domain.ErrDuplicateEmail
	}
	return err
}

// RecordFailedLogin increments failed_login_attempts and flips account_locked when the
// post-increment count reaches threshold. The increment and the lock decision are one
// statement so concurrent failures cannot observe a stale count.
func (r *PostgresRepository) RecordFailedLogin(ctx context.Context, id string, threshold int) (int, bool, error) {
	const query = `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			account_locked = account_locked OR (failed_login_attempts + 1 >= $2),
			updated_on = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING failed_login_attempts, account_locked`
	var attempts int
	var locked bool
	err := db.Conn(ctx, r.pool).QueryRowContext(ctx, query, id, threshold).Scan(&attempts, &locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return attempts, locked, nil
}

// RecordLogin resets failed_login_attempts to 0 and stamps last_login_at.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET failed_login_attempts = 0, last_login_at = CURRENT_TIMESTAMP, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id)
	return err
}

// UpdatePassword persists a new password hash. Lockout state and sessions are untouched;
// the reset flow handles revocation.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password = $2, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id, passwordHash)
	return err
}

// SetEmailVerified marks the user's email verified. Idempotent.
func (r *PostgresRepository) SetEmailVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET email_verified = TRUE, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id)
	return err
}

// SetActive sets is_active. Idempotent.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `
		UPDATE users
		SET is_active = $2, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id, active)
	return err
}

// Lock sets account_locked. Idempotent.
func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET account_locked = TRUE, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id)
	return err
}

// Unlock clears account_locked and resets failed_login_attempts. Idempotent.
func (r *PostgresRepository) Unlock(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET account_locked = FALSE, failed_login_attempts = 0, updated_on = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var password, provider, providerID, providerImage sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID,
		&u.Email,
		&password,
		&u.Name,
		&u.MobileNumber,
		&u.IsActive,
		&u.EmailVerified,
		&u.AccountLocked,
		&u.FailedLoginAttempts,
		&lastLogin,
		&provider,
		&providerID,
		&providerImage,
		&u.CreatedOn,
		&u.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = password.String
	u.SocialProvider = provider.String
	u.SocialProviderID = providerID.String
	u.SocialProviderImage = providerImage.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
