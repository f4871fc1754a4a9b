package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"user-auth-service/internal/db"
	"user-auth-service/internal/token/domain"
)

type PostgresRepository struct {
	pool db.DBTX
}

// NewPostgresRepository returns a token repository that uses the given db for persistence.
// Operations join a context transaction when one is present (db.Conn).
func NewPostgresRepository(pool *sql.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists the token to its purpose's table. The token must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Token) error {
	conn := db.Conn(ctx, r.pool)
	switch t.Purpose {
	case domain.PurposeReset:
		const query = `
			INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at, ip_address, user_agent)
			VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7)`
		_, err := conn.ExecContext(ctx, query,
			t.ID, t.UserID, t.Value, t.ExpiresAt, t.CreatedAt,
			nullString(t.IPAddress), nullString(t.UserAgent))
		return err
	case domain.PurposeVerification:
		const query = `
			INSERT INTO email_verification_tokens (id, contact_value, contact_type, token, expires_at, used, created_at, ip_address, user_agent)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8)`
		_, err := conn.ExecContext(ctx, query,
			t.ID, t.ContactValue, string(t.ContactType), t.Value, t.ExpiresAt, t.CreatedAt,
			nullString(t.IPAddress), nullString(t.UserAgent))
		return err
	default:
		return fmt.Errorf("unknown token purpose %q", t.Purpose)
	}
}

// Redeem atomically marks the live token used and returns it, or (nil, nil) when
// no live token holds the value. The used/expiry conditions live in the UPDATE
// itself so two concurrent redemptions cannot both succeed.
func (r *PostgresRepository) Redeem(ctx context.Context, purpose domain.Purpose, value string) (*domain.Token, error) {
	conn := db.Conn(ctx, r.pool)
	switch purpose {
	case domain.PurposeReset:
		const query = `
			UPDATE password_reset_tokens
			SET used = TRUE, used_at = CURRENT_TIMESTAMP
			WHERE token = $1 AND used = FALSE AND expires_at > CURRENT_TIMESTAMP
			RETURNING id, user_id, token, expires_at, used, used_at, created_at`
		row := conn.QueryRowContext(ctx, query, value)
		t := domain.Token{Purpose: domain.PurposeReset}
		var usedAt sql.NullTime
		err := row.Scan(&t.ID, &t.UserID, &t.Value, &t.ExpiresAt, &t.Used, &usedAt, &t.CreatedAt)
		return redeemed(&t, usedAt, err)
	case domain.PurposeVerification:
		const query = `
			UPDATE email_verification_tokens
			SET used = TRUE, used_at = CURRENT_TIMESTAMP
			WHERE token = $1 AND used = FALSE AND expires_at > CURRENT_TIMESTAMP
			RETURNING id, contact_value, contact_type, token, expires_at, used, used_at, created_at`
		row := conn.QueryRowContext(ctx, query, value)
		t := domain.Token{Purpose: domain.PurposeVerification}
		var usedAt sql.NullTime
		var contactType string
		err := row.Scan(&t.ID, &t.ContactValue, &contactType, &t.Value, &t.ExpiresAt, &t.Used, &usedAt, &t.CreatedAt)
		t.ContactType = domain.ContactType(contactType)
		return redeemed(&t, usedAt, err)
	default:
		return nil, fmt.Errorf("unknown token purpose %q", purpose)
	}
}

func redeemed(t *domain.Token, usedAt sql.NullTime, err error) (*domain.Token, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if usedAt.Valid {
		at := usedAt.Time
		t.UsedAt = &at
	}
	return t, nil
}

// DeleteIssued removes every token issued to the subject, used or not.
func (r *PostgresRepository) DeleteIssued(ctx context.Context, purpose domain.Purpose, subject string) error {
	conn := db.Conn(ctx, r.pool)
	switch purpose {
	case domain.PurposeReset:
		_, err := conn.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, subject)
		return err
	case domain.PurposeVerification:
		_, err := conn.ExecContext(ctx, `DELETE FROM email_verification_tokens WHERE contact_value = $1`, subject)
		return err
	default:
		return fmt.Errorf("unknown token purpose %q", purpose)
	}
}

// DeleteExpired removes tokens past their expiry.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, purpose domain.Purpose) (int64, error) {
	conn := db.Conn(ctx, r.pool)
	var table string
	switch purpose {
	case domain.PurposeReset:
		table = "password_reset_tokens"
	case domain.PurposeVerification:
		table = "email_verification_tokens"
	default:
		return 0, fmt.Errorf("unknown token purpose %q", purpose)
	}
	res, err := conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
