package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"user-auth-service/internal/db"
	"user-auth-service/internal/session/domain"
)

const joinedColumns = `s.id, s.user_id, s.session_token, s.refresh_token, s.expires_at,
	s.refresh_expires_at, s.is_active, s.created_at, s.last_accessed_at, s.logged_out_at,
	s.ip_address, s.user_agent, u.email, u.name, u.is_active, u.account_locked`

type PostgresRepository struct {
	pool db.DBTX
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
// Operations join a context transaction when one is present (db.Conn).
func NewPostgresRepository(pool *sql.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists the session to the database. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const query = `
		INSERT INTO user_sessions (id, user_id, session_token, refresh_token, expires_at,
			refresh_expires_at, is_active, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.AccessToken,
		nullString(s.RefreshToken),
		s.ExpiresAt,
		nullTimeVal(s.RefreshExpiresAt),
		s.IsActive,
		s.CreatedAt,
		nullString(s.IPAddress),
		nullString(s.UserAgent),
	)
	return err
}

// GetLiveByAccessToken returns the active, unexpired session holding the given access
// credential, joined with its owning user, or nil if no such session exists. Expiry is
// evaluated against the database clock so all instances agree.
func (r *PostgresRepository) GetLiveByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	const query = `
		SELECT ` + joinedColumns + `
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.session_token = $1 AND s.is_active = TRUE AND s.expires_at > CURRENT_TIMESTAMP`
	return r.getJoined(ctx, query, token)
}

// GetLiveByRefreshToken returns the active session holding the given refresh credential
// while inside its refresh window, joined with its owning user, or nil.
func (r *PostgresRepository) GetLiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	const query = `
		SELECT ` + joinedColumns + `
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.refresh_token = $1 AND s.is_active = TRUE AND s.refresh_expires_at > CURRENT_TIMESTAMP`
	return r.getJoined(ctx, query, token)
}

func (r *PostgresRepository) getJoined(ctx context.Context, query, token string) (*domain.Session, error) {
	row := db.Conn(ctx, r.pool).QueryRowContext(ctx, query, token)

	var s domain.Session
	var refresh, ip, agent sql.NullString
	var refreshExp, lastAccessed, loggedOut sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.AccessToken,
		&refresh,
		&s.ExpiresAt,
		&refreshExp,
		&s.IsActive,
		&s.CreatedAt,
		&lastAccessed,
		&loggedOut,
		&ip,
		&agent,
		&s.UserEmail,
		&s.UserName,
		&s.UserIsActive,
		&s.UserAccountLocked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.RefreshToken = refresh.String
	s.IPAddress = ip.String
	s.UserAgent = agent.String
	if refreshExp.Valid {
		s.RefreshExpiresAt = refreshExp.Time
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		s.LastAccessedAt = &t
	}
	if loggedOut.Valid {
		t := loggedOut.Time
		s.LoggedOutAt = &t
	}
	return &s, nil
}

// UpdateAccessToken binds a new access credential and expiry to the session row.
func (r *PostgresRepository) UpdateAccessToken(ctx context.Context, sessionID, token string, expiresAt time.Time) error {
	const query = `
		UPDATE user_sessions
		SET session_token = $2, expires_at = $3, last_accessed_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, sessionID, token, expiresAt)
	return err
}

// TouchLastAccessed stamps last_accessed_at.
func (r *PostgresRepository) TouchLastAccessed(ctx context.Context, sessionID string) error {
	const query = `
		UPDATE user_sessions
		SET last_accessed_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, sessionID)
	return err
}

// Deactivate marks one session inactive with a logout timestamp. Idempotent.
func (r *PostgresRepository) Deactivate(ctx context.Context, sessionID string) error {
	const query = `
		UPDATE user_sessions
		SET is_active = FALSE, logged_out_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, sessionID)
	return err
}

// DeactivateAllByUser marks every active session for the user inactive.
func (r *PostgresRepository) DeactivateAllByUser(ctx context.Context, userID string) error {
	const query = `
		UPDATE user_sessions
		SET is_active = FALSE, logged_out_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = TRUE`
	_, err := db.Conn(ctx, r.pool).ExecContext(ctx, query, userID)
	return err
}

// DeleteExpired removes sessions whose access window has closed. Rows still inside the
// refresh window are kept so refresh remains possible.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `
		DELETE FROM user_sessions
		WHERE expires_at < CURRENT_TIMESTAMP
		  AND (refresh_expires_at IS NULL OR refresh_expires_at < CURRENT_TIMESTAMP)`
	res, err := db.Conn(ctx, r.pool).ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimeVal(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
