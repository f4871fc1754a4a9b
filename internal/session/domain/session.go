package domain

import "time"

// Session represents one authenticated client binding. AccessToken is the
// signed access credential (unique); RefreshToken is an opaque value usable
// until RefreshExpiresAt or explicit revocation.
type Session struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	IsActive         bool
	CreatedAt        time.Time
	LastAccessedAt   *time.Time
	LoggedOutAt      *time.Time
	IPAddress        string
	UserAgent        string

	// Owning-user fields populated by joined lookups; zero for plain reads.
	UserEmail         string
	UserName          string
	UserIsActive      bool
	UserAccountLocked bool
}

// Origin is request-origin metadata recorded on sessions and tokens.
type Origin struct {
	IPAddress string
	UserAgent string
}
