package domain

import (
	"errors"
	"time"
)

// Duplicate-key errors surfaced by the repository when an insert loses the
// race against the unique constraints on email or mobile_number.
var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrDuplicateMobileNumber = errors.New("mobile number already registered")
)

// User is the core identity record. PasswordHash is empty for social-only
// accounts (schema reserves the provider fields; no login flow uses them).
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	Name                string
	MobileNumber        string
	IsActive            bool
	EmailVerified       bool
	AccountLocked       bool
	FailedLoginAttempts int
	LastLoginAt         *time.Time
	SocialProvider      string
	SocialProviderID    string
	SocialProviderImage string
	CreatedOn           time.Time
	UpdatedOn           time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Name == "" {
		return errors.New("name is required")
	}
	if u.MobileNumber == "" {
		return errors.New("mobile number is required")
	}
	return nil
}

// Summary is the caller-facing projection of a user; it never carries the password hash.
type Summary struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	MobileNumber  string     `json:"mobile_number"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// Summarize returns the caller-facing projection of u.
func (u *User) Summarize() Summary {
	return Summary{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		MobileNumber:  u.MobileNumber,
		EmailVerified: u.EmailVerified,
		LastLoginAt:   u.LastLoginAt,
	}
}
