// Package domain defines single-use, expiring tokens handed out over email for
// password reset and contact verification.
package domain

import "time"

// Purpose selects which ledger a token lives in. Tokens of different purposes
// never collide; redeeming under the wrong purpose always fails.
type Purpose string

const (
	PurposeReset        Purpose = "password_reset"
	PurposeVerification Purpose = "email_verification"
)

// ContactType qualifies the contact a verification token proves ownership of.
type ContactType string

const (
	ContactEmail  ContactType = "email"
	ContactMobile ContactType = "mobile"
)

// Token is one single-use credential. Reset tokens reference a user; verification
// tokens carry only the contact being proven, since verification may precede the
// account's existence.
type Token struct {
	ID      string
	Purpose Purpose
	Value   string

	// UserID is set for PurposeReset only.
	UserID string
	// ContactValue and ContactType are set for PurposeVerification only.
	ContactValue string
	ContactType  ContactType

	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time

	// Request origin recorded at issue time.
	IPAddress string
	UserAgent string
}

// Live reports whether the token can still be redeemed at the given instant.
func (t *Token) Live(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
