// Package service orchestrates registration, login with lockout, session
// lifecycle, and the single-use token flows for password reset and email
// verification.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-auth-service/internal/audit"
	"user-auth-service/internal/mailer"
	"user-auth-service/internal/security"
	sessiondomain "user-auth-service/internal/session/domain"
	sessionservice "user-auth-service/internal/session/service"
	"user-auth-service/internal/telemetry"
	tokendomain "user-auth-service/internal/token/domain"
	tokenservice "user-auth-service/internal/token/service"
	userdomain "user-auth-service/internal/user/domain"
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByMobileNumber(ctx context.Context, mobile string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	RecordFailedLogin(ctx context.Context, id string, threshold int) (attempts int, locked bool, err error)
	RecordLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetEmailVerified(ctx context.Context, id string) error
	Unlock(ctx context.Context, id string) error
}

// Sessions is the session manager surface needed by the auth service.
type Sessions interface {
	Create(ctx context.Context, userID string, origin sessiondomain.Origin) (*sessiondomain.Session, error)
	Rotate(ctx context.Context, refreshToken string) (string, time.Time, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, userID string) error
}

// Tokens is the single-use token ledger surface needed by the auth service.
type Tokens interface {
	IssueReset(ctx context.Context, userID, ip, userAgent string) (*tokendomain.Token, error)
	IssueVerification(ctx context.Context, contactValue string, contactType tokendomain.ContactType, ip, userAgent string) (*tokendomain.Token, error)
	Redeem(ctx context.Context, purpose tokendomain.Purpose, value string) (*tokendomain.Token, error)
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService implements register, login with brute-force lockout, refresh,
// logout, forgot/reset password, and email verification.
type AuthService struct {
	users            UserRepo
	sessions         Sessions
	tokens           Tokens
	tx               TxRunner
	hasher           *security.Hasher
	mail             mailer.Sender
	auditor          audit.AuditLogger
	metrics          *telemetry.Metrics
	lockoutThreshold int
	frontendURL      string
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be audit.Noop and metrics may be nil.
func NewAuthService(
	users UserRepo,
	sessions Sessions,
	tokens Tokens,
	tx TxRunner,
	hasher *security.Hasher,
	mail mailer.Sender,
	auditor audit.AuditLogger,
	metrics *telemetry.Metrics,
	lockoutThreshold int,
	frontendURL string,
) *AuthService {
	return &AuthService{
		users:            users,
		sessions:         sessions,
		tokens:           tokens,
		tx:               tx,
		hasher:           hasher,
		mail:             mail,
		auditor:          auditor,
		metrics:          metrics,
		lockoutThreshold: lockoutThreshold,
		frontendURL:      frontendURL,
	}
}

// LoginResult is the outcome of Login: the session credentials plus the user projection.
type LoginResult struct {
	User         userdomain.Summary
	SessionID    string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Register creates an account and sends the verification and welcome emails.
// Email delivery is best-effort here; a mail outage must not lose the account.
func (s *AuthService) Register(ctx context.Context, email, password, name, mobile string, origin sessiondomain.Origin) (*userdomain.Summary, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	mobile = strings.TrimSpace(mobile)
	if mobile != "" {
		byMobile, err := s.users.GetByMobileNumber(ctx, mobile)
		if err != nil {
			return nil, err
		}
		if byMobile != nil {
			return nil, ErrMobileAlreadyRegistered
		}
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(name),
		MobileNumber: mobile,
		IsActive:     true,
		CreatedOn:    now,
		UpdatedOn:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, userdomain.ErrDuplicateEmail):
			return nil, ErrEmailAlreadyRegistered
		case errors.Is(err, userdomain.ErrDuplicateMobileNumber):
			return nil, ErrMobileAlreadyRegistered
		}
		return nil, err
	}

	tok, err := s.tokens.IssueVerification(ctx, email, tokendomain.ContactEmail, origin.IPAddress, origin.UserAgent)
	if err != nil {
		log.Printf("auth: register %s: issue verification token: %v", user.ID, err)
	} else {
		s.metrics.RecordTokenIssued(ctx, string(tokendomain.PurposeVerification))
		if err := s.mail.Send(ctx, mailer.BuildVerification(s.frontendURL, email, user.Name, tok.Value)); err != nil {
			log.Printf("auth: register %s: send verification mail: %v", user.ID, err)
		}
	}
	if err := s.mail.Send(ctx, mailer.BuildWelcome(email, user.Name)); err != nil {
		log.Printf("auth: register %s: send welcome mail: %v", user.ID, err)
	}

	s.auditor.LogEvent(ctx, user.ID, audit.ActionRegistered, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	s.metrics.RecordRegistration(ctx)
	summary := user.Summarize()
	return &summary, nil
}

// Login authenticates with email/password and opens a session. A wrong password
// and an unknown email are indistinguishable to the caller. Each failure against
// an existing account counts toward lockout; reaching the threshold locks the
// account, and locked accounts are rejected even with the correct password.
func (s *AuthService) Login(ctx context.Context, email, password string, origin sessiondomain.Origin) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		s.metrics.RecordLoginFailure(ctx)
		return nil, ErrInvalidCredentials
	}
	if user.AccountLocked {
		s.auditor.LogEvent(ctx, user.ID, audit.ActionLoginFailure, audit.ResourceUser, "account locked", origin.IPAddress, origin.UserAgent)
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, s.recordFailure(ctx, user, origin)
	}
	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create(ctx, user.ID, origin)
	if err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, user.ID, audit.ActionLoginSuccess, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	s.metrics.RecordLogin(ctx)
	now := time.Now()
	user.LastLoginAt = &now
	return &LoginResult{
		User:         user.Summarize(),
		SessionID:    sess.ID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}, nil
}

// recordFailure counts one failed attempt and locks the account at the
// threshold. The failing attempt itself still reads as bad credentials; only
// subsequent attempts see the lock.
func (s *AuthService) recordFailure(ctx context.Context, user *userdomain.User, origin sessiondomain.Origin) error {
	attempts, locked, err := s.users.RecordFailedLogin(ctx, user.ID, s.lockoutThreshold)
	if err != nil {
		return err
	}
	s.metrics.RecordLoginFailure(ctx)
	s.auditor.LogEvent(ctx, user.ID, audit.ActionLoginFailure, audit.ResourceUser,
		fmt.Sprintf("attempts=%d", attempts), origin.IPAddress, origin.UserAgent)
	if locked {
		s.metrics.RecordLockout(ctx)
		s.auditor.LogEvent(ctx, user.ID, audit.ActionAccountLocked, audit.ResourceUser,
			fmt.Sprintf("attempts=%d", attempts), origin.IPAddress, origin.UserAgent)
	}
	return ErrInvalidCredentials
}

// Refresh exchanges a refresh credential for a new access credential.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, sessionservice.ErrSessionInvalid
	}
	return s.sessions.Rotate(ctx, refreshToken)
}

// Logout revokes the session. Idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID, userID string, origin sessiondomain.Origin) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, userID, audit.ActionLogout, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	return nil
}

// ForgotPassword issues a reset token and emails it. For unknown or inactive
// accounts it silently succeeds so the endpoint cannot be used to probe which
// emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, origin sessiondomain.Origin) error {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}
	tok, err := s.tokens.IssueReset(ctx, user.ID, origin.IPAddress, origin.UserAgent)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.BuildReset(s.frontendURL, user.Email, user.Name, tok.Value)); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, user.ID, audit.ActionResetRequested, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	s.metrics.RecordTokenIssued(ctx, string(tokendomain.PurposeReset))
	return nil
}

// ResetPassword redeems a reset token and installs the new password. Redeeming
// the token, updating the password, clearing the lockout, and revoking every
// session happen in one transaction, so a token is never burned without the
// password actually changing.
func (s *AuthService) ResetPassword(ctx context.Context, tokenValue, newPassword string, origin sessiondomain.Origin) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	var userID string
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		tok, err := s.tokens.Redeem(ctx, tokendomain.PurposeReset, tokenValue)
		if err != nil {
			return err
		}
		userID = tok.UserID
		if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
			return err
		}
		if err := s.users.Unlock(ctx, userID); err != nil {
			return err
		}
		return s.sessions.RevokeAll(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, userID, audit.ActionPasswordReset, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	s.auditor.LogEvent(ctx, userID, audit.ActionSessionsRevoked, audit.ResourceUser, "password reset", origin.IPAddress, origin.UserAgent)
	s.metrics.RecordTokenRedeemed(ctx, string(tokendomain.PurposeReset))
	s.metrics.RecordSessionsRevoked(ctx, 1)
	return nil
}

// VerifyEmail redeems a verification token and marks the matching account's
// email verified. If no account holds the contact yet the transaction rolls
// back, leaving the token live for a later attempt.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenValue string, origin sessiondomain.Origin) error {
	var userID string
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		tok, err := s.tokens.Redeem(ctx, tokendomain.PurposeVerification, tokenValue)
		if err != nil {
			return err
		}
		var user *userdomain.User
		switch tok.ContactType {
		case tokendomain.ContactMobile:
			user, err = s.users.GetByMobileNumber(ctx, tok.ContactValue)
		default:
			user, err = s.users.GetByEmail(ctx, tok.ContactValue)
		}
		if err != nil {
			return err
		}
		if user == nil {
			return tokenservice.ErrTokenInvalid
		}
		userID = user.ID
		return s.users.SetEmailVerified(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, userID, audit.ActionEmailVerified, audit.ResourceUser, "", origin.IPAddress, origin.UserAgent)
	s.metrics.RecordTokenRedeemed(ctx, string(tokendomain.PurposeVerification))
	return nil
}

// Me returns the caller-facing projection of the user.
func (s *AuthService) Me(ctx context.Context, userID string) (*userdomain.Summary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	summary := user.Summarize()
	return &summary, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return fmt.Errorf("%w: password must contain letters and numbers", ErrValidation)
	}
	return nil
}
