// Package audit records security-relevant events (logins, lockouts, resets) to
// the audit_logs table. Recording is best-effort and never fails the caller.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"user-auth-service/internal/audit/domain"
	auditrepo "user-auth-service/internal/audit/repository"
)

// Actions recorded by the auth and session flows.
const (
	ActionRegistered      = "user_registered"
	ActionLoginSuccess    = "login_success"
	ActionLoginFailure    = "login_failure"
	ActionAccountLocked   = "account_locked"
	ActionResetRequested  = "password_reset_requested"
	ActionPasswordReset   = "password_reset"
	ActionEmailVerified   = "email_verified"
	ActionLogout          = "logout"
	ActionSessionsRevoked = "sessions_revoked"
)

// ResourceUser is the resource name for account-level events.
const ResourceUser = "user"

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata, ip, userAgent string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata, ip, userAgent string) {
	if l.repo == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		UserAgent: userAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// Noop is an AuditLogger that drops every event. Useful in tests and tools.
type Noop struct{}

func (Noop) LogEvent(context.Context, string, string, string, string, string, string) {}
