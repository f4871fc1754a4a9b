package mailer

import (
	"strings"
	"testing"
)

func TestBuildVerification(t *testing.T) {
	msg := BuildVerification("https://app.example.com", "a@example.com", "Ada", "tok123")
	if msg.To != "a@example.com" || msg.ToName != "Ada" {
		t.Fatalf("wrong recipient: %+v", msg)
	}
	if !strings.Contains(msg.TextBody, "https://app.example.com/verify-email?token=tok123") {
		t.Fatalf("verification link missing: %q", msg.TextBody)
	}
}

func TestBuildReset(t *testing.T) {
	msg := BuildReset("https://app.example.com", "a@example.com", "Ada", "tok456")
	if !strings.Contains(msg.TextBody, "https://app.example.com/reset-password?token=tok456") {
		t.Fatalf("reset link missing: %q", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "used once") {
		t.Fatalf("single-use notice missing: %q", msg.TextBody)
	}
}

func TestBuildWelcome(t *testing.T) {
	msg := BuildWelcome("a@example.com", "Ada")
	if msg.To != "a@example.com" || msg.Subject == "" || msg.TextBody == "" {
		t.Fatalf("incomplete welcome message: %+v", msg)
	}
}
