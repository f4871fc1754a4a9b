// Package mailer builds and delivers the account emails (verification, reset,
// welcome). Delivery goes either straight to SMTP or through a Kafka queue
// drained by the mail worker.
package mailer

import (
	"context"
	"fmt"
)

// Message is one outbound email.
type Message struct {
	To       string `json:"to"`
	ToName   string `json:"to_name"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

// Sender delivers messages. Implementations: SMTPSender (direct), KafkaSender (queued).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// BuildVerification returns the contact-verification email carrying the token link.
func BuildVerification(frontendURL, email, name, token string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Verify your email address",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nPlease verify your email address by opening the link below:\n\n%s/verify-email?token=%s\n\nThe link expires in 60 minutes. If you did not create an account, ignore this email.\n",
			name, frontendURL, token),
	}
}

// BuildReset returns the password-reset email carrying the token link.
func BuildReset(frontendURL, email, name, token string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Reset your password",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s/reset-password?token=%s\n\nThe link expires in 30 minutes and can be used once. If you did not request this, ignore this email.\n",
			name, frontendURL, token),
	}
}

// BuildWelcome returns the post-registration welcome email.
func BuildWelcome(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Welcome aboard",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour account has been created. You can sign in with this email address once it is verified.\n",
			name),
	}
}
