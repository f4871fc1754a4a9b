package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "auth-service" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "auth-service")
	}
	if cfg.JWTAudience != "auth-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "auth-api")
	}
	if cfg.AccessTokenTTL != "24h" {
		t.Errorf("AccessTokenTTL = %q, want %q", cfg.AccessTokenTTL, "24h")
	}
	if cfg.RefreshTokenTTL != "168h" {
		t.Errorf("RefreshTokenTTL = %q, want %q", cfg.RefreshTokenTTL, "168h")
	}
	if cfg.ResetTokenTTL != "30m" {
		t.Errorf("ResetTokenTTL = %q, want %q", cfg.ResetTokenTTL, "30m")
	}
	if cfg.VerificationTokenTTL != "60m" {
		t.Errorf("VerificationTokenTTL = %q, want %q", cfg.VerificationTokenTTL, "60m")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold = %d, want 5", cfg.LockoutThreshold)
	}
	if cfg.MailKafkaTopic != "auth-mail" {
		t.Errorf("MailKafkaTopic = %q, want %q", cfg.MailKafkaTopic, "auth-mail")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("LOCKOUT_THRESHOLD", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 3 {
		t.Errorf("LockoutThreshold = %d, want 3", cfg.LockoutThreshold)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject BCRYPT_COST=99")
	}
}

func TestLoad_InvalidLockoutThreshold(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("LOCKOUT_THRESHOLD", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject LOCKOUT_THRESHOLD=-1")
	}
}

func TestTTLAccessors(t *testing.T) {
	cfg := &Config{
		AccessTokenTTL:       "1h",
		RefreshTokenTTL:      "48h",
		ResetTokenTTL:        "15m",
		VerificationTokenTTL: "bogus",
		SweepInterval:        "",
	}
	if got := cfg.AccessTTL(); got != time.Hour {
		t.Errorf("AccessTTL = %v, want 1h", got)
	}
	if got := cfg.RefreshTTL(); got != 48*time.Hour {
		t.Errorf("RefreshTTL = %v, want 48h", got)
	}
	if got := cfg.ResetTTL(); got != 15*time.Minute {
		t.Errorf("ResetTTL = %v, want 15m", got)
	}
	if got := cfg.VerificationTTL(); got != 60*time.Minute {
		t.Errorf("VerificationTTL = %v, want fallback 60m", got)
	}
	if got := cfg.SweepEvery(); got != 10*time.Minute {
		t.Errorf("SweepEvery = %v, want fallback 10m", got)
	}
}

func TestMailKafkaBrokersList(t *testing.T) {
	cfg := &Config{MailKafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.MailKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("MailKafkaBrokersList = %v", got)
	}

	var nilCfg *Config
	if nilCfg.MailKafkaBrokersList() != nil {
		t.Error("nil config should return nil broker list")
	}
}
