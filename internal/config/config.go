// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "auth-service").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "auth-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// AccessTokenTTL is the access credential lifetime (e.g. "24h").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh credential lifetime (e.g. "168h").
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// ResetTokenTTL is the password-reset token lifetime (e.g. "30m").
	ResetTokenTTL string `mapstructure:"RESET_TOKEN_TTL"`
	// VerificationTokenTTL is the email-verification token lifetime (e.g. "60m").
	VerificationTokenTTL string `mapstructure:"VERIFICATION_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LockoutThreshold is the failed-login count at which an account is locked; default 5.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// FrontendURL is the base URL used in mail links (verify-email, reset-password pages).
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// SMTPAddr is the SMTP host:port for direct mail delivery (server without Kafka, and cmd/worker).
	SMTPAddr string `mapstructure:"SMTP_ADDR"`
	// SMTPUsername is the SMTP auth username; empty disables auth.
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	// SMTPPassword is the SMTP auth password.
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	// SMTPFrom is the From address on outbound mail.
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// MailKafkaBrokers is a comma-separated list of Kafka broker addresses; when set, the
	// server enqueues mail jobs instead of sending over SMTP directly.
	MailKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// MailKafkaTopic is the Kafka topic for mail jobs (default auth-mail).
	MailKafkaTopic string `mapstructure:"MAIL_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the mail worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// SweepInterval is how often cmd/sweeper purges expired sessions and tokens (e.g. "10m").
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "auth-service")
	v.SetDefault("JWT_AUDIENCE", "auth-api")
	v.SetDefault("ACCESS_TOKEN_TTL", "24h")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("RESET_TOKEN_TTL", "30m")
	v.SetDefault("VERIFICATION_TOKEN_TTL", "60m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("SMTP_ADDR", "")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@localhost")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("MAIL_KAFKA_TOPIC", "auth-mail")
	v.SetDefault("KAFKA_GROUP_ID", "auth-mail-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("SWEEP_INTERVAL", "10m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutThreshold <= 0 {
		return nil, errors.New("config: LOCKOUT_THRESHOLD must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses AccessTokenTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.AccessTokenTTL, 24*time.Hour)
}

// RefreshTTL parses RefreshTokenTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return durationOr(c.RefreshTokenTTL, 168*time.Hour)
}

// ResetTTL parses ResetTokenTTL as a time.Duration. Returns 30m if unset or invalid.
func (c *Config) ResetTTL() time.Duration {
	return durationOr(c.ResetTokenTTL, 30*time.Minute)
}

// VerificationTTL parses VerificationTokenTTL as a time.Duration. Returns 60m if unset or invalid.
func (c *Config) VerificationTTL() time.Duration {
	return durationOr(c.VerificationTokenTTL, 60*time.Minute)
}

// SweepEvery parses SweepInterval as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) SweepEvery() time.Duration {
	return durationOr(c.SweepInterval, 10*time.Minute)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// MailKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if queue-backed mail delivery is enabled (non-empty list) and to create the producer.
func (c *Config) MailKafkaBrokersList() []string {
	if c == nil || c.MailKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.MailKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
