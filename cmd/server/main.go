// Server runs the HTTP auth API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-auth-service/internal/audit"
	auditrepo "user-auth-service/internal/audit/repository"
	authservice "user-auth-service/internal/auth/service"
	"user-auth-service/internal/config"
	"user-auth-service/internal/db"
	"user-auth-service/internal/mailer"
	"user-auth-service/internal/security"
	"user-auth-service/internal/server"
	sessionrepo "user-auth-service/internal/session/repository"
	sessionservice "user-auth-service/internal/session/service"
	"user-auth-service/internal/telemetry"
	"user-auth-service/internal/telemetry/otel"
	tokenrepo "user-auth-service/internal/token/repository"
	tokenservice "user-auth-service/internal/token/service"
	userrepo "user-auth-service/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "user-auth-service", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	dbConn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(dbConn)
	sessions := sessionservice.NewManager(sessionrepo.NewPostgresRepository(dbConn), tokens, cfg.RefreshTTL())
	ledger := tokenservice.NewLedger(tokenrepo.NewPostgresRepository(dbConn), cfg.ResetTTL(), cfg.VerificationTTL())
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(dbConn))

	metrics, err := telemetry.NewMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	var mail mailer.Sender
	if brokers := cfg.MailKafkaBrokersList(); len(brokers) > 0 {
		ks := mailer.NewKafkaSender(brokers, cfg.MailKafkaTopic)
		defer ks.Close()
		mail = ks
		log.Printf("mail delivery via kafka topic %s", cfg.MailKafkaTopic)
	} else {
		mail = mailer.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		log.Printf("mail delivery via smtp %s", cfg.SMTPAddr)
	}

	auth := authservice.NewAuthService(users, sessions, ledger, db.NewTxManager(dbConn),
		hasher, mail, auditor, metrics, cfg.LockoutThreshold, cfg.FrontendURL)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.NewRouter(auth, sessions),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
