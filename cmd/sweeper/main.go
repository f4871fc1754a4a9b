// Sweeper periodically deletes expired sessions and single-use tokens.
// Set DATABASE_URL and optionally SWEEP_INTERVAL (default 10m).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"user-auth-service/internal/config"
	"user-auth-service/internal/db"
	"user-auth-service/internal/maintenance"
	sessionrepo "user-auth-service/internal/session/repository"
	tokenrepo "user-auth-service/internal/token/repository"
	tokenservice "user-auth-service/internal/token/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	sessions := sessionrepo.NewPostgresRepository(dbConn)
	ledger := tokenservice.NewLedger(tokenrepo.NewPostgresRepository(dbConn), cfg.ResetTTL(), cfg.VerificationTTL())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("sweeper: shutting down...")
		cancel()
	}()

	log.Printf("sweeper: running every %s", cfg.SweepEvery())
	maintenance.NewSweeper(sessions, ledger, cfg.SweepEvery()).Run(ctx)
	log.Println("sweeper: stopped")
}
