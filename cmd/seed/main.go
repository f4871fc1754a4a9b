// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"user-auth-service/internal/config"
	"user-auth-service/internal/db"
	"user-auth-service/internal/security"
	userdomain "user-auth-service/internal/user/domain"
	userrepo "user-auth-service/internal/user/repository"
)

const (
	devUserEmail  = "dev@example.com"
	devUserMobile = "+15550100001"
	devPassword   = "devpassword1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	dbConn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	users := userrepo.NewPostgresRepository(dbConn)
	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("lookup dev user: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devUserEmail)
		return
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash dev password: %v", err)
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		Email:         devUserEmail,
		PasswordHash:  hash,
		Name:          "Dev User",
		MobileNumber:  devUserMobile,
		IsActive:      true,
		EmailVerified: true,
		CreatedOn:     now,
		UpdatedOn:     now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create dev user: %v", err)
	}
	log.Printf("seed: created %s (password %q)", devUserEmail, devPassword)
}
