// adminctl applies operator actions to accounts: unlock, activate, deactivate, verify.
// Usage: adminctl -action unlock -email user@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"user-auth-service/internal/config"
	"user-auth-service/internal/db"
	userrepo "user-auth-service/internal/user/repository"
)

func main() {
	action := flag.String("action", "", "Action: unlock, activate, deactivate, or verify")
	email := flag.String("email", "", "Email of the account to act on")
	flag.Parse()

	if *action == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	user, err := users.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("lookup %s: %v", *email, err)
	}
	if user == nil {
		log.Fatalf("no account for %s", *email)
	}

	switch *action {
	case "unlock":
		err = users.Unlock(ctx, user.ID)
	case "activate":
		err = users.SetActive(ctx, user.ID, true)
	case "deactivate":
		err = users.SetActive(ctx, user.ID, false)
	case "verify":
		err = users.SetEmailVerified(ctx, user.ID)
	default:
		log.Fatalf("unknown action %q", *action)
	}
	if err != nil {
		log.Fatalf("%s %s: %v", *action, *email, err)
	}
	fmt.Printf("%s: %s done\n", *email, *action)
}
