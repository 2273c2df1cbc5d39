//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/storage"
	"codeberg.org/lunos/server/lunos/identity"
)

func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	dbPool, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	adapter := identity.NewPostgresAdapter(dbPool)

	// create or find test user
	testEmail := "test@lunos.dev"
	testName := "Test User"
	var user *identity.User

	existing, err := adapter.GetUserByEmail(ctx, testEmail)
	switch {
	case err == nil:
		user = &existing.User
		fmt.Printf("Using existing test user (ID: %s)\n", user.ID)

	case errors.Is(err, identity.ErrNotFound):
		user, err = adapter.CreateUser(ctx, identity.NewUser{Email: testEmail, Name: &testName})
		if err != nil {
			log.Fatalf("Failed to create test user: %v", err)
		}
		fmt.Printf("Created test user: %s (ID: %s)\n", testEmail, user.ID)

	default:
		log.Fatalf("Failed to look up test user: %v", err)
	}

	sessions := auth.NewSessionManager(adapter, auth.SessionConfig{
		Strategy:  cfg.SessionStrategy,
		MaxAge:    cfg.SessionMaxAge,
		UpdateAge: cfg.SessionUpdateAge,
		JWTSecret: cfg.JWTSecret,
	})

	session, err := sessions.Create(ctx, user)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	fmt.Printf("\nTest session token (%s strategy, expires %s):\n%s\n\n", sessions.Strategy(), session.Expires.Format("2006-01-02 15:04"), session.Token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", session.Token)
	fmt.Printf("Send it as the %s cookie or an Authorization: Bearer header\n", auth.SessionCookieName)
}
