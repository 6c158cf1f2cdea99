package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/infrastructure/clients/riskapi"
	"github.com/medirisk/assessment-client/internal/infrastructure/credentials"
	"github.com/medirisk/assessment-client/internal/infrastructure/observability"
	"github.com/medirisk/assessment-client/pkg/config"
)

func main() {
	var email, password, role, fullName string
	var signup, logout, whoami bool
	flag.StringVar(&email, "email", "", "account email")
	flag.StringVar(&password, "password", "", "account password")
	flag.StringVar(&role, "role", "user", "role to authenticate as (user or admin)")
	flag.StringVar(&fullName, "name", "", "full name (signup only)")
	flag.BoolVar(&signup, "signup", false, "register a new account instead of logging in")
	flag.BoolVar(&logout, "logout", false, "discard the stored credential and exit")
	flag.BoolVar(&whoami, "whoami", false, "print the stored identity and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	observability.InitLogger(cfg.App.ServiceName, cfg.App.Env)

	store := credentials.NewStore(cfg.Credentials.Path)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load credential store: %v", err)
	}

	if logout {
		if err := store.Invalidate(); err != nil {
			log.Fatalf("Failed to discard credential: %v", err)
		}
		fmt.Println("Logged out.")
		return
	}

	if whoami {
		creds, ok := store.Current()
		if !ok {
			fmt.Println("Not logged in.")
			os.Exit(1)
		}
		fmt.Printf("Logged in as %s (%s)\n", creds.Email, creds.Role)
		return
	}

	if email == "" || password == "" {
		log.Fatalf("Both -email and -password are required")
	}
	if signup && fullName == "" {
		log.Fatalf("-name is required for signup")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := riskapi.NewClient(&cfg.API, store)

	creds, err := authenticate(ctx, client, signup, email, fullName, password, role)
	if err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	if err := store.Save(creds); err != nil {
		log.Fatalf("Failed to persist credential: %v", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", creds.Email, creds.Role)
}

func authenticate(ctx context.Context, client *riskapi.HTTPClient, signup bool, email, fullName, password, role string) (entities.Credentials, error) {
	if signup {
		return client.Signup(ctx, email, fullName, password)
	}
	return client.Login(ctx, email, password, role)
}
