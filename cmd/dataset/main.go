package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/medirisk/assessment-client/internal/application/services"
	"github.com/medirisk/assessment-client/internal/infrastructure/clients/riskapi"
	"github.com/medirisk/assessment-client/internal/infrastructure/credentials"
	"github.com/medirisk/assessment-client/internal/infrastructure/observability"
	"github.com/medirisk/assessment-client/pkg/config"
)

func main() {
	var uploadPath, disease string
	var list, adminStats, userStats bool
	flag.StringVar(&uploadPath, "upload", "", "CSV training dataset to upload")
	flag.StringVar(&disease, "disease", "", "disease the dataset belongs to")
	flag.BoolVar(&list, "list", false, "list diseases with uploaded datasets")
	flag.BoolVar(&adminStats, "admin-stats", false, "print the platform dashboard aggregates")
	flag.BoolVar(&userStats, "user-stats", false, "print the per-user dashboard aggregates")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	observability.InitLogger(cfg.App.ServiceName, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := credentials.NewStore(cfg.Credentials.Path)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load credential store: %v", err)
	}
	if _, ok := store.Token(); !ok {
		log.Fatalf("Not logged in; run the login command first")
	}

	client := riskapi.NewClient(&cfg.API, store)

	switch {
	case list:
		catalog := services.NewCatalogService(client)
		for _, d := range catalog.ListDiseases(ctx) {
			fmt.Println(d)
		}

	case uploadPath != "":
		if disease == "" {
			log.Fatalf("-disease is required for upload")
		}
		f, err := os.Open(uploadPath)
		if err != nil {
			log.Fatalf("Failed to open dataset: %v", err)
		}
		defer f.Close()

		message, err := client.UploadCSV(ctx, filepath.Base(uploadPath), disease, f)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Println(message)

	case adminStats:
		stats, err := client.AdminStats(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch admin stats: %v", err)
		}
		fmt.Printf("Datasets:      %d\n", stats.TotalDatasets)
		fmt.Printf("Records:       %d\n", stats.TotalRecords)
		fmt.Printf("Active models: %d\n", stats.ActiveModels)
		fmt.Printf("Accuracy:      %.1f%%\n", stats.AccuracyRate)

	case userStats:
		stats, err := client.UserStats(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch user stats: %v", err)
		}
		fmt.Printf("Assessments:  %d\n", stats.TotalAssessments)
		fmt.Printf("Health score: %.1f\n", stats.HealthScore)
		fmt.Printf("Risk factors: %d\n", stats.RiskFactors)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
