package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/medirisk/assessment-client/internal/adapters/events"
	"github.com/medirisk/assessment-client/internal/application/services"
	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/infrastructure/clients/riskapi"
	"github.com/medirisk/assessment-client/internal/infrastructure/credentials"
	"github.com/medirisk/assessment-client/internal/infrastructure/observability"
	"github.com/medirisk/assessment-client/pkg/config"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

func main() {
	var disease, reportPath string
	flag.StringVar(&disease, "disease", "", "disease context to assess (empty lists the catalog)")
	flag.StringVar(&reportPath, "report", "", "write a PDF report here when the assessment completes")
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

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.App.ServiceName, cfg.App.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	store := credentials.NewStore(cfg.Credentials.Path)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load credential store: %v", err)
	}
	if _, ok := store.Token(); !ok {
		log.Fatalf("Not logged in; run the login command first")
	}

	client := riskapi.NewClient(&cfg.API, store).WithMetrics(metrics)

	if disease == "" {
		catalog := services.NewCatalogService(client)
		diseases := catalog.ListDiseases(ctx)
		if len(diseases) == 0 {
			fmt.Println("No datasets available.")
			return
		}
		fmt.Println("Available diseases:")
		for _, d := range diseases {
			fmt.Printf("  %s\n", d)
		}
		return
	}

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	analytics := services.NewAnalyticsService(client)
	go func() {
		if err := analytics.Run(ctx, bus); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Analytics consumer stopped: %v", err)
		}
	}()

	session := services.NewChatSessionService(client, bus)

	opening, err := session.StartSession(ctx, disease)
	if err != nil {
		if apperrors.IsDatasetMissing(err) {
			log.Fatalf("No training data exists for %q; upload a dataset first", disease)
		}
		log.Fatalf("Failed to start session: %v", err)
	}
	fmt.Printf("assistant: %s\n", opening.Text)

	runConversation(ctx, session)

	if session.Status() != entities.SessionCompleted {
		return
	}

	outcomes := session.Outcomes()
	fmt.Println("\nAssessment complete.")
	for _, outcome := range outcomes {
		fmt.Printf("  %-20s %5.1f%%  %s\n", outcome.Disease, outcome.RiskScore, outcome.RiskLevel)
	}

	if reportPath != "" {
		// The analytics subscriber receives the completion event on its own
		// goroutine; render from the recorded history once it lands.
		event := waitForCompletion(analytics, 2*time.Second)
		if event == nil {
			event = entities.NewAssessmentEvent(entities.ModeChat, disease, outcomes, nil)
		}
		if err := writeReport(cfg.Report.FontPath, event, reportPath); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}
}

func runConversation(ctx context.Context, session *services.ChatSessionService) {
	scanner := bufio.NewScanner(os.Stdin)
	for session.Status() == entities.SessionActive {
		fmt.Print("you: ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			session.Reset()
			return
		}

		reply, err := session.SendMessage(ctx, text)
		if err != nil {
			if apperrors.IsAuthExpired(err) {
				log.Fatalf("Session credential rejected; log in again")
			}
			fmt.Printf("send failed (%s); try again\n", apperrors.MessageOf(err))
			continue
		}
		if reply != nil {
			fmt.Printf("assistant: %s\n", reply.Text)
		}
	}
}

func waitForCompletion(analytics *services.AnalyticsService, timeout time.Duration) *entities.AssessmentEvent {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if event, ok := analytics.Latest(); ok {
			return event
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func writeReport(fontPath string, event *entities.AssessmentEvent, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report := services.NewReportService(fontPath)
	return report.Render(event, f)
}
