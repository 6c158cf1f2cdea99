package main

import (
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

// answerFlags collects repeated -set name=value arguments
type answerFlags map[string]string

func (a answerFlags) String() string { return "" }

func (a answerFlags) Set(value string) error {
	name, raw, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	a[name] = raw
	return nil
}

func main() {
	var disease, reportPath string
	var showSchema bool
	answers := answerFlags{}
	flag.StringVar(&disease, "disease", "", "disease to assess")
	flag.Var(answers, "set", "field answer as name=value (repeatable)")
	flag.BoolVar(&showSchema, "schema", false, "print the field schema for the disease and exit")
	flag.StringVar(&reportPath, "report", "", "write a PDF report here after a successful assessment")
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

	registry := entities.BuiltinSchemas()

	if disease == "" {
		fmt.Println("Diseases with field schemas:")
		for _, d := range registry.Diseases() {
			fmt.Printf("  %s\n", d)
		}
		return
	}

	if showSchema {
		schema, ok := registry.Get(disease)
		if !ok {
			log.Fatalf("No field schema registered for %q", disease)
		}
		printSchema(schema)
		return
	}

	store := credentials.NewStore(cfg.Credentials.Path)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load credential store: %v", err)
	}
	if _, ok := store.Token(); !ok {
		log.Fatalf("Not logged in; run the login command first")
	}

	client := riskapi.NewClient(&cfg.API, store).WithMetrics(metrics)

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	analytics := services.NewAnalyticsService(client)
	go func() {
		if err := analytics.Run(ctx, bus); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Analytics consumer stopped: %v", err)
		}
	}()

	form := services.NewFormService(client, registry, bus)
	if err := form.SelectDisease(disease); err != nil {
		log.Fatalf("%v", err)
	}
	for name, value := range answers {
		if err := form.SetAnswer(name, value); err != nil {
			log.Fatalf("%v", err)
		}
	}

	outcomes, err := form.Submit(ctx)
	if err != nil {
		if missing := apperrors.MissingFieldsOf(err); len(missing) > 0 {
			log.Fatalf("Missing required fields: %s", strings.Join(missing, ", "))
		}
		if apperrors.IsAuthExpired(err) {
			log.Fatalf("Session credential rejected; log in again")
		}
		log.Fatalf("Assessment failed: %v", err)
	}

	fmt.Println("Risk assessment:")
	for _, outcome := range outcomes {
		fmt.Printf("  %-20s %5.1f%%  %s\n", outcome.Disease, outcome.RiskScore, outcome.RiskLevel)
		if outcome.Explanation != "" {
			fmt.Printf("    %s\n", outcome.Explanation)
		}
	}

	if reportPath != "" {
		event := entities.NewAssessmentEvent(entities.ModeForm, disease, outcomes, form.Answers())
		if err := writeReport(cfg.Report.FontPath, event, reportPath); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}
}

func printSchema(schema entities.FieldSchema) {
	fmt.Printf("Fields for %s:\n", schema.Disease)
	for _, f := range schema.Fields {
		required := "optional"
		if f.Required {
			required = "required"
		}
		fmt.Printf("  %-24s %-8s %s", f.Name, f.Kind, required)
		if len(f.ChoiceOptions) > 0 {
			fmt.Printf("  [%s]", strings.Join(f.ChoiceOptions, "/"))
		}
		fmt.Printf("  %s\n", f.Label)
	}
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
