package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	API         APIConfig
	Credentials CredentialsConfig
	Report      ReportConfig
	OTEL        OTELConfig
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env            string
	ServiceName    string
	ServiceVersion string
}

// APIConfig holds remote prediction service configuration
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// CredentialsConfig holds the client-persisted identity store configuration
type CredentialsConfig struct {
	Path string
}

// ReportConfig holds PDF report configuration
type ReportConfig struct {
	FontPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	Enabled  bool
	Endpoint string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "development"),
			ServiceName:    getEnv("SERVICE_NAME", "assessment-client"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		},
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:8000"),
			TimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 30),
		},
		Credentials: CredentialsConfig{
			Path: getEnv("CREDENTIALS_FILE", defaultCredentialsPath()),
		},
		Report: ReportConfig{
			FontPath: getEnv("REPORT_FONT_PATH", ""),
		},
		OTEL: OTELConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_ENDPOINT", ""),
		},
	}, nil
}

// Timeout returns the HTTP client timeout for remote calls
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".assessment", "credentials.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
