// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.demystifier/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Gemini: Vertex AI project, location, model, sampling parameters
//   - OCR: Document AI processor coordinates
//   - Storage: GCS bucket and local upload staging
//   - Glossary: external term-definition service
//   - Server: listen address, CORS origins
//   - Observability: OTLP trace export (see observability config below)
//
// Error Handling: sentinel errors for Go-idiomatic checks with errors.Is(),
// wrapped with context via fmt.Errorf("%w: ...").
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingProject indicates the Google Cloud project ID is not set.
	ErrMissingProject = errors.New("missing Google Cloud project ID")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTopP indicates the top_p value is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidMaxTokens indicates the max output tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max output tokens")

	// ErrMissingProcessor indicates the Document AI processor ID is not set.
	ErrMissingProcessor = errors.New("missing Document AI processor ID")

	// ErrMissingBucket indicates the GCS bucket name is not set.
	ErrMissingBucket = errors.New("missing GCS bucket name")

	// ErrInvalidGlossaryURL indicates the glossary service URL is malformed.
	ErrInvalidGlossaryURL = errors.New("invalid glossary service URL")
)

// Default generation parameters. These mirror the production tuning of the
// legal advisor: low temperature for precise answers, bounded output size.
const (
	DefaultModelName       = "gemini-2.5-flash-lite"
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 2000
)

// GeminiConfig holds Vertex AI generation backend settings.
type GeminiConfig struct {
	Project         string  `mapstructure:"project" json:"project"`
	Location        string  `mapstructure:"location" json:"location"`
	ModelName       string  `mapstructure:"model_name" json:"model_name"`
	Temperature     float32 `mapstructure:"temperature" json:"temperature"`
	TopP            float32 `mapstructure:"top_p" json:"top_p"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens" json:"max_output_tokens"`
	SystemPrompt    string  `mapstructure:"system_prompt" json:"system_prompt"`
}

// OCRConfig holds Document AI processor coordinates.
type OCRConfig struct {
	Project     string `mapstructure:"project" json:"project"`
	Location    string `mapstructure:"location" json:"location"`
	ProcessorID string `mapstructure:"processor_id" json:"processor_id"`
}

// StorageConfig holds document staging and GCS upload settings.
type StorageConfig struct {
	Bucket    string `mapstructure:"bucket" json:"bucket"`
	UploadDir string `mapstructure:"upload_dir" json:"upload_dir"`
}

// ObservabilityConfig holds OTLP trace export settings.
// Traces are exported via OTLP HTTP to a local collector; the collector
// handles authentication and forwarding.
type ObservabilityConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// Config stores application configuration.
type Config struct {
	Gemini  GeminiConfig  `mapstructure:"gemini" json:"gemini"`
	OCR     OCRConfig     `mapstructure:"ocr" json:"ocr"`
	Storage StorageConfig `mapstructure:"storage" json:"storage"`

	// GlossaryURL is the base URL of the external term-definition service.
	// Empty disables the "what is ..." lookup bypass.
	GlossaryURL string `mapstructure:"glossary_url" json:"glossary_url"`

	// Server configuration
	Addr        string   `mapstructure:"addr" json:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`

	Observability ObservabilityConfig `mapstructure:"observability" json:"observability"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".demystifier")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fail-fast: an invalid configuration must never reach the server loop.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Gemini defaults
	v.SetDefault("gemini.location", "global")
	v.SetDefault("gemini.model_name", DefaultModelName)
	v.SetDefault("gemini.temperature", DefaultTemperature)
	v.SetDefault("gemini.top_p", DefaultTopP)
	v.SetDefault("gemini.max_output_tokens", DefaultMaxOutputTokens)
	v.SetDefault("gemini.system_prompt", DefaultSystemPrompt)

	// Document AI defaults
	v.SetDefault("ocr.location", "us")

	// Storage defaults
	v.SetDefault("storage.upload_dir", "uploads")

	// Server defaults
	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	// Observability defaults
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.endpoint", "localhost:4318")
	v.SetDefault("observability.environment", "dev")
	v.SetDefault("observability.service_name", "demystifier")
}

// bindEnvVariables binds environment variable overrides explicitly.
// Deployment environments (Cloud Run) configure via env, not files.
func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("gemini.project", "PROJECT_ID")
	_ = v.BindEnv("gemini.location", "VERTEX_LOCATION")
	_ = v.BindEnv("gemini.model_name", "MODEL_NAME")
	_ = v.BindEnv("ocr.project", "OCR_PROJECT_ID")
	_ = v.BindEnv("ocr.location", "OCR_LOCATION")
	_ = v.BindEnv("ocr.processor_id", "OCR_PROCESSOR_ID")
	_ = v.BindEnv("storage.bucket", "BUCKET_NAME")
	_ = v.BindEnv("glossary_url", "GLOSSARY_URL")
	_ = v.BindEnv("addr", "LISTEN_ADDR")
	_ = v.BindEnv("cors_origins", "FRONTEND_ORIGIN")
}

// DefaultSystemPrompt is the system instruction handed to the generation
// backend. It is configuration the chat core passes through untouched.
const DefaultSystemPrompt = "you are a highly qualified legal professional, renowned for your sharp wit, " +
	"unparalleled expertise, and ability to win even the toughest cases. As a top-tier legal advisor and " +
	"document assistant, you are well-versed in all areas of law, including corporate, criminal, civil, tax, " +
	"intellectual property, international, and regulatory law in the Indian jurisdiction specifically. You " +
	"provide precise, actionable legal advice, identifying legitimate strategies, exemptions, or loopholes to " +
	"minimize penalties or liabilities when requested, without ever endorsing illegal actions."
