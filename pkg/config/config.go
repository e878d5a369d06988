package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the status digest service and its batch jobs.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (tokens, keys, signed webhook URLs) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr  string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port      string `yaml:"port" env:"PORT" env-default:"3000"`
	Env       string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	ServerURL string `yaml:"server_url" env:"SERVER_URL" env-default:""` // Auto-derived from Port if empty
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version   string `yaml:"-"` // Set at load time, not from config

	// Tabular store holding intakes, status notes, projects and issues
	Store StoreConfig `yaml:"store"`

	// Generative model used to refine digests
	AI AIConfig `yaml:"ai"`

	// Chat webhook relay for review cards and confirmations
	Webhook WebhookConfig `yaml:"webhook"`

	// Digest composition options
	Summary SummaryConfig `yaml:"summary"`
}

// Store drivers.
const (
	StoreAirtable = "airtable"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreConfig selects and configures the tabular store.
type StoreConfig struct {
	// Driver is one of airtable, postgres or memory.
	Driver   string         `yaml:"driver" env:"STORE_DRIVER" env-default:"airtable"`
	Airtable AirtableConfig `yaml:"airtable"`
	Database DatabaseConfig `yaml:"database"`
}

// AirtableConfig holds Airtable base access.
type AirtableConfig struct {
	APIKey  string        `yaml:"-" env:"AIRTABLE_API_KEY"` // Secret - not in YAML
	BaseID  string        `yaml:"base_id" env:"AIRTABLE_BASE_ID" env-default:""`
	APIURL  string        `yaml:"api_url" env:"AIRTABLE_API_URL" env-default:"https://api.airtable.com/v0"`
	Timeout time.Duration `yaml:"timeout" env:"AIRTABLE_TIMEOUT" env-default:"30s"`
}

// IsConfigured returns true if both the token and base are set.
func (c *AirtableConfig) IsConfigured() bool {
	return c.APIKey != "" && c.BaseID != ""
}

// DatabaseConfig holds PostgreSQL configuration for the postgres store driver.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"digest"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"status_digest"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// AIConfig holds the generative model endpoint. A missing key is a valid state:
// digests are then published without refinement.
type AIConfig struct {
	Provider     string        `yaml:"provider" env:"AI_PROVIDER" env-default:"gemini"`
	APIKey       string        `yaml:"-" env:"AI_API_KEY"`     // Secret - not in YAML
	GeminiAPIKey string        `yaml:"-" env:"GEMINI_API_KEY"` // Secret - not in YAML
	BaseURL      string        `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	Model        string        `yaml:"model" env:"AI_MODEL"` // empty selects the provider default
	Temperature  float64       `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.3"`
	MaxTokens    int           `yaml:"max_tokens" env:"AI_MAX_TOKENS" env-default:"1024"`
	Timeout      time.Duration `yaml:"timeout" env:"AI_TIMEOUT" env-default:"60s"`
}

// Key returns AI_API_KEY, falling back to GEMINI_API_KEY.
func (c *AIConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.GeminiAPIKey
}

// IsConfigured returns true if a model credential is present.
func (c *AIConfig) IsConfigured() bool {
	return c.Key() != ""
}

// WebhookConfig holds the chat relay endpoint. The URL carries a signature, so
// it is treated as a secret.
type WebhookConfig struct {
	URL     string        `yaml:"-" env:"LOGIC_APP_URL"` // Secret - not in YAML
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"30s"`
}

// IsConfigured returns true if a webhook URL is set.
func (c *WebhookConfig) IsConfigured() bool {
	return c.URL != ""
}

// Next-step rules.
const (
	NextStepMentionedDate = "mentioned_date"
	NextStepFutureAddedOn = "future_added_on"
)

// SummaryConfig holds digest composition options.
type SummaryConfig struct {
	NextStepRule string `yaml:"next_step_rule" env:"SUMMARY_NEXT_STEP_RULE" env-default:"mentioned_date"`
}

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Load reads configuration from path (config.yaml when empty) with environment
// variable overrides. A missing file is not an error when path is the default:
// the service is commonly configured from the environment alone.
func Load(path, version string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := &Config{
		Version: version,
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Auto-derive ServerURL from Port if not explicitly set
	if cfg.ServerURL == "" {
		cfg.ServerURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}
	hostRewriter{active: inContainer()}.apply(cfg)

	return cfg, nil
}

// validate checks enumerated settings. Missing credentials are not validated
// here: they surface per run as configuration errors.
func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreAirtable, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	switch c.Summary.NextStepRule {
	case NextStepMentionedDate, NextStepFutureAddedOn:
	default:
		return fmt.Errorf("unknown summary next_step_rule %q", c.Summary.NextStepRule)
	}

	return nil
}
