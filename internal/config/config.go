package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/cushypost/pkg/cushypost"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the CLI.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CushyPost
	Environment    string        `envconfig:"CUSHYPOST_ENVIRONMENT" default:"TEST"`
	App            string        `envconfig:"CUSHYPOST_APP"`
	Username       string        `envconfig:"CUSHYPOST_USERNAME"`
	Password       string        `envconfig:"CUSHYPOST_PASSWORD"`
	Timeout        time.Duration `envconfig:"CUSHYPOST_TIMEOUT" default:"30s"`
	UseMock        bool          `envconfig:"CUSHYPOST_USE_MOCK" default:"false"`
	StateFile      string        `envconfig:"CUSHYPOST_STATE_FILE" default:"cushypost.json"`
	MaxSearchPages int           `envconfig:"CUSHYPOST_MAX_SEARCH_PAGES" default:"50"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"cushypost"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := cushypost.Environment(cfg.Environment).BaseURL(); err != nil {
		return nil, fmt.Errorf("loading config: CUSHYPOST_ENVIRONMENT=%q: %w", cfg.Environment, err)
	}
	return &cfg, nil
}

// ClientConfig returns the session configuration for a new client.
func (c *Config) ClientConfig() cushypost.Config {
	return cushypost.Config{
		Environment:    cushypost.Environment(c.Environment),
		App:            c.App,
		MaxSearchPages: c.MaxSearchPages,
		Timeout:        c.Timeout,
		UseMock:        c.UseMock,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("cushypost.environment", c.Environment),
		attribute.String("cushypost.app", c.App),
		attribute.Bool("cushypost.mock", c.UseMock),
	}
}
