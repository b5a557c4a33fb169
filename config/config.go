package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/alloy-bridge/alloy"
	"github.com/marcelsud/alloy-bridge/webhook/envelope"
	"github.com/spf13/viper"
)

/* Config is a helper package wrapping viper
 * Values come from a local .env file and the process environment;
 * the environment always wins
 */

type Config struct {
	Port string `mapstructure:"PORT"`

	// Remote API surface
	AlloyEnvironment string `mapstructure:"ALLOY_ENVIRONMENT"`
	AlloyBaseURL     string `mapstructure:"ALLOY_BASE_URL"`
	AlloyAPIKey      string `mapstructure:"ALLOY_API_KEY"`
	AlloyAPISecret   string `mapstructure:"ALLOY_API_SECRET"`
	WorkflowToken    string `mapstructure:"ALLOY_WORKFLOW_TOKEN"`

	// Webhook ingestion
	WebhookSecret     string `mapstructure:"ALLOY_WEBHOOK_SECRET"`
	WebhookVerify     bool   `mapstructure:"WEBHOOK_VERIFY"`
	WebhookEventTypes string `mapstructure:"WEBHOOK_EVENT_TYPES"`

	// Hand-off stream
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Outbound behavior
	RequestTimeoutSeconds  int     `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	RetryMaxRetries        int     `mapstructure:"RETRY_MAX_RETRIES"`
	RetryInitialDelayMs    int     `mapstructure:"RETRY_INITIAL_DELAY_MS"`
	RetryBackoffMultiplier float64 `mapstructure:"RETRY_BACKOFF_MULTIPLIER"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Defaults make env-only keys visible to Unmarshal
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ALLOY_ENVIRONMENT", string(alloy.Sandbox))
	viper.SetDefault("ALLOY_BASE_URL", "")
	viper.SetDefault("ALLOY_API_KEY", "")
	viper.SetDefault("ALLOY_API_SECRET", "")
	viper.SetDefault("ALLOY_WORKFLOW_TOKEN", "")
	viper.SetDefault("ALLOY_WEBHOOK_SECRET", "")
	viper.SetDefault("WEBHOOK_VERIFY", true)
	viper.SetDefault("WEBHOOK_EVENT_TYPES", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("RETRY_MAX_RETRIES", 3)
	viper.SetDefault("RETRY_INITIAL_DELAY_MS", 1000)
	viper.SetDefault("RETRY_BACKOFF_MULTIPLIER", 2.0)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate enforces the settings that must not fail silently.
// A missing webhook secret with verification enabled is a startup
// failure, never a silent skip.
func (c *Config) Validate() error {
	if c.WebhookVerify && c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_VERIFY is enabled but ALLOY_WEBHOOK_SECRET is not set; set the secret or disable verification explicitly")
	}

	if c.AlloyBaseURL == "" {
		if _, err := alloy.EnvironmentBaseURL(alloy.Environment(c.AlloyEnvironment)); err != nil {
			return fmt.Errorf("validating ALLOY_ENVIRONMENT: %w", err)
		}
	}

	for _, eventType := range c.EventTypes() {
		if err := envelope.ValidateEventType(eventType); err != nil {
			return fmt.Errorf("validating WEBHOOK_EVENT_TYPES: %w", err)
		}
	}

	return nil
}

// BaseURL resolves the outbound base URL: a custom URL wins over the
// named environment
func (c *Config) BaseURL() (string, error) {
	if c.AlloyBaseURL != "" {
		return c.AlloyBaseURL, nil
	}
	return alloy.EnvironmentBaseURL(alloy.Environment(c.AlloyEnvironment))
}

// EventTypes parses the comma-separated allowlist
func (c *Config) EventTypes() []string {
	if c.WebhookEventTypes == "" {
		return nil
	}
	parts := strings.Split(c.WebhookEventTypes, ",")
	types := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	return types
}

// RequestTimeout returns the outbound per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return alloy.DefaultTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryPolicy builds the rate-limit retry policy
func (c *Config) RetryPolicy() alloy.RetryPolicy {
	policy := alloy.DefaultRetryPolicy()
	if c.RetryMaxRetries >= 0 {
		policy.MaxRetries = c.RetryMaxRetries
	}
	if c.RetryInitialDelayMs > 0 {
		policy.InitialDelay = time.Duration(c.RetryInitialDelayMs) * time.Millisecond
	}
	if c.RetryBackoffMultiplier > 1 {
		policy.BackoffMultiplier = c.RetryBackoffMultiplier
	}
	return policy
}
