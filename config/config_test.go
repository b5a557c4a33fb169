package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	t.Run("success - defaults", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "whsec_test")

		cfg, err := GetConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "sandbox", cfg.AlloyEnvironment)
		assert.True(t, cfg.WebhookVerify)
		assert.Equal(t, 30*time.Second, cfg.RequestTimeout())

		baseURL, err := cfg.BaseURL()
		require.NoError(t, err)
		assert.Equal(t, "https://sandbox.alloy.co/v1", baseURL)
	})

	t.Run("success - environment overrides", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "whsec_test")
		t.Setenv("ALLOY_ENVIRONMENT", "production")
		t.Setenv("WEBHOOK_EVENT_TYPES", "evaluation.completed, entity.updated")
		t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")
		t.Setenv("RETRY_INITIAL_DELAY_MS", "250")

		cfg, err := GetConfig()
		require.NoError(t, err)

		baseURL, err := cfg.BaseURL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.alloy.co/v1", baseURL)
		assert.Equal(t, []string{"evaluation.completed", "entity.updated"}, cfg.EventTypes())
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
		assert.Equal(t, 250*time.Millisecond, cfg.RetryPolicy().InitialDelay)
	})

	t.Run("success - custom base url wins over environment", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "whsec_test")
		t.Setenv("ALLOY_BASE_URL", "http://localhost:9090/v1")
		t.Setenv("ALLOY_ENVIRONMENT", "bogus")

		cfg, err := GetConfig()
		require.NoError(t, err)

		baseURL, err := cfg.BaseURL()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9090/v1", baseURL)
	})

	t.Run("failure - verification enabled without a secret", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "")

		_, err := GetConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ALLOY_WEBHOOK_SECRET")
	})

	t.Run("success - verification disabled explicitly", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "")
		t.Setenv("WEBHOOK_VERIFY", "false")

		cfg, err := GetConfig()
		require.NoError(t, err)
		assert.False(t, cfg.WebhookVerify)
	})

	t.Run("failure - unknown environment without custom url", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "whsec_test")
		t.Setenv("ALLOY_ENVIRONMENT", "staging")

		_, err := GetConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ALLOY_ENVIRONMENT")
	})

	t.Run("failure - malformed event type in allowlist", func(t *testing.T) {
		viper.Reset()
		t.Setenv("ALLOY_WEBHOOK_SECRET", "whsec_test")
		t.Setenv("WEBHOOK_EVENT_TYPES", "evaluation completed")

		_, err := GetConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WEBHOOK_EVENT_TYPES")
	})
}
