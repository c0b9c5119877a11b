// --- File: pushbridgeservice/config/config_test.go ---
package config_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywideclouds/go-pushbridge-service/pushbridgeservice/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ProjectID:          "base-project",
			ListenAddr:         ":8080",
			SubscriptionID:     "base-sub",
			NumPipelineWorkers: 2,
			Engagement:         config.EngagementConfig{TopicID: "base-engagement"},
			Provider:           config.ProviderConfig{ConfigPath: "base/agconnect.json"},
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		cfg := baseConfig()

		t.Setenv("PROJECT_ID", "env-project")
		t.Setenv("PORT", "9090")
		t.Setenv("SUBSCRIPTION_ID", "env-sub")
		t.Setenv("NUM_PIPELINE_WORKERS", "4")
		t.Setenv("ENGAGEMENT_TOPIC_ID", "env-engagement")
		t.Setenv("PROVIDER_CONFIG_PATH", "/etc/agconnect-services.json")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("FCM_VERIFY_TOKENS", "true")
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test , ,https://b.test")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "env-project", finalCfg.ProjectID)
		assert.Equal(t, ":9090", finalCfg.ListenAddr)
		assert.Equal(t, "env-sub", finalCfg.SubscriptionID)
		assert.Equal(t, "env-sub", finalCfg.PubsubConsumerConfig.SubscriptionID)
		assert.Equal(t, 4, finalCfg.NumPipelineWorkers)
		assert.Equal(t, "env-engagement", finalCfg.Engagement.TopicID)
		assert.Equal(t, "/etc/agconnect-services.json", finalCfg.Provider.ConfigPath)
		assert.True(t, finalCfg.Redis.Enabled)
		assert.Equal(t, "redis:6379", finalCfg.Redis.Addr)
		assert.True(t, finalCfg.FCM.VerifyTokens)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, finalCfg.CorsConfig.AllowedOrigins)
	})

	t.Run("Success - Defaults preserved", func(t *testing.T) {
		cfg := baseConfig()
		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "base-project", finalCfg.ProjectID)
		assert.Equal(t, "base-engagement", finalCfg.Engagement.TopicID)
		assert.Equal(t, 24, finalCfg.Redis.TTLHours)
		assert.Equal(t, "hms", finalCfg.Provider.Name)
		assert.False(t, finalCfg.FCM.VerifyTokens)
	})

	t.Run("Validation Failure - Missing ProjectID", func(t *testing.T) {
		cfg := &config.Config{SubscriptionID: "sub", Engagement: config.EngagementConfig{TopicID: "t"}}
		t.Setenv("PROJECT_ID", "")
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})

	t.Run("Validation Failure - Missing engagement topic", func(t *testing.T) {
		cfg := &config.Config{ProjectID: "p", SubscriptionID: "sub"}
		t.Setenv("ENGAGEMENT_TOPIC_ID", "")
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.ErrorContains(t, err, "engagement topic_id")
	})

	t.Run("Validation Failure - Bad FCM flag", func(t *testing.T) {
		t.Setenv("FCM_VERIFY_TOKENS", "sometimes")
		_, err := config.UpdateConfigWithEnvOverrides(baseConfig(), logger)
		assert.Error(t, err)
	})
}
