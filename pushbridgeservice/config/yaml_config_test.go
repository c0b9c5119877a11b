// --- File: pushbridgeservice/config/yaml_config_test.go ---
package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-pushbridge-service/pushbridgeservice/config"
)

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success - maps all fields correctly", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID:              "yaml-project",
			ListenAddr:             ":9000",
			TopicID:                "yaml-topic",
			SubscriptionID:         "yaml-subscription",
			SubscriptionDLQTopicID: "yaml-dlq",
			NumPipelineWorkers:     5,
			CorsConfig: config.YamlCorsConfig{
				AllowedOrigins: []string{"http://yaml.com"},
				Role:           "editor",
			},
			RedisConfig: config.YamlRedisConfig{Addr: "localhost:6379", Enabled: true, TTLHours: 6},
			FCMConfig:   config.YamlFCMConfig{VerifyTokens: true},
			ProviderConfig: config.YamlProviderConfig{
				ConfigPath: "agconnect-services.json",
				AppID:      "10086",
				Name:       "hms",
			},
			EngagementConfig: config.YamlEngagementConfig{
				TopicID:    "yaml-engagement",
				MarkerKeys: []string{"_ab"},
			},
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "yaml-project", cfg.ProjectID)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "yaml-topic", cfg.TopicID)
		assert.Equal(t, "yaml-subscription", cfg.SubscriptionID)
		assert.Equal(t, "yaml-dlq", cfg.SubscriptionDLQTopicID)
		assert.Equal(t, 5, cfg.NumPipelineWorkers)

		assert.Equal(t, []string{"http://yaml.com"}, cfg.CorsConfig.AllowedOrigins)
		assert.Equal(t, middleware.CorsRoleEditor, cfg.CorsConfig.Role)

		assert.Equal(t, 6, cfg.Redis.TTLHours)
		assert.True(t, cfg.FCM.VerifyTokens)
		assert.Equal(t, "10086", cfg.Provider.AppID)
		assert.Equal(t, "yaml-engagement", cfg.Engagement.TopicID)
		assert.Equal(t, []string{"_ab"}, cfg.Engagement.MarkerKeys)

		assert.NotNil(t, cfg.PubsubConsumerConfig)
	})

	t.Run("Success - Handles missing optional fields gracefully", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID:      "minimal-project",
			SubscriptionID: "minimal-sub",
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "minimal-project", cfg.ProjectID)
		assert.Equal(t, 0, cfg.NumPipelineWorkers)
		assert.Empty(t, cfg.ListenAddr)
		assert.Empty(t, cfg.Engagement.MarkerKeys)
	})
}

func TestParseYaml(t *testing.T) {
	raw := []byte(`
project_id: local-project
subscription_id: push-lifecycle-sub
engagement:
  topic_id: push-engagement
  marker_keys: [_ab, cid]
fcm:
  verify_tokens: true
`)
	yamlCfg, err := config.ParseYaml(raw)
	require.NoError(t, err)
	assert.Equal(t, "local-project", yamlCfg.ProjectID)
	assert.Equal(t, "push-engagement", yamlCfg.EngagementConfig.TopicID)
	assert.Equal(t, []string{"_ab", "cid"}, yamlCfg.EngagementConfig.MarkerKeys)
	assert.True(t, yamlCfg.FCMConfig.VerifyTokens)

	_, err = config.ParseYaml([]byte("project_id: [unterminated"))
	assert.Error(t, err)
}
