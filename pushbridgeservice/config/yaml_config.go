// --- File: pushbridgeservice/config/yaml_config.go ---
package config

import (
	"fmt"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"gopkg.in/yaml.v3"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
	TTLHours int    `yaml:"ttl_hours"`
}

type YamlFCMConfig struct {
	VerifyTokens bool `yaml:"verify_tokens"`
}

type YamlProviderConfig struct {
	ConfigPath string `yaml:"config_path"`
	AppID      string `yaml:"app_id"`
	Name       string `yaml:"name"`
}

type YamlEngagementConfig struct {
	TopicID    string   `yaml:"topic_id"`
	MarkerKeys []string `yaml:"marker_keys"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID              string               `yaml:"project_id"`
	ListenAddr             string               `yaml:"listen_addr"`
	TopicID                string               `yaml:"topic_id"`
	SubscriptionID         string               `yaml:"subscription_id"`
	SubscriptionDLQTopicID string               `yaml:"subscription_dlq_topic_id"`
	CorsConfig             YamlCorsConfig       `yaml:"cors"`
	RedisConfig            YamlRedisConfig      `yaml:"redis"`
	FCMConfig              YamlFCMConfig        `yaml:"fcm"`
	ProviderConfig         YamlProviderConfig   `yaml:"provider"`
	EngagementConfig       YamlEngagementConfig `yaml:"engagement"`
	NumPipelineWorkers     int                  `yaml:"num_pipeline_workers"`
}

// ParseYaml decodes a raw config document.
func ParseYaml(raw []byte) (*YamlConfig, error) {
	var yamlCfg YamlConfig
	if err := yaml.Unmarshal(raw, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml config: %w", err)
	}
	return &yamlCfg, nil
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:      baseCfg.ProjectID,
		ListenAddr:     baseCfg.ListenAddr,
		TopicID:        baseCfg.TopicID,
		SubscriptionID: baseCfg.SubscriptionID,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
			TTLHours: baseCfg.RedisConfig.TTLHours,
		},
		FCM: FCMConfig{
			VerifyTokens: baseCfg.FCMConfig.VerifyTokens,
		},
		Provider: ProviderConfig{
			ConfigPath: baseCfg.ProviderConfig.ConfigPath,
			AppID:      baseCfg.ProviderConfig.AppID,
			Name:       baseCfg.ProviderConfig.Name,
		},
		Engagement: EngagementConfig{
			TopicID:    baseCfg.EngagementConfig.TopicID,
			MarkerKeys: baseCfg.EngagementConfig.MarkerKeys,
		},
		SubscriptionDLQTopicID: baseCfg.SubscriptionDLQTopicID,
		NumPipelineWorkers:     baseCfg.NumPipelineWorkers,
	}

	if cfg.SubscriptionID != "" {
		cfg.PubsubConsumerConfig = messagepipeline.NewGooglePubsubConsumerDefaults(cfg.SubscriptionID)
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"subscription_id", cfg.SubscriptionID,
		"engagement_topic_id", cfg.Engagement.TopicID,
	)

	return cfg, nil
}
