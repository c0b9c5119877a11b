// --- File: cmd/pushbridge/runpushbridge.go ---
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"

	firebase "firebase.google.com/go/v4"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-pushbridge-service/internal/analytics"
	"github.com/tinywideclouds/go-pushbridge-service/internal/metrics"
	"github.com/tinywideclouds/go-pushbridge-service/internal/platform/fcm"
	"github.com/tinywideclouds/go-pushbridge-service/internal/provider"
	"github.com/tinywideclouds/go-pushbridge-service/internal/relay"
	"github.com/tinywideclouds/go-pushbridge-service/internal/storage/cache"
	fsStore "github.com/tinywideclouds/go-pushbridge-service/internal/storage/firestore"
	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"

	"github.com/tinywideclouds/go-pushbridge-service/pushbridgeservice"
	"github.com/tinywideclouds/go-pushbridge-service/pushbridgeservice/config"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

//go:embed local.yaml
var configFile []byte

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-pushbridge-service")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	yamlCfg, err := config.ParseYaml(configFile)
	if err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, err := config.NewConfigFromYaml(yamlCfg, logger)
	if err != nil {
		logger.Error("Failed to map yaml config", "err", err)
		os.Exit(1)
	}
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Infrastructure Clients ---
	psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Error("PubSub client failed", "err", err)
		os.Exit(1)
	}
	defer psClient.Close()

	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Error("Firestore client failed", "err", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	// --- Token Directory (Decorated) ---
	fsDirectory := fsStore.NewDirectoryStore(fsClient)
	var directory bridge.TokenDirectory = fsDirectory
	logger.Info("TokenDirectory initialized", "type", "firestore")

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis Cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		ttl := time.Duration(cfg.Redis.TTLHours) * time.Hour
		directory = cache.NewCachedDirectory(directory, redisClient, ttl, logger)
		logger.Info("TokenDirectory upgraded", "type", "redis_cached_firestore")
	}

	// --- Provider Configuration ---
	var appConfig *provider.AppConfig
	if cfg.Provider.ConfigPath != "" {
		appConfig, err = provider.LoadAppConfig(cfg.Provider.ConfigPath)
		if err != nil {
			// Diagnostics only; the bridge works without it.
			logger.Warn("Provider config unavailable", "path", cfg.Provider.ConfigPath, "err", err)
			appConfig = nil
		}
	}
	appID := cfg.Provider.AppID
	if appID == "" && appConfig != nil {
		if id, err := appConfig.GetString("client/app_id"); err == nil {
			appID = id
		}
	}
	app := bridge.Application{AppID: appID, Provider: cfg.Provider.Name}
	if app.AppID != "" {
		if scopes, err := fsDirectory.Scopes(ctx, app.AppID); err != nil {
			logger.Warn("Could not list recorded token scopes", "app_id", app.AppID, "err", err)
		} else {
			logger.Info("Recorded token scopes", "app_id", app.AppID, "count", len(scopes))
		}
	}

	// --- Analytics Collaborators ---
	var registrar bridge.AnalyticsRegistrar = fsStore.NewRegistrarStore(fsClient, app)
	if cfg.FCM.VerifyTokens {
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID})
		if err != nil {
			logger.Error("Failed to initialize Firebase App", "err", err)
			os.Exit(1)
		}
		fcmMessaging, err := fbApp.Messaging(ctx)
		if err != nil {
			logger.Error("Failed to create FCM messaging client", "err", err)
			os.Exit(1)
		}
		registrar = fcm.NewVerifyingRegistrar(fcmMessaging, registrar, logger)
		logger.Info("Token verification enabled", "via", "fcm_dry_run")
	}

	engagementPublisher := analytics.NewPubsubPublisher(psClient, cfg.Engagement.TopicID)
	defer engagementPublisher.Stop()
	ingestor := analytics.NewIngestor(engagementPublisher, cfg.Engagement.MarkerKeys, logger)

	// --- Metrics ---
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		logger.Error("Failed to register metrics", "err", err)
		os.Exit(1)
	}

	// --- Push Bridge ---
	opts := []relay.Option{
		relay.WithApplication(app),
		relay.WithRecorder(m),
		relay.WithLogger(logger),
	}
	if appConfig != nil {
		opts = append(opts, relay.WithDiagnostics(appConfig, directory))
	}
	pushBridge := relay.New(registrar, ingestor, opts...)

	// --- Auth ---
	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityURL == "" {
		identityURL = "http://localhost:3000"
	}
	jwksURL, err := middleware.DiscoverAndValidateJWTConfig(identityURL, middleware.RSA256, logger)
	if err != nil {
		logger.Error("JWT config discovery failed", "err", err)
		os.Exit(1)
	}
	authMiddleware, err := middleware.NewJWKSAuthMiddleware(jwksURL, logger)
	if err != nil {
		logger.Error("Auth middleware creation failed", "err", err)
		os.Exit(1)
	}

	// --- Consumer & Service ---
	consumer, err := newIngestionConsumer(ctx, cfg, psClient, logger)
	if err != nil {
		logger.Error("Consumer creation failed", "err", err)
		os.Exit(1)
	}

	service, err := pushbridgeservice.New(
		cfg,
		consumer,
		pushBridge,
		directory,
		m.Handler(),
		authMiddleware,
		logger,
	)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := service.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "err", err)
		}
	}()

	logger.Info("Starting service...", "app_id", app.AppID, "provider", app.Provider)
	if err := service.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}

func newIngestionConsumer(ctx context.Context, cfg *config.Config, psClient *pubsub.Client, logger *slog.Logger) (messagepipeline.MessageConsumer, error) {
	sub := convertPubsub(cfg.ProjectID, cfg.PubsubConsumerConfig.SubscriptionID, "subscriptions")
	topicID := convertPubsub(cfg.ProjectID, cfg.TopicID, "topics")
	dlt := convertPubsub(cfg.ProjectID, cfg.SubscriptionDLQTopicID, "topics")

	subConfig := &pubsubpb.Subscription{
		Name:               sub,
		Topic:              topicID,
		AckDeadlineSeconds: 10,
		DeadLetterPolicy: &pubsubpb.DeadLetterPolicy{
			DeadLetterTopic:     dlt,
			MaxDeliveryAttempts: 5,
		},
		EnableMessageOrdering: false,
	}
	logger.Debug("Ensuring subscription exists", "sub", subConfig.Name, "topic", subConfig.Topic)
	_, err := psClient.SubscriptionAdminClient.CreateSubscription(ctx, subConfig)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			logger.Debug("Subscription already exists, skipping creation", "sub", subConfig.Name)
		} else {
			logger.Error("Failed to create subscription", "sub", subConfig.Name, "err", err)
			return nil, fmt.Errorf("could not create sub %s: %w", sub, err)
		}
	}

	return messagepipeline.NewGooglePubsubConsumer(
		messagepipeline.NewGooglePubsubConsumerDefaults(subConfig.Name), psClient, logger,
	)
}

type PS string

func convertPubsub(project, id string, ps PS) string {
	return fmt.Sprintf("projects/%s/%s/%s", project, ps, id)
}
