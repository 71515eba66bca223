package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dzn7/apihook/internal/api"
	"github.com/dzn7/apihook/internal/api/handler"
	"github.com/dzn7/apihook/internal/config"
	"github.com/dzn7/apihook/internal/domain"
	"github.com/dzn7/apihook/internal/integration/mercadopago"
	"github.com/dzn7/apihook/internal/integration/qrcode"
	"github.com/dzn7/apihook/internal/integration/sns"
	"github.com/dzn7/apihook/internal/logger"
	dynamorepo "github.com/dzn7/apihook/internal/repository/dynamodb"
	redisrepo "github.com/dzn7/apihook/internal/repository/redis"
	"github.com/dzn7/apihook/internal/service"
	"github.com/dzn7/apihook/internal/telemetry"
)

const (
	qrCodeSize            = 256
	dedupRetention        = 24 * time.Hour
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 10 * time.Second
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Setup(cfg.Development()); err != nil {
		logger.Fatal("failed to set up logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("access_token", cfg.MaskedToken()),
		zap.String("backend_url", cfg.BackendURL),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.String("dedup_backend", cfg.DedupBackend),
	)
	if cfg.NotificationURL() == "" {
		logger.Warn("BACKEND_URL not set, payment creation will fail until it is configured")
	}

	if cfg.OTelEndpoint != "" {
		shutdown, err := telemetry.InitProvider(ctx, telemetry.Options{
			Endpoint:    cfg.OTelEndpoint,
			Environment: cfg.Environment,
		})
		if err != nil {
			logger.Fatal("failed to initialize telemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shut down telemetry", zap.Error(err))
			}
		}()
	}

	var (
		publisher domain.OutcomePublisher
		dedup     domain.NotificationDeduplicator
	)

	if cfg.SNSTopicARN != "" || cfg.DedupBackend == config.DedupDynamoDB {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal("unable to load SDK config", zap.Error(err))
		}
		if cfg.SNSTopicARN != "" {
			publisher = sns.NewClient(awsCfg, cfg.SNSTopicARN)
		}
		if cfg.DedupBackend == config.DedupDynamoDB {
			dedup = dynamorepo.NewNotificationRepository(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTableName)
		}
	}

	if cfg.DedupBackend == config.DedupRedis {
		client, err := redisrepo.NewConnection(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		dedup = redisrepo.NewNotificationRepository(client, dedupRetention)
	}

	// Dependency Injection
	mpClient := mercadopago.NewClient(cfg.MercadoPagoBaseURL, cfg.AccessToken, cfg.GatewayTimeout)
	paymentService := service.NewPaymentService(service.Options{
		OrderLabel:        cfg.OrderLabel,
		NotificationURL:   cfg.NotificationURL(),
		FrontendURL:       cfg.FrontendURL,
		EnforceOrderTotal: cfg.EnforceOrderTotal,
		GatewayTimeout:    cfg.GatewayTimeout,
	}, mpClient, qrcode.NewGenerator(qrCodeSize), publisher, dedup)

	router := api.SetupRouter(cfg, api.Handlers{
		Payment: handler.NewPaymentHandler(paymentService, cfg.Development()),
		Webhook: handler.NewWebhookHandler(paymentService, cfg.WebhookSecret, cfg.Development()),
		System:  handler.NewSystemHandler(cfg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to run server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	paymentService.Wait()
}
