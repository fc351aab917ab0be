package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/handler"
	"github.com/BarkinBalci/click-vote-service/internal/identity"
	"github.com/BarkinBalci/click-vote-service/internal/identity/cognito"
	"github.com/BarkinBalci/click-vote-service/internal/logger"
	"github.com/BarkinBalci/click-vote-service/internal/queue"
	"github.com/BarkinBalci/click-vote-service/internal/queue/sqs"
	"github.com/BarkinBalci/click-vote-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/click-vote-service/internal/service"
	"github.com/BarkinBalci/click-vote-service/internal/store"
	"github.com/BarkinBalci/click-vote-service/internal/store/dynamodb"
	"github.com/BarkinBalci/click-vote-service/internal/store/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting API service",
		zap.String("port", cfg.Service.APIPort),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("analytics_enabled", cfg.Analytics.Enabled))

	ctx := context.Background()

	tables, err := newTables(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create store", zap.Error(err))
	}

	identities, err := newIdentityProvider(ctx, cfg.Cognito, log)
	if err != nil {
		log.Fatal("Failed to create identity provider", zap.Error(err))
	}

	var publisher queue.ClickPublisher
	var metrics service.MetricsServicer
	if cfg.Analytics.Enabled {
		sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log.Named("sqs"))
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		publisher = sqsClient

		clickhouseClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse, log.Named("clickhouse"))
		if err != nil {
			log.Fatal("Failed to create ClickHouse client", zap.Error(err))
		}
		defer func(clickhouseClient *clickhouse.Client) {
			if err := clickhouseClient.Close(); err != nil {
				log.Error("Failed to close ClickHouse client", zap.Error(err))
			}
		}(clickhouseClient)

		metrics = service.NewMetricsService(clickhouse.NewRepository(clickhouseClient, log), log.Named("metrics"))
	}

	recorder := service.NewRecorderService(tables, publisher, service.RecorderConfig{
		CampaignGuardWindow: time.Duration(cfg.DynamoDB.CampaignGuardTTLSec) * time.Second,
	}, log.Named("recorder"))

	campaigns := service.NewCampaignService(tables.Campaigns, service.CampaignConfig{
		OwnerIndex: cfg.DynamoDB.CampaignOwnerIndex,
		AppBase:    cfg.Campaign.AppBase,
		MaxNameLen: cfg.Campaign.MaxNameLen,
	}, log.Named("campaigns"))

	aggregator := service.NewAggregatorService(tables, identities, service.AggregatorConfig{
		ButtonIndex:      cfg.DynamoDB.ButtonIndex,
		IdentityPageSize: cfg.Cognito.PageSize,
	}, log.Named("aggregator"))

	h := handler.NewHandler(handler.Services{
		Recorder:   recorder,
		Campaigns:  campaigns,
		Aggregator: aggregator,
		Metrics:    metrics,
	}, cfg.Service.AuthHeader, log.Named("http"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server gracefully")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
}

func newTables(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Tables, error) {
	schemas := store.SchemasFromConfig(cfg.DynamoDB)

	if cfg.Store.Backend == "memory" {
		log.Warn("Using in-memory store; data is lost on restart")
		return memory.NewTables(schemas), nil
	}

	client, err := dynamodb.NewClient(ctx, cfg.DynamoDB, log.Named("dynamodb"))
	if err != nil {
		return store.Tables{}, err
	}
	return dynamodb.NewTables(client, schemas, log.Named("dynamodb")), nil
}

// newIdentityProvider returns nil when no user pool is configured, which
// renders every leaderboard entry with an anonymous handle
func newIdentityProvider(ctx context.Context, cfg config.Cognito, log *zap.Logger) (identity.Provider, error) {
	if cfg.UserPoolID == "" {
		log.Warn("COGNITO_USER_POOL_ID not set; leaderboard names will be anonymous")
		return nil, nil
	}

	client, err := cognito.NewClient(ctx, cfg, log.Named("cognito"))
	if err != nil {
		return nil, err
	}
	return cognito.NewProvider(client, cfg.UserPoolID, log.Named("cognito")), nil
}
