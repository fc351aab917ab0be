package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/consumer"
	"github.com/BarkinBalci/click-vote-service/internal/logger"
	"github.com/BarkinBalci/click-vote-service/internal/queue/sqs"
	"github.com/BarkinBalci/click-vote-service/internal/repository/clickhouse"
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

	log.Info("Starting click analytics consumer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse, log.Named("clickhouse"))
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log.Named("clickhouse"))

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log.Named("sqs"))
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	c := consumer.NewConsumer(cfg.Consumer, sqsClient, repo, log.Named("consumer"))

	health := gin.New()
	health.GET("/health", func(ctx *gin.Context) {
		if err := repo.Ping(ctx.Request.Context()); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		ctx.Status(http.StatusOK)
	})
	healthServer := &http.Server{
		Addr:              ":" + cfg.Consumer.HealthCheckPort,
		Handler:           health,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health check server starting", zap.String("address", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down consumer gracefully")
	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = healthServer.Shutdown(shutdownCtx)
}
