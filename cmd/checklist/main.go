package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/compliance/internal/checklist/config"
	"github.com/gartstein/compliance/internal/checklist/controller"
	"github.com/gartstein/compliance/internal/checklist/db"
	"github.com/gartstein/compliance/internal/checklist/events"
	"github.com/gartstein/compliance/internal/checklist/handlers"
	"github.com/gartstein/compliance/internal/checklist/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	connectTimeout = 30 * time.Second
	healthInterval = 10 * time.Second
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	refresher, closeRefresher := initRefresher(cfg, logger, m)
	defer closeRefresher()

	checklistSvc := controller.NewChecklistService(repo, refresher, m, logger, cfg.MaxPageSize)
	checklistHandler := handlers.NewChecklistHandler(checklistSvc, logger, cfg.DefaultPageSize)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPGateway(
		context.Background(),
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		checklistHandler,
		cfg.JWTSecret,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchDatabase(ctx, repo, server, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// watchDatabase reports the service as not serving while the database
// does not answer.
func watchDatabase(ctx context.Context, repo *db.Repository, server *handlers.Server, logger *zap.Logger) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, healthInterval/2)
			err := repo.Ping(pingCtx)
			cancel()
			if (err == nil) != healthy {
				healthy = err == nil
				if !healthy {
					logger.Error("Database health check failed", zap.Error(err))
				} else {
					logger.Info("Database reachable again")
				}
				server.SetServing(healthy)
			}
		}
	}
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// connectDatabase opens the repository, retrying while the database is
// still starting up.
func connectDatabase(cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	dbCfg := cfg.Database()
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	return backoff.RetryNotifyWithData(func() (*db.Repository, error) {
		return db.NewRepository(&dbCfg)
	}, policy, func(err error, next time.Duration) {
		logger.Warn("Database not ready, retrying", zap.Error(err), zap.Duration("next", next))
	})
}

// initRefresher returns the Kafka-backed refresh gateway, or a logging
// no-op when no brokers are configured.
func initRefresher(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (controller.RefreshGateway, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, refresh requests will only be logged")
		return events.NewLogRefresher(logger), func() {}
	}

	if err := events.EnsureTopic(cfg.KafkaBrokers, cfg.RefreshTopic, logger); err != nil {
		logger.Warn("Failed to ensure refresh topic", zap.String("topic", cfg.RefreshTopic), zap.Error(err))
	}
	producer := events.NewProducer(
		events.NewKafkaWriter(cfg.KafkaBrokers, cfg.RefreshTopic),
		cfg.RefreshQueueSize,
		logger,
		m,
	)
	return producer, producer.Close
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
