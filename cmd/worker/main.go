package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/config"
	"github.com/SumatiPandey/Doctor-Appointment/internal/email"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/health"
	"github.com/SumatiPandey/Doctor-Appointment/internal/middleware"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository/postgres"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/notification"
	internalworker "github.com/SumatiPandey/Doctor-Appointment/internal/worker"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/logger"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/messaging/redis"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})
	appLogger.SetGlobal()
	workerLogger := appLogger.With("worker")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		workerLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		workerLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	workerMetrics := metrics.NewMetrics("doctor_appointment_worker", prometheus.DefaultRegisterer)
	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	processor, err := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		Channel:       cfg.Redis.Channel,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
		ClaimLease:    cfg.Outbox.ClaimLease,
	}, appLogger, workerMetrics)
	if err != nil {
		workerLogger.Fatal(err, "Failed to create outbox processor")
	}

	cleanup := internalworker.NewOutboxCleanupWorker(
		outboxRepo,
		cfg.Outbox.RetentionDays,
		cfg.Outbox.CleanupInterval,
		appLogger,
		workerMetrics,
	)

	notifier := notification.NewService(
		email.NewService(cfg.SMTP, *appLogger.Zerolog()),
		broker,
		cfg.Redis.Channel,
		*appLogger.Zerolog(),
		workerMetrics,
	)

	srv := healthServer(cfg.Worker.HealthPort, db)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			workerLogger.Error(err, "Health check server failed")
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx); err != nil {
			workerLogger.Error(err, "Notification consumer stopped")
			stop()
		}
	}()

	workerLogger.Info("Worker started", "channel", cfg.Redis.Channel)
	<-ctx.Done()
	workerLogger.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		workerLogger.Error(err, "Health check server forced to shutdown")
	}

	wg.Wait()
	workerLogger.Info("Worker exited properly")
}

func healthServer(port int, db health.Pinger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery())
	health.NewHandler(db, prometheus.DefaultGatherer).RegisterRoutes(engine)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
