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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/SumatiPandey/Doctor-Appointment/internal/config"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/appointment"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/auth"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/doctor"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/health"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/user"
	"github.com/SumatiPandey/Doctor-Appointment/internal/middleware"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository/postgres"
	"github.com/SumatiPandey/Doctor-Appointment/internal/router"
	appointmentService "github.com/SumatiPandey/Doctor-Appointment/internal/service/appointment"
	authService "github.com/SumatiPandey/Doctor-Appointment/internal/service/auth"
	doctorService "github.com/SumatiPandey/Doctor-Appointment/internal/service/doctor"
	eventService "github.com/SumatiPandey/Doctor-Appointment/internal/service/event"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	userService "github.com/SumatiPandey/Doctor-Appointment/internal/service/user"
	jwtauth "github.com/SumatiPandey/Doctor-Appointment/pkg/auth"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/logger"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/security"
)

func main() {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})
	appLogger.SetGlobal()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics("doctor_appointment", prometheus.DefaultRegisterer)

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Initialize services
	policy := rbac.NewPolicy()
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	events := eventService.NewEventService(outboxRepo, appMetrics)

	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	userSvc := userService.NewService(userRepo, policy)
	doctorSvc := doctorService.NewService(doctorRepo, hasher, policy, events, appMetrics, cfg.Cache)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, policy, events, appMetrics)

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validators")
	}
	authMiddleware := middleware.NewAuthMiddleware(authSvc, policy)

	r := router.NewRouter(
		authMiddleware,
		health.NewHandler(db, prometheus.DefaultGatherer),
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			RateLimit:      cfg.RateLimit,
			CORS:           cfg.CORS,
			Metrics:        appMetrics,
		},
		auth.NewHandler(authSvc),
		user.NewHandler(userSvc),
		doctor.NewHandler(doctorSvc),
		appointment.NewHandler(appointmentSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
