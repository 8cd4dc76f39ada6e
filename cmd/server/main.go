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
	"golang.org/x/sync/errgroup"

	"github.com/premium-car-rentals/service-rental/internal/application"
	"github.com/premium-car-rentals/service-rental/internal/auth"
	"github.com/premium-car-rentals/service-rental/internal/config"
	"github.com/premium-car-rentals/service-rental/internal/consumer"
	"github.com/premium-car-rentals/service-rental/internal/database"
	"github.com/premium-car-rentals/service-rental/internal/handler"
	"github.com/premium-car-rentals/service-rental/internal/health"
	"github.com/premium-car-rentals/service-rental/internal/kafka"
	"github.com/premium-car-rentals/service-rental/internal/logger"
	"github.com/premium-car-rentals/service-rental/internal/middleware"
	"github.com/premium-car-rentals/service-rental/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.Migrate(db, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	attemptStore := repository.NewGormLoginAttemptStore(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		vehicleRepo,
		categoryRepo,
		kafkaProducer,
		log,
	)
	fleetService := application.NewFleetService(vehicleRepo, categoryRepo, bookingRepo, log)
	securityService := application.NewSecurityService(attemptStore, log)

	// Shut everything down on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	groupID := cfg.Kafka.GroupPrefix + "rental-service"
	fleetConsumer := consumer.NewFleetEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		fleetService,
		log,
	)
	defer func() { _ = fleetConsumer.Close() }()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	vehicleHandler := handler.NewVehicleHandler(fleetService)
	adminHandler := handler.NewAdminHandler(bookingService, fleetService)
	authHandler := handler.NewAuthHandler(securityService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	vehicleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting fleet event consumer")
		if err := fleetConsumer.Start(gctx); err != nil && err != context.Canceled {
			return fmt.Errorf("fleet event consumer: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		securityService.StartExpirySweep(gctx, time.Hour)
		return nil
	})

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-rental...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("service-rental exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("service-rental stopped")
}
