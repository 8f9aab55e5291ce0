package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "motorent-backend/internal/api/http"
	"motorent-backend/internal/config"
	"motorent-backend/internal/gateway"
	"motorent-backend/internal/logger"
	"motorent-backend/internal/metrics"
	"motorent-backend/internal/repository/postgres"
	"motorent-backend/internal/security"
	"motorent-backend/internal/service"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local overrides; absence of a .env file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Motorent Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Gateway configuration", "mode", cfg.Gateway.Mode)

	metrics.Register()

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Payment Gateway
	var gw gateway.Gateway
	if cfg.Gateway.Mode == "live" {
		gw = gateway.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.APIKey)
	} else {
		logger.Info("Using sandbox payment gateway")
		gw = gateway.NewSandbox()
	}

	// Initialize Email + Effect Dispatcher
	var email service.EmailSender
	if cfg.SendGrid.APIKey != "" {
		email = service.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid API key not configured; email delivery disabled")
	}
	dispatcher := service.NewDispatcher(store.NotificationRepository, email)

	// Initialize Services
	availabilitySvc := service.NewAvailabilityService(
		store.AssetRepository,
		store.VendorRepository,
		store.ReservationRepository,
	)
	paymentSvc := service.NewPaymentService(
		store.PaymentRepository,
		store.ReservationRepository,
		gw,
		dispatcher,
	)
	bookingSvc := service.NewBookingService(
		availabilitySvc,
		store.ReservationRepository,
		store.AddOnRepository,
		store.CouponRepository,
		store.VendorRepository,
		store.AssetRepository,
		paymentSvc,
		dispatcher,
		cfg.Booking.DefaultOvertimeHourlyYen,
	)

	// Initialize HTTP API
	router := httpapi.NewRouter(tokenManager, availabilitySvc, bookingSvc, paymentSvc)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	dispatcher.Wait()
	logger.Info("Server stopped")
}
