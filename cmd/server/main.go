package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/adapters/http/middleware"
	"residency-api/internal/adapters/http/routes"
	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/config"
	"residency-api/internal/pkg/logger"

	_ "residency-api/docs" // Swagger docs
)

// @title Residency API
// @version 1.0
// @description Residential society management API: registrations, maintenance ledger, expenses, funds, notices, meetings and amenity bookings.

// @contact.name Society Office
// @contact.email office@residency.example.org

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		ServiceName: "residency-api",
		Pretty:      cfg.IsDev(),
	})
	if !cfg.EnvFileUsed {
		log.Info().Msg("No .env file found, using process environment")
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate")
	}
	log.Info().Msg("Database migration completed")

	if err := config.NewSeeder(db, cfg, log).Run(); err != nil {
		log.Warn().Err(err).Msg("Failed to seed data")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Residency API v1.0",
		ErrorHandler: middleware.CustomErrorHandler(log),
	})

	// Setup middlewares
	middleware.Setup(app, cfg, log)

	// Setup routes (pass db and cfg for dependency injection)
	scheduler := routes.Setup(app, db, cfg, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Graceful shutdown
	go gracefulShutdown(app, log)

	// Start server
	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("Failed to start server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
	log.Info().Msg("Server stopped gracefully")
}
