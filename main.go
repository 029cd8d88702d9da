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

	"github.com/isdelr/storefront/internal/api"
	"github.com/isdelr/storefront/internal/auth"
	"github.com/isdelr/storefront/internal/catalog"
	"github.com/isdelr/storefront/internal/config"
	"github.com/isdelr/storefront/internal/database"
	"github.com/isdelr/storefront/internal/logger"
	"github.com/isdelr/storefront/internal/monitoring"
	"github.com/isdelr/storefront/internal/services"
	"github.com/isdelr/storefront/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	productService := services.NewProductService(db, hub)
	tokenService := services.NewTokenService(db)

	if cfg.SeedCatalog {
		dataset, err := catalog.Products()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load demo catalog")
		}
		if err := services.SeedDemoData(userService, productService, dataset); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Set up and run the background scheduler
	scheduler := monitoring.NewScheduler()
	if err := scheduler.Add("prune-revoked-tokens", cfg.PruneSchedule, monitoring.PruneRevokedTokens(tokenService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule token pruning")
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Deps{
		Hub:            hub,
		Users:          userService,
		Products:       productService,
		Tokens:         tokenService,
		Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
