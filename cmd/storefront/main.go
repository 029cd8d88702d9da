// Command storefront drives the storefront services from a terminal. With
// STOREFRONT_API_URL unset it runs against the built-in mock provider.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/isdelr/storefront/internal/config"
	"github.com/isdelr/storefront/internal/database"
	"github.com/isdelr/storefront/internal/logger"
	"github.com/isdelr/storefront/internal/session"
	"github.com/isdelr/storefront/internal/storefront"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	store, closeStore, err := openSession(cfg.SessionPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SessionPath).Msg("Failed to open session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, storefront.NewSources(cfg, store), os.Stdout)
	code := a.run(ctx, os.Args[1:])
	stop()
	closeStore()
	os.Exit(code)
}

// openSession persists tokens in a SQLite file so they survive restarts.
func openSession(path string) (*session.Store, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	db, err := database.New(path)
	if err != nil {
		return nil, nil, err
	}
	storage, err := session.NewSQLStorage(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	store, err := session.Open(storage)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}
