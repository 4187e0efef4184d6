// Package main initializes and starts the catalog HTTP server,
// setting up configuration, logging, the document store, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/catalog/internal/config"
	"github.com/atinyakov/catalog/internal/db"
	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/logger"
	"github.com/atinyakov/catalog/internal/notifier"
	"github.com/atinyakov/catalog/internal/repository"
	"github.com/atinyakov/catalog/internal/server/handler/http"
	"github.com/atinyakov/catalog/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the backing medium; one handle serves the whole process.
	conn, err := db.Init(options.DatabaseDriver, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	store, err := docstore.New(conn, options.DatabaseDriver)
	if err != nil {
		zapLogger.Fatal("cannot init document store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Error("failed to close document store", zap.Error(err))
		}
	}()

	db.StartHealthProbe(ctx, store, options.HealthInterval, 2*time.Second, zapLogger)

	// Initialize repositories over the shared store.
	collectionRepo := repository.NewCollectionRepository(store)
	itemRepo := repository.NewItemRepository(store)
	userRepo := repository.NewUserRepository(store)

	// Initialize business-logic services.
	catalogService := service.NewCatalogService(collectionRepo, itemRepo)
	authService := service.NewAuthService(userRepo)

	catalogHandler := &http.CatalogHandler{
		Catalog:  catalogService,
		Notifier: notifier.New(itemRepo),
		Logger:   zapLogger,
	}
	userHandler := &http.UserHandler{AuthService: authService, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(catalogHandler, userHandler, store, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.String("driver", options.DatabaseDriver),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Error("HTTP server failed", zap.Error(err))
		return
	}
	zapLogger.Info("server stopped")
}
