package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/api"
	"github.com/moviweb/moviweb/internal/catalog/audit"
	"github.com/moviweb/moviweb/internal/catalog/repository"
	"github.com/moviweb/moviweb/internal/catalog/service"
	"github.com/moviweb/moviweb/internal/config"
	"github.com/moviweb/moviweb/internal/metadata/omdb"
	"github.com/moviweb/moviweb/internal/storage"
	"github.com/moviweb/moviweb/pkg/events"
	"github.com/moviweb/moviweb/pkg/logger"
)

func main() {
	// A missing .env is fine; real environments configure via env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.MustNew(cfg.Server.Environment, cfg.Server.LogLevel)
	defer log.Sync()

	log.Info("moviweb server starting",
		zap.String("environment", cfg.Server.Environment),
		zap.Int("port", cfg.Server.HTTPPort))

	db, cleanup, err := repository.NewDB(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer cleanup()

	store := repository.NewGormStore(db)

	var meta service.MetadataProvider
	if cfg.OMDb.APIKey != "" {
		meta = omdb.NewClient(cfg.OMDb.BaseURL, cfg.OMDb.APIKey, cfg.OMDb.Timeout)
	} else {
		log.Warn("OMDB_API_KEY not set; metadata imports disabled")
	}

	media, err := storage.New(&cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to initialize media storage", zap.Error(err))
	}

	bus := events.NewInMemoryBus(log)
	audit.Register(bus, log)

	svc := service.New(store, meta, bus, log)
	handler := api.NewHandler(svc, media, log)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTime)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	bus.Stop()

	log.Info("server stopped")
}
