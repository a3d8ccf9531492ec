// Command seed imports a JSON list of movie titles through the metadata
// service, e.g. a top-250 list extracted from a published ranking.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/repository"
	"github.com/moviweb/moviweb/internal/catalog/service"
	"github.com/moviweb/moviweb/internal/config"
	"github.com/moviweb/moviweb/internal/metadata/omdb"
	"github.com/moviweb/moviweb/pkg/events"
	"github.com/moviweb/moviweb/pkg/logger"
)

func main() {
	var (
		file     = flag.String("file", "seeding/top250.json", "JSON file with [{\"title\": ...}] entries")
		userName = flag.String("user", "", "optionally link every imported movie to this user (created if missing)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.MustNew(cfg.Server.Environment, cfg.Server.LogLevel)
	defer log.Sync()

	if cfg.OMDb.APIKey == "" {
		log.Fatal("OMDB_API_KEY is required for seeding")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("failed to read seed file", zap.String("file", *file), zap.Error(err))
	}

	var items []service.ImportItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Fatal("failed to parse seed file", zap.String("file", *file), zap.Error(err))
	}

	db, cleanup, err := repository.NewDB(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer cleanup()

	store := repository.NewGormStore(db)
	meta := omdb.NewClient(cfg.OMDb.BaseURL, cfg.OMDb.APIKey, cfg.OMDb.Timeout)
	bus := events.NewInMemoryBus(log)
	defer bus.Stop()

	svc := service.New(store, meta, bus, log)
	ctx := context.Background()

	if *userName != "" {
		user, err := svc.EnsureUser(ctx, *userName)
		if err != nil {
			log.Fatal("failed to resolve seed user", zap.String("user", *userName), zap.Error(err))
		}
		result, err := svc.ImportFavorites(ctx, user.ID, items)
		if err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("seeding finished",
			zap.Int("imported", len(result.Added)),
			zap.Int("failed", len(result.Errors)))
		for _, e := range result.Errors {
			log.Warn("failed to import", zap.String("title", e.Item.Title), zap.String("reason", e.Error))
		}
		return
	}

	imported, failed := 0, 0
	for _, item := range items {
		if _, err := svc.ImportMovie(ctx, item); err != nil {
			failed++
			log.Warn("failed to import", zap.String("title", item.Title), zap.Error(err))
			continue
		}
		imported++
	}
	log.Info("seeding finished", zap.Int("imported", imported), zap.Int("failed", failed))
}
