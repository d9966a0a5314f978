package main

import (
	"log"

	"github.com/roadsight/plate-ad-service/internal/campaign"
	"github.com/roadsight/plate-ad-service/internal/config"
	"github.com/roadsight/plate-ad-service/internal/engine"
	"github.com/roadsight/plate-ad-service/internal/httpserver"
	"github.com/roadsight/plate-ad-service/internal/logging"
	"github.com/roadsight/plate-ad-service/internal/store"
)

// main boots the service: config → logger → DB → schema → catalog → HTTP.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		logger.Fatalw("postgres connect failed", "err", err)
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build`
	// is enough.
	if err := db.EnsureSchema(); err != nil {
		logger.Fatalw("schema apply failed", "err", err)
	}

	// Campaign catalog: loaded once, immutable afterwards. Malformed
	// definitions are excluded rather than failing boot.
	catalog, skipped, err := campaign.Load(cfg.CampaignsFile)
	if err != nil {
		logger.Fatalw("campaign catalog load failed", "err", err)
	}
	for _, s := range skipped {
		logger.Warnw("campaign excluded from catalog", "reason", s.Error())
	}
	logger.Infow("campaign catalog loaded", "campaigns", catalog.Len())

	eng := engine.New(catalog, db, logger)

	router := httpserver.NewRouter(cfg, db, eng, logger)

	logger.Infow("server starting", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}
