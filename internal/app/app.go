package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/varoOP/jikansync/internal/anime"
	"github.com/varoOP/jikansync/internal/cache"
	"github.com/varoOP/jikansync/internal/config"
	"github.com/varoOP/jikansync/internal/database"
	"github.com/varoOP/jikansync/internal/domain"
	"github.com/varoOP/jikansync/internal/export"
	"github.com/varoOP/jikansync/internal/jikan"
	"github.com/varoOP/jikansync/internal/logger"
	"github.com/varoOP/jikansync/internal/ratelimit"
)

// App holds the wired pipeline: limiter, resilient Jikan client, cache
// tier, sqlite persistence and the orchestrator on top.
type App struct {
	log           zerolog.Logger
	config        *domain.Config
	db            *database.DB
	cacheStore    domain.CacheStore
	AnimeService  anime.Service
	ExportService export.Service
}

// NewApp creates a new application instance with all dependencies initialized
func NewApp(ctx context.Context) (*App, error) {
	log := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewDB(cfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	animeRepo := database.NewAnimeRepo(log, db)

	// Redis when configured, otherwise the sqlite cache table.
	var cacheStore domain.CacheStore
	if cfg.RedisAddr != "" {
		cacheStore, err = cache.NewRedisStore(ctx, log, cfg)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		sqliteCache := database.NewCacheRepo(log, db)
		if _, err := sqliteCache.Prune(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to prune cache")
		}
		cacheStore = sqliteCache
	}

	cacheLayer := cache.NewLayer(log, cacheStore, cfg.AnimeTTL)
	limiter := ratelimit.New(log, cfg.RatePerSecond, cfg.RatePerMinute)
	jikanService := jikan.NewService(log, cfg, limiter)

	return &App{
		log:           log,
		config:        cfg,
		db:            db,
		cacheStore:    cacheStore,
		AnimeService:  anime.NewService(log, jikanService, animeRepo, cacheLayer),
		ExportService: export.NewService(log, animeRepo),
	}, nil
}

// Close releases the cache store and database.
func (a *App) Close() error {
	if err := a.cacheStore.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close cache store")
	}
	return a.db.Close()
}
