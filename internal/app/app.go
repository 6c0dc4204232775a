// Package app wires the BGG client, cache and service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
	"github.com/secondturn-games/second-turn-games-sub000/internal/metrics"
	"github.com/secondturn-games/second-turn-games-sub000/internal/service"
)

// App owns the long-lived components behind the service.
type App struct {
	Service *service.Service
	Client  *bgg.Client
	Cache   *cache.Manager

	shared *cache.RedisDetailsStore
}

// New builds the client, cache and service. When cfg names a Redis address
// the details store is shared through Redis; a Redis that cannot be reached
// is logged and skipped.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := bgg.NewClient(bgg.Config{
		BaseURL:            cfg.API.BaseURL,
		Token:              cfg.API.Token,
		Timeout:            cfg.API.Timeout.Duration,
		MinRequestInterval: cfg.API.MinRequestInterval.Duration,
		HourlyLimit:        cfg.API.HourlyLimit,
		BatchSize:          cfg.API.BatchSize,
		Logger:             logger,
		OnRequest:          metrics.RecordUpstream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create BGG client: %w", err)
	}

	manager := cache.NewManager(cache.Options{
		MaxEntries:      cfg.Cache.MaxEntries,
		BaseSearchTTL:   cfg.Cache.SearchTTL.Duration,
		DetailsTTL:      cfg.Cache.DetailsTTL.Duration,
		ItemMetadataTTL: cfg.Cache.MetadataTTL.Duration,
		SweepInterval:   cfg.Cache.SweepInterval.Duration,
		Logger:          logger,
		OnLookup:        metrics.RecordCacheLookup,
	})

	a := &App{Client: client, Cache: manager}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithTopK(cfg.API.TopK),
	}

	if cfg.UsesRedis() {
		shared, err := cache.NewRedisDetailsStore(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.DetailsTTL.Duration,
		})
		if err != nil {
			logger.Warn("redis unavailable, game details stay in memory",
				"addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			logger.Info("redis details store connected", "addr", cfg.Cache.RedisAddr)
			a.shared = shared
			opts = append(opts, service.WithDetailsStore(shared))
		}
	}

	a.Service = service.New(client, manager, opts...)
	manager.Start()

	return a, nil
}

// Close stops the cache sweeper and closes the Redis connection.
func (a *App) Close() error {
	err := a.Cache.Close()
	if a.shared != nil {
		err = errors.Join(err, a.shared.Close())
	}
	return err
}
