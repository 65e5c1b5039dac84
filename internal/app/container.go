package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/browser"
	"github.com/kapu/aion2-character-go/internal/character"
	"github.com/kapu/aion2-character-go/internal/config"
	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/server"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
	"github.com/kapu/aion2-character-go/internal/service/cache"
	"github.com/kapu/aion2-character-go/internal/service/database"
	"github.com/kapu/aion2-character-go/internal/service/lookup"
	"github.com/kapu/aion2-character-go/internal/util"
)

// Container bundles the assembled services shared by the server and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Client *aion2.Client
	Lookup *lookup.Service

	closers []func()
}

type Option func(*buildOptions)

type buildOptions struct {
	launcher dom.Launcher
}

// WithLauncher replaces the chrome launcher, e.g. with a dom.StaticLauncher.
func WithLauncher(l dom.Launcher) Option {
	return func(o *buildOptions) {
		o.launcher = l
	}
}

// Build assembles every service. Redis and PostgreSQL are optional: when
// enabled but unreachable, lookups run without them.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	var recordCache lookup.RecordCache
	if cfg.Cache.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Record cache disabled", zap.Error(cacheErr))
		} else {
			recordCache = cacheSvc
			c.closers = append(c.closers, func() { _ = cacheSvc.Close() })
		}
	}

	var recordStore lookup.RecordStore
	if cfg.Storage.Enabled {
		postgresSvc, dbErr := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if dbErr != nil {
			logger.Warn("Record store disabled", zap.Error(dbErr))
		} else {
			c.closers = append(c.closers, func() { _ = postgresSvc.Close() })
			repo := database.NewCharacterRepository(postgresSvc, logger)
			if err := repo.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("failed to prepare character store: %w", err)
			}
			recordStore = repo
		}
	}

	launcher := o.launcher
	if launcher == nil {
		launcher = browser.NewLauncher(cfg.Browser, logger)
	}

	assembler := character.NewAssembler(cfg.Browser.ActionSettle, logger)
	c.Client = aion2.NewClient(launcher, assembler, aion2.ConfigFrom(cfg), logger)

	breaker := util.NewCircuitBreaker("aion2-site",
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		logger,
	)
	c.Lookup = lookup.NewService(c.Client, recordCache, recordStore, breaker, logger)

	logger.Info("Services assembled",
		zap.Bool("cache", recordCache != nil),
		zap.Bool("storage", recordStore != nil),
		zap.String("base_url", cfg.Site.BaseURL),
	)
	return c, nil
}

// NewServer builds the HTTP server on top of the lookup service.
func (c *Container) NewServer() *server.Server {
	return server.New(c.Config.Server.Addr, c.Lookup, c.Logger)
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
