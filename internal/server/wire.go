package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/psytech/suvichar/internal/catalog"
	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/downloads"
	"github.com/psytech/suvichar/internal/gateway"
	"github.com/psytech/suvichar/internal/infra"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/library"
	"github.com/psytech/suvichar/internal/logging"
	"github.com/psytech/suvichar/internal/notification"
	"github.com/psytech/suvichar/internal/premium"
	"github.com/psytech/suvichar/internal/profile"
	"github.com/psytech/suvichar/internal/quotes"
	"github.com/psytech/suvichar/internal/routes"
	"github.com/psytech/suvichar/internal/session"
)

// Components holds every store and collaborator built from a Config.
type Components struct {
	Store     kv.Store
	Cache     *redis.Client
	Sessions  *session.Store
	Profiles  *profile.Store
	Premium   *premium.Store
	Catalog   *catalog.Catalog
	Quotes    *quotes.Pool
	Downloads *downloads.Store
	Library   library.Library
	Gateway   *gateway.Gateway

	closers []func() error
}

// Assemble opens storage, the optional Redis cache and the library, then
// builds the stores and the gateway on top of them. A Redis-backed store
// shares its client with the cache.
func Assemble(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Components{}

	store, closeStore, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	c.Store = store
	c.closers = append(c.closers, closeStore)

	if rs, ok := store.(*kv.RedisStore); ok {
		c.Cache = rs.Client()
	} else if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Cache = cache
		c.closers = append(c.closers, cache.Close)
	}

	lib, err := library.Open(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}
	c.Library = lib

	if c.Catalog, err = catalog.Bundled(); err != nil {
		c.Close()
		return nil, err
	}
	if c.Quotes, err = quotes.Bundled(); err != nil {
		c.Close()
		return nil, err
	}

	notifier := notification.NewLoggerNotifier(logging.Component(logger, "notification"))
	c.Sessions = session.NewStore(session.Options{
		Secret:   cfg.SessionSecret,
		Strict:   cfg.OTPStrict,
		Notifier: notifier,
		Logger:   logging.Component(logger, "session"),
	})
	c.Profiles = profile.NewStore(store, logging.Component(logger, "profile"))
	c.Premium = premium.NewStore(store, logging.Component(logger, "premium"), nil)
	c.Downloads = downloads.NewStore(store, logging.Component(logger, "downloads"))

	c.Gateway = gateway.New(gateway.Deps{
		Sessions:  c.Sessions,
		Profiles:  c.Profiles,
		Premium:   c.Premium,
		Catalog:   c.Catalog,
		Quotes:    c.Quotes,
		Downloads: c.Downloads,
		Library:   c.Library,
		Processor: premium.StaticProcessor{},
		Notifier:  notifier,
		Latency:   gateway.Latency{Min: cfg.LatencyMin, Max: cfg.LatencyMax},
		Logger:    logging.Component(logger, "gateway"),
	})
	return c, nil
}

// RouteDeps returns the routing dependencies for these components.
func (c *Components) RouteDeps(cfg config.Config, logger *slog.Logger) routes.Deps {
	return routes.Deps{
		Cfg:      cfg,
		Store:    c.Store,
		Cache:    c.Cache,
		Logger:   logger,
		Gateway:  c.Gateway,
		Sessions: c.Sessions,
	}
}

// Close releases connections in reverse order of opening.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
