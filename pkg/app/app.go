// Package app wires configuration, storage, caches and services into the
// HTTP handler shared by the server binary, the serverless entrypoint and the
// CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/avatar"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/cache"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlstore"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type App struct {
	Handler  http.Handler
	Store    *sqlstore.Store
	Registry *services.Registry
	Links    *services.LinkService
	Profiles *services.ProfileService
	Pages    *services.PageService
	Avatars  *services.AvatarService

	closers []func() error
}

// New opens the database (running migrations) and builds every service.
// Redis and object storage are optional: without them pages are not cached
// and avatar uploads are disabled.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	store, err := sqlstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{Store: store}
	a.closers = append(a.closers, store.Close)
	logger.Info(ctx, "database ready", "dialect", store.Dialect())

	var pageCache ports.PageCache
	if cfg.RedisURL != "" {
		c, rdb, err := cache.NewRedisPageCache(ctx, cfg.RedisURL, cfg.PageCacheTTL)
		if err != nil {
			logger.Warn(ctx, "page cache disabled", "error", err)
		} else {
			pageCache = c
			a.closers = append(a.closers, rdb.Close)
			logger.Info(ctx, "page cache enabled", "ttl", cfg.PageCacheTTL.String())
		}
	}

	var avatarStore ports.AvatarStore
	if cfg.AvatarBucket != "" {
		s, err := avatar.NewS3Store(ctx, avatar.Options{
			Bucket:    cfg.AvatarBucket,
			Region:    cfg.AvatarRegion,
			Endpoint:  cfg.AvatarEndpoint,
			AccessKey: cfg.AvatarAccessKey,
			SecretKey: cfg.AvatarSecretKey,
			URLTTL:    cfg.AvatarURLTTL,
			MaxBytes:  cfg.AvatarMaxBytes,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("avatar store: %w", err)
		}
		avatarStore = s
	}

	a.Registry = services.NewRegistry(cfg.ReservedUsernames...)
	a.Pages = services.NewPageService(store, store, a.Registry, pageCache, logger)
	a.Links = services.NewLinkService(store, a.Pages, logger)
	a.Profiles = services.NewProfileService(store, a.Registry, a.Pages, logger)
	a.Avatars = services.NewAvatarService(avatarStore)

	a.Handler = handler.NewRouter(cfg, logger, handler.Services{
		Links:    a.Links,
		Profiles: a.Profiles,
		Pages:    a.Pages,
		Avatars:  a.Avatars,
		Resolver: services.NewResolver(a.Registry),
	})
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
