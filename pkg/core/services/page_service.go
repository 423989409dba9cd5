package services

import (
	"context"
	"errors"
	"strings"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/metrics"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// PageService assembles the public page of a resolved tenant.
type PageService struct {
	profiles ports.ProfileRepository
	links    ports.LinkRepository
	registry *Registry
	cache    ports.PageCache
	logger   logging.Logger
}

func NewPageService(profiles ports.ProfileRepository, links ports.LinkRepository, registry *Registry, cache ports.PageCache, logger logging.Logger) *PageService {
	return &PageService{profiles: profiles, links: links, registry: registry, cache: cache, logger: logger}
}

// Page returns the tenant page for username. A missing tenant is
// domain.ErrNotFound; a failed profile lookup is domain.ErrStorageUnavailable.
// A failed link fetch does not fail the page: the profile is returned with no
// links and LinksErr set.
func (s *PageService) Page(ctx context.Context, username string) (*domain.TenantPage, error) {
	key, err := domain.CanonicalUsername(username)
	if err != nil || s.registry.IsReserved(key) {
		return nil, domain.ErrProfileNotFound
	}

	page, gen, fill := s.cached(ctx, key)
	if page != nil {
		return page, nil
	}

	profile, err := s.profiles.GetProfileByUsername(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error(ctx, "profile lookup failed", "username", key, "error", err)
		}
		return nil, err
	}

	links, err := s.links.ListLinks(ctx, profile.OwnerID)
	if err != nil {
		metrics.PageLinkFetchFailures.Inc()
		s.logger.Warn(ctx, "serving page without links", "username", key, "owner_id", profile.OwnerID, "error", err)
		degraded := domain.NewTenantPage(profile, nil)
		degraded.LinksErr = err
		return degraded, nil
	}

	page = domain.NewTenantPage(profile, links)
	if fill {
		if err := s.cache.Set(ctx, key, gen, page); err != nil {
			s.logger.Warn(ctx, "page cache set failed", "username", key, "error", err)
		}
	}
	return page, nil
}

// cached returns the cached page for key, or nil. fill reports whether a page
// assembled now may be stored, and gen is the generation to store it under.
func (s *PageService) cached(ctx context.Context, key string) (page *domain.TenantPage, gen int64, fill bool) {
	if s.cache == nil {
		return nil, 0, false
	}
	page, gen, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.PageCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn(ctx, "page cache get failed", "username", key, "error", err)
		return nil, 0, false
	case !ok:
		metrics.PageCacheLookups.WithLabelValues("miss").Inc()
		return nil, gen, true
	default:
		metrics.PageCacheLookups.WithLabelValues("hit").Inc()
		return page, gen, false
	}
}

// InvalidateOwner invalidates the cached page of the owner's current username
// and of any extra usernames (for example the one just given up by a rename).
// It runs after the mutation commits, so a Page call that read storage before
// the commit cannot fill the new generation.
func (s *PageService) InvalidateOwner(ctx context.Context, ownerID string, extraUsernames ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(extraUsernames)+1)
	for _, name := range extraUsernames {
		if name = strings.TrimSpace(name); name != "" {
			keys = append(keys, name)
		}
	}
	profile, err := s.profiles.GetProfileByOwner(ctx, ownerID)
	switch {
	case err == nil:
		keys = append(keys, profile.Username)
	case !errors.Is(err, domain.ErrNotFound):
		s.logger.Warn(ctx, "page invalidation lookup failed", "owner_id", ownerID, "error", err)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn(ctx, "page cache invalidation failed", "owner_id", ownerID, "error", err)
	}
}

// Demo is the static page served at /demo.
func (s *PageService) Demo() *domain.TenantPage {
	return &domain.TenantPage{
		Username:    "demo",
		DisplayName: "Demo User",
		Bio:         "This is a demo profile showing how your page will look. Sign up to create your own!",
		Links: []domain.PageLink{
			{ID: "demo-1", Title: "My Website", Target: "https://example.com", Icon: "website"},
			{ID: "demo-2", Title: "Twitter", Target: "https://twitter.com/username", Icon: "twitter"},
			{ID: "demo-3", Title: "Instagram", Target: "https://instagram.com/username", Icon: "instagram"},
			{ID: "demo-4", Title: "LinkedIn", Target: "https://linkedin.com/in/username", Icon: "linkedin"},
		},
	}
}
