package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/metrics"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type LinkService struct {
	repo   ports.LinkRepository
	pages  ports.PageInvalidator
	logger logging.Logger
	now    func() time.Time
}

func NewLinkService(repo ports.LinkRepository, pages ports.PageInvalidator, logger logging.Logger) *LinkService {
	return &LinkService{repo: repo, pages: pages, logger: logger, now: time.Now}
}

func (s *LinkService) List(ctx context.Context, ownerID string) ([]domain.LinkItem, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	links, err := s.repo.ListLinks(ctx, ownerID)
	metrics.ObserveLinkOp("list", domain.Kind(err))
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *LinkService) Add(ctx context.Context, ownerID, title, target, icon string) (*domain.LinkItem, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	target, err = domain.NormalizeTarget(target)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	link := &domain.LinkItem{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Target:    target,
		Icon:      domain.ParseIcon(icon),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Not retried: a second attempt after an ambiguous failure could append twice.
	err = s.repo.AppendLink(ctx, link)
	metrics.ObserveLinkOp("add", domain.Kind(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "link added", "owner_id", ownerID, "link_id", link.ID, "position", link.Position)
	s.invalidate(ctx, ownerID)
	return link, nil
}

func (s *LinkService) Update(ctx context.Context, ownerID, linkID string, changes domain.LinkChanges) (*domain.LinkItem, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	link, err := s.repo.GetLink(ctx, ownerID, linkID)
	if err != nil {
		metrics.ObserveLinkOp("update", domain.Kind(err))
		return nil, err
	}

	changed, err := changes.Apply(link)
	if err != nil {
		return nil, err
	}
	if !changed {
		metrics.ObserveLinkOp("update", "")
		return link, nil
	}

	link.UpdatedAt = s.now().UTC()
	err = s.repo.UpdateLink(ctx, link)
	metrics.ObserveLinkOp("update", domain.Kind(err))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return link, nil
}

func (s *LinkService) Delete(ctx context.Context, ownerID, linkID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	err := s.repo.DeleteLink(ctx, ownerID, linkID)
	metrics.ObserveLinkOp("delete", domain.Kind(err))
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "link deleted", "owner_id", ownerID, "link_id", linkID)
	s.invalidate(ctx, ownerID)
	return nil
}

// Reorder replaces the owner's whole order with ids and returns the new list.
// The order is committed before the list is read back; if that read fails the
// failure is logged and Reorder returns a nil list with a nil error.
func (s *LinkService) Reorder(ctx context.Context, ownerID string, ids []string) ([]domain.LinkItem, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	err := s.repo.ReorderLinks(ctx, ownerID, ids)
	metrics.ObserveLinkOp("reorder", domain.Kind(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "links reordered", "owner_id", ownerID, "count", len(ids))
	s.invalidate(ctx, ownerID)
	links, err := s.repo.ListLinks(ctx, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "reordered links could not be read back", "owner_id", ownerID, "error", err)
		return nil, nil
	}
	return links, nil
}

func (s *LinkService) invalidate(ctx context.Context, ownerID string) {
	if s.pages != nil {
		s.pages.InvalidateOwner(ctx, ownerID)
	}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.Invalidf("owner id is required")
	}
	return nil
}
