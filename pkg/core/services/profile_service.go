package services

import (
	"context"
	"errors"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type ProfileService struct {
	repo     ports.ProfileRepository
	registry *Registry
	pages    ports.PageInvalidator
	logger   logging.Logger
	now      func() time.Time
}

func NewProfileService(repo ports.ProfileRepository, registry *Registry, pages ports.PageInvalidator, logger logging.Logger) *ProfileService {
	return &ProfileService{repo: repo, registry: registry, pages: pages, logger: logger, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, ownerID string) (*domain.Profile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repo.GetProfileByOwner(ctx, ownerID)
}

// CheckUsername is the advisory availability check. It is not authoritative:
// SetUsername relies on the storage uniqueness constraint.
func (s *ProfileService) CheckUsername(ctx context.Context, candidate, excludingOwnerID string) (domain.Availability, error) {
	username, err := domain.CanonicalUsername(candidate)
	if err != nil {
		return domain.InvalidCandidate, nil
	}
	if s.registry.IsReserved(username) {
		return domain.Taken, nil
	}

	existing, err := s.repo.GetProfileByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Available, nil
	case err != nil:
		return "", err
	case excludingOwnerID != "" && existing.OwnerID == excludingOwnerID:
		return domain.Available, nil
	default:
		return domain.Taken, nil
	}
}

// SetUsername claims candidate for the owner, creating the profile on first
// use. Two owners racing for one name both pass CheckUsername; the loser gets
// domain.ErrUsernameTaken from the storage constraint.
func (s *ProfileService) SetUsername(ctx context.Context, ownerID, candidate string) (*domain.Profile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	username, err := domain.CanonicalUsername(candidate)
	if err != nil {
		return nil, err
	}
	if s.registry.IsReserved(username) {
		return nil, domain.ErrUsernameReserved
	}

	var previous string
	current, err := s.repo.GetProfileByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if current.Username == username {
			return current, nil
		}
		previous = current.Username
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	profile, err := s.repo.SetUsername(ctx, ownerID, username, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			s.logger.Info(ctx, "username commit rejected", "owner_id", ownerID, "username", username)
		}
		return nil, err
	}

	s.logger.Info(ctx, "username set", "owner_id", ownerID, "username", username, "previous", previous)
	if s.pages != nil {
		s.pages.InvalidateOwner(ctx, ownerID, previous)
	}
	return profile, nil
}

// Update edits display name, bio and avatar of an existing profile.
func (s *ProfileService) Update(ctx context.Context, ownerID string, changes domain.ProfileChanges) (*domain.Profile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetProfileByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := changes.Apply(profile); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	if s.pages != nil {
		s.pages.InvalidateOwner(ctx, ownerID)
	}
	return profile, nil
}
