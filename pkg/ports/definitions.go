package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// ProfileRepository defines storage operations for profiles
type ProfileRepository interface {
	GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	// SetUsername creates the profile on first use. A username already held by
	// another owner fails with domain.ErrUsernameTaken.
	SetUsername(ctx context.Context, ownerID, username string, now time.Time) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
}

// LinkRepository defines storage operations for an owner's ordered links.
// Every mutation keeps positions dense (0..n-1) per owner.
type LinkRepository interface {
	ListLinks(ctx context.Context, ownerID string) ([]domain.LinkItem, error)
	GetLink(ctx context.Context, ownerID, linkID string) (*domain.LinkItem, error)
	// AppendLink sets link.Position to the owner's current count and inserts
	// it, atomically with respect to other mutations of the same owner.
	AppendLink(ctx context.Context, link *domain.LinkItem) error
	UpdateLink(ctx context.Context, link *domain.LinkItem) error
	DeleteLink(ctx context.Context, ownerID, linkID string) error
	// ReorderLinks assigns position = index for each id. ids must be a
	// permutation of the owner's link ids, otherwise domain.ErrOrderMismatch.
	ReorderLinks(ctx context.Context, ownerID string, ids []string) error
}

// PageCache stores assembled tenant pages by username. Every username has a
// generation: Get reports the current one, Invalidate advances it, and Set
// stores under the generation the caller got from Get. A page filled under a
// generation that has since been invalidated is never returned by Get.
type PageCache interface {
	Get(ctx context.Context, username string) (page *domain.TenantPage, gen int64, ok bool, err error)
	Set(ctx context.Context, username string, gen int64, page *domain.TenantPage) error
	Invalidate(ctx context.Context, usernames ...string) error
}

// AvatarStore issues upload targets for avatar images kept outside the
// database. The returned upload only accepts an object named key with the
// given content type.
type AvatarStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (*domain.AvatarUpload, error)
}

// PageInvalidator drops cached pages after an owner mutation.
type PageInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID string, extraUsernames ...string)
}

// LinkService defines the owner-facing link operations
type LinkService interface {
	List(ctx context.Context, ownerID string) ([]domain.LinkItem, error)
	Add(ctx context.Context, ownerID, title, target, icon string) (*domain.LinkItem, error)
	Update(ctx context.Context, ownerID, linkID string, changes domain.LinkChanges) (*domain.LinkItem, error)
	Delete(ctx context.Context, ownerID, linkID string) error
	Reorder(ctx context.Context, ownerID string, ids []string) ([]domain.LinkItem, error)
}

// ProfileService defines the owner-facing profile operations
type ProfileService interface {
	Get(ctx context.Context, ownerID string) (*domain.Profile, error)
	CheckUsername(ctx context.Context, candidate, excludingOwnerID string) (domain.Availability, error)
	SetUsername(ctx context.Context, ownerID, candidate string) (*domain.Profile, error)
	Update(ctx context.Context, ownerID string, changes domain.ProfileChanges) (*domain.Profile, error)
}

// PageService assembles public tenant pages
type PageService interface {
	Page(ctx context.Context, username string) (*domain.TenantPage, error)
	Demo() *domain.TenantPage
}

// AvatarService hands out avatar upload targets
type AvatarService interface {
	UploadURL(ctx context.Context, ownerID, contentType string) (*domain.AvatarUpload, error)
}
