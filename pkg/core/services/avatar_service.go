package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// ErrAvatarsDisabled is returned when no object store is configured.
var ErrAvatarsDisabled = errors.New("avatar storage is not configured")

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type AvatarService struct {
	store ports.AvatarStore
	now   func() time.Time
}

// NewAvatarService accepts a nil store; UploadURL then fails with
// ErrAvatarsDisabled.
func NewAvatarService(store ports.AvatarStore) *AvatarService {
	return &AvatarService{store: store, now: time.Now}
}

func (s *AvatarService) UploadURL(ctx context.Context, ownerID, contentType string) (*domain.AvatarUpload, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrAvatarsDisabled
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, domain.Invalidf("avatar must be a jpeg, png, gif or webp image")
	}

	d := s.now().UTC()
	key := fmt.Sprintf("%s%d%02d%02d-%s.%s", domain.AvatarKeyPrefix(ownerID), d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
	upload, err := s.store.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	upload.Key = key
	return upload, nil
}
