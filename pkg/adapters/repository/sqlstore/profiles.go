package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

const profileColumns = `owner_id, username, display_name, bio, avatar_ref, created_at, updated_at`

func (s *Store) GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE owner_id = ?`
	return s.getProfile(ctx, query, ownerID)
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = ?`
	return s.getProfile(ctx, query, username)
}

func (s *Store) getProfile(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var p domain.Profile
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, s.q(query), arg).Scan(
		&p.OwnerID, &p.Username, &p.DisplayName, &p.Bio, &p.AvatarRef, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// SetUsername upserts the owner's profile row in one statement. The UNIQUE
// constraint on username is the authority on availability.
func (s *Store) SetUsername(ctx context.Context, ownerID, username string, now time.Time) (*domain.Profile, error) {
	query := `INSERT INTO profiles (owner_id, username, created_at, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT (owner_id) DO UPDATE SET username = excluded.username, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, s.q(query), ownerID, username, toMillis(now), toMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, domain.Unavailable(err)
	}
	return s.GetProfileByOwner(ctx, ownerID)
}

func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET display_name = ?, bio = ?, avatar_ref = ?, updated_at = ? WHERE owner_id = ?`

	res, err := s.db.ExecContext(ctx, s.q(query), p.DisplayName, p.Bio, p.AvatarRef, toMillis(p.UpdatedAt), p.OwnerID)
	if err != nil {
		return domain.Unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Unavailable(err)
	}
	if n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
