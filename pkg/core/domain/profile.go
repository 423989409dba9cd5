package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30

	maxDisplayNameLength = 64
	maxBioLength         = 280
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Profile is the public identity of one owner.
type Profile struct {
	OwnerID     string    `json:"owner_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarRef   string    `json:"avatar_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanonicalUsername trims and lowercases input and checks the username format.
func CanonicalUsername(input string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(input))
	if username == "" {
		return "", Invalidf("username is required")
	}
	if n := len(username); n < UsernameMinLength || n > UsernameMaxLength {
		return "", Invalidf("username must be %d-%d characters", UsernameMinLength, UsernameMaxLength)
	}
	if !usernamePattern.MatchString(username) {
		return "", Invalidf("username may only contain letters, numbers, - and _")
	}
	return username, nil
}

// ProfileChanges carries an owner edit; nil fields are left untouched.
type ProfileChanges struct {
	DisplayName *string
	Bio         *string
	AvatarRef   *string
}

// Apply validates the changes and writes them onto p.
func (c ProfileChanges) Apply(p *Profile) error {
	if c.DisplayName != nil {
		name := strings.TrimSpace(*c.DisplayName)
		if utf8.RuneCountInString(name) > maxDisplayNameLength {
			return Invalidf("display name must be at most %d characters", maxDisplayNameLength)
		}
		p.DisplayName = name
	}
	if c.Bio != nil {
		bio := strings.TrimSpace(*c.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			return Invalidf("bio must be at most %d characters", maxBioLength)
		}
		p.Bio = bio
	}
	if c.AvatarRef != nil {
		ref := strings.TrimSpace(*c.AvatarRef)
		if ref != "" && !OwnsAvatarKey(p.OwnerID, ref) {
			return Invalidf("avatar_ref must be a key issued by the avatar upload endpoint")
		}
		p.AvatarRef = ref
	}
	return nil
}

// AvatarKeyPrefix is the object key prefix of every avatar issued to ownerID.
func AvatarKeyPrefix(ownerID string) string {
	return "avatars/" + ownerID + "/"
}

// OwnsAvatarKey reports whether key is an avatar object key of ownerID.
func OwnsAvatarKey(ownerID, key string) bool {
	name, ok := strings.CutPrefix(key, AvatarKeyPrefix(ownerID))
	return ok && ownerID != "" && name != "" && !strings.Contains(name, "/")
}
