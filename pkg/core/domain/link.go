package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 100

// LinkItem is one outbound link on an owner's page.
type LinkItem struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Target    string    `json:"target"`
	Position  int       `json:"position"`
	Icon      Icon      `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkChanges carries a partial link edit; nil fields are left untouched.
type LinkChanges struct {
	Title  *string
	Target *string
	Icon   *string
}

// Apply validates the changes and writes them onto l. It reports whether any
// stored field actually changed. Position is never touched.
func (c LinkChanges) Apply(l *LinkItem) (bool, error) {
	next := *l
	if c.Title != nil {
		title, err := NormalizeTitle(*c.Title)
		if err != nil {
			return false, err
		}
		next.Title = title
	}
	if c.Target != nil {
		target, err := NormalizeTarget(*c.Target)
		if err != nil {
			return false, err
		}
		next.Target = target
	}
	if c.Icon != nil {
		next.Icon = ParseIcon(*c.Icon)
	}
	changed := next.Title != l.Title || next.Target != l.Target || next.Icon != l.Icon
	*l = next
	return changed, nil
}

// NormalizeTitle trims the title and enforces its bounds.
func NormalizeTitle(input string) (string, error) {
	title := strings.TrimSpace(input)
	if title == "" {
		return "", Invalidf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", Invalidf("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

var keptSchemes = []string{"https://", "http://", "mailto:", "tel:"}

// NormalizeTarget prefixes schemeless input with https:// and checks that the
// result parses.
func NormalizeTarget(input string) (string, error) {
	target := strings.TrimSpace(input)
	if target == "" {
		return "", Invalidf("target is required")
	}

	hasScheme := false
	lower := strings.ToLower(target)
	for _, scheme := range keptSchemes {
		if strings.HasPrefix(lower, scheme) {
			hasScheme = true
			break
		}
	}
	if !hasScheme {
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", Invalidf("target is not a valid URL")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", Invalidf("target must include a host")
		}
	case "mailto", "tel":
		if u.Opaque == "" {
			return "", Invalidf("target is missing an address")
		}
	}
	return target, nil
}
