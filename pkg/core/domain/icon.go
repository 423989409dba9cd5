package domain

import "strings"

// Icon is a glyph tag from a closed vocabulary.
type Icon string

const IconExternalLink Icon = "external-link"

var knownIcons = map[Icon]struct{}{
	// social
	"twitter":   {},
	"instagram": {},
	"facebook":  {},
	"linkedin":  {},
	"youtube":   {},
	"github":    {},
	"website":   {},
	"email":     {},
	"phone":     {},
	"location":  {},
	// custom
	"music":    {},
	"camera":   {},
	"gaming":   {},
	"shopping": {},
	"blog":     {},
	"business": {},
	"favorite": {},
	"featured": {},
	"trending": {},

	IconExternalLink: {},
}

// ParseIcon maps free-form input onto the vocabulary, falling back to the
// generic external-link glyph.
func ParseIcon(input string) Icon {
	icon := Icon(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := knownIcons[icon]; ok {
		return icon
	}
	return IconExternalLink
}
