package domain

// TenantPage is the payload handed to rendering for one public page.
type TenantPage struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	AvatarRef   string     `json:"avatar_ref,omitempty"`
	Links       []PageLink `json:"links"`

	// LinksErr is set when the profile resolved but its links could not be
	// fetched. The page is still served, with no links.
	LinksErr error `json:"-"`
}

// PageLink is a link as visitors see it; ordering is carried by the slice.
type PageLink struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Target string `json:"target"`
	Icon   Icon   `json:"icon"`
}

// NewTenantPage builds the visitor payload from an ordered link list.
func NewTenantPage(p *Profile, links []LinkItem) *TenantPage {
	page := &TenantPage{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarRef:   p.AvatarRef,
		Links:       make([]PageLink, 0, len(links)),
	}
	for _, l := range links {
		page.Links = append(page.Links, PageLink{
			ID:     l.ID,
			Title:  l.Title,
			Target: l.Target,
			Icon:   l.Icon,
		})
	}
	return page
}

// Availability is the advisory answer for a candidate username.
type Availability string

const (
	Available        Availability = "available"
	Taken            Availability = "taken"
	InvalidCandidate Availability = "invalid"
)
