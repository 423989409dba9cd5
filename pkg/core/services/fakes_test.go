package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// memStore is an in-memory ProfileRepository and LinkRepository. The err
// fields, when set, are returned by the matching calls.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	links    map[string]domain.LinkItem

	getProfileErr error
	listErr       error
	setErr        error

	updateLinkCalls int
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]domain.Profile),
		links:    make(map[string]domain.LinkItem),
	}
}

func (m *memStore) GetProfileByOwner(_ context.Context, ownerID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getProfileErr != nil {
		return nil, m.getProfileErr
	}
	p, ok := m.profiles[ownerID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memStore) GetProfileByUsername(_ context.Context, username string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getProfileErr != nil {
		return nil, m.getProfileErr
	}
	for _, p := range m.profiles {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (m *memStore) SetUsername(_ context.Context, ownerID, username string, now time.Time) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return nil, m.setErr
	}
	for _, p := range m.profiles {
		if p.Username == username && p.OwnerID != ownerID {
			return nil, domain.ErrUsernameTaken
		}
	}
	p, ok := m.profiles[ownerID]
	if !ok {
		p = domain.Profile{OwnerID: ownerID, CreatedAt: now}
	}
	p.Username = username
	p.UpdatedAt = now
	m.profiles[ownerID] = p
	return &p, nil
}

func (m *memStore) UpdateProfile(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.OwnerID]; !ok {
		return domain.ErrProfileNotFound
	}
	m.profiles[p.OwnerID] = *p
	return nil
}

func (m *memStore) ListLinks(_ context.Context, ownerID string) ([]domain.LinkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.ownerLinks(ownerID), nil
}

func (m *memStore) ownerLinks(ownerID string) []domain.LinkItem {
	out := []domain.LinkItem{}
	for _, l := range m.links {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *memStore) GetLink(_ context.Context, ownerID, linkID string) (*domain.LinkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[linkID]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.ErrLinkNotFound
	}
	return &l, nil
}

func (m *memStore) AppendLink(_ context.Context, link *domain.LinkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link.Position = len(m.ownerLinks(link.OwnerID))
	m.links[link.ID] = *link
	return nil
}

func (m *memStore) UpdateLink(_ context.Context, link *domain.LinkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLinkCalls++
	cur, ok := m.links[link.ID]
	if !ok || cur.OwnerID != link.OwnerID {
		return domain.ErrLinkNotFound
	}
	cur.Title, cur.Target, cur.Icon, cur.UpdatedAt = link.Title, link.Target, link.Icon, link.UpdatedAt
	m.links[link.ID] = cur
	return nil
}

func (m *memStore) DeleteLink(_ context.Context, ownerID, linkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[linkID]
	if !ok || l.OwnerID != ownerID {
		return domain.ErrLinkNotFound
	}
	delete(m.links, linkID)
	for i, l := range m.ownerLinks(ownerID) {
		l.Position = i
		m.links[l.ID] = l
	}
	return nil
}

func (m *memStore) ReorderLinks(_ context.Context, ownerID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.ownerLinks(ownerID)
	if len(current) != len(ids) {
		return domain.ErrOrderMismatch
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		l, ok := m.links[id]
		if !ok || l.OwnerID != ownerID || seen[id] {
			return domain.ErrOrderMismatch
		}
		seen[id] = true
	}
	for i, id := range ids {
		l := m.links[id]
		l.Position = i
		m.links[id] = l
	}
	return nil
}

// recordingInvalidator remembers InvalidateOwner calls.
type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) InvalidateOwner(_ context.Context, ownerID string, extra ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{ownerID}, extra...))
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// memCache is an in-memory PageCache with per-username generations.
type memCache struct {
	mu     sync.Mutex
	pages  map[string]*domain.TenantPage
	gens   map[string]int64
	getErr error
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string]*domain.TenantPage), gens: make(map[string]int64)}
}

func genKey(username string, gen int64) string {
	return fmt.Sprintf("%s:%d", username, gen)
}

func (c *memCache) Get(_ context.Context, username string) (*domain.TenantPage, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	gen := c.gens[username]
	p, ok := c.pages[genKey(username, gen)]
	return p, gen, ok, nil
}

func (c *memCache) Set(_ context.Context, username string, gen int64, page *domain.TenantPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[genKey(username, gen)] = page
	return nil
}

func (c *memCache) Invalidate(_ context.Context, usernames ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range usernames {
		c.gens[u]++
	}
	return nil
}

// has reports whether username has a page under its current generation.
func (c *memCache) has(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pages[genKey(username, c.gens[username])]
	return ok
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
