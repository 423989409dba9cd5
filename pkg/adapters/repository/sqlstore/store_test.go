package sqlstore

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), "file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func appendLink(t *testing.T, s *Store, ownerID, title string) *domain.LinkItem {
	t.Helper()
	now := time.Now().UTC()
	l := &domain.LinkItem{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Target:    "https://example.com/" + title,
		Icon:      domain.IconExternalLink,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.AppendLink(context.Background(), l))
	return l
}

func titles(links []domain.LinkItem) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Title
	}
	return out
}

func requireDense(t *testing.T, s *Store, ownerID string) []domain.LinkItem {
	t.Helper()
	links, err := s.ListLinks(context.Background(), ownerID)
	require.NoError(t, err)
	positions := make([]int, len(links))
	for i, l := range links {
		positions[i] = l.Position
	}
	sort.Ints(positions)
	for i, p := range positions {
		require.Equalf(t, i, p, "positions not dense: %v", positions)
	}
	return links
}

func TestAppendLink_AssignsNextPosition(t *testing.T) {
	s := openTestStore(t)

	a := appendLink(t, s, "owner-1", "A")
	b := appendLink(t, s, "owner-1", "B")
	c := appendLink(t, s, "owner-1", "C")
	other := appendLink(t, s, "owner-2", "X")

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 2, c.Position)
	assert.Equal(t, 0, other.Position)

	d := appendLink(t, s, "owner-1", "D")
	assert.Equal(t, 3, d.Position)

	links := requireDense(t, s, "owner-1")
	assert.Equal(t, []string{"A", "B", "C", "D"}, titles(links))
}

func TestListLinks_EmptyOwner(t *testing.T) {
	s := openTestStore(t)

	links, err := s.ListLinks(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestReorderLinks_AppliesNewOrder(t *testing.T) {
	s := openTestStore(t)
	a := appendLink(t, s, "owner-1", "A")
	b := appendLink(t, s, "owner-1", "B")
	c := appendLink(t, s, "owner-1", "C")

	require.NoError(t, s.ReorderLinks(context.Background(), "owner-1", []string{c.ID, a.ID, b.ID}))

	links := requireDense(t, s, "owner-1")
	assert.Equal(t, []string{"C", "A", "B"}, titles(links))
	assert.Equal(t, []int{0, 1, 2}, []int{links[0].Position, links[1].Position, links[2].Position})
}

func TestReorderLinks_RejectsNonPermutation(t *testing.T) {
	s := openTestStore(t)
	a := appendLink(t, s, "owner-1", "A")
	b := appendLink(t, s, "owner-1", "B")
	c := appendLink(t, s, "owner-1", "C")
	foreign := appendLink(t, s, "owner-2", "X")

	tests := []struct {
		name string
		ids  []string
	}{
		{name: "missing id", ids: []string{c.ID, a.ID}},
		{name: "duplicate id", ids: []string{c.ID, a.ID, a.ID}},
		{name: "unknown id", ids: []string{c.ID, a.ID, "nope"}},
		{name: "foreign id", ids: []string{c.ID, a.ID, foreign.ID}},
		{name: "extra id", ids: []string{c.ID, a.ID, b.ID, foreign.ID}},
		{name: "empty", ids: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ReorderLinks(context.Background(), "owner-1", tt.ids)
			assert.ErrorIs(t, err, domain.ErrOrderMismatch)
			assert.ErrorIs(t, err, domain.ErrConflict)

			links := requireDense(t, s, "owner-1")
			assert.Equal(t, []string{"A", "B", "C"}, titles(links))
		})
	}
}

func TestReorderLinks_EmptyOwnerAcceptsEmptyOrder(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.ReorderLinks(context.Background(), "owner-1", []string{}))
}

func TestDeleteLink_RenumbersPreservingOrder(t *testing.T) {
	s := openTestStore(t)
	appendLink(t, s, "owner-1", "A")
	b := appendLink(t, s, "owner-1", "B")
	appendLink(t, s, "owner-1", "C")

	require.NoError(t, s.DeleteLink(context.Background(), "owner-1", b.ID))

	links := requireDense(t, s, "owner-1")
	assert.Equal(t, []string{"A", "C"}, titles(links))
	assert.Equal(t, 0, links[0].Position)
	assert.Equal(t, 1, links[1].Position)
}

func TestDeleteLink_NotFoundAndForeignOwner(t *testing.T) {
	s := openTestStore(t)
	a := appendLink(t, s, "owner-1", "A")

	assert.ErrorIs(t, s.DeleteLink(context.Background(), "owner-1", "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLink(context.Background(), "owner-2", a.ID), domain.ErrLinkNotFound)

	links := requireDense(t, s, "owner-1")
	assert.Len(t, links, 1)
}

func TestUpdateLink_KeepsPosition(t *testing.T) {
	s := openTestStore(t)
	appendLink(t, s, "owner-1", "A")
	b := appendLink(t, s, "owner-1", "B")

	b.Title = "Blog"
	b.Target = "https://blog.example.com"
	b.Icon = "blog"
	b.Position = 0 // ignored by UpdateLink
	require.NoError(t, s.UpdateLink(context.Background(), b))

	got, err := s.GetLink(context.Background(), "owner-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blog", got.Title)
	assert.Equal(t, domain.Icon("blog"), got.Icon)
	assert.Equal(t, 1, got.Position)

	b.OwnerID = "owner-2"
	assert.ErrorIs(t, s.UpdateLink(context.Background(), b), domain.ErrLinkNotFound)

	_, err = s.GetLink(context.Background(), "owner-2", b.ID)
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}

func TestConcurrentAppendsAndReorders_StayDense(t *testing.T) {
	s := openTestStore(t)
	const owner = "owner-1"
	for i := 0; i < 3; i++ {
		appendLink(t, s, owner, fmt.Sprintf("seed-%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			now := time.Now().UTC()
			err := s.AppendLink(context.Background(), &domain.LinkItem{
				ID: uuid.NewString(), OwnerID: owner, Title: fmt.Sprintf("link-%d", i),
				Target: "https://example.com", Icon: domain.IconExternalLink, CreatedAt: now, UpdatedAt: now,
			})
			assert.NoError(t, err)
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			links, err := s.ListLinks(context.Background(), owner)
			if !assert.NoError(t, err) {
				return
			}
			ids := make([]string, len(links))
			for j, l := range links {
				ids[len(links)-1-j] = l.ID
			}
			// Racing an append may make this order stale; it must then be
			// rejected rather than partially applied.
			err = s.ReorderLinks(context.Background(), owner, ids)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrOrderMismatch)
			}
		}()
	}
	wg.Wait()

	links := requireDense(t, s, owner)
	assert.Len(t, links, 19)
}

func TestRandomOperations_KeepDenseInvariant(t *testing.T) {
	s := openTestStore(t)
	rng := rand.New(rand.NewSource(42))
	owners := []string{"owner-1", "owner-2"}
	ctx := context.Background()

	for step := 0; step < 200; step++ {
		owner := owners[rng.Intn(len(owners))]
		links, err := s.ListLinks(ctx, owner)
		require.NoError(t, err)

		switch op := rng.Intn(3); {
		case op == 0 || len(links) == 0:
			appendLink(t, s, owner, fmt.Sprintf("l%d", step))
		case op == 1:
			victim := links[rng.Intn(len(links))]
			require.NoError(t, s.DeleteLink(ctx, owner, victim.ID))
		default:
			ids := make([]string, len(links))
			for i, l := range links {
				ids[i] = l.ID
			}
			rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			require.NoError(t, s.ReorderLinks(ctx, owner, ids))

			got, err := s.ListLinks(ctx, owner)
			require.NoError(t, err)
			for i, l := range got {
				require.Equal(t, ids[i], l.ID)
			}
		}

		for _, o := range owners {
			requireDense(t, s, o)
		}
	}
}

func TestSetUsername_CreatesThenRenames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	p, err := s.SetUsername(ctx, "owner-1", "alice", now)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, now, p.CreatedAt)

	later := now.Add(time.Hour)
	p, err = s.SetUsername(ctx, "owner-1", "alice2", later)
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)

	_, err = s.GetProfileByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetUsername_UniqueAcrossOwners(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SetUsername(ctx, "owner-1", "bob", time.Now())
	require.NoError(t, err)

	_, err = s.SetUsername(ctx, "owner-2", "bob", time.Now())
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.GetProfileByOwner(ctx, "owner-2")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestUpdateProfile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SetUsername(ctx, "owner-1", "carol", time.Now())
	require.NoError(t, err)

	p, err := s.GetProfileByOwner(ctx, "owner-1")
	require.NoError(t, err)
	p.DisplayName = "Carol"
	p.Bio = "hello"
	p.AvatarRef = "avatars/owner-1/a.png"
	p.UpdatedAt = time.Now()
	require.NoError(t, s.UpdateProfile(ctx, p))

	got, err := s.GetProfileByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.DisplayName)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "avatars/owner-1/a.png", got.AvatarRef)

	assert.ErrorIs(t, s.UpdateProfile(ctx, &domain.Profile{OwnerID: "ghost"}), domain.ErrProfileNotFound)
}
