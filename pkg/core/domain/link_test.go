package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "example.com", want: "https://example.com"},
		{input: "  example.com/path?q=1  ", want: "https://example.com/path?q=1"},
		{input: "http://example.com", want: "http://example.com"},
		{input: "HTTPS://Example.com", want: "HTTPS://Example.com"},
		{input: "mailto:me@example.com", want: "mailto:me@example.com"},
		{input: "tel:+15551234567", want: "tel:+15551234567"},
		{input: "", wantErr: true},
		{input: "https://", wantErr: true},
		{input: "mailto:", wantErr: true},
		{input: "exa mple.com/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeTarget(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	got, err := NormalizeTitle("  Hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	_, err = NormalizeTitle(" ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NormalizeTitle(strings.Repeat("é", maxTitleLength))
	assert.NoError(t, err)
	_, err = NormalizeTitle(strings.Repeat("é", maxTitleLength+1))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseIcon(t *testing.T) {
	assert.Equal(t, Icon("github"), ParseIcon("github"))
	assert.Equal(t, Icon("youtube"), ParseIcon(" YouTube "))
	assert.Equal(t, IconExternalLink, ParseIcon(""))
	assert.Equal(t, IconExternalLink, ParseIcon("rocket"))
}

func TestLinkChanges_Apply(t *testing.T) {
	base := LinkItem{ID: "l1", Title: "Blog", Target: "https://blog.example.com", Icon: "blog", Position: 2}

	t.Run("no fields", func(t *testing.T) {
		l := base
		changed, err := LinkChanges{}.Apply(&l)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, base, l)
	})

	t.Run("same values after normalization", func(t *testing.T) {
		l := base
		title, target, icon := " Blog ", "blog.example.com", "BLOG"
		changed, err := LinkChanges{Title: &title, Target: &target, Icon: &icon}.Apply(&l)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("icon change keeps position", func(t *testing.T) {
		l := base
		icon := "music"
		changed, err := LinkChanges{Icon: &icon}.Apply(&l)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, Icon("music"), l.Icon)
		assert.Equal(t, 2, l.Position)
	})

	t.Run("invalid leaves link untouched", func(t *testing.T) {
		l := base
		title, target := "New", "https://"
		_, err := LinkChanges{Title: &title, Target: &target}.Apply(&l)
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Equal(t, base, l)
	})
}

func TestNewTenantPage(t *testing.T) {
	p := &Profile{OwnerID: "o1", Username: "alice", Bio: "hi"}
	page := NewTenantPage(p, []LinkItem{
		{ID: "b", Title: "B", Target: "https://b.example", Icon: "website", Position: 0},
		{ID: "a", Title: "A", Target: "https://a.example", Icon: "github", Position: 1},
	})

	assert.Equal(t, "alice", page.Username)
	assert.Equal(t, []PageLink{
		{ID: "b", Title: "B", Target: "https://b.example", Icon: "website"},
		{ID: "a", Title: "A", Target: "https://a.example", Icon: "github"},
	}, page.Links)

	empty := NewTenantPage(p, nil)
	assert.NotNil(t, empty.Links)
	assert.Empty(t, empty.Links)
}
