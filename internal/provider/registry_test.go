package provider

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return DefaultRegistry(fastTransport())
}

func TestDefaultRegistryTable(t *testing.T) {
	r := testRegistry(t)

	all := r.All()
	require.Len(t, all, 3)

	// Registration order matches the static table.
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID()
	}
	assert.Equal(t, []string{"mangadex", "comick", "jikan"}, ids)

	md, ok := r.Get("mangadex")
	require.True(t, ok)
	assert.Equal(t, "MangaDex", md.Name())
	assert.Equal(t, 100, md.Priority())
	assert.True(t, md.SupportsPages())

	jk, ok := r.Get("jikan")
	require.True(t, ok)
	assert.Equal(t, 80, jk.Priority())
	assert.False(t, jk.SupportsPages())
}

func TestRegistryGetUnknown(t *testing.T) {
	r := testRegistry(t)

	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistryByLanguage(t *testing.T) {
	r := testRegistry(t)

	en := r.ByLanguage("en")
	assert.Len(t, en, 3, "all providers claim english")

	ru := r.ByLanguage("ru")
	require.NotEmpty(t, ru)
	for _, p := range ru {
		assert.Contains(t, p.Languages(), "ru")
	}

	assert.Empty(t, r.ByLanguage("zz"))
}

func TestRegistryWithPageSupport(t *testing.T) {
	r := testRegistry(t)

	readers := r.WithPageSupport()
	require.Len(t, readers, 2)
	for _, p := range readers {
		assert.True(t, p.SupportsPages())
	}
}

func TestRegistryDropsDuplicateIDs(t *testing.T) {
	a := NewAdapter(stubConfig(nil, nil, nil), fastTransport())
	b := NewAdapter(stubConfig(nil, nil, nil), fastTransport())

	r := NewRegistry(a, b)
	assert.Len(t, r.All(), 1, "the first registration wins")
}

func TestDefaultRegistryHonorsBaseURLOverride(t *testing.T) {
	viper.Set("providers.mangadex.baseurl", "http://127.0.0.1:1/md")
	defer viper.Reset()

	r := testRegistry(t)
	md, ok := r.Get("mangadex")
	require.True(t, ok)

	adapter, ok := md.(*Adapter)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:1/md", adapter.cfg.BaseURL)
}
