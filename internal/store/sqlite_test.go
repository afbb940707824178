package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangamux/mangamux/internal/testutil"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	env := testutil.NewTestEnv(t)

	s, err := OpenSQLite(env.Path("store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("reading:berserk", "chapter-364"))

	v, ok, err := s.Get("reading:berserk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chapter-364", v)
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("k", "old"))
	require.NoError(t, s.Set("k", "new"))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Clear())

	_, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Usable again after a clear.
	require.NoError(t, s.Set("c", "3"))
	_, ok, err = s.Get("c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("store.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	v, ok, err := reopened.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}
