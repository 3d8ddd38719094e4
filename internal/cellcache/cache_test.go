package cellcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_RecordAndIsCached(t *testing.T) {
	s := NewMemStore()
	assert.False(t, s.IsCached("a", "k1"))

	s.Record("a", "k1")
	assert.True(t, s.IsCached("a", "k1"))
	assert.False(t, s.IsCached("a", "k2"))

	s.Forget("a")
	assert.False(t, s.IsCached("a", "k1"))
}

func TestMemStore_EmptyKeyNeverMatches(t *testing.T) {
	s := NewMemStore()
	s.Record("a", "")
	assert.False(t, s.IsCached("a", ""))
}

func TestSQLiteStore_RecordAndIsCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.IsCached("a", "k1"))
	s.Record("a", "k1")
	assert.True(t, s.IsCached("a", "k1"))

	s.Record("a", "k2")
	assert.True(t, s.IsCached("a", "k2"))
	assert.False(t, s.IsCached("a", "k1"))

	s.Forget("a")
	assert.False(t, s.IsCached("a", "k2"))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	s1.Record("a", "k1")
	require.NoError(t, s1.Close())

	s2, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.True(t, s2.IsCached("a", "k1"))
}
