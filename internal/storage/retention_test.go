package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOnceRemovesExpired(t *testing.T) {
	store := newTestStore(t, 0)

	old := saveBytes(t, store, "old.jpg", []byte("old"))
	fresh := saveBytes(t, store, "fresh.jpg", []byte("fresh"))

	tenDaysAgo := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(
		filepath.Join(store.Dir(), old.StoredName), tenDaysAgo, tenDaysAgo))

	sweeper := NewSweeper(store, 7*24*time.Hour, time.Hour)
	removed, err := sweeper.SweepOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assets, err := store.List()
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, fresh.StoredName, assets[0].StoredName)
}

func TestSweepOnceNothingExpired(t *testing.T) {
	store := newTestStore(t, 0)
	saveBytes(t, store, "a.jpg", []byte("a"))

	sweeper := NewSweeper(store, 7*24*time.Hour, time.Hour)
	removed, err := sweeper.SweepOnce()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweepOnceToleratesConcurrentRemoval(t *testing.T) {
	store := newTestStore(t, 0)
	asset := saveBytes(t, store, "gone.jpg", []byte("g"))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(
		filepath.Join(store.Dir(), asset.StoredName), past, past))

	sweeper := NewSweeper(store, 24*time.Hour, time.Hour)
	sweeper.now = func() time.Time {
		// Delete the file between List and Remove.
		os.Remove(filepath.Join(store.Dir(), asset.StoredName))
		return time.Now()
	}

	removed, err := sweeper.SweepOnce()
	require.NoError(t, err)
	assert.Zero(t, removed)
}
