package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolite/todolite/internal/models"
)

func TestStore_UpdateAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.UpdateTodos([]models.Task{
		{ID: 1, Title: "Buy milk"},
		{ID: 7, Title: "Call mom"},
	}))

	_, err := os.Stat(store.Path())
	require.NoError(t, err, "cache file should exist")

	cache, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, CacheVersion, cache.Version)
	assert.WithinDuration(t, time.Now(), cache.UpdatedAt, time.Minute)
	assert.Equal(t, []CachedTodo{{1, "Buy milk"}, {7, "Call mom"}}, cache.Todos)
}

func TestStore_LoadMissingFile(t *testing.T) {
	cache, err := NewStore(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Empty(t, cache.Todos)
	assert.True(t, cache.UpdatedAt.IsZero())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheFileName), []byte("{not json"), 0o600))

	cache, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, cache.Todos)
}

func TestStore_LoadIgnoresOtherVersions(t *testing.T) {
	dir := t.TempDir()
	data, _ := json.Marshal(Cache{Todos: []CachedTodo{{1, "x"}}, UpdatedAt: time.Now(), Version: 99})
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheFileName), data, 0o600))

	assert.Nil(t, NewStore(dir).Todos(DefaultMaxAge))
}

func TestStore_TodosRespectsMaxAge(t *testing.T) {
	dir := t.TempDir()
	data, _ := json.Marshal(Cache{
		Todos:     []CachedTodo{{1, "old"}},
		UpdatedAt: time.Now().Add(-48 * time.Hour),
		Version:   CacheVersion,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheFileName), data, 0o600))

	store := NewStore(dir)
	assert.Nil(t, store.Todos(DefaultMaxAge))
	assert.Len(t, store.Todos(0), 1, "zero max age disables the staleness check")
}

func TestStore_UpdateReplaces(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.UpdateTodos([]models.Task{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}))
	require.NoError(t, store.UpdateTodos([]models.Task{{ID: 2, Title: "B"}}))

	assert.Equal(t, []CachedTodo{{2, "B"}}, store.Todos(DefaultMaxAge))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Clear(), "clearing a missing cache is fine")

	require.NoError(t, store.UpdateTodos([]models.Task{{ID: 1, Title: "A"}}))
	require.NoError(t, store.Clear())
	assert.Nil(t, store.Todos(DefaultMaxAge))
}

func TestNewStore_DefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, filepath.Join("/tmp/xdg-cache", "todolite"), NewStore("").Dir())
}
