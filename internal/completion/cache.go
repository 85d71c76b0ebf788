// Package completion provides tab completion for todo IDs.
// Commands that load the list save a small file cache so that shell
// completions never touch the network.
package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/resilience"
)

// CachedTodo holds the fields shown next to a completed ID.
type CachedTodo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Cache stores completion data with metadata for staleness detection.
type Cache struct {
	Todos     []CachedTodo `json:"todos,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
	Version   int          `json:"version"` // Schema version for future migrations
}

const (
	// CacheVersion is the current cache schema version.
	CacheVersion = 1

	// DefaultMaxAge is how long cached todos are offered as completions.
	DefaultMaxAge = 24 * time.Hour

	// CacheFileName is the default cache file name.
	CacheFileName = "completion.json"
)

// Store handles reading and writing the completion cache.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a new cache store.
// If dir is empty, it uses the shared todolite cache directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = resilience.DefaultDir()
	}
	return &Store{dir: dir}
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the cache file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CacheFileName)
}

// Load reads the cache from disk.
// Returns an empty cache if the file doesn't exist or is invalid.
func (s *Store) Load() (*Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{Version: CacheVersion}, nil
		}
		return nil, err
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil || cache.Version != CacheVersion {
		return &Cache{Version: CacheVersion}, nil //nolint:nilerr // a corrupt or old cache is just empty
	}
	return &cache, nil
}

// UpdateTodos replaces the cached todos with tasks and stamps the cache.
func (s *Store) UpdateTodos(tasks []models.Task) error {
	todos := make([]CachedTodo, len(tasks))
	for i, t := range tasks {
		todos[i] = CachedTodo{ID: t.ID, Title: t.Title}
	}
	return s.save(&Cache{Todos: todos, UpdatedAt: time.Now(), Version: CacheVersion})
}

// save writes the cache atomically via a temp file.
func (s *Store) save(cache *Cache) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, CacheFileName+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.Path())
}

// Todos returns the cached todos, or nil when the cache is missing or
// older than maxAge.
func (s *Store) Todos(maxAge time.Duration) []CachedTodo {
	cache, err := s.Load()
	if err != nil || cache.UpdatedAt.IsZero() {
		return nil
	}
	if maxAge > 0 && time.Since(cache.UpdatedAt) > maxAge {
		return nil
	}
	return cache.Todos
}

// Clear removes the cache file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
