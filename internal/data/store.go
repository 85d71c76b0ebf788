// Package data holds the client-side cache and the synchronization
// controller that keeps it in line with the remote store.
package data

import (
	"sync"

	"github.com/todolite/todolite/internal/models"
)

// Store is the in-memory ordered cache of active tasks, keyed by id.
// Every method is atomic with respect to every other.
type Store struct {
	mu      sync.RWMutex
	items   []models.Task
	index   map[int64]int
	version uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// ReplaceAll discards the current contents and installs items in order.
// A repeated id overwrites its earlier entry in place.
func (s *Store) ReplaceAll(items []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.Task, 0, len(items))
	s.index = make(map[int64]int, len(items))
	for _, item := range items {
		s.upsertLocked(item)
	}
	s.version++
}

// Upsert overwrites the entry with item's id in place, or appends it.
func (s *Store) Upsert(item models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertLocked(item)
	s.version++
}

func (s *Store) upsertLocked(item models.Task) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
		return
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// Remove deletes the entry for id. It reports whether an entry was removed.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	s.version++
	return true
}

// All returns a copy of the contents in current order.
func (s *Store) All() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]models.Task, len(s.items))
	copy(cp, s.items)
	return cp
}

// Get returns the entry for id.
func (s *Store) Get(id int64) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Task{}, false
	}
	return s.items[i], true
}

// Len returns the number of cached tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
