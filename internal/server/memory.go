package server

import (
	"context"
	"sync"

	"github.com/todolite/todolite/internal/models"
)

// MemoryStore keeps todos in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  []models.Task
	nextID int64
}

// NewMemoryStore returns an empty store whose first ID is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) List(context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.find(id); i >= 0 {
		return s.todos[i], nil
	}
	return models.Task{}, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = s.nextID
	s.nextID++
	s.todos = append(s.todos, task)
	return task, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	task.ID = id
	s.todos[i] = task
	return task, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return ErrNotFound
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// find returns the index of id or -1. Callers hold the lock.
func (s *MemoryStore) find(id int64) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}
