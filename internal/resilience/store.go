// Package resilience persists circuit breaker state across todolite
// processes, guarded by a file lock.
package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// StateFileName is the state file name inside the store directory.
const StateFileName = "breaker.json"

// LockTimeout is the maximum time to wait for the file lock.
// Past it, operations proceed unlocked so the CLI never hangs.
const LockTimeout = 100 * time.Millisecond

// Store reads and writes State under an exclusive file lock.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
// If dir is empty, it uses the user cache directory (~/.cache/todolite).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the default state directory.
func DefaultDir() string {
	if cacheDir := os.Getenv("XDG_CACHE_HOME"); cacheDir != "" {
		return filepath.Join(cacheDir, "todolite")
	}
	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		return filepath.Join(cacheDir, "todolite")
	}
	return filepath.Join(os.TempDir(), "todolite")
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path to the state file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, StateFileName)
}

// lock acquires the directory lock. A nil lock with a nil error means the
// timeout expired and the caller proceeds unlocked.
func (s *Store) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, err
	}

	fl := flock.New(filepath.Join(s.dir, ".lock"))

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	return fl, nil
}

// Load reads the current state.
func (s *Store) Load() (*State, error) {
	fl, err := s.lock()
	if err != nil {
		return nil, err
	}
	if fl != nil {
		defer func() { _ = fl.Unlock() }()
	}
	return s.read()
}

// Update atomically loads, modifies, and saves the state.
func (s *Store) Update(fn func(*State) error) error {
	fl, err := s.lock()
	if err != nil {
		return err
	}
	if fl != nil {
		defer func() { _ = fl.Unlock() }()
	}

	state, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.write(state)
}

// Clear removes the state file.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) read() (*State, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		// Corrupted file: start over.
		return NewState(), nil
	}
	return state, nil
}

func (s *Store) write(state *State) error {
	state.Version = StateVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%d.%d.tmp", s.Path(), os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
