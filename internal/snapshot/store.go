// Package snapshot keeps ordered versions of a note in memory so that any two of them
// can be compared.
package snapshot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no snapshot has the requested ID.
	ErrNotFound = errors.New("snapshot not found")
	// ErrOutOfRange is returned when a pair index has no newer neighbour.
	ErrOutOfRange = errors.New("snapshot pair out of range")
)

// Snapshot is one saved version of a note's text
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store holds snapshots in insertion order. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	snapshots []Snapshot
	byID      map[uuid.UUID]int
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID: make(map[uuid.UUID]int),
		now:  time.Now,
	}
}

// Add records a new version and returns it.
func (s *Store) Add(label, content string) Snapshot {
	snap := Snapshot{
		ID:        uuid.New(),
		Label:     label,
		Content:   content,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[snap.ID] = len(s.snapshots)
	s.snapshots = append(s.snapshots, snap)
	return snap
}

// Get returns the snapshot with the given ID.
func (s *Store) Get(id uuid.UUID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.snapshots[idx], nil
}

// List returns a copy of all snapshots, oldest first.
func (s *Store) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Latest returns the most recently added snapshot.
func (s *Store) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		return Snapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// Pairs returns the number of adjacent (older, newer) pairs.
func (s *Store) Pairs() int {
	return max(s.Len()-1, 0)
}

// Pair returns versions i and i+1.
func (s *Store) Pair(i int) (older, newer Snapshot, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i+1 >= len(s.snapshots) {
		return Snapshot{}, Snapshot{}, fmt.Errorf("%w: %d of %d snapshots", ErrOutOfRange, i, len(s.snapshots))
	}
	return s.snapshots[i], s.snapshots[i+1], nil
}
