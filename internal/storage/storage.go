package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/envyaml/internal/config"
	"github.com/eugenenazirov/envyaml/internal/report"
)

var (
	// ErrEmpty indicates no configuration has been stored yet.
	ErrEmpty = errors.New("no configuration loaded")
	// ErrInvalidSnapshot indicates a snapshot without a configuration.
	ErrInvalidSnapshot = errors.New("snapshot must carry a configuration")
)

// Snapshot is a loaded configuration together with its placeholder report.
type Snapshot struct {
	Config   *config.Config
	Summary  report.Summary
	LoadedAt time.Time
}

// Storage provides access to the configuration served over HTTP.
type Storage interface {
	Get() (Snapshot, error)
	Set(snapshot Snapshot) error
}

// MemoryStorage keeps the snapshot in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Get returns the stored snapshot or ErrEmpty.
func (s *MemoryStorage) Get() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return Snapshot{}, ErrEmpty
	}
	return *s.snapshot, nil
}

// Set validates and stores snapshot.
func (s *MemoryStorage) Set(snapshot Snapshot) error {
	if snapshot.Config == nil {
		return ErrInvalidSnapshot
	}
	if snapshot.LoadedAt.IsZero() {
		snapshot.LoadedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.snapshot = &snapshot
	s.mu.Unlock()

	return nil
}
