package datasetstore

import (
	"sync"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	"go.uber.org/fx"
)

// Store holds the current merged dataset. Replacements swap the whole
// value, so readers always see a consistent snapshot.
type Store struct {
	mu      sync.RWMutex
	current canonical.Dataset
	loaded  bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{current: canonical.NewDataset()}
}

// Get returns the current dataset and whether anything has been imported yet.
func (s *Store) Get() (canonical.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Replace installs a new dataset as the current one.
func (s *Store) Replace(ds canonical.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ds
	s.loaded = true
}

var Module = fx.Module("datasetstore",
	fx.Provide(NewStore),
)
