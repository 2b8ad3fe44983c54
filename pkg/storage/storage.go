package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the in-memory implementation of domain.Repository. Each
// collection keeps insertion order and has its own lock, so readers of one
// collection never wait on writers of another.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	logger      *zap.Logger

	// Auto-stamped creation time, collection name -> timestamp field
	timestampFields map[string]string
	newID           func() string
	now             func() time.Time

	// Snapshot persistence
	snapshotFile   string
	backgroundSave bool
	saveInterval   time.Duration
	dirty          atomic.Bool

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewStore creates an empty store
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		collections:     make(map[string]*collection),
		logger:          zap.NewNop(),
		timestampFields: make(map[string]string),
		newID:           uuid.NewString,
		now:             time.Now,
		saveInterval:    5 * time.Minute,
		stopChan:        make(chan struct{}),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// getCollection returns the named collection, creating it when create is set
func (s *Store) getCollection(collName string, create bool) *collection {
	s.mu.RLock()
	c, exists := s.collections[collName]
	s.mu.RUnlock()
	if exists || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check in case another goroutine created it
	if c, exists := s.collections[collName]; exists {
		return c
	}
	c = newCollection(collName)
	s.collections[collName] = c
	return c
}

// CollectionNames returns the names of every non-empty or created collection
func (s *Store) CollectionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	return names
}

// Len returns the number of records in a collection
func (s *Store) Len(collName string) int {
	c := s.getCollection(collName, false)
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// IsDirty reports whether the store changed since the last snapshot
func (s *Store) IsDirty() bool {
	return s.dirty.Load()
}

func (s *Store) markDirty() {
	s.dirty.Store(true)
}
