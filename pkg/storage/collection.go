package storage

import (
	"context"
	"sync"
	"time"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// collection is an insertion-ordered set of records with its own lock
type collection struct {
	mu      sync.RWMutex
	name    string
	order   []string
	records map[string]domain.Record
}

func newCollection(name string) *collection {
	return &collection{
		name:    name,
		records: make(map[string]domain.Record),
	}
}

// snapshot clones every record in order; caller holds the read lock
func (c *collection) snapshot() []domain.Record {
	out := make([]domain.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id].Clone())
	}
	return out
}

func (c *collection) remove(id string) {
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// List returns a deep copy of the collection in insertion order. An unknown
// collection is simply empty.
func (s *Store) List(ctx context.Context, collName string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := s.getCollection(collName, false)
	if c == nil {
		return []domain.Record{}, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot(), nil
}

// Get retrieves a specific record by its ID
func (s *Store) Get(ctx context.Context, collName, id string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := s.getCollection(collName, false)
	if c == nil {
		return nil, domain.NotFound(collName, id)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, exists := c.records[id]
	if !exists {
		return nil, domain.NotFound(collName, id)
	}
	return rec.Clone(), nil
}

// Create appends a record, assigning an id and creation timestamp when absent
func (s *Store) Create(ctx context.Context, collName string, rec domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := rec.Clone()
	if stored == nil {
		stored = domain.Record{}
	}

	id := stored.ID()
	if raw, present := stored[domain.IDField]; present && id == "" {
		return nil, domain.InvalidInput("%s id must be a non-empty string, got %v", collName, raw)
	}
	if id == "" {
		id = s.newID()
		stored[domain.IDField] = id
	}

	if field, ok := s.timestampFields[collName]; ok {
		if _, present := stored[field]; !present {
			stored[field] = s.now().UTC().Format(time.RFC3339)
		}
	}

	c := s.getCollection(collName, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[id]; exists {
		return nil, domain.NewError(domain.KindConflict, "%s with id %s already exists", collName, id)
	}
	c.records[id] = stored
	c.order = append(c.order, id)
	s.markDirty()

	return stored.Clone(), nil
}

// Update merges patch into an existing record; the id is immutable. Checks
// see the merged record under the collection write lock.
func (s *Store) Update(ctx context.Context, collName, id string, patch domain.Record, checks ...domain.RecordCheck) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := s.getCollection(collName, false)
	if c == nil {
		return nil, domain.NotFound(collName, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, exists := c.records[id]
	if !exists {
		return nil, domain.NotFound(collName, id)
	}

	merged := existing.Merge(patch)
	for _, check := range checks {
		if err := check(merged); err != nil {
			return nil, err
		}
	}
	c.records[id] = merged
	s.markDirty()

	return merged.Clone(), nil
}

// Delete removes a specific record by its ID
func (s *Store) Delete(ctx context.Context, collName, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.getCollection(collName, false)
	if c == nil {
		return domain.NotFound(collName, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[id]; !exists {
		return domain.NotFound(collName, id)
	}
	c.remove(id)
	s.markDirty()
	return nil
}
