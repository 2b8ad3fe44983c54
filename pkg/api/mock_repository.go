package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// MockRepository provides a mock implementation of domain.Repository for testing
type MockRepository struct {
	mu          sync.RWMutex
	collections map[string][]domain.Record
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	// Err, when set, is returned by every call
	Err error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		collections: make(map[string][]domain.Record),
	}
}

// Seed appends records without counting as calls
func (m *MockRepository) Seed(collName string, records ...domain.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.collections[collName] = append(m.collections[collName], rec.Clone())
	}
}

func (m *MockRepository) List(ctx context.Context, collName string) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]domain.Record, 0, len(m.collections[collName]))
	for _, rec := range m.collections[collName] {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *MockRepository) Get(ctx context.Context, collName, id string) (domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if i := m.indexOf(collName, id); i >= 0 {
		return m.collections[collName][i].Clone(), nil
	}
	return nil, domain.NotFound(collName, id)
}

func (m *MockRepository) Create(ctx context.Context, collName string, rec domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.Err != nil {
		return nil, m.Err
	}

	stored := rec.Clone()
	if stored.ID() == "" {
		stored[domain.IDField] = fmt.Sprintf("%s-%d", collName, len(m.collections[collName])+1)
	}
	if m.indexOf(collName, stored.ID()) >= 0 {
		return nil, domain.NewError(domain.KindConflict, "%s with id %s already exists", collName, stored.ID())
	}
	m.collections[collName] = append(m.collections[collName], stored)
	return stored.Clone(), nil
}

func (m *MockRepository) Update(ctx context.Context, collName, id string, patch domain.Record, checks ...domain.RecordCheck) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.Err != nil {
		return nil, m.Err
	}

	i := m.indexOf(collName, id)
	if i < 0 {
		return nil, domain.NotFound(collName, id)
	}
	merged := m.collections[collName][i].Merge(patch)
	for _, check := range checks {
		if err := check(merged); err != nil {
			return nil, err
		}
	}
	m.collections[collName][i] = merged
	return merged.Clone(), nil
}

func (m *MockRepository) Delete(ctx context.Context, collName, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	if m.Err != nil {
		return m.Err
	}

	i := m.indexOf(collName, id)
	if i < 0 {
		return domain.NotFound(collName, id)
	}
	docs := m.collections[collName]
	m.collections[collName] = append(docs[:i], docs[i+1:]...)
	return nil
}

// indexOf returns the slot of id; caller holds the lock
func (m *MockRepository) indexOf(collName, id string) int {
	for i, rec := range m.collections[collName] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// Call counters for testing

func (m *MockRepository) GetListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

func (m *MockRepository) GetCreateCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.createCalls
}

func (m *MockRepository) GetUpdateCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updateCalls
}

func (m *MockRepository) GetDeleteCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleteCalls
}

// GetCollectionCount returns the number of records in a collection
func (m *MockRepository) GetCollectionCount(collName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collName])
}
