package memory

import (
	"context"
	"sort"
	"sync"

	"zenith-sync/internal/storage"
)

// AccountGroupPreferenceStore is an in-memory implementation of storage.AccountGroupPreferenceStore.
type AccountGroupPreferenceStore struct {
	mu     sync.RWMutex
	byName map[string]*storage.AccountGroupPreference
}

// NewAccountGroupPreferenceStore creates a new in-memory preference store.
func NewAccountGroupPreferenceStore() *AccountGroupPreferenceStore {
	return &AccountGroupPreferenceStore{
		byName: make(map[string]*storage.AccountGroupPreference),
	}
}

// Save inserts or replaces the preference with p.Name.
func (s *AccountGroupPreferenceStore) Save(_ context.Context, p *storage.AccountGroupPreference) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefCopy := *p
	s.byName[p.Name] = &prefCopy
	return nil
}

// Get retrieves a preference by name. Returns ErrNotFound if not exists.
func (s *AccountGroupPreferenceStore) Get(_ context.Context, name string) (*storage.AccountGroupPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.byName[name]
	if !exists {
		return nil, storage.ErrNotFound
	}

	prefCopy := *p
	return &prefCopy, nil
}

// List returns every preference ordered by name.
func (s *AccountGroupPreferenceStore) List(_ context.Context) ([]*storage.AccountGroupPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.AccountGroupPreference, 0, len(s.byName))
	for _, p := range s.byName {
		prefCopy := *p
		result = append(result, &prefCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Delete removes a preference. Returns ErrNotFound if not exists.
func (s *AccountGroupPreferenceStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; !exists {
		return storage.ErrNotFound
	}
	delete(s.byName, name)
	return nil
}

var _ storage.AccountGroupPreferenceStore = (*AccountGroupPreferenceStore)(nil)
