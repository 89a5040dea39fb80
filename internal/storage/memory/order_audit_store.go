package memory

import (
	"context"
	"sort"
	"sync"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
)

type orderAuditKey struct {
	account domain.AccountKey
	orderID string
}

// OrderAuditStore is an in-memory implementation of storage.OrderAuditStore.
type OrderAuditStore struct {
	mu      sync.RWMutex
	byOrder map[orderAuditKey][]*storage.OrderAuditRecord
	seen    map[orderAuditKey]map[uint64]struct{}
}

// NewOrderAuditStore creates a new in-memory order audit store.
func NewOrderAuditStore() *OrderAuditStore {
	return &OrderAuditStore{
		byOrder: make(map[orderAuditKey][]*storage.OrderAuditRecord),
		seen:    make(map[orderAuditKey]map[uint64]struct{}),
	}
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *OrderAuditStore) InsertBulk(_ context.Context, records []*storage.OrderAuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[orderAuditKey]map[uint64]struct{})
	for _, r := range records {
		key := orderAuditKey{account: r.Account(), orderID: r.OrderID}
		if _, exists := s.seen[key][r.Sequence]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[key][r.Sequence]; exists {
			return storage.ErrDuplicateKey
		}
		if batch[key] == nil {
			batch[key] = make(map[uint64]struct{})
		}
		batch[key][r.Sequence] = struct{}{}
	}

	for _, r := range records {
		key := orderAuditKey{account: r.Account(), orderID: r.OrderID}
		if s.seen[key] == nil {
			s.seen[key] = make(map[uint64]struct{})
		}
		s.seen[key][r.Sequence] = struct{}{}
		recordCopy := *r
		s.byOrder[key] = append(s.byOrder[key], &recordCopy)
	}
	return nil
}

// GetByOrderID retrieves the history of one order, ordered by sequence ASC.
func (s *OrderAuditStore) GetByOrderID(_ context.Context, account domain.AccountKey, orderID string) ([]*storage.OrderAuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byOrder[orderAuditKey{account: account, orderID: orderID}]
	result := make([]*storage.OrderAuditRecord, len(stored))
	for i, r := range stored {
		recordCopy := *r
		result[i] = &recordCopy
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

var _ storage.OrderAuditStore = (*OrderAuditStore)(nil)
