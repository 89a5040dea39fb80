package storage

import (
	"context"

	"zenith-sync/internal/domain"
)

// AccountGroupPreferenceStore keeps named account group selections.
type AccountGroupPreferenceStore interface {
	// Save inserts or replaces the preference with p.Name.
	Save(ctx context.Context, p *AccountGroupPreference) error

	// Get retrieves a preference by name. Returns ErrNotFound if not exists.
	Get(ctx context.Context, name string) (*AccountGroupPreference, error)

	// List returns every preference ordered by name.
	List(ctx context.Context) ([]*AccountGroupPreference, error)

	// Delete removes a preference. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, name string) error
}

// OrderAuditStore is an append-only history of order changes.
type OrderAuditStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on
	// duplicate (account, order_id, sequence).
	InsertBulk(ctx context.Context, records []*OrderAuditRecord) error

	// GetByOrderID retrieves the history of one order, ordered by sequence ASC.
	GetByOrderID(ctx context.Context, account domain.AccountKey, orderID string) ([]*OrderAuditRecord, error)
}
