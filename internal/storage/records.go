package storage

import "zenith-sync/internal/domain"

// AccountGroupPreference is a saved account group selection.
type AccountGroupPreference struct {
	Name      string
	Key       domain.PersistedKey
	UpdatedAt int64 // unix ms
}

// Validate checks the fields every backend requires.
func (p *AccountGroupPreference) Validate() error {
	if p == nil || p.Name == "" || p.Key.TypeID == "" {
		return ErrInvalidInput
	}
	return nil
}

// OrderAuditEvent is the kind of an order audit record.
type OrderAuditEvent string

const (
	OrderAuditAdded   OrderAuditEvent = "Added"
	OrderAuditChanged OrderAuditEvent = "Changed"
	OrderAuditRemoved OrderAuditEvent = "Removed"
)

// OrderAuditRecord is one observed change to an order.
type OrderAuditRecord struct {
	AccountID   string
	Environment domain.TradingEnvironmentID
	OrderID     string
	Sequence    uint64 // per-order, assigned by the recorder
	Event       OrderAuditEvent
	Field       string // set for Changed
	Change      string // Update, Increase or Decrease; set for Changed
	Status      domain.OrderStatus
	RecordedAt  int64 // unix ms
}

// Account returns the key of the account owning the order.
func (r *OrderAuditRecord) Account() domain.AccountKey {
	return domain.AccountKey{ID: r.AccountID, Environment: r.Environment}
}

// Validate checks the fields every backend requires.
func (r *OrderAuditRecord) Validate() error {
	if r == nil || r.AccountID == "" || r.OrderID == "" || r.Event == "" {
		return ErrInvalidInput
	}
	if r.Event == OrderAuditChanged && r.Field == "" {
		return ErrInvalidInput
	}
	return nil
}
