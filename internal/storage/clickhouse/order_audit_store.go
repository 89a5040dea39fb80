package clickhouse

import (
	"context"
	"fmt"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
)

// OrderAuditStore implements storage.OrderAuditStore using ClickHouse.
type OrderAuditStore struct {
	conn *Conn
}

// NewOrderAuditStore creates a new OrderAuditStore.
func NewOrderAuditStore(conn *Conn) *OrderAuditStore {
	return &OrderAuditStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OrderAuditStore = (*OrderAuditStore)(nil)

type orderAuditKey struct {
	accountID   string
	environment domain.TradingEnvironmentID
	orderID     string
	sequence    uint64
}

// InsertBulk adds multiple records. MergeTree does not enforce uniqueness,
// so duplicates are checked within the batch and against stored rows first.
func (s *OrderAuditStore) InsertBulk(ctx context.Context, records []*storage.OrderAuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[orderAuditKey]struct{})
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		k := orderAuditKey{r.AccountID, r.Environment, r.OrderID, r.Sequence}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, r := range records {
		exists, err := s.exists(ctx, r)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO order_audit (
			account_id, environment, order_id, sequence, event, field, change, status, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.AccountID, string(r.Environment), r.OrderID, r.Sequence,
			string(r.Event), r.Field, r.Change, string(r.Status), uint64(r.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByOrderID retrieves the history of one order, ordered by sequence ASC.
func (s *OrderAuditStore) GetByOrderID(ctx context.Context, account domain.AccountKey, orderID string) ([]*storage.OrderAuditRecord, error) {
	query := `
		SELECT account_id, environment, order_id, sequence, event, field, change, status, recorded_at
		FROM order_audit
		WHERE account_id = ? AND environment = ? AND order_id = ?
		ORDER BY sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, account.ID, string(account.Environment), orderID)
	if err != nil {
		return nil, fmt.Errorf("query by order id: %w", err)
	}
	defer rows.Close()

	return scanOrderAudit(rows)
}

// exists checks if a record with the same key exists.
func (s *OrderAuditStore) exists(ctx context.Context, r *storage.OrderAuditRecord) (bool, error) {
	query := `
		SELECT count(*) FROM order_audit
		WHERE account_id = ? AND environment = ? AND order_id = ? AND sequence = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, r.AccountID, string(r.Environment), r.OrderID, r.Sequence).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanOrderAudit scans multiple rows.
func scanOrderAudit(rows chRows) ([]*storage.OrderAuditRecord, error) {
	var records []*storage.OrderAuditRecord

	for rows.Next() {
		var r storage.OrderAuditRecord
		var environment, event, status string
		var recordedAt uint64

		err := rows.Scan(
			&r.AccountID, &environment, &r.OrderID, &r.Sequence,
			&event, &r.Field, &r.Change, &status, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order audit row: %w", err)
		}

		r.Environment = domain.TradingEnvironmentID(environment)
		r.Event = storage.OrderAuditEvent(event)
		r.Status = domain.OrderStatus(status)
		r.RecordedAt = int64(recordedAt)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order audit rows: %w", err)
	}

	return records, nil
}
