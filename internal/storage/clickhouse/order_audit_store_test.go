package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
)

func TestOrderAuditStore(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOrderAuditStore(conn)
	account := domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentDemo}

	record := func(seq uint64, event storage.OrderAuditEvent, field string) *storage.OrderAuditRecord {
		r := &storage.OrderAuditRecord{
			AccountID:   account.ID,
			Environment: account.Environment,
			OrderID:     "O1",
			Sequence:    seq,
			Event:       event,
			Field:       field,
			Status:      "Working",
			RecordedAt:  1704067200000 + int64(seq),
		}
		if field != "" {
			r.Change = "Increase"
		}
		return r
	}

	t.Run("insert and get", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*storage.OrderAuditRecord{
			record(2, storage.OrderAuditChanged, "ExecutedQuantity"),
			record(1, storage.OrderAuditAdded, ""),
		})
		require.NoError(t, err)

		history, err := store.GetByOrderID(ctx, account, "O1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, record(1, storage.OrderAuditAdded, ""), history[0])
		assert.Equal(t, record(2, storage.OrderAuditChanged, "ExecutedQuantity"), history[1])
	})

	t.Run("duplicate against stored rows", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*storage.OrderAuditRecord{record(1, storage.OrderAuditRemoved, "")})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("duplicate within batch", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*storage.OrderAuditRecord{
			record(3, storage.OrderAuditRemoved, ""),
			record(3, storage.OrderAuditRemoved, ""),
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		history, err := store.GetByOrderID(ctx, account, "O1")
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("other environment", func(t *testing.T) {
		history, err := store.GetByOrderID(ctx, domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentProduction}, "O1")
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
