package session

import (
	"context"
	"log"
	"time"

	"zenith-sync/internal/brokerage"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/multievent"
	"zenith-sync/internal/observability"
	"zenith-sync/internal/storage"
)

// orderAudit turns order list and order field changes into audit records.
//
// An order counts as added the first time it is seen and as removed only
// when its list removes or clears it. A list reloading after an error drops
// and re-adds its orders without producing records.
type orderAudit struct {
	store   storage.OrderAuditStore
	now     func() time.Time
	metrics *observability.Metrics
	logger  *log.Logger

	sequences map[string]uint64                    // order map key -> last sequence
	live      map[string]struct{}                  // orders added and not removed
	followed  map[string]multievent.SubscriptionID // order map key -> changed handler
	pending   []*storage.OrderAuditRecord
}

func newOrderAudit(store storage.OrderAuditStore, lists *brokerage.AccountDataLists, now func() time.Time,
	metrics *observability.Metrics, logger *log.Logger) *orderAudit {
	a := &orderAudit{
		store:     store,
		now:       now,
		metrics:   metrics,
		logger:    logger,
		sequences: make(map[string]uint64),
		live:      make(map[string]struct{}),
		followed:  make(map[string]multievent.SubscriptionID),
	}
	lists.SubscribeCreatedEvent(func(key domain.AccountKey) {
		orders, err := lists.Orders(key)
		if err != nil {
			logger.Printf("Error following orders of %s: %v", key, err)
			return
		}
		a.follow(orders)
	})
	return a
}

func (a *orderAudit) follow(orders *brokerage.OrdersList) {
	orders.SubscribeListChangeEvent(func(c keyedlist.Change) {
		switch c.Type {
		case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
			for i := c.Index; i < c.Index+c.Count; i++ {
				a.added(orders.At(i))
			}
		case keyedlist.ChangeRemove, keyedlist.ChangeClear:
			for i := c.Index; i < c.Index+c.Count; i++ {
				a.removed(orders.At(i))
			}
		case keyedlist.ChangePreUsableClear:
			for _, o := range orders.Records() {
				a.unfollow(o)
			}
		case keyedlist.ChangeUsable, keyedlist.ChangeUnusable:
		case keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
			domain.PanicInternal(domain.CodeReplaceNotSupported, "order audit got "+c.String())
		default:
			domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
		}
	})
}

func (a *orderAudit) added(o *brokerage.Order) {
	key := o.MapKey()
	a.followed[key] = o.SubscribeChangedEvent(func(changes []entity.FieldChange[brokerage.OrderFieldID]) {
		for _, fc := range changes {
			r := a.record(o, storage.OrderAuditChanged)
			r.Field = fc.Field.String()
			r.Change = fc.Kind.String()
		}
	})
	if _, ok := a.live[key]; ok {
		return
	}
	a.live[key] = struct{}{}
	a.record(o, storage.OrderAuditAdded)
}

func (a *orderAudit) removed(o *brokerage.Order) {
	a.unfollow(o)
	delete(a.live, o.MapKey())
	a.record(o, storage.OrderAuditRemoved)
}

func (a *orderAudit) unfollow(o *brokerage.Order) {
	key := o.MapKey()
	if id, ok := a.followed[key]; ok {
		o.UnsubscribeChangedEvent(id)
		delete(a.followed, key)
	}
}

func (a *orderAudit) record(o *brokerage.Order, event storage.OrderAuditEvent) *storage.OrderAuditRecord {
	key := o.MapKey()
	a.sequences[key]++
	account := o.Key().Account
	r := &storage.OrderAuditRecord{
		AccountID:   account.ID,
		Environment: account.Environment,
		OrderID:     o.ID(),
		Sequence:    a.sequences[key],
		Event:       event,
		Status:      o.Status(),
		RecordedAt:  a.now().UnixMilli(),
	}
	a.pending = append(a.pending, r)
	return r
}

// flush writes pending records. A failed batch is logged and dropped.
func (a *orderAudit) flush(ctx context.Context) {
	if len(a.pending) == 0 {
		return
	}
	batch := a.pending
	a.pending = nil

	start := time.Now()
	err := a.store.InsertBulk(ctx, batch)
	if a.metrics != nil {
		a.metrics.RecordDBQuery("audit", "insert_bulk", time.Since(start).Seconds(), err)
	}
	if err != nil {
		a.logger.Printf("Error storing %d order audit records: %v", len(batch), err)
		return
	}
	if a.metrics != nil {
		a.metrics.AuditRecordsStored.Add(float64(len(batch)))
	}
}
