// Package watchlist keeps user watchlists and their ordered symbol members in
// step with the server.
package watchlist

import (
	"fmt"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/keyedlist"
)

var reasons = keyedlist.Reasons{Waiting: correctness.WatchlistWaiting, Error: correctness.WatchlistError}

// FieldID identifies a mutable watchlist field.
type FieldID int

const (
	FieldName FieldID = iota
	FieldDescription
	FieldCategory
	FieldWritable
)

// Member is one symbol in a watchlist.
type Member struct {
	litIvem     domain.LitIvemID
	correctness correctness.ID
}

func (m *Member) MapKey() string              { return m.litIvem.MapKey() }
func (m *Member) Correctness() correctness.ID { return m.correctness }
func (m *Member) LitIvemID() domain.LitIvemID { return m.litIvem }

// Watchlist is a named, ordered list of symbols. Its header fields come from
// the watchlists query and its members from the watchlist subscription.
type Watchlist struct {
	entity.Base[FieldID]

	id          string
	name        string
	description string
	category    string
	writable    bool

	members *keyedlist.List[*Member]
	loader  *keyedlist.Loader[*Member]
}

// New creates a watchlist from its header. Members load once the watchlist
// is subscribed.
func New(data domain.WatchlistData) *Watchlist {
	members := keyedlist.New[*Member]()
	w := &Watchlist{
		id:          data.ID,
		name:        data.Name,
		description: data.Description,
		category:    data.Category,
		writable:    data.IsWritable,
		members:     members,
		loader:      keyedlist.NewLoader(members, reasons),
	}
	w.InitCorrectness(members.Correctness())
	members.SubscribeBadnessChangeEvent(w.handleBadnessChange)
	return w
}

// MapKey returns the watchlist id.
func (w *Watchlist) MapKey() string { return w.id }

func (w *Watchlist) ID() string          { return w.id }
func (w *Watchlist) Name() string        { return w.name }
func (w *Watchlist) Description() string { return w.description }
func (w *Watchlist) Category() string    { return w.category }
func (w *Watchlist) Writable() bool      { return w.writable }

// Members is the ordered member list.
func (w *Watchlist) Members() *keyedlist.List[*Member] { return w.members }

// Definition is the subscription that feeds the member list.
func (w *Watchlist) Definition() domain.DataDefinition {
	return domain.WatchlistDefinition{WatchlistID: w.id}
}

// AddRequest builds a request that appends members on the server.
func (w *Watchlist) AddRequest(members ...domain.LitIvemID) domain.AddToWatchlistDefinition {
	return domain.AddToWatchlistDefinition{WatchlistID: w.id, Members: members}
}

// SetErrorHandler registers a function told about apply errors.
func (w *Watchlist) SetErrorHandler(h func(error)) { w.loader.SetErrorHandler(h) }

// Restart prepares the member list for a new subscription.
func (w *Watchlist) Restart() { w.loader.Restart() }

// UpdateHeader applies a header from the watchlists query.
func (w *Watchlist) UpdateHeader(data domain.WatchlistData) error {
	if data.ID != w.id {
		return domain.NewDataError(domain.CodeRecordNotFound, "watchlist "+data.ID+" applied to "+w.id)
	}
	var changes entity.Changes[FieldID]
	entity.SetValue(&changes, FieldName, &w.name, data.Name)
	entity.SetValue(&changes, FieldDescription, &w.description, data.Description)
	entity.SetValue(&changes, FieldCategory, &w.category, data.Category)
	entity.SetValue(&changes, FieldWritable, &w.writable, data.IsWritable)
	w.Notify(&changes)
	return nil
}

// ReceiveDataMessage applies a message from the watchlist subscription.
func (w *Watchlist) ReceiveDataMessage(msg domain.DataMessage) {
	if w.loader.ApplyStatus(msg) {
		return
	}
	m, ok := msg.(domain.WatchlistDataMessage)
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("watchlist got %T", msg))
	}
	if !w.loader.BeginData() {
		return
	}
	if err := w.Apply(m); err != nil {
		w.loader.Report(err)
	}
}

// Apply applies header and member changes in order.
func (w *Watchlist) Apply(m domain.WatchlistDataMessage) error {
	if m.WatchlistID != w.id {
		return domain.NewDataError(domain.CodeRecordNotFound, "watchlist "+m.WatchlistID+" sent to "+w.id)
	}
	if m.Update != nil {
		var changes entity.Changes[FieldID]
		entity.SetPatch(&changes, FieldName, &w.name, m.Update.Name)
		entity.SetPatch(&changes, FieldDescription, &w.description, m.Update.Description)
		entity.SetPatch(&changes, FieldCategory, &w.category, m.Update.Category)
		w.Notify(&changes)
	}
	for i, c := range m.Changes {
		if err := w.applyMemberChange(c); err != nil {
			return domain.AtIndex(i, err)
		}
	}
	return nil
}

func (w *Watchlist) applyMemberChange(c domain.WatchlistMemberChange) error {
	switch c.Type {
	case domain.ChangeAdd:
		members, err := w.newMembers(c.Members)
		if err != nil {
			return err
		}
		index := c.Index
		if index < 0 {
			index = w.members.Count()
		}
		if index > w.members.Count() {
			return domain.NewDataError(domain.CodeRecordNotFound, fmt.Sprintf("insert at %d of %d", index, w.members.Count()))
		}
		w.members.InsertRecords(index, members...)
	case domain.ChangeUpdate:
		return domain.NewDataError(domain.CodeUnknownChangeType, "watchlist members Update")
	case domain.ChangeRemove:
		for _, id := range c.Members {
			if !w.members.RemoveByMapKey(id.MapKey()) {
				return domain.NewDataError(domain.CodeRecordNotFound, id.MapKey())
			}
		}
	case domain.ChangeClear:
		w.members.Clear()
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "watchlist change "+string(c.Type))
	}
	return nil
}

// newMembers creates member records, rejecting symbols already present.
func (w *Watchlist) newMembers(ids []domain.LitIvemID) ([]*Member, error) {
	c := w.members.Correctness()
	seen := make(map[string]struct{}, len(ids))
	members := make([]*Member, len(ids))
	for i, id := range ids {
		key := id.MapKey()
		_, dup := seen[key]
		_, present := w.members.GetByMapKey(key)
		if dup || present {
			return nil, domain.NewDataError(domain.CodeRecordAlreadyExists, key)
		}
		seen[key] = struct{}{}
		members[i] = &Member{litIvem: id, correctness: c}
	}
	return members, nil
}

func (w *Watchlist) handleBadnessChange() {
	c := w.members.Correctness()
	for _, m := range w.members.Records() {
		m.correctness = c
	}
	w.SetCorrectness(c)
}
