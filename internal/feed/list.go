package feed

import (
	"fmt"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/keyedlist"
)

var reasons = keyedlist.Reasons{Waiting: correctness.FeedsWaiting, Error: correctness.FeedsError}

// List holds every feed the server reports. Feed states are upserts; feeds
// are never removed except when a fresh image replaces the list.
type List struct {
	*keyedlist.List[*Feed]
	loader *keyedlist.Loader[*Feed]
}

// NewList creates an empty feeds list waiting for its subscription.
func NewList() *List {
	inner := keyedlist.New[*Feed]()
	l := &List{List: inner, loader: keyedlist.NewLoader(inner, reasons)}
	inner.SubscribeBadnessChangeEvent(l.handleBadnessChange)
	return l
}

// Definition is the subscription that feeds this list.
func (l *List) Definition() domain.DataDefinition { return domain.FeedsDefinition{} }

// SetErrorHandler registers a function told about apply errors.
func (l *List) SetErrorHandler(h func(error)) { l.loader.SetErrorHandler(h) }

// Restart prepares the list for a new subscription.
func (l *List) Restart() { l.loader.Restart() }

// Get looks up a feed by class and name.
func (l *List) Get(class domain.FeedClassID, name string) (*Feed, bool) {
	return l.GetByMapKey(domain.FeedData{Class: class, Name: name}.MapKey())
}

// ReceiveDataMessage applies a message from the feeds subscription.
func (l *List) ReceiveDataMessage(msg domain.DataMessage) {
	if l.loader.ApplyStatus(msg) {
		return
	}
	m, ok := msg.(domain.FeedsDataMessage)
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("feeds list got %T", msg))
	}
	if !l.loader.BeginData() {
		return
	}
	if err := l.ApplyFeeds(m.Feeds); err != nil {
		l.loader.Report(err)
	}
}

// ApplyFeeds upserts feed states in order. Consecutive new feeds are added
// as one batch.
func (l *List) ApplyFeeds(feeds []domain.FeedData) error {
	var (
		pending     []*Feed
		pendingKeys = make(map[string]struct{})
	)
	flush := func() {
		l.AddRecords(pending...)
		pending = nil
		clear(pendingKeys)
	}
	for i, data := range feeds {
		key := data.MapKey()
		if _, dup := pendingKeys[key]; dup {
			flush()
		}
		existing, ok := l.GetByMapKey(key)
		if !ok {
			pending = append(pending, New(data, l.Correctness()))
			pendingKeys[key] = struct{}{}
			continue
		}
		flush()
		if err := existing.Update(data); err != nil {
			return domain.AtIndex(i, err)
		}
	}
	flush()
	return nil
}

func (l *List) handleBadnessChange() {
	c := l.Correctness()
	for _, f := range l.Records() {
		f.setListCorrectness(c)
	}
}
