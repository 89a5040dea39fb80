package brokerage

import (
	"fmt"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/feed"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/multievent"
)

var accountsReasons = keyedlist.Reasons{
	Waiting: correctness.BrokerageAccountsWaiting,
	Error:   correctness.BrokerageAccountsError,
}

// AccountsList holds every brokerage account the user can see.
type AccountsList struct {
	*keyedlist.List[*Account]
	loader *keyedlist.Loader[*Account]

	feeds    *feed.List
	lookup   FeedLookup
	feedsSub multievent.SubscriptionID
}

// NewAccountsList creates an empty accounts list. If feeds is not nil, each
// account's correctness includes its trading feed.
func NewAccountsList(feeds *feed.List) *AccountsList {
	inner := keyedlist.New[*Account]()
	l := &AccountsList{
		List:   inner,
		loader: keyedlist.NewLoader(inner, accountsReasons),
		feeds:  feeds,
	}
	if feeds != nil {
		l.lookup = feeds
		l.feedsSub = feeds.SubscribeListChangeEvent(l.handleFeedsListChange)
	}
	inner.SubscribeListChangeEvent(l.handleOwnListChange)
	inner.SubscribeBadnessChangeEvent(l.handleBadnessChange)
	return l
}

// Definition is the subscription that feeds this list.
func (l *AccountsList) Definition() domain.DataDefinition {
	return domain.BrokerageAccountsDefinition{}
}

// SetErrorHandler registers a function told about apply errors.
func (l *AccountsList) SetErrorHandler(h func(error)) { l.loader.SetErrorHandler(h) }

// Restart prepares the list for a new subscription.
func (l *AccountsList) Restart() { l.loader.Restart() }

// Get looks an account up by key.
func (l *AccountsList) Get(key domain.AccountKey) (*Account, bool) {
	return l.GetByMapKey(key.MapKey())
}

// Dispose detaches the list from the feeds list and from every account's feed.
func (l *AccountsList) Dispose() {
	if l.feeds != nil {
		l.feeds.UnsubscribeListChangeEvent(l.feedsSub)
	}
	for _, a := range l.Records() {
		a.dispose()
	}
}

// ReceiveDataMessage applies a message from the accounts subscription.
func (l *AccountsList) ReceiveDataMessage(msg domain.DataMessage) {
	if l.loader.ApplyStatus(msg) {
		return
	}
	m, ok := msg.(domain.BrokerageAccountsDataMessage)
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("accounts list got %T", msg))
	}
	if !l.loader.BeginData() {
		return
	}
	if err := l.ApplyChanges(m.Changes); err != nil {
		l.loader.Report(err)
	}
}

// ApplyChanges applies account change records in order. Consecutive adds are
// announced as one batch. The first failing record stops the batch.
func (l *AccountsList) ApplyChanges(changes []domain.AccountChange) error {
	var (
		pending     []*Account
		pendingKeys = make(map[string]struct{})
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		start := l.ExtendRecordCount(len(pending))
		for i, a := range pending {
			l.SetRecord(start+i, a)
		}
		l.CommitAdd(start, len(pending))
		pending = nil
		clear(pendingKeys)
	}
	defer flush()

	for i, c := range changes {
		switch c.Type {
		case domain.ChangeAdd:
			key := c.Data.Key().MapKey()
			if _, dup := pendingKeys[key]; dup {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordAlreadyExists, key))
			}
			if _, exists := l.GetByMapKey(key); exists {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordAlreadyExists, key))
			}
			pending = append(pending, NewAccount(*c.Data, l.Correctness(), l.lookup))
			pendingKeys[key] = struct{}{}
		case domain.ChangeUpdate:
			flush()
			key := c.Data.Key().MapKey()
			a, ok := l.GetByMapKey(key)
			if !ok {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordNotFound, key))
			}
			if err := a.Update(*c.Data); err != nil {
				return domain.AtIndex(i, err)
			}
		case domain.ChangeRemove:
			flush()
			if !l.RemoveByMapKey(c.Key.MapKey()) {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordNotFound, c.Key.MapKey()))
			}
		case domain.ChangeClear:
			flush()
			l.Clear()
		default:
			domain.PanicInternal(domain.CodeUnhandledEnum, "account change "+string(c.Type))
		}
	}
	return nil
}

// handleOwnListChange releases accounts before they leave the list.
func (l *AccountsList) handleOwnListChange(c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			l.At(i).dispose()
		}
	case keyedlist.ChangeClear, keyedlist.ChangePreUsableClear:
		for _, a := range l.Records() {
			a.dispose()
		}
	case keyedlist.ChangeUnusable, keyedlist.ChangePreUsableAdd, keyedlist.ChangeUsable,
		keyedlist.ChangeInsert, keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

func (l *AccountsList) handleFeedsListChange(c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
		for _, a := range l.Records() {
			a.resolveFeed()
		}
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			l.dropFeed(l.feeds.At(i))
		}
	case keyedlist.ChangeClear, keyedlist.ChangePreUsableClear:
		for _, f := range l.feeds.Records() {
			l.dropFeed(f)
		}
	case keyedlist.ChangeUnusable, keyedlist.ChangeUsable,
		keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

func (l *AccountsList) dropFeed(f *feed.Feed) {
	for _, a := range l.Records() {
		a.dropFeed(f)
	}
}

func (l *AccountsList) handleBadnessChange() {
	c := l.Correctness()
	for _, a := range l.Records() {
		a.setListCorrectness(c)
	}
}
