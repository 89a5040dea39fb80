package brokerage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/feed"
	"zenith-sync/internal/keyedlist"
)

var (
	demoA1 = domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentDemo}
	demoA2 = domain.AccountKey{ID: "A2", Environment: domain.TradingEnvironmentDemo}
)

func accountPayload(key domain.AccountKey, name string, tradingFeed domain.TradingFeedID) *domain.AccountData {
	return &domain.AccountData{
		ID:          key.ID,
		Environment: key.Environment,
		Name:        domain.Set(name),
		TradingFeed: tradingFeed,
	}
}

func addAccount(key domain.AccountKey, name string, tradingFeed domain.TradingFeedID) domain.AccountChange {
	return domain.AccountChange{Type: domain.ChangeAdd, Data: accountPayload(key, name, tradingFeed)}
}

func accountsMessage(changes ...domain.AccountChange) domain.BrokerageAccountsDataMessage {
	return domain.BrokerageAccountsDataMessage{Changes: changes}
}

func synchronised() domain.DataMessage {
	return domain.SynchronisedPublisherSubscriptionDataMessage{}
}

func recordChanges[R keyedlist.Record](l *keyedlist.List[R]) *[]string {
	var got []string
	l.SubscribeListChangeEvent(func(c keyedlist.Change) { got = append(got, c.String()) })
	return &got
}

func requireDataCode(t testing.TB, err error, code domain.ErrorCode) *domain.DataError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrData), "not a data error: %v", err)
	var de *domain.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, code, de.Code, "error: %v", err)
	return de
}

func TestAccountsList_CreateAccount(t *testing.T) {
	l := NewAccountsList(nil)
	l.ReceiveDataMessage(synchronised())
	got := recordChanges(l.List)

	l.ReceiveDataMessage(accountsMessage(addAccount(demoA1, "Test", domain.TradingFeedOms)))

	assert.Equal(t, 1, l.Count())
	a, ok := l.GetByMapKey(domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentDemo}.MapKey())
	require.True(t, ok)
	assert.Equal(t, "Test", a.Name())
	assert.Equal(t, domain.TradingFeedOms, a.TradingFeed())
	assert.Equal(t, "A1[Demo]", a.MapKey())
	assert.Equal(t, []string{"Insert(0,1)"}, *got)
}

func TestAccountsList_AddsBeforeUsable(t *testing.T) {
	l := NewAccountsList(nil)
	got := recordChanges(l.List)

	l.ReceiveDataMessage(accountsMessage(addAccount(demoA1, "One", domain.TradingFeedOms)))
	l.ReceiveDataMessage(accountsMessage(addAccount(demoA2, "Two", domain.TradingFeedOms)))
	l.ReceiveDataMessage(accountsMessage(addAccount(domain.AccountKey{ID: "A3"}, "Three", domain.TradingFeedOms)))
	l.ReceiveDataMessage(synchronised())

	assert.Equal(t, []string{"PreUsableAdd(0,1)", "PreUsableAdd(1,1)", "PreUsableAdd(2,1)", "Usable"}, *got)
	assert.True(t, l.Usable())
	assert.Equal(t, correctness.Good, l.At(2).Correctness())
}

func TestAccountsList_ConsecutiveAddsAreOneBatch(t *testing.T) {
	l := NewAccountsList(nil)
	got := recordChanges(l.List)

	l.ReceiveDataMessage(accountsMessage(
		addAccount(demoA1, "One", domain.TradingFeedOms),
		addAccount(demoA2, "Two", domain.TradingFeedOms),
	))

	assert.Equal(t, []string{"PreUsableAdd(0,2)"}, *got)
}

func TestAccountsList_UpdateAndRemove(t *testing.T) {
	l := NewAccountsList(nil)
	l.ReceiveDataMessage(accountsMessage(
		addAccount(demoA1, "One", domain.TradingFeedOms),
		addAccount(demoA2, "Two", domain.TradingFeedOms),
	))
	l.ReceiveDataMessage(synchronised())
	got := recordChanges(l.List)
	a1, _ := l.Get(demoA1)
	var changes []entity.FieldChange[AccountFieldID]
	a1.SubscribeChangedEvent(func(c []entity.FieldChange[AccountFieldID]) { changes = append(changes, c...) })

	l.ReceiveDataMessage(accountsMessage(
		domain.AccountChange{Type: domain.ChangeUpdate, Data: &domain.AccountData{
			ID: "A1", Environment: domain.TradingEnvironmentDemo, Name: domain.Set("Renamed"),
		}},
		domain.AccountChange{Type: domain.ChangeRemove, Key: demoA2},
	))

	assert.Equal(t, "Renamed", a1.Name())
	assert.Equal(t, []entity.FieldChange[AccountFieldID]{{Field: AccountFieldName, Kind: entity.ValueChangeUpdate}}, changes)
	assert.Equal(t, []string{"Remove(1,1)"}, *got)
	assert.Equal(t, 1, l.Count())
	assert.True(t, l.Usable())
}

func TestAccountsList_BatchErrorFailsList(t *testing.T) {
	l := NewAccountsList(nil)
	l.ReceiveDataMessage(synchronised())
	var reported []error
	l.SetErrorHandler(func(err error) { reported = append(reported, err) })
	got := recordChanges(l.List)

	l.ReceiveDataMessage(accountsMessage(
		addAccount(demoA1, "One", domain.TradingFeedOms),
		addAccount(demoA1, "Again", domain.TradingFeedOms),
	))

	require.Len(t, reported, 1)
	var ie *domain.IndexedError
	require.True(t, errors.As(reported[0], &ie))
	assert.Equal(t, 1, ie.Index)
	requireDataCode(t, reported[0], domain.CodeRecordAlreadyExists)
	assert.Equal(t, []string{"Insert(0,1)", "Unusable"}, *got)
	assert.Equal(t, correctness.BrokerageAccountsError, l.Badness().ReasonID)

	l.ReceiveDataMessage(accountsMessage(addAccount(demoA2, "Two", domain.TradingFeedOms)))
	assert.Equal(t, 1, l.Count(), "data is dropped until restart")

	l.Restart()
	l.ReceiveDataMessage(accountsMessage(addAccount(demoA2, "Two", domain.TradingFeedOms)))
	l.ReceiveDataMessage(synchronised())
	assert.Equal(t, 1, l.Count())
	_, ok := l.Get(demoA2)
	assert.True(t, ok)
	assert.True(t, l.Usable())
}

func TestAccountsList_MissingRecords(t *testing.T) {
	l := NewAccountsList(nil)

	err := l.ApplyChanges([]domain.AccountChange{
		{Type: domain.ChangeUpdate, Data: accountPayload(demoA1, "One", domain.TradingFeedOms)},
	})
	requireDataCode(t, err, domain.CodeRecordNotFound)

	err = l.ApplyChanges([]domain.AccountChange{{Type: domain.ChangeRemove, Key: demoA1}})
	requireDataCode(t, err, domain.CodeRecordNotFound)
}

func TestAccount_Update(t *testing.T) {
	data := accountPayload(demoA1, "One", domain.TradingFeedOms)
	data.BrokerCode = domain.Set("B1")
	a := NewAccount(*data, correctness.Good, nil)
	var events [][]entity.FieldChange[AccountFieldID]
	a.SubscribeChangedEvent(func(c []entity.FieldChange[AccountFieldID]) { events = append(events, c) })

	err := a.Update(domain.AccountData{
		ID:          "A1",
		Environment: domain.TradingEnvironmentDemo,
		Name:        domain.Set("Two"),
		Currency:    domain.Set(domain.CurrencyAud),
		BrokerCode:  domain.Clear[string](),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []entity.FieldChange[AccountFieldID]{
		{Field: AccountFieldName, Kind: entity.ValueChangeUpdate},
		{Field: AccountFieldCurrency, Kind: entity.ValueChangeUpdate},
		{Field: AccountFieldBrokerCode, Kind: entity.ValueChangeUpdate},
	}, events[0])
	assert.Equal(t, "", a.BrokerCode())
	assert.Equal(t, domain.CurrencyAud, a.Currency())

	require.NoError(t, a.Update(domain.AccountData{ID: "A1", Environment: domain.TradingEnvironmentDemo}))
	assert.Len(t, events, 1, "an update without changes is not announced")
}

func TestAccount_KeyChangeRejected(t *testing.T) {
	a := NewAccount(*accountPayload(demoA1, "One", domain.TradingFeedOms), correctness.Good, nil)

	err := a.Update(*accountPayload(demoA2, "Other", domain.TradingFeedOms))

	requireDataCode(t, err, domain.CodeAccountKeyChanged)
	assert.Equal(t, "One", a.Name())
	assert.Equal(t, demoA1, a.Key())
}

func TestAccount_CorrectnessFollowsTradingFeed(t *testing.T) {
	feeds := feed.NewList()
	feeds.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{
		{Class: domain.FeedClassTrading, Name: "Oms", Status: domain.FeedStatusActive},
	}})
	feeds.ReceiveDataMessage(synchronised())

	l := NewAccountsList(feeds)
	l.ReceiveDataMessage(accountsMessage(
		addAccount(demoA1, "One", domain.TradingFeedOms),
		addAccount(demoA2, "Two", domain.TradingFeedMotif),
	))
	l.ReceiveDataMessage(synchronised())
	a1, _ := l.Get(demoA1)
	a2, _ := l.Get(demoA2)

	assert.Equal(t, correctness.Good, a1.Correctness())
	assert.Equal(t, correctness.Error, a2.Correctness(), "trading feed not known")

	a1Events := 0
	a1.SubscribeCorrectnessChangedEvent(func() { a1Events++ })
	feeds.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{
		{Class: domain.FeedClassTrading, Name: "Oms", Status: domain.FeedStatusImpaired},
		{Class: domain.FeedClassTrading, Name: "Motif", Status: domain.FeedStatusActive},
	}})

	assert.Equal(t, correctness.Suspect, a1.Correctness())
	assert.Equal(t, 1, a1Events)
	assert.Equal(t, correctness.Good, a2.Correctness())
	f, ok := a2.Feed()
	require.True(t, ok)
	assert.Equal(t, "Motif", f.Name())

	l.ReceiveDataMessage(accountsMessage(domain.AccountChange{Type: domain.ChangeRemove, Key: demoA2}))
	_, ok = a2.Feed()
	assert.False(t, ok, "removed accounts release their feed")
}

func TestAccount_CorrectnessFollowsList(t *testing.T) {
	l := NewAccountsList(nil)
	l.ReceiveDataMessage(accountsMessage(addAccount(demoA1, "One", domain.TradingFeedOms)))
	a, _ := l.Get(demoA1)
	assert.Equal(t, correctness.Suspect, a.Correctness(), "list still waiting")

	l.ReceiveDataMessage(synchronised())
	assert.Equal(t, correctness.Good, a.Correctness())

	l.ReceiveDataMessage(domain.ErrorPublisherSubscriptionDataMessage{ErrorText: "boom"})
	assert.Equal(t, correctness.Error, a.Correctness())
}
