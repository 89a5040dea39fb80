package brokerage

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/publisher"
)

func holdingsMessage(account domain.AccountKey, changes ...domain.HoldingChange) domain.BrokerageAccountHoldingsDataMessage {
	return domain.BrokerageAccountHoldingsDataMessage{Account: account, Changes: changes}
}

func addHolding(d domain.HoldingData) domain.HoldingChange {
	return domain.HoldingChange{Type: domain.ChangeAdd, Data: &d}
}

func newTestManager() *publisher.Manager {
	return publisher.NewManager(publisher.Options{Logger: log.New(io.Discard, "", 0)})
}

func usableAccounts(keys ...domain.AccountKey) *AccountsList {
	l := NewAccountsList(nil)
	changes := make([]domain.AccountChange, len(keys))
	for i, k := range keys {
		changes[i] = addAccount(k, k.ID, domain.TradingFeedOms)
	}
	l.ReceiveDataMessage(accountsMessage(changes...))
	l.ReceiveDataMessage(synchronised())
	return l
}

func TestHoldingsList_Lifecycle(t *testing.T) {
	l := NewHoldingsList(demoA1, nil)
	got := recordChanges(l.List)
	assert.Equal(t, domain.BrokerageAccountHoldingsDefinition{Account: demoA1}, l.Definition())

	l.ReceiveDataMessage(holdingsMessage(demoA1, addHolding(holdingData(demoA1, "BHP", 100))))
	l.ReceiveDataMessage(synchronised())

	bhp := holdingData(demoA1, "BHP", 80)
	h, ok := l.GetByMapKey(bhp.Key().MapKey())
	require.True(t, ok)
	var changes []entity.FieldChange[HoldingFieldID]
	h.SubscribeChangedEvent(func(c []entity.FieldChange[HoldingFieldID]) { changes = c })

	l.ReceiveDataMessage(holdingsMessage(demoA1,
		domain.HoldingChange{Type: domain.ChangeUpdate, Data: &bhp},
		addHolding(holdingData(demoA1, "RIO", 5)),
		domain.HoldingChange{Type: domain.ChangeRemove, Key: bhp.Key()},
	))

	assert.Equal(t, []entity.FieldChange[HoldingFieldID]{
		{Field: HoldingFieldCost, Kind: entity.ValueChangeDecrease},
		{Field: HoldingFieldTotalQuantity, Kind: entity.ValueChangeDecrease},
		{Field: HoldingFieldTotalAvailableQuantity, Kind: entity.ValueChangeDecrease},
	}, changes)
	assert.Equal(t, []string{"PreUsableAdd(0,1)", "Usable", "Insert(1,1)", "Remove(0,1)"}, *got)
	require.Equal(t, 1, l.Count())
	assert.Equal(t, "RIO", l.At(0).Key().Code)
}

func TestHoldingsList_ClearThenAdd(t *testing.T) {
	l := NewHoldingsList(demoA1, nil)
	l.ReceiveDataMessage(holdingsMessage(demoA1,
		addHolding(holdingData(demoA1, "BHP", 100)),
		addHolding(holdingData(demoA1, "RIO", 5)),
	))
	l.ReceiveDataMessage(synchronised())
	got := recordChanges(l.List)

	l.ReceiveDataMessage(holdingsMessage(demoA1,
		domain.HoldingChange{Type: domain.ChangeClear},
		addHolding(holdingData(demoA1, "CBA", 1)),
	))

	assert.Equal(t, []string{"Clear", "Insert(0,1)"}, *got)
	assert.Equal(t, 1, l.Count())
}

func TestHoldingsList_WrongAccount(t *testing.T) {
	l := NewHoldingsList(demoA1, nil)
	var reported error
	l.SetErrorHandler(func(err error) { reported = err })

	l.ReceiveDataMessage(holdingsMessage(demoA2, addHolding(holdingData(demoA2, "BHP", 1))))

	requireDataCode(t, reported, domain.CodeWrongAccount)
	assert.Equal(t, 0, l.Count())
	assert.Equal(t, correctness.BrokerageAccountDataListsError, l.Badness().ReasonID)
}

func TestHoldingsList_RecordCorrectnessIncludesAccount(t *testing.T) {
	accounts := usableAccounts(demoA1)
	account, _ := accounts.Get(demoA1)
	l := NewHoldingsList(demoA1, account)
	l.ReceiveDataMessage(holdingsMessage(demoA1, addHolding(holdingData(demoA1, "BHP", 100))))
	l.ReceiveDataMessage(synchronised())
	h := l.At(0)
	require.Equal(t, correctness.Good, h.Correctness())

	accounts.ReceiveDataMessage(domain.ErrorPublisherSubscriptionDataMessage{ErrorText: "boom"})
	assert.Equal(t, correctness.Error, account.Correctness())
	assert.Equal(t, correctness.Error, h.Correctness())

	l.Dispose()
	account.setListCorrectness(correctness.Good)
	assert.Equal(t, correctness.Good, account.Correctness())
	assert.Equal(t, correctness.Error, h.Correctness(), "disposed lists stop following the account")
}

func TestOrdersList_AccountChangeRejected(t *testing.T) {
	l := NewOrdersList(demoA1, nil)
	first := orderData(demoA1, "O1")
	l.ReceiveDataMessage(domain.BrokerageAccountOrdersDataMessage{
		Account: demoA1,
		Changes: []domain.OrderChange{{Type: domain.ChangeAdd, Data: &first}},
	})
	l.ReceiveDataMessage(synchronised())

	err := l.At(0).Update(orderData(demoA2, "O1"))

	requireDataCode(t, err, domain.CodeOrderAccountIDChanged)
	assert.Equal(t, first, l.At(0).Data())
}

func TestBalancesList_Apply(t *testing.T) {
	l := NewBalancesList(demoA1, nil)
	cash := domain.BalanceData{
		AccountID: "A1", Environment: domain.TradingEnvironmentDemo,
		Currency: domain.CurrencyAud, Type: "Cash", Amount: decimal.NewFromInt(10),
	}
	l.ReceiveDataMessage(domain.BrokerageAccountBalancesDataMessage{
		Account: demoA1,
		Changes: []domain.BalanceChange{{Type: domain.ChangeAdd, Data: &cash}},
	})
	updated := cash
	updated.Amount = decimal.NewFromInt(20)
	l.ReceiveDataMessage(domain.BrokerageAccountBalancesDataMessage{
		Account: demoA1,
		Changes: []domain.BalanceChange{{Type: domain.ChangeUpdate, Data: &updated}},
	})

	require.Equal(t, 1, l.Count())
	assert.True(t, l.At(0).Amount().Equal(decimal.NewFromInt(20)))
}

func TestBalancesList_ClearThenAdd(t *testing.T) {
	l := NewBalancesList(demoA1, nil)
	cash := domain.BalanceData{
		AccountID: "A1", Environment: domain.TradingEnvironmentDemo,
		Currency: domain.CurrencyAud, Type: "Cash", Amount: decimal.NewFromInt(10),
	}
	l.ReceiveDataMessage(domain.BrokerageAccountBalancesDataMessage{
		Account: demoA1,
		Changes: []domain.BalanceChange{{Type: domain.ChangeAdd, Data: &cash}},
	})
	l.ReceiveDataMessage(synchronised())
	got := recordChanges(l.List)

	margin := cash
	margin.Type = "Margin"
	require.NotPanics(t, func() {
		l.ReceiveDataMessage(domain.BrokerageAccountBalancesDataMessage{
			Account: demoA1,
			Changes: []domain.BalanceChange{
				{Type: domain.ChangeClear},
				{Type: domain.ChangeAdd, Data: &margin},
			},
		})
	})

	assert.Equal(t, []string{"Clear", "Insert(0,1)"}, *got)
	require.Equal(t, 1, l.Count())
	assert.Equal(t, "Margin", l.At(0).Type())
	assert.True(t, l.Usable())
}

func TestAccountDataLists_OnDemand(t *testing.T) {
	mgr := newTestManager()
	accounts := usableAccounts(demoA1, demoA2)
	lists := NewAccountDataLists(accounts, mgr)
	var created []domain.AccountKey
	lists.SubscribeCreatedEvent(func(key domain.AccountKey) { created = append(created, key) })

	h, err := lists.Holdings(demoA1)
	require.NoError(t, err)
	again, err := lists.Holdings(demoA1)
	require.NoError(t, err)
	assert.Same(t, h, again)
	_, err = lists.Orders(demoA1)
	require.NoError(t, err)
	assert.Equal(t, 3, mgr.ActiveCount(), "holdings, orders and balances")
	assert.Equal(t, []domain.AccountKey{demoA1}, created)

	_, err = lists.Balances(domain.AccountKey{ID: "Nope"})
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	accounts.ReceiveDataMessage(accountsMessage(domain.AccountChange{Type: domain.ChangeRemove, Key: demoA1}))
	assert.Equal(t, 0, mgr.ActiveCount())
	assert.Empty(t, lists.Keys())
}

func TestAccountDataLists_ResubscribeAfterApplyError(t *testing.T) {
	mgr := newTestManager()
	accounts := usableAccounts(demoA1)
	lists := NewAccountDataLists(accounts, mgr)
	h, err := lists.Holdings(demoA1)
	require.NoError(t, err)
	binding := lists.entries[demoA1.MapKey()].holdingsBinding
	before := binding.Subscription()

	bhp := holdingData(demoA1, "BHP", 1)
	h.ReceiveDataMessage(holdingsMessage(demoA1, domain.HoldingChange{Type: domain.ChangeUpdate, Data: &bhp}))

	assert.Equal(t, publisher.StateUnsubscribed, before.State())
	assert.NotSame(t, before, binding.Subscription())
	assert.Equal(t, 3, mgr.ActiveCount())
	assert.False(t, h.loader.Failed())
	assert.Equal(t, correctness.BrokerageAccountDataListsWaiting, h.Badness().ReasonID)
}

func TestAccountDataLists_ReloadReattachesAccount(t *testing.T) {
	mgr := newTestManager()
	accounts := usableAccounts(demoA1)
	lists := NewAccountDataLists(accounts, mgr)
	h, err := lists.Holdings(demoA1)
	require.NoError(t, err)

	accounts.ReceiveDataMessage(domain.OfflinePublisherSubscriptionDataMessage{Reason: "Connection lost"})
	accounts.ReceiveDataMessage(accountsMessage(addAccount(demoA1, "A1", domain.TradingFeedOms)))
	accounts.ReceiveDataMessage(synchronised())

	account, _ := accounts.Get(demoA1)
	assert.Same(t, account, h.account)
	assert.Equal(t, 3, mgr.ActiveCount(), "a reload keeps the account's lists")
}

func TestGroupRecordList_AllAccounts(t *testing.T) {
	mgr := newTestManager()
	accounts := usableAccounts(demoA1, demoA2)
	lists := NewAccountDataLists(accounts, mgr)
	g := NewHoldingsGroupList(domain.AllAccountsGroup(), accounts, lists)
	got := recordChanges(g.List)

	assert.Equal(t, 2, g.MemberCount())
	assert.False(t, g.Usable())

	h1, _ := lists.Holdings(demoA1)
	h2, _ := lists.Holdings(demoA2)
	h1.ReceiveDataMessage(holdingsMessage(demoA1, addHolding(holdingData(demoA1, "BHP", 1))))
	h1.ReceiveDataMessage(synchronised())
	assert.False(t, g.Usable(), "A2 still loading")

	h2.ReceiveDataMessage(holdingsMessage(demoA2, addHolding(holdingData(demoA2, "BHP", 2))))
	h2.ReceiveDataMessage(synchronised())
	assert.True(t, g.Usable())
	assert.Equal(t, correctness.NotBad, g.Badness())
	assert.Equal(t, 2, g.Count())

	accounts.ReceiveDataMessage(accountsMessage(domain.AccountChange{Type: domain.ChangeRemove, Key: demoA2}))

	assert.Equal(t, []string{"PreUsableAdd(0,1)", "PreUsableAdd(1,1)", "Usable", "Remove(1,1)"}, *got)
	assert.Equal(t, 1, g.MemberCount())
	assert.Equal(t, demoA1, g.At(0).Key().Account)
}

func TestGroupRecordList_SingleAccount(t *testing.T) {
	mgr := newTestManager()
	accounts := usableAccounts(demoA1)
	lists := NewAccountDataLists(accounts, mgr)
	g := NewOrdersGroupList(domain.SingleAccountGroup(demoA2), accounts, lists)

	assert.Equal(t, 0, g.MemberCount())
	assert.Equal(t, correctness.BrokerageAccountNotAvailable, g.Badness().ReasonID)

	accounts.ReceiveDataMessage(accountsMessage(addAccount(demoA2, "A2", domain.TradingFeedOms)))
	assert.Equal(t, 1, g.MemberCount())
	assert.Equal(t, correctness.BrokerageAccountDataListsWaiting, g.Badness().ReasonID)

	o, _ := lists.Orders(demoA2)
	o.ReceiveDataMessage(synchronised())
	assert.True(t, g.Usable())
	_, err := lists.Orders(demoA1)
	require.NoError(t, err)
	assert.Equal(t, 1, g.MemberCount(), "other accounts are not members")
}

func TestGroupRecordList_ReplaceIsFatal(t *testing.T) {
	accounts := usableAccounts(demoA1)
	lists := NewAccountDataLists(accounts, newTestManager())
	g := NewBalancesGroupList(domain.AllAccountsGroup(), accounts, lists)
	require.Equal(t, 1, g.MemberCount())

	assert.Panics(t, func() {
		g.handleMemberChange(g.members[0], keyedlist.Change{Type: keyedlist.ChangeBeforeReplace, Index: 0, Count: 1})
	})
	assert.Panics(t, func() {
		g.handleAccountsListChange(keyedlist.Change{Type: keyedlist.ChangeAfterReplace, Index: 0, Count: 1})
	})
}
