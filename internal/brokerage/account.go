// Package brokerage keeps the live brokerage accounts and the holdings, orders
// and balances of each account.
package brokerage

import (
	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/feed"
	"zenith-sync/internal/multievent"
)

// AccountFieldID identifies a mutable account field.
type AccountFieldID int

const (
	AccountFieldName AccountFieldID = iota
	AccountFieldCurrency
	AccountFieldTradingFeed
	AccountFieldBrokerCode
	AccountFieldBranchCode
	AccountFieldAdvisorCode
)

// FeedLookup finds the feed an account trades through.
type FeedLookup interface {
	Get(class domain.FeedClassID, name string) (*feed.Feed, bool)
}

// Account is one brokerage account.
type Account struct {
	entity.Base[AccountFieldID]

	key         domain.AccountKey
	name        string
	currency    domain.CurrencyID
	tradingFeed domain.TradingFeedID
	brokerCode  string
	branchCode  string
	advisorCode string

	listCorrectness correctness.ID
	feeds           FeedLookup
	feed            *feed.Feed
	feedSub         multievent.SubscriptionID
}

// NewAccount creates an account from an add payload. feeds may be nil, in
// which case the trading feed does not affect correctness.
func NewAccount(data domain.AccountData, listCorrectness correctness.ID, feeds FeedLookup) *Account {
	a := &Account{
		key:             data.Key(),
		tradingFeed:     data.TradingFeed,
		listCorrectness: listCorrectness,
		feeds:           feeds,
	}
	a.name, _ = data.Name.Apply("")
	a.currency, _ = data.Currency.Apply("")
	a.brokerCode, _ = data.BrokerCode.Apply("")
	a.branchCode, _ = data.BranchCode.Apply("")
	a.advisorCode, _ = data.AdvisorCode.Apply("")
	a.attachFeed()
	a.InitCorrectness(a.calculateCorrectness())
	return a
}

// MapKey returns the key's map key.
func (a *Account) MapKey() string { return a.key.MapKey() }

func (a *Account) Key() domain.AccountKey                   { return a.key }
func (a *Account) ID() string                               { return a.key.ID }
func (a *Account) Environment() domain.TradingEnvironmentID { return a.key.Environment }
func (a *Account) Name() string                             { return a.name }
func (a *Account) Currency() domain.CurrencyID              { return a.currency }
func (a *Account) TradingFeed() domain.TradingFeedID        { return a.tradingFeed }
func (a *Account) BrokerCode() string                       { return a.brokerCode }
func (a *Account) BranchCode() string                       { return a.branchCode }
func (a *Account) AdvisorCode() string                      { return a.advisorCode }

// Feed returns the trading feed, if it is known.
func (a *Account) Feed() (*feed.Feed, bool) { return a.feed, a.feed != nil }

// Update applies an update payload for the same account.
func (a *Account) Update(data domain.AccountData) error {
	if data.Key() != a.key {
		return domain.NewDataError(domain.CodeAccountKeyChanged, data.Key().MapKey()+" applied to "+a.MapKey())
	}
	var changes entity.Changes[AccountFieldID]
	entity.SetPatch(&changes, AccountFieldName, &a.name, data.Name)
	entity.SetPatch(&changes, AccountFieldCurrency, &a.currency, data.Currency)
	feedChanged := false
	if data.TradingFeed != "" && data.TradingFeed != a.tradingFeed {
		entity.SetValue(&changes, AccountFieldTradingFeed, &a.tradingFeed, data.TradingFeed)
		feedChanged = true
	}
	entity.SetPatch(&changes, AccountFieldBrokerCode, &a.brokerCode, data.BrokerCode)
	entity.SetPatch(&changes, AccountFieldBranchCode, &a.branchCode, data.BranchCode)
	entity.SetPatch(&changes, AccountFieldAdvisorCode, &a.advisorCode, data.AdvisorCode)
	if feedChanged {
		a.detachFeed()
		a.attachFeed()
	}
	a.Notify(&changes)
	a.SetCorrectness(a.calculateCorrectness())
	return nil
}

func (a *Account) setListCorrectness(c correctness.ID) {
	a.listCorrectness = c
	a.SetCorrectness(a.calculateCorrectness())
}

// resolveFeed attaches the trading feed once it appears in the feeds list.
func (a *Account) resolveFeed() {
	if a.feeds == nil || a.feed != nil {
		return
	}
	a.attachFeed()
	a.SetCorrectness(a.calculateCorrectness())
}

// dropFeed detaches f if the account trades through it.
func (a *Account) dropFeed(f *feed.Feed) {
	if f == nil || a.feed != f {
		return
	}
	a.detachFeed()
	a.SetCorrectness(a.calculateCorrectness())
}

func (a *Account) attachFeed() {
	if a.feeds == nil {
		return
	}
	f, ok := a.feeds.Get(domain.FeedClassTrading, string(a.tradingFeed))
	if !ok {
		return
	}
	a.feed = f
	a.feedSub = f.SubscribeCorrectnessChangedEvent(a.handleFeedCorrectnessChange)
}

func (a *Account) detachFeed() {
	if a.feed == nil {
		return
	}
	a.feed.UnsubscribeCorrectnessChangedEvent(a.feedSub)
	a.feed = nil
	a.feedSub = 0
}

func (a *Account) handleFeedCorrectnessChange() {
	a.SetCorrectness(a.calculateCorrectness())
}

func (a *Account) dispose() {
	a.detachFeed()
}

func (a *Account) calculateCorrectness() correctness.ID {
	switch {
	case a.feeds == nil:
		return a.listCorrectness
	case a.feed == nil:
		return correctness.Error
	default:
		return correctness.Merge(a.listCorrectness, a.feed.Correctness())
	}
}
