package domain

import "time"

// DataDefinition describes what a subscription asks the server for.
// The set of implementations is closed; switches over it panic on an unknown kind.
type DataDefinition interface {
	// Description is short text used in logs and Badness extra text.
	Description() string
	// Publish reports whether the definition is a one-shot request rather than a stream.
	Publish() bool
	isDataDefinition()
}

type publishDefinition struct{}

func (publishDefinition) Publish() bool { return true }

type subscribeDefinition struct{}

func (subscribeDefinition) Publish() bool { return false }

type BrokerageAccountsDefinition struct{ subscribeDefinition }

type BrokerageAccountHoldingsDefinition struct {
	subscribeDefinition
	Account AccountKey
}

type BrokerageAccountOrdersDefinition struct {
	subscribeDefinition
	Account AccountKey
}

type BrokerageAccountBalancesDefinition struct {
	subscribeDefinition
	Account AccountKey
}

type QueryTransactionsDefinition struct {
	publishDefinition
	Account  AccountKey
	FromDate *time.Time
	ToDate   *time.Time
	Count    *int
}

type MarketsDefinition struct{ subscribeDefinition }

type FeedsDefinition struct{ subscribeDefinition }

type DepthDefinition struct {
	subscribeDefinition
	LitIvem LitIvemID
}

type TradesDefinition struct {
	subscribeDefinition
	LitIvem LitIvemID
}

type ServerInfoDefinition struct{ subscribeDefinition }

type QueryChartHistoryDefinition struct {
	publishDefinition
	LitIvem  LitIvemID
	Interval ChartIntervalID
	FromDate *time.Time
	ToDate   *time.Time
	Count    *int
}

type QueryWatchlistsDefinition struct{ publishDefinition }

type WatchlistDefinition struct {
	subscribeDefinition
	WatchlistID string
}

type AddToWatchlistDefinition struct {
	publishDefinition
	WatchlistID string
	Members     []LitIvemID
}

type NotificationChannelsDefinition struct{ publishDefinition }

type PlaceOrderRequestDefinition struct {
	publishDefinition
	Request PlaceOrderRequest
}

type AmendOrderRequestDefinition struct {
	publishDefinition
	Request AmendOrderRequest
}

type CancelOrderRequestDefinition struct {
	publishDefinition
	Request CancelOrderRequest
}

type MoveOrderRequestDefinition struct {
	publishDefinition
	Request MoveOrderRequest
}

func (BrokerageAccountsDefinition) Description() string {
	return "BrokerageAccounts"
}

func (d BrokerageAccountHoldingsDefinition) Description() string {
	return "Holdings " + d.Account.MapKey()
}

func (d BrokerageAccountOrdersDefinition) Description() string {
	return "Orders " + d.Account.MapKey()
}

func (d BrokerageAccountBalancesDefinition) Description() string {
	return "Balances " + d.Account.MapKey()
}

func (d QueryTransactionsDefinition) Description() string {
	return "Transactions " + d.Account.MapKey()
}

func (MarketsDefinition) Description() string {
	return "Markets"
}

func (FeedsDefinition) Description() string {
	return "Feeds"
}

func (d DepthDefinition) Description() string {
	return "Depth " + d.LitIvem.MapKey()
}

func (d TradesDefinition) Description() string {
	return "Trades " + d.LitIvem.MapKey()
}

func (ServerInfoDefinition) Description() string {
	return "ServerInfo"
}

func (d QueryChartHistoryDefinition) Description() string {
	return "ChartHistory " + d.LitIvem.MapKey() + " " + string(d.Interval)
}

func (QueryWatchlistsDefinition) Description() string {
	return "Watchlists"
}

func (d WatchlistDefinition) Description() string {
	return "Watchlist " + d.WatchlistID
}

func (d AddToWatchlistDefinition) Description() string {
	return "AddToWatchlist " + d.WatchlistID
}

func (NotificationChannelsDefinition) Description() string {
	return "NotificationChannels"
}

func (d PlaceOrderRequestDefinition) Description() string {
	return "PlaceOrder " + d.Request.Account.MapKey()
}

func (d AmendOrderRequestDefinition) Description() string {
	return "AmendOrder " + d.Request.OrderID
}

func (d CancelOrderRequestDefinition) Description() string {
	return "CancelOrder " + d.Request.OrderID
}

func (d MoveOrderRequestDefinition) Description() string {
	return "MoveOrder " + d.Request.OrderID
}

func (BrokerageAccountsDefinition) isDataDefinition()        {}
func (BrokerageAccountHoldingsDefinition) isDataDefinition() {}
func (BrokerageAccountOrdersDefinition) isDataDefinition()   {}
func (BrokerageAccountBalancesDefinition) isDataDefinition() {}
func (QueryTransactionsDefinition) isDataDefinition()        {}
func (MarketsDefinition) isDataDefinition()                  {}
func (FeedsDefinition) isDataDefinition()                    {}
func (DepthDefinition) isDataDefinition()                    {}
func (TradesDefinition) isDataDefinition()                   {}
func (ServerInfoDefinition) isDataDefinition()               {}
func (QueryChartHistoryDefinition) isDataDefinition()        {}
func (QueryWatchlistsDefinition) isDataDefinition()          {}
func (WatchlistDefinition) isDataDefinition()                {}
func (AddToWatchlistDefinition) isDataDefinition()           {}
func (NotificationChannelsDefinition) isDataDefinition()     {}
func (PlaceOrderRequestDefinition) isDataDefinition()        {}
func (AmendOrderRequestDefinition) isDataDefinition()        {}
func (CancelOrderRequestDefinition) isDataDefinition()       {}
func (MoveOrderRequestDefinition) isDataDefinition()         {}

// IsOrderRequest reports whether def places, amends, cancels or moves an order.
// Order requests are never retried automatically.
func IsOrderRequest(def DataDefinition) bool {
	switch def.(type) {
	case PlaceOrderRequestDefinition, AmendOrderRequestDefinition,
		CancelOrderRequestDefinition, MoveOrderRequestDefinition:
		return true
	default:
		return false
	}
}
