package domain

// DataMessage is a typed payload delivered to a subscription.
// The set of implementations is closed.
type DataMessage interface {
	isDataMessage()
}

// BrokerageAccountsDataMessage carries account change records in wire order.
type BrokerageAccountsDataMessage struct {
	Changes []AccountChange
}

// BrokerageAccountHoldingsDataMessage carries holding change records for one account.
type BrokerageAccountHoldingsDataMessage struct {
	Account AccountKey
	Changes []HoldingChange
}

// BrokerageAccountOrdersDataMessage carries order change records for one account.
type BrokerageAccountOrdersDataMessage struct {
	Account AccountKey
	Changes []OrderChange
}

// BrokerageAccountBalancesDataMessage carries balance change records for one account.
type BrokerageAccountBalancesDataMessage struct {
	Account AccountKey
	Changes []BalanceChange
}

type TransactionsDataMessage struct {
	Account AccountKey
	Changes []TransactionChange
}

type MarketsDataMessage struct {
	Markets []MarketInfo
}

type FeedsDataMessage struct {
	Feeds []FeedData
}

type DepthDataMessage struct {
	LitIvem LitIvemID
	Changes []DepthChange
}

type TradesDataMessage struct {
	LitIvem LitIvemID
	Changes []TradeChange
}

type ServerInfoDataMessage struct {
	Info ServerInfo
}

type ChartHistoryDataMessage struct {
	LitIvem LitIvemID
	Records []ChartRecord
}

type WatchlistsDataMessage struct {
	Watchlists []WatchlistData
}

// WatchlistDataMessage carries header and member changes for one watchlist.
type WatchlistDataMessage struct {
	WatchlistID string
	Update      *WatchlistUpdate
	Changes     []WatchlistMemberChange
}

type NotificationChannelsDataMessage struct {
	Channels []NotificationChannel
}

// OrderResponseDataMessage is the reply to an order request.
type OrderResponseDataMessage struct {
	Response OrderRequestResponse
}

// SynchronisedPublisherSubscriptionDataMessage tells a subscriber that the
// initial image has been delivered and subsequent messages are live.
type SynchronisedPublisherSubscriptionDataMessage struct{}

// ErrorPublisherSubscriptionDataMessage reports a failed request or subscription.
type ErrorPublisherSubscriptionDataMessage struct {
	ErrorText        string
	AllowedRetryType AllowedRetryTypeID
}

// OfflinePublisherSubscriptionDataMessage tells a subscriber its subscription
// lost the connection and will be re-issued when it returns.
type OfflinePublisherSubscriptionDataMessage struct {
	Reason string
}

func (BrokerageAccountsDataMessage) isDataMessage()                 {}
func (BrokerageAccountHoldingsDataMessage) isDataMessage()          {}
func (BrokerageAccountOrdersDataMessage) isDataMessage()            {}
func (BrokerageAccountBalancesDataMessage) isDataMessage()          {}
func (TransactionsDataMessage) isDataMessage()                      {}
func (MarketsDataMessage) isDataMessage()                           {}
func (FeedsDataMessage) isDataMessage()                             {}
func (DepthDataMessage) isDataMessage()                             {}
func (TradesDataMessage) isDataMessage()                            {}
func (ServerInfoDataMessage) isDataMessage()                        {}
func (ChartHistoryDataMessage) isDataMessage()                      {}
func (WatchlistsDataMessage) isDataMessage()                        {}
func (WatchlistDataMessage) isDataMessage()                         {}
func (NotificationChannelsDataMessage) isDataMessage()              {}
func (OrderResponseDataMessage) isDataMessage()                     {}
func (SynchronisedPublisherSubscriptionDataMessage) isDataMessage() {}
func (ErrorPublisherSubscriptionDataMessage) isDataMessage()        {}
func (OfflinePublisherSubscriptionDataMessage) isDataMessage()      {}
