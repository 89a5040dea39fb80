package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeFlagID qualifies a trade.
type TradeFlagID string

const (
	TradeFlagOffMarket   TradeFlagID = "OffMarket"
	TradeFlagCancel      TradeFlagID = "Cancel"
	TradeFlagPlaceholder TradeFlagID = "Placeholder"
)

// AllTradeFlagIDs lists every trade flag.
var AllTradeFlagIDs = []TradeFlagID{TradeFlagOffMarket, TradeFlagCancel, TradeFlagPlaceholder}

// TradeData is one trade on a symbol.
type TradeData struct {
	ID               int64
	Price            *decimal.Decimal
	Quantity         *decimal.Decimal
	Time             *time.Time
	Flags            []TradeFlagID
	Market           MarketID
	BuyDepthOrderID  string
	SellDepthOrderID string
}

// TradeChange is one element of a trades change batch.
type TradeChange struct {
	Type ChangeTypeID
	Data *TradeData
}

// DepthOrder is one order in a full depth book.
type DepthOrder struct {
	ID         string
	Side       OrderSideID
	Price      decimal.Decimal
	Position   int
	Broker     string
	Quantity   decimal.Decimal
	Market     MarketID
	Attributes []string
}

// DepthChange is one element of a depth change batch.
type DepthChange struct {
	Type ChangeTypeID
	// Order is set for Add and Update.
	Order *DepthOrder
	// OrderID is set for Remove.
	OrderID string
}

// ChartIntervalID is the bar width of a chart history query.
type ChartIntervalID string

const (
	ChartIntervalOneMinute      ChartIntervalID = "1m"
	ChartIntervalFiveMinutes    ChartIntervalID = "5m"
	ChartIntervalFifteenMinutes ChartIntervalID = "15m"
	ChartIntervalThirtyMinutes  ChartIntervalID = "30m"
	ChartIntervalOneDay         ChartIntervalID = "1d"
)

// ChartRecord is one bar of chart history.
type ChartRecord struct {
	Time   time.Time
	Open   *decimal.Decimal
	High   *decimal.Decimal
	Low    *decimal.Decimal
	Close  *decimal.Decimal
	Volume *decimal.Decimal
	Trades *int64
}

// WatchlistData describes one watchlist.
type WatchlistData struct {
	ID          string
	Name        string
	Description string
	Category    string
	IsWritable  bool
}

// WatchlistUpdate carries header changes to a watchlist.
type WatchlistUpdate struct {
	Name        Patch[string]
	Description Patch[string]
	Category    Patch[string]
}

// WatchlistMemberChange is one element of a watchlist member change batch.
type WatchlistMemberChange struct {
	Type ChangeTypeID
	// Members is set for Add and Remove.
	Members []LitIvemID
	// Index is the insert position for Add, -1 to append.
	Index int
}

// ChannelDistributionID is the delivery method of a notification channel.
type ChannelDistributionID string

const (
	ChannelDistributionEmail      ChannelDistributionID = "Email"
	ChannelDistributionSms        ChannelDistributionID = "Sms"
	ChannelDistributionWebPush    ChannelDistributionID = "WebPush"
	ChannelDistributionApplePush  ChannelDistributionID = "ApplePush"
	ChannelDistributionGooglePush ChannelDistributionID = "GooglePush"
)

// AllChannelDistributionIDs lists every distribution method.
var AllChannelDistributionIDs = []ChannelDistributionID{
	ChannelDistributionEmail, ChannelDistributionSms, ChannelDistributionWebPush,
	ChannelDistributionApplePush, ChannelDistributionGooglePush,
}

// NotificationChannel is a destination for alert notifications.
type NotificationChannel struct {
	ID           string
	Name         string
	Description  string
	Enabled      bool
	Distribution ChannelDistributionID
}
