// Package zenith defines the wire shapes of the Zenith publish/subscribe protocol.
// Everything here mirrors JSON on the socket; typed domain values live in
// internal/domain and the translation between them in internal/convert.
package zenith

import (
	"encoding/json"
	"strings"
)

// Controller groups related topics.
type Controller string

const (
	ControllerAuth      Controller = "Auth"
	ControllerMarket    Controller = "Market"
	ControllerTrading   Controller = "Trading"
	ControllerWatchlist Controller = "Watchlist"
	ControllerNotify    Controller = "Notify"
	ControllerZenith    Controller = "Zenith"
)

// Action is the verb of a message.
type Action string

const (
	ActionSub     Action = "Sub"
	ActionUnsub   Action = "Unsub"
	ActionPublish Action = "Publish"
	ActionError   Action = "Error"
	ActionCancel  Action = "Cancel"
)

// Topic names. Parameterised topics append TopicArgumentsAnnouncer and an argument.
const (
	TopicAccounts          = "Accounts"
	TopicHoldings          = "Holdings"
	TopicOrders            = "Orders"
	TopicBalances          = "Balances"
	TopicQueryTransactions = "QueryTransactions"
	TopicPlaceOrder        = "PlaceOrder"
	TopicAmendOrder        = "AmendOrder"
	TopicCancelOrder       = "CancelOrder"
	TopicMoveOrder         = "MoveOrder"

	TopicMarkets           = "Markets"
	TopicDepth             = "Depth"
	TopicTrades            = "Trades"
	TopicQueryChartHistory = "QueryChartHistory"

	TopicFeeds      = "Feeds"
	TopicServerInfo = "ServerInfo"

	TopicQueryWatchlists = "QueryWatchlists"
	TopicWatchlist       = "Watchlist"
	TopicAddToWatchlist  = "AddToWatchlist"

	TopicQueryChannels = "QueryChannels"
)

// TopicArgumentsAnnouncer separates a topic name from its argument.
const TopicArgumentsAnnouncer = "!"

// MakeTopic joins a topic name and argument.
func MakeTopic(name, argument string) string {
	if argument == "" {
		return name
	}
	return name + TopicArgumentsAnnouncer + argument
}

// SplitTopic separates a topic into name and argument.
func SplitTopic(topic string) (name, argument string) {
	name, argument, _ = strings.Cut(topic, TopicArgumentsAnnouncer)
	return name, argument
}

// Message is the top level frame of every message in either direction.
type Message struct {
	Controller    Controller      `json:"Controller"`
	Topic         string          `json:"Topic"`
	Action        Action          `json:"Action"`
	TransactionID uint64          `json:"TransactionID,omitempty"`
	Data          json.RawMessage `json:"Data,omitempty"`
}

// HasData reports whether the message carries a non-null payload.
func (m Message) HasData() bool {
	trimmed := strings.TrimSpace(string(m.Data))
	return trimmed != "" && trimmed != "null"
}
