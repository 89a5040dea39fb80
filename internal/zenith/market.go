package zenith

import "github.com/shopspring/decimal"

type TradingState struct {
	Name string `json:"Name"`
	// Allows is a comma separated flag list, e.g. "OrderPlace, OrderAmend".
	Allows string `json:"Allows"`
	Reason string `json:"Reason,omitempty"`
}

type MarketState struct {
	Code        string         `json:"Code"`
	Feed        string         `json:"Feed"`
	TradingDate *string        `json:"TradingDate,omitempty"`
	MarketTime  *string        `json:"MarketTime,omitempty"`
	Status      string         `json:"Status,omitempty"`
	States      []TradingState `json:"States,omitempty"`
}

type FeedState struct {
	Class  string `json:"Class"`
	Name   string `json:"Name"`
	Status string `json:"Status"`
}

type ServerInfo struct {
	Name            string `json:"Name"`
	Class           string `json:"Class"`
	SoftwareVersion string `json:"SoftwareVersion"`
	ProtocolVersion string `json:"ProtocolVersion"`
}

type Trade struct {
	ID               int64            `json:"ID"`
	Price            *decimal.Decimal `json:"Price,omitempty"`
	Quantity         *decimal.Decimal `json:"Quantity,omitempty"`
	Time             *string          `json:"Time,omitempty"`
	Flags            []string         `json:"Flags,omitempty"`
	Market           string           `json:"Market,omitempty"`
	BuyDepthOrderID  string           `json:"BuyDepthOrderID,omitempty"`
	SellDepthOrderID string           `json:"SellDepthOrderID,omitempty"`
}

type TradeChange struct {
	O     string `json:"O"`
	Trade *Trade `json:"Trade,omitempty"`
}

type DepthOrder struct {
	ID         string          `json:"ID"`
	Side       string          `json:"Side"`
	Price      decimal.Decimal `json:"Price"`
	Position   int             `json:"Position"`
	Broker     string          `json:"Broker,omitempty"`
	Quantity   decimal.Decimal `json:"Quantity"`
	Market     string          `json:"Market,omitempty"`
	Attributes []string        `json:"Attributes,omitempty"`
}

type DepthChange struct {
	O     string      `json:"O"`
	Order *DepthOrder `json:"Order,omitempty"`
	ID    string      `json:"ID,omitempty"`
}

type QueryChartHistoryRequest struct {
	Symbol   string  `json:"Symbol"`
	Interval string  `json:"Interval"`
	FromDate *string `json:"FromDate,omitempty"`
	ToDate   *string `json:"ToDate,omitempty"`
	Count    *int    `json:"Count,omitempty"`
}

type ChartRecord struct {
	Time   string           `json:"Time"`
	Open   *decimal.Decimal `json:"Open,omitempty"`
	High   *decimal.Decimal `json:"High,omitempty"`
	Low    *decimal.Decimal `json:"Low,omitempty"`
	Close  *decimal.Decimal `json:"Close,omitempty"`
	Volume *decimal.Decimal `json:"Volume,omitempty"`
	Trades *int64           `json:"Trades,omitempty"`
}
