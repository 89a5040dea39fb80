package domain

import "time"

// LitIvemID identifies a tradable symbol listed on one market.
type LitIvemID struct {
	Code        string
	Market      MarketID
	Environment DataEnvironmentID
}

// MapKey is the lookup key for the symbol.
func (l LitIvemID) MapKey() string {
	key := l.Code + "." + string(l.Market)
	if l.Environment != DataEnvironmentProduction && l.Environment != "" {
		key += "[" + string(l.Environment) + "]"
	}
	return key
}

func (l LitIvemID) String() string {
	return l.MapKey()
}

// TradingStateAllowIDs is a set of actions a market trading state permits.
type TradingStateAllowIDs uint8

const (
	AllowOrderPlace TradingStateAllowIDs = 1 << iota
	AllowOrderAmend
	AllowOrderCancel
	AllowOrderMove
	AllowMatch
	AllowReportCancel
)

// AllTradingStateAllowIDs lists every individual allow flag.
var AllTradingStateAllowIDs = []TradingStateAllowIDs{
	AllowOrderPlace, AllowOrderAmend, AllowOrderCancel, AllowOrderMove, AllowMatch, AllowReportCancel,
}

// Has reports whether every flag in f is set.
func (a TradingStateAllowIDs) Has(f TradingStateAllowIDs) bool {
	return a&f == f
}

// TradingState is one named state a market can be in.
type TradingState struct {
	Name   string
	Allows TradingStateAllowIDs
	Reason string
}

// MarketInfo is the server view of one market.
type MarketInfo struct {
	Market        MarketID
	Environment   DataEnvironmentID
	FeedStatus    FeedStatusID
	TradingDate   *time.Time
	MarketTime    *time.Time
	Status        string
	TradingStates []TradingState
}

// MapKey is the lookup key for the market.
func (m MarketInfo) MapKey() string {
	key := string(m.Market)
	if m.Environment != DataEnvironmentProduction && m.Environment != "" {
		key += "[" + string(m.Environment) + "]"
	}
	return key
}

// FeedData is the server view of one feed.
type FeedData struct {
	Class  FeedClassID
	Name   string
	Status FeedStatusID
}

// MapKey is the lookup key for the feed.
func (f FeedData) MapKey() string {
	return string(f.Class) + ":" + f.Name
}

// ServerInfo describes the connected server.
type ServerInfo struct {
	Name            string
	Class           string
	SoftwareVersion string
	ProtocolVersion string
}
