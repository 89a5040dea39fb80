package convert

import (
	"fmt"
	"strings"
	"time"

	"zenith-sync/internal/domain"
)

// enumTable maps a domain enumeration to and from its wire text.
// Construction panics if the mapping is not one to one.
type enumTable[D comparable] struct {
	name     string
	code     domain.ErrorCode
	toWire   map[D]string
	fromWire map[string]D
}

func newEnumTable[D comparable](name string, code domain.ErrorCode, toWire map[D]string) *enumTable[D] {
	return &enumTable[D]{
		name:     name,
		code:     code,
		toWire:   toWire,
		fromWire: invert(toWire),
	}
}

func (t *enumTable[D]) decode(s string) (D, error) {
	v, ok := t.fromWire[s]
	if !ok {
		var zero D
		return zero, domain.NewDataError(t.code, fmt.Sprintf("%s %q", t.name, s))
	}
	return v, nil
}

func (t *enumTable[D]) encode(v D) string {
	s, ok := t.toWire[v]
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledEnum, fmt.Sprintf("%s %v", t.name, v))
	}
	return s
}

var exchangeTable = newEnumTable("exchange", domain.CodeUnknownExchange, map[domain.ExchangeID]string{
	domain.ExchangeAsx:       "ASX",
	domain.ExchangeCxa:       "CXA",
	domain.ExchangeNsx:       "NSX",
	domain.ExchangeNzx:       "NZX",
	domain.ExchangeMyx:       "MYX",
	domain.ExchangeCalastone: "Calastone",
	domain.ExchangePtx:       "PTX",
	domain.ExchangeFnsx:      "FNSX",
})

var marketTable = newEnumTable("market", domain.CodeUnknownMarket, map[domain.MarketID]string{
	domain.MarketAsxTradeMatch:            "ASX:TM",
	domain.MarketAsxTradeMatchCentrePoint: "ASX:TM:CP",
	domain.MarketAsxBookBuild:             "ASX:BB",
	domain.MarketAsxPureMatch:             "ASX:PM",
	domain.MarketAsxVolumeMatch:           "ASX:VM",
	domain.MarketChixAustLimit:            "CXA:LI",
	domain.MarketChixAustFarPoint:         "CXA:FP",
	domain.MarketChixAustMarketOnClose:    "CXA:MC",
	domain.MarketChixAustNearPoint:        "CXA:NP",
	domain.MarketChixAustMidPoint:         "CXA:MP",
	domain.MarketNsx:                      "NSX",
	domain.MarketNzx:                      "NZX",
	domain.MarketMyxNormal:                "MYX:NORMAL",
	domain.MarketMyxDirectBusiness:        "MYX:DBT",
	domain.MarketMyxIndex:                 "MYX:INDEX",
	domain.MarketMyxOddLot:                "MYX:ODD",
	domain.MarketMyxBuyIn:                 "MYX:BUYIN",
	domain.MarketCalastone:                "Calastone",
	domain.MarketPtxMain:                  "PTX",
	domain.MarketFnsxMain:                 "FNSX",
})

var currencyTable = newEnumTable("currency", domain.CodeUnknownCurrency, map[domain.CurrencyID]string{
	domain.CurrencyAud: "AUD",
	domain.CurrencyUsd: "USD",
	domain.CurrencyMyr: "MYR",
	domain.CurrencyNzd: "NZD",
	domain.CurrencyGbp: "GBP",
})

var feedClassTable = newEnumTable("feed class", domain.CodeUnknownFeedClass, map[domain.FeedClassID]string{
	domain.FeedClassAuthority: "Authority",
	domain.FeedClassMarket:    "Market",
	domain.FeedClassNews:      "News",
	domain.FeedClassTrading:   "Trading",
	domain.FeedClassWatchlist: "Watchlist",
	domain.FeedClassChannel:   "Channel",
})

var feedStatusTable = newEnumTable("feed status", domain.CodeUnknownFeedStatus, map[domain.FeedStatusID]string{
	domain.FeedStatusInitialising: "Initialising",
	domain.FeedStatusActive:       "Active",
	domain.FeedStatusClosed:       "Closed",
	domain.FeedStatusInactive:     "Inactive",
	domain.FeedStatusImpaired:     "Impaired",
	domain.FeedStatusExpired:      "Expired",
})

var orderSideTable = newEnumTable("order side", domain.CodeUnknownOrderSide, map[domain.OrderSideID]string{
	domain.OrderSideBid: "Bid",
	domain.OrderSideAsk: "Ask",
})

var orderTypeTable = newEnumTable("order type", domain.CodeUnknownOrderType, map[domain.OrderTypeID]string{
	domain.OrderTypeMarket:        "Market",
	domain.OrderTypeMarketToLimit: "MarketToLimit",
	domain.OrderTypeLimit:         "Limit",
	domain.OrderTypeMarketAtBest:  "Best",
})

var timeInForceTable = newEnumTable("validity", domain.CodeUnknownTimeInForce, map[domain.TimeInForceID]string{
	domain.TimeInForceDay:               "Day",
	domain.TimeInForceGoodTillCancel:    "GTC",
	domain.TimeInForceAtTheOpening:      "OPG",
	domain.TimeInForceImmediateOrCancel: "IOC",
	domain.TimeInForceFillOrKill:        "FOK",
	domain.TimeInForceGoodTillCrossing:  "GTX",
	domain.TimeInForceGoodTillDate:      "GTD",
	domain.TimeInForceAtTheClose:        "CLS",
})

var holdingStyleTable = newEnumTable("holding style", domain.CodeUnknownHoldingStyle, map[domain.HoldingStyleID]string{
	domain.HoldingStyleEquity:      "Equity",
	domain.HoldingStyleOption:      "Option",
	domain.HoldingStyleManagedFund: "ManagedFund",
})

var tradingFeedTable = newEnumTable("trading feed", domain.CodeUnknownTradingFeed, map[domain.TradingFeedID]string{
	domain.TradingFeedOms:      "Oms",
	domain.TradingFeedMotif:    "Motif",
	domain.TradingFeedMalacca:  "Malacca",
	domain.TradingFeedFinplex:  "Finplex",
	domain.TradingFeedCFMarket: "CFMarket",
})

var triggerTypeTable = newEnumTable("trigger type", domain.CodeUnknownTriggerType, map[domain.OrderTriggerTypeID]string{
	domain.OrderTriggerImmediate: "Immediate",
	domain.OrderTriggerPrice:     "Price",
	domain.OrderTriggerTrailing:  "TrailingPrice",
	domain.OrderTriggerPercent:   "PercentageTrailingPrice",
	domain.OrderTriggerOvernight: "Overnight",
})

var routeAlgorithmTable = newEnumTable("route algorithm", domain.CodeUnknownRouteAlgorithm, map[domain.OrderRouteAlgorithmID]string{
	domain.OrderRouteMarket:     "Market",
	domain.OrderRouteBestMarket: "BestMarket",
	domain.OrderRouteFix:        "Fix",
})

var orderRequestResultTable = newEnumTable("order request result", domain.CodeUnknownOrderRequestResult, map[domain.OrderRequestResultID]string{
	domain.OrderRequestSuccess:    "Success",
	domain.OrderRequestIncomplete: "Incomplete",
	domain.OrderRequestInvalid:    "Invalid",
	domain.OrderRequestRejected:   "Rejected",
})

var tradeFlagTable = newEnumTable("trade flag", domain.CodeUnknownTradeFlag, map[domain.TradeFlagID]string{
	domain.TradeFlagOffMarket:   "OffMarket",
	domain.TradeFlagCancel:      "Cancel",
	domain.TradeFlagPlaceholder: "Placeholder",
})

var tradingStateAllowTable = newEnumTable("trading state allow", domain.CodeUnknownTradingStateAllow, map[domain.TradingStateAllowIDs]string{
	domain.AllowOrderPlace:   "OrderPlace",
	domain.AllowOrderAmend:   "OrderAmend",
	domain.AllowOrderCancel:  "OrderCancel",
	domain.AllowOrderMove:    "OrderMove",
	domain.AllowMatch:        "Match",
	domain.AllowReportCancel: "ReportCancel",
})

var channelDistributionTable = newEnumTable("channel distribution", domain.CodeUnknownChannelDistribution, map[domain.ChannelDistributionID]string{
	domain.ChannelDistributionEmail:      "Email",
	domain.ChannelDistributionSms:        "Sms",
	domain.ChannelDistributionWebPush:    "WebPush",
	domain.ChannelDistributionApplePush:  "ApplePush",
	domain.ChannelDistributionGooglePush: "GooglePush",
})

var orderRequestFlagTable = newEnumTable("order request flag", domain.CodeUnhandledEnum, map[domain.OrderRequestFlagID]string{
	domain.OrderRequestFlagPreview: "Preview",
})

var chartIntervalTable = newEnumTable("chart interval", domain.CodeUnhandledEnum, map[domain.ChartIntervalID]string{
	domain.ChartIntervalOneMinute:      "1m",
	domain.ChartIntervalFiveMinutes:    "5m",
	domain.ChartIntervalFifteenMinutes: "15m",
	domain.ChartIntervalThirtyMinutes:  "30m",
	domain.ChartIntervalOneDay:         "1d",
})

var changeTypeTable = newEnumTable("change type", domain.CodeUnknownChangeType, map[domain.ChangeTypeID]string{
	domain.ChangeAdd:    "Add",
	domain.ChangeUpdate: "Update",
	domain.ChangeRemove: "Remove",
	domain.ChangeClear:  "Clear",
})

var abbreviatedChangeTypeTable = newEnumTable("abbreviated change type", domain.CodeUnknownChangeType, map[domain.ChangeTypeID]string{
	domain.ChangeAdd:    "A",
	domain.ChangeUpdate: "U",
	domain.ChangeRemove: "R",
	domain.ChangeClear:  "C",
})

var depthChangeTypeTable = newEnumTable("depth change type", domain.CodeUnknownDepthChangeType, changeTypeTable.toWire)

// Exported enumeration mappings used outside the codec.

// DecodeCurrency maps wire currency text.
func DecodeCurrency(s string) (domain.CurrencyID, error) { return currencyTable.decode(s) }

// EncodeCurrency maps a currency to wire text.
func EncodeCurrency(c domain.CurrencyID) string { return currencyTable.encode(c) }

// DecodeTradingStateAllows parses a comma separated flag list. Unknown flags
// are reported through warn and skipped, since servers add flags over time.
func DecodeTradingStateAllows(s string, warn Warner) domain.TradingStateAllowIDs {
	var allows domain.TradingStateAllowIDs
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		flag, err := tradingStateAllowTable.decode(part)
		if err != nil {
			warn.Warn(domain.CodeUnknownTradingStateAllow, part)
			continue
		}
		allows |= flag
	}
	return allows
}

// EncodeTradingStateAllows writes flags in declaration order.
func EncodeTradingStateAllows(allows domain.TradingStateAllowIDs) string {
	var parts []string
	for _, flag := range domain.AllTradingStateAllowIDs {
		if allows.Has(flag) {
			parts = append(parts, tradingStateAllowTable.encode(flag))
		}
	}
	return strings.Join(parts, ", ")
}

// Wire date times carry millisecond precision and a zone offset.
const dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DecodeDateTime parses a wire timestamp.
func DecodeDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, domain.NewDataError(domain.CodeInvalidDateTime, fmt.Sprintf("%q", s))
	}
	return t, nil
}

// EncodeDateTime formats a wire timestamp.
func EncodeDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

func decodeOptionalDateTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := DecodeDateTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeOptionalDateTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := EncodeDateTime(*t)
	return &s
}
