package domain

// DataEnvironmentID qualifies exchanges, markets and symbols.
type DataEnvironmentID string

const (
	DataEnvironmentProduction        DataEnvironmentID = "Production"
	DataEnvironmentDelayedProduction DataEnvironmentID = "DelayedProduction"
	DataEnvironmentDemo              DataEnvironmentID = "Demo"
	DataEnvironmentSample            DataEnvironmentID = "Sample"
)

// AllDataEnvironmentIDs lists every data environment.
var AllDataEnvironmentIDs = []DataEnvironmentID{
	DataEnvironmentProduction,
	DataEnvironmentDelayedProduction,
	DataEnvironmentDemo,
	DataEnvironmentSample,
}

// TradingEnvironmentID qualifies brokerage accounts and orders.
type TradingEnvironmentID string

const (
	TradingEnvironmentProduction TradingEnvironmentID = "Production"
	TradingEnvironmentDemo       TradingEnvironmentID = "Demo"
)

// AllTradingEnvironmentIDs lists every trading environment.
var AllTradingEnvironmentIDs = []TradingEnvironmentID{
	TradingEnvironmentProduction,
	TradingEnvironmentDemo,
}

// ExchangeID identifies an exchange.
type ExchangeID string

const (
	ExchangeAsx       ExchangeID = "Asx"
	ExchangeCxa       ExchangeID = "Cxa"
	ExchangeNsx       ExchangeID = "Nsx"
	ExchangeNzx       ExchangeID = "Nzx"
	ExchangeMyx       ExchangeID = "Myx"
	ExchangeCalastone ExchangeID = "Calastone"
	ExchangePtx       ExchangeID = "Ptx"
	ExchangeFnsx      ExchangeID = "Fnsx"
)

// AllExchangeIDs lists every exchange.
var AllExchangeIDs = []ExchangeID{
	ExchangeAsx, ExchangeCxa, ExchangeNsx, ExchangeNzx,
	ExchangeMyx, ExchangeCalastone, ExchangePtx, ExchangeFnsx,
}

// MarketID identifies a market (a trading venue within an exchange).
type MarketID string

const (
	MarketAsxTradeMatch            MarketID = "AsxTradeMatch"
	MarketAsxTradeMatchCentrePoint MarketID = "AsxTradeMatchCentrePoint"
	MarketAsxBookBuild             MarketID = "AsxBookBuild"
	MarketAsxPureMatch             MarketID = "AsxPureMatch"
	MarketAsxVolumeMatch           MarketID = "AsxVolumeMatch"
	MarketChixAustLimit            MarketID = "ChixAustLimit"
	MarketChixAustFarPoint         MarketID = "ChixAustFarPoint"
	MarketChixAustMarketOnClose    MarketID = "ChixAustMarketOnClose"
	MarketChixAustNearPoint        MarketID = "ChixAustNearPoint"
	MarketChixAustMidPoint         MarketID = "ChixAustMidPoint"
	MarketNsx                      MarketID = "Nsx"
	MarketNzx                      MarketID = "Nzx"
	MarketMyxNormal                MarketID = "MyxNormal"
	MarketMyxDirectBusiness        MarketID = "MyxDirectBusiness"
	MarketMyxIndex                 MarketID = "MyxIndex"
	MarketMyxOddLot                MarketID = "MyxOddLot"
	MarketMyxBuyIn                 MarketID = "MyxBuyIn"
	MarketCalastone                MarketID = "Calastone"
	MarketPtxMain                  MarketID = "PtxMain"
	MarketFnsxMain                 MarketID = "FnsxMain"
)

var marketExchanges = map[MarketID]ExchangeID{
	MarketAsxTradeMatch:            ExchangeAsx,
	MarketAsxTradeMatchCentrePoint: ExchangeAsx,
	MarketAsxBookBuild:             ExchangeAsx,
	MarketAsxPureMatch:             ExchangeAsx,
	MarketAsxVolumeMatch:           ExchangeAsx,
	MarketChixAustLimit:            ExchangeCxa,
	MarketChixAustFarPoint:         ExchangeCxa,
	MarketChixAustMarketOnClose:    ExchangeCxa,
	MarketChixAustNearPoint:        ExchangeCxa,
	MarketChixAustMidPoint:         ExchangeCxa,
	MarketNsx:                      ExchangeNsx,
	MarketNzx:                      ExchangeNzx,
	MarketMyxNormal:                ExchangeMyx,
	MarketMyxDirectBusiness:        ExchangeMyx,
	MarketMyxIndex:                 ExchangeMyx,
	MarketMyxOddLot:                ExchangeMyx,
	MarketMyxBuyIn:                 ExchangeMyx,
	MarketCalastone:                ExchangeCalastone,
	MarketPtxMain:                  ExchangePtx,
	MarketFnsxMain:                 ExchangeFnsx,
}

// AllMarketIDs lists every market.
var AllMarketIDs = []MarketID{
	MarketAsxTradeMatch, MarketAsxTradeMatchCentrePoint, MarketAsxBookBuild,
	MarketAsxPureMatch, MarketAsxVolumeMatch,
	MarketChixAustLimit, MarketChixAustFarPoint, MarketChixAustMarketOnClose,
	MarketChixAustNearPoint, MarketChixAustMidPoint,
	MarketNsx, MarketNzx,
	MarketMyxNormal, MarketMyxDirectBusiness, MarketMyxIndex, MarketMyxOddLot, MarketMyxBuyIn,
	MarketCalastone, MarketPtxMain, MarketFnsxMain,
}

// Exchange returns the exchange that owns the market.
func (m MarketID) Exchange() ExchangeID {
	exchange, ok := marketExchanges[m]
	if !ok {
		PanicInternal(CodeUnhandledEnum, "market "+string(m))
	}
	return exchange
}

// CurrencyID identifies a currency.
type CurrencyID string

const (
	CurrencyAud CurrencyID = "Aud"
	CurrencyUsd CurrencyID = "Usd"
	CurrencyMyr CurrencyID = "Myr"
	CurrencyNzd CurrencyID = "Nzd"
	CurrencyGbp CurrencyID = "Gbp"
)

// AllCurrencyIDs lists every currency.
var AllCurrencyIDs = []CurrencyID{CurrencyAud, CurrencyUsd, CurrencyMyr, CurrencyNzd, CurrencyGbp}

// FeedClassID groups feeds by the kind of data they carry.
type FeedClassID string

const (
	FeedClassAuthority FeedClassID = "Authority"
	FeedClassMarket    FeedClassID = "Market"
	FeedClassNews      FeedClassID = "News"
	FeedClassTrading   FeedClassID = "Trading"
	FeedClassWatchlist FeedClassID = "Watchlist"
	FeedClassChannel   FeedClassID = "Channel"
)

// AllFeedClassIDs lists every feed class.
var AllFeedClassIDs = []FeedClassID{
	FeedClassAuthority, FeedClassMarket, FeedClassNews,
	FeedClassTrading, FeedClassWatchlist, FeedClassChannel,
}

// FeedStatusID is the server-reported status of a feed.
type FeedStatusID string

const (
	FeedStatusInitialising FeedStatusID = "Initialising"
	FeedStatusActive       FeedStatusID = "Active"
	FeedStatusClosed       FeedStatusID = "Closed"
	FeedStatusInactive     FeedStatusID = "Inactive"
	FeedStatusImpaired     FeedStatusID = "Impaired"
	FeedStatusExpired      FeedStatusID = "Expired"
)

// AllFeedStatusIDs lists every feed status.
var AllFeedStatusIDs = []FeedStatusID{
	FeedStatusInitialising, FeedStatusActive, FeedStatusClosed,
	FeedStatusInactive, FeedStatusImpaired, FeedStatusExpired,
}

// TradingFeedID identifies the order management system behind an account.
type TradingFeedID string

const (
	TradingFeedOms      TradingFeedID = "Oms"
	TradingFeedMotif    TradingFeedID = "Motif"
	TradingFeedMalacca  TradingFeedID = "Malacca"
	TradingFeedFinplex  TradingFeedID = "Finplex"
	TradingFeedCFMarket TradingFeedID = "CFMarket"
)

// AllTradingFeedIDs lists every trading feed.
var AllTradingFeedIDs = []TradingFeedID{
	TradingFeedOms, TradingFeedMotif, TradingFeedMalacca, TradingFeedFinplex, TradingFeedCFMarket,
}

// ChangeTypeID is the kind of a list change record.
type ChangeTypeID string

const (
	ChangeAdd    ChangeTypeID = "Add"
	ChangeUpdate ChangeTypeID = "Update"
	ChangeRemove ChangeTypeID = "Remove"
	ChangeClear  ChangeTypeID = "Clear"
)

// AllChangeTypeIDs lists every change kind.
var AllChangeTypeIDs = []ChangeTypeID{ChangeAdd, ChangeUpdate, ChangeRemove, ChangeClear}

// AllowedRetryTypeID classifies whether a failed request may be re-issued.
type AllowedRetryTypeID string

const (
	RetryNever         AllowedRetryTypeID = "Never"
	RetryDelay         AllowedRetryTypeID = "Delay"
	RetryImmediate     AllowedRetryTypeID = "Immediate"
	RetrySubscribeOnly AllowedRetryTypeID = "SubscribeOnly"
)

// HoldingStyleID is the instrument class of a holding.
type HoldingStyleID string

const (
	HoldingStyleEquity      HoldingStyleID = "Equity"
	HoldingStyleOption      HoldingStyleID = "Option"
	HoldingStyleManagedFund HoldingStyleID = "ManagedFund"
)

// AllHoldingStyleIDs lists every holding style.
var AllHoldingStyleIDs = []HoldingStyleID{HoldingStyleEquity, HoldingStyleOption, HoldingStyleManagedFund}
