package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSideID is the direction of an order.
type OrderSideID string

const (
	OrderSideBid OrderSideID = "Bid"
	OrderSideAsk OrderSideID = "Ask"
)

// AllOrderSideIDs lists every side.
var AllOrderSideIDs = []OrderSideID{OrderSideBid, OrderSideAsk}

// OrderTypeID is the pricing style of an order.
type OrderTypeID string

const (
	OrderTypeMarket        OrderTypeID = "Market"
	OrderTypeMarketToLimit OrderTypeID = "MarketToLimit"
	OrderTypeLimit         OrderTypeID = "Limit"
	OrderTypeMarketAtBest  OrderTypeID = "MarketAtBest"
)

// AllOrderTypeIDs lists every order type.
var AllOrderTypeIDs = []OrderTypeID{
	OrderTypeMarket, OrderTypeMarketToLimit, OrderTypeLimit, OrderTypeMarketAtBest,
}

// TimeInForceID controls how long an order stays working.
type TimeInForceID string

const (
	TimeInForceDay               TimeInForceID = "Day"
	TimeInForceGoodTillCancel    TimeInForceID = "GoodTillCancel"
	TimeInForceAtTheOpening      TimeInForceID = "AtTheOpening"
	TimeInForceImmediateOrCancel TimeInForceID = "ImmediateOrCancel"
	TimeInForceFillOrKill        TimeInForceID = "FillOrKill"
	TimeInForceGoodTillCrossing  TimeInForceID = "GoodTillCrossing"
	TimeInForceGoodTillDate      TimeInForceID = "GoodTillDate"
	TimeInForceAtTheClose        TimeInForceID = "AtTheClose"
)

// AllTimeInForceIDs lists every time in force.
var AllTimeInForceIDs = []TimeInForceID{
	TimeInForceDay, TimeInForceGoodTillCancel, TimeInForceAtTheOpening,
	TimeInForceImmediateOrCancel, TimeInForceFillOrKill, TimeInForceGoodTillCrossing,
	TimeInForceGoodTillDate, TimeInForceAtTheClose,
}

// OrderTriggerTypeID says what releases an order to market.
type OrderTriggerTypeID string

const (
	OrderTriggerImmediate OrderTriggerTypeID = "Immediate"
	OrderTriggerPrice     OrderTriggerTypeID = "Price"
	OrderTriggerTrailing  OrderTriggerTypeID = "TrailingPrice"
	OrderTriggerPercent   OrderTriggerTypeID = "PercentageTrailingPrice"
	OrderTriggerOvernight OrderTriggerTypeID = "Overnight"
)

// AllOrderTriggerTypeIDs lists every trigger type.
var AllOrderTriggerTypeIDs = []OrderTriggerTypeID{
	OrderTriggerImmediate, OrderTriggerPrice, OrderTriggerTrailing, OrderTriggerPercent, OrderTriggerOvernight,
}

// OrderRouteAlgorithmID says how an order is routed.
type OrderRouteAlgorithmID string

const (
	OrderRouteMarket     OrderRouteAlgorithmID = "Market"
	OrderRouteBestMarket OrderRouteAlgorithmID = "BestMarket"
	OrderRouteFix        OrderRouteAlgorithmID = "Fix"
)

// AllOrderRouteAlgorithmIDs lists every route algorithm.
var AllOrderRouteAlgorithmIDs = []OrderRouteAlgorithmID{OrderRouteMarket, OrderRouteBestMarket, OrderRouteFix}

// OrderStatus is a server defined status code. The server vocabulary is open
// ended so it is carried as text.
type OrderStatus string

// OrderRequestResultID is the outcome of a place, amend, cancel or move request.
type OrderRequestResultID string

const (
	OrderRequestSuccess    OrderRequestResultID = "Success"
	OrderRequestIncomplete OrderRequestResultID = "Incomplete"
	OrderRequestInvalid    OrderRequestResultID = "Invalid"
	OrderRequestRejected   OrderRequestResultID = "Rejected"
)

// OrderRoute describes where an order is sent.
type OrderRoute struct {
	Algorithm OrderRouteAlgorithmID
	Market    MarketID
}

// OrderTrigger describes when an order is released.
type OrderTrigger struct {
	TypeID OrderTriggerTypeID
	Value  *decimal.Decimal
}

// OrderDetails are the user-specified parameters of an order.
type OrderDetails struct {
	Exchange        ExchangeID
	Code            string
	Side            OrderSideID
	Type            OrderTypeID
	LimitPrice      *decimal.Decimal
	Quantity        decimal.Decimal
	HiddenQuantity  *decimal.Decimal
	MinimumQuantity *decimal.Decimal
	TimeInForce     TimeInForceID
	ExpiryDate      *time.Time
}

// OrderData is the full server state of one order.
type OrderData struct {
	ID                 string
	AccountID          string
	Environment        TradingEnvironmentID
	ExternalID         string
	DepthOrderID       string
	Status             OrderStatus
	Market             MarketID
	TradingMarket      MarketID
	Currency           CurrencyID
	EstimatedBrokerage decimal.Decimal
	CurrentBrokerage   decimal.Decimal
	EstimatedTax       decimal.Decimal
	CurrentTax         decimal.Decimal
	CurrentValue       decimal.Decimal
	CreatedDate        time.Time
	UpdatedDate        time.Time
	ExecutedQuantity   decimal.Decimal
	AveragePrice       *decimal.Decimal
	Details            OrderDetails
	Route              OrderRoute
	Trigger            OrderTrigger
}

// OrderRequestFlagID modifies how the server processes an order request.
type OrderRequestFlagID string

const (
	// OrderRequestFlagPreview asks for fees without placing the order.
	OrderRequestFlagPreview OrderRequestFlagID = "Preview"
)

// PlaceOrderRequest asks the server to place a new order.
type PlaceOrderRequest struct {
	Account AccountKey
	Flags   []OrderRequestFlagID
	Details OrderDetails
	Route   OrderRoute
	Trigger OrderTrigger
}

// AmendOrderRequest asks the server to change a working order.
type AmendOrderRequest struct {
	Account AccountKey
	OrderID string
	Flags   []OrderRequestFlagID
	Details OrderDetails
	Route   *OrderRoute
	Trigger *OrderTrigger
}

// CancelOrderRequest asks the server to cancel a working order.
type CancelOrderRequest struct {
	Account AccountKey
	OrderID string
	Flags   []OrderRequestFlagID
}

// MoveOrderRequest asks the server to move a working order to another account.
type MoveOrderRequest struct {
	Account            AccountKey
	OrderID            string
	DestinationAccount string
	Flags              []OrderRequestFlagID
}

// OrderRequestError is one problem the server reported with a request.
type OrderRequestError struct {
	Code  string
	Value string
}

// OrderRequestResponse is the server reply to an order request.
type OrderRequestResponse struct {
	Result        OrderRequestResultID
	Order         *OrderData
	Errors        []OrderRequestError
	EstimatedFees map[string]decimal.Decimal
}
