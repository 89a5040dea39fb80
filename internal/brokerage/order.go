package brokerage

import (
	"github.com/shopspring/decimal"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
)

// OrderFieldID identifies a mutable order field.
type OrderFieldID int

const (
	OrderFieldExternalID OrderFieldID = iota
	OrderFieldDepthOrderID
	OrderFieldStatus
	OrderFieldMarket
	OrderFieldTradingMarket
	OrderFieldCurrency
	OrderFieldEstimatedBrokerage
	OrderFieldCurrentBrokerage
	OrderFieldEstimatedTax
	OrderFieldCurrentTax
	OrderFieldCurrentValue
	OrderFieldCreatedDate
	OrderFieldUpdatedDate
	OrderFieldExecutedQuantity
	OrderFieldAveragePrice
	OrderFieldExchange
	OrderFieldCode
	OrderFieldSide
	OrderFieldOrderType
	OrderFieldLimitPrice
	OrderFieldQuantity
	OrderFieldHiddenQuantity
	OrderFieldMinimumQuantity
	OrderFieldTimeInForce
	OrderFieldExpiryDate
	OrderFieldRouteAlgorithm
	OrderFieldRouteMarket
	OrderFieldTriggerType
	OrderFieldTriggerValue
)

var orderFieldNames = [...]string{
	OrderFieldExternalID:         "ExternalID",
	OrderFieldDepthOrderID:       "DepthOrderID",
	OrderFieldStatus:             "Status",
	OrderFieldMarket:             "Market",
	OrderFieldTradingMarket:      "TradingMarket",
	OrderFieldCurrency:           "Currency",
	OrderFieldEstimatedBrokerage: "EstimatedBrokerage",
	OrderFieldCurrentBrokerage:   "CurrentBrokerage",
	OrderFieldEstimatedTax:       "EstimatedTax",
	OrderFieldCurrentTax:         "CurrentTax",
	OrderFieldCurrentValue:       "CurrentValue",
	OrderFieldCreatedDate:        "CreatedDate",
	OrderFieldUpdatedDate:        "UpdatedDate",
	OrderFieldExecutedQuantity:   "ExecutedQuantity",
	OrderFieldAveragePrice:       "AveragePrice",
	OrderFieldExchange:           "Exchange",
	OrderFieldCode:               "Code",
	OrderFieldSide:               "Side",
	OrderFieldOrderType:          "OrderType",
	OrderFieldLimitPrice:         "LimitPrice",
	OrderFieldQuantity:           "Quantity",
	OrderFieldHiddenQuantity:     "HiddenQuantity",
	OrderFieldMinimumQuantity:    "MinimumQuantity",
	OrderFieldTimeInForce:        "TimeInForce",
	OrderFieldExpiryDate:         "ExpiryDate",
	OrderFieldRouteAlgorithm:     "RouteAlgorithm",
	OrderFieldRouteMarket:        "RouteMarket",
	OrderFieldTriggerType:        "TriggerType",
	OrderFieldTriggerValue:       "TriggerValue",
}

func (f OrderFieldID) String() string {
	if f < 0 || int(f) >= len(orderFieldNames) {
		domain.PanicInternal(domain.CodeUnhandledEnum, "order field")
	}
	return orderFieldNames[f]
}

// Order is one order of an account.
type Order struct {
	entity.Base[OrderFieldID]

	key  domain.OrderKey
	data domain.OrderData
}

// NewOrder creates an order from an add payload.
func NewOrder(data domain.OrderData, c correctness.ID) *Order {
	o := &Order{key: data.Key(), data: data}
	o.InitCorrectness(c)
	return o
}

// MapKey returns the key's map key.
func (o *Order) MapKey() string { return o.key.MapKey() }

func (o *Order) Key() domain.OrderKey              { return o.key }
func (o *Order) ID() string                        { return o.key.ID }
func (o *Order) AccountID() string                 { return o.key.Account.ID }
func (o *Order) Data() domain.OrderData            { return o.data }
func (o *Order) Status() domain.OrderStatus        { return o.data.Status }
func (o *Order) Details() domain.OrderDetails      { return o.data.Details }
func (o *Order) ExecutedQuantity() decimal.Decimal { return o.data.ExecutedQuantity }
func (o *Order) accountKey() domain.AccountKey     { return o.key.Account }

// Update applies a full state for the same order. An update naming another
// order or account is rejected and leaves the order as it was.
func (o *Order) Update(data domain.OrderData) error {
	switch {
	case data.ID != o.key.ID:
		return domain.NewDataError(domain.CodeOrderIDChanged, data.ID+" applied to "+o.MapKey())
	case data.Key().Account != o.key.Account:
		return domain.NewDataError(domain.CodeOrderAccountIDChanged,
			data.Key().Account.MapKey()+" applied to "+o.MapKey())
	}

	var changes entity.Changes[OrderFieldID]
	cur := &o.data
	entity.SetValue(&changes, OrderFieldExternalID, &cur.ExternalID, data.ExternalID)
	entity.SetValue(&changes, OrderFieldDepthOrderID, &cur.DepthOrderID, data.DepthOrderID)
	entity.SetValue(&changes, OrderFieldStatus, &cur.Status, data.Status)
	entity.SetValue(&changes, OrderFieldMarket, &cur.Market, data.Market)
	entity.SetValue(&changes, OrderFieldTradingMarket, &cur.TradingMarket, data.TradingMarket)
	entity.SetValue(&changes, OrderFieldCurrency, &cur.Currency, data.Currency)
	entity.SetDecimal(&changes, OrderFieldEstimatedBrokerage, &cur.EstimatedBrokerage, data.EstimatedBrokerage)
	entity.SetDecimal(&changes, OrderFieldCurrentBrokerage, &cur.CurrentBrokerage, data.CurrentBrokerage)
	entity.SetDecimal(&changes, OrderFieldEstimatedTax, &cur.EstimatedTax, data.EstimatedTax)
	entity.SetDecimal(&changes, OrderFieldCurrentTax, &cur.CurrentTax, data.CurrentTax)
	entity.SetDecimal(&changes, OrderFieldCurrentValue, &cur.CurrentValue, data.CurrentValue)
	entity.SetTime(&changes, OrderFieldCreatedDate, &cur.CreatedDate, data.CreatedDate)
	entity.SetTime(&changes, OrderFieldUpdatedDate, &cur.UpdatedDate, data.UpdatedDate)
	entity.SetDecimal(&changes, OrderFieldExecutedQuantity, &cur.ExecutedQuantity, data.ExecutedQuantity)
	entity.SetOptionalDecimal(&changes, OrderFieldAveragePrice, &cur.AveragePrice, data.AveragePrice)

	d, next := &cur.Details, data.Details
	entity.SetValue(&changes, OrderFieldExchange, &d.Exchange, next.Exchange)
	entity.SetValue(&changes, OrderFieldCode, &d.Code, next.Code)
	entity.SetValue(&changes, OrderFieldSide, &d.Side, next.Side)
	entity.SetValue(&changes, OrderFieldOrderType, &d.Type, next.Type)
	entity.SetOptionalDecimal(&changes, OrderFieldLimitPrice, &d.LimitPrice, next.LimitPrice)
	entity.SetDecimal(&changes, OrderFieldQuantity, &d.Quantity, next.Quantity)
	entity.SetOptionalDecimal(&changes, OrderFieldHiddenQuantity, &d.HiddenQuantity, next.HiddenQuantity)
	entity.SetOptionalDecimal(&changes, OrderFieldMinimumQuantity, &d.MinimumQuantity, next.MinimumQuantity)
	entity.SetValue(&changes, OrderFieldTimeInForce, &d.TimeInForce, next.TimeInForce)
	entity.SetOptionalTime(&changes, OrderFieldExpiryDate, &d.ExpiryDate, next.ExpiryDate)

	entity.SetValue(&changes, OrderFieldRouteAlgorithm, &cur.Route.Algorithm, data.Route.Algorithm)
	entity.SetValue(&changes, OrderFieldRouteMarket, &cur.Route.Market, data.Route.Market)
	entity.SetValue(&changes, OrderFieldTriggerType, &cur.Trigger.TypeID, data.Trigger.TypeID)
	entity.SetOptionalDecimal(&changes, OrderFieldTriggerValue, &cur.Trigger.Value, data.Trigger.Value)

	o.Notify(&changes)
	return nil
}
