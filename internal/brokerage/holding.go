package brokerage

import (
	"github.com/shopspring/decimal"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
)

// HoldingFieldID identifies a mutable holding field.
type HoldingFieldID int

const (
	HoldingFieldStyle HoldingFieldID = iota
	HoldingFieldCost
	HoldingFieldCurrency
	HoldingFieldTotalQuantity
	HoldingFieldTotalAvailableQuantity
	HoldingFieldAveragePrice
)

// Holding is a position in one instrument held by an account.
type Holding struct {
	entity.Base[HoldingFieldID]

	key  domain.HoldingKey
	data domain.HoldingData
}

// NewHolding creates a holding from an add payload.
func NewHolding(data domain.HoldingData, c correctness.ID) *Holding {
	h := &Holding{key: data.Key(), data: data}
	h.InitCorrectness(c)
	return h
}

// MapKey returns the key's map key.
func (h *Holding) MapKey() string { return h.key.MapKey() }

func (h *Holding) Key() domain.HoldingKey                  { return h.key }
func (h *Holding) Data() domain.HoldingData                { return h.data }
func (h *Holding) Style() domain.HoldingStyleID            { return h.data.Style }
func (h *Holding) Cost() decimal.Decimal                   { return h.data.Cost }
func (h *Holding) Currency() domain.CurrencyID             { return h.data.Currency }
func (h *Holding) TotalQuantity() decimal.Decimal          { return h.data.TotalQuantity }
func (h *Holding) TotalAvailableQuantity() decimal.Decimal { return h.data.TotalAvailableQuantity }
func (h *Holding) AveragePrice() decimal.Decimal           { return h.data.AveragePrice }

// Update applies a full state for the same holding.
func (h *Holding) Update(data domain.HoldingData) error {
	if data.Key() != h.key {
		return domain.NewDataError(domain.CodeHoldingKeyChanged, data.Key().MapKey()+" applied to "+h.MapKey())
	}
	var changes entity.Changes[HoldingFieldID]
	entity.SetValue(&changes, HoldingFieldStyle, &h.data.Style, data.Style)
	entity.SetDecimal(&changes, HoldingFieldCost, &h.data.Cost, data.Cost)
	entity.SetValue(&changes, HoldingFieldCurrency, &h.data.Currency, data.Currency)
	entity.SetDecimal(&changes, HoldingFieldTotalQuantity, &h.data.TotalQuantity, data.TotalQuantity)
	entity.SetDecimal(&changes, HoldingFieldTotalAvailableQuantity, &h.data.TotalAvailableQuantity, data.TotalAvailableQuantity)
	entity.SetDecimal(&changes, HoldingFieldAveragePrice, &h.data.AveragePrice, data.AveragePrice)
	h.Notify(&changes)
	return nil
}

func (h *Holding) accountKey() domain.AccountKey { return h.key.Account }
