package brokerage

import (
	"github.com/shopspring/decimal"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
)

// BalanceFieldID identifies a mutable balance field.
type BalanceFieldID int

const (
	BalanceFieldAmount BalanceFieldID = iota
)

// Balance is the amount an account holds of one currency and balance type.
type Balance struct {
	entity.Base[BalanceFieldID]

	key    domain.BalanceKey
	amount decimal.Decimal
}

// NewBalance creates a balance from an add payload.
func NewBalance(data domain.BalanceData, c correctness.ID) *Balance {
	b := &Balance{key: data.Key(), amount: data.Amount}
	b.InitCorrectness(c)
	return b
}

// MapKey returns the key's map key.
func (b *Balance) MapKey() string { return b.key.MapKey() }

func (b *Balance) Key() domain.BalanceKey        { return b.key }
func (b *Balance) Currency() domain.CurrencyID   { return b.key.Currency }
func (b *Balance) Type() string                  { return b.key.Type }
func (b *Balance) Amount() decimal.Decimal       { return b.amount }
func (b *Balance) accountKey() domain.AccountKey { return b.key.Account }

// Update applies a new amount for the same balance.
func (b *Balance) Update(data domain.BalanceData) error {
	if data.Key() != b.key {
		return domain.NewDataError(domain.CodeRecordNotFound, "balance "+data.Key().MapKey()+" applied to "+b.MapKey())
	}
	var changes entity.Changes[BalanceFieldID]
	entity.SetDecimal(&changes, BalanceFieldAmount, &b.amount, data.Amount)
	b.Notify(&changes)
	return nil
}
