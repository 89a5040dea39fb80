package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountData carries an account add or update.
// On an add every field the server sent is Set; on an update absent fields are Unchanged.
type AccountData struct {
	ID          string
	Environment TradingEnvironmentID
	Name        Patch[string]
	Currency    Patch[CurrencyID]
	TradingFeed TradingFeedID
	BrokerCode  Patch[string]
	BranchCode  Patch[string]
	AdvisorCode Patch[string]
}

// Key returns the identity the payload refers to.
func (d AccountData) Key() AccountKey {
	return AccountKey{ID: d.ID, Environment: d.Environment}
}

// AccountChange is one element of an accounts change batch.
type AccountChange struct {
	Type ChangeTypeID
	// Data is set for Add and Update.
	Data *AccountData
	// Key is set for Remove.
	Key AccountKey
}

// HoldingData is the full server state of one holding.
type HoldingData struct {
	Exchange               ExchangeID
	Code                   string
	AccountID              string
	Environment            TradingEnvironmentID
	Style                  HoldingStyleID
	Cost                   decimal.Decimal
	Currency               CurrencyID
	TotalQuantity          decimal.Decimal
	TotalAvailableQuantity decimal.Decimal
	AveragePrice           decimal.Decimal
}

// HoldingKey identifies a holding within an account.
type HoldingKey struct {
	Exchange ExchangeID
	Code     string
	Account  AccountKey
}

// MapKey is the lookup key for the holding.
func (k HoldingKey) MapKey() string {
	return k.Code + "." + string(k.Exchange) + "/" + k.Account.MapKey()
}

// Key returns the identity of the holding.
func (d HoldingData) Key() HoldingKey {
	return HoldingKey{
		Exchange: d.Exchange,
		Code:     d.Code,
		Account:  AccountKey{ID: d.AccountID, Environment: d.Environment},
	}
}

// HoldingChange is one element of a holdings change batch.
type HoldingChange struct {
	Type ChangeTypeID
	// Data is set for Add and Update.
	Data *HoldingData
	// Key is set for Remove.
	Key HoldingKey
}

// OrderKey identifies an order within an account.
type OrderKey struct {
	ID      string
	Account AccountKey
}

// MapKey is the lookup key for the order.
func (k OrderKey) MapKey() string {
	return k.ID + "/" + k.Account.MapKey()
}

// Key returns the identity of the order.
func (d OrderData) Key() OrderKey {
	return OrderKey{ID: d.ID, Account: AccountKey{ID: d.AccountID, Environment: d.Environment}}
}

// OrderChange is one element of an orders change batch.
type OrderChange struct {
	Type ChangeTypeID
	// Data is set for Add and Update.
	Data *OrderData
	// Key is set for Remove.
	Key OrderKey
}

// BalanceData is one currency balance of an account.
type BalanceData struct {
	AccountID   string
	Environment TradingEnvironmentID
	Currency    CurrencyID
	Type        string
	Amount      decimal.Decimal
}

// BalanceKey identifies a balance within an account.
type BalanceKey struct {
	Account  AccountKey
	Currency CurrencyID
	Type     string
}

// MapKey is the lookup key for the balance.
func (k BalanceKey) MapKey() string {
	return string(k.Currency) + ":" + k.Type + "/" + k.Account.MapKey()
}

// Key returns the identity of the balance.
func (d BalanceData) Key() BalanceKey {
	return BalanceKey{
		Account:  AccountKey{ID: d.AccountID, Environment: d.Environment},
		Currency: d.Currency,
		Type:     d.Type,
	}
}

// BalanceChange is one element of a balances change batch.
type BalanceChange struct {
	Type ChangeTypeID
	// Data is set for Add, Update and Remove.
	Data *BalanceData
}

// TransactionData is one settled or unsettled trade confirmation.
type TransactionData struct {
	ID             string
	AccountID      string
	Environment    TradingEnvironmentID
	Exchange       ExchangeID
	TradingMarket  MarketID
	Code           string
	Side           OrderSideID
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	TradeDate      time.Time
	SettlementDate time.Time
	GrossAmount    decimal.Decimal
	NetAmount      decimal.Decimal
	Brokerage      decimal.Decimal
	Tax            decimal.Decimal
	OrderID        string
}

// TransactionChange is one element of a transactions change batch.
type TransactionChange struct {
	Type ChangeTypeID
	Data *TransactionData
	ID   string
}
