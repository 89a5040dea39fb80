package zenith

import "github.com/shopspring/decimal"

// Abbreviated change kinds used by the Accounts and Orders topics.
const (
	AbbreviatedAdd    = "A"
	AbbreviatedUpdate = "U"
	AbbreviatedRemove = "R"
	AbbreviatedClear  = "C"
)

// Full change kinds used by the other list topics.
const (
	ChangeAdd    = "Add"
	ChangeUpdate = "Update"
	ChangeRemove = "Remove"
	ChangeClear  = "Clear"
)

// AccountState is an account as sent in an Accounts change.
type AccountState struct {
	// ID is the environment qualified account id, e.g. "A1[Demo]".
	ID          string        `json:"ID"`
	Name        Field[string] `json:"Name,omitzero"`
	Currency    Field[string] `json:"Currency,omitzero"`
	Feed        string        `json:"Feed,omitempty"`
	BrokerCode  Field[string] `json:"BrokerCode,omitzero"`
	BranchCode  Field[string] `json:"BranchCode,omitzero"`
	AdvisorCode Field[string] `json:"AdvisorCode,omitzero"`
}

type AccountChange struct {
	O       string        `json:"O"`
	Account *AccountState `json:"Account,omitempty"`
}

type HoldingState struct {
	Exchange               string           `json:"Exchange"`
	Code                   string           `json:"Code"`
	Account                string           `json:"Account"`
	Style                  string           `json:"Style,omitempty"`
	Cost                   *decimal.Decimal `json:"Cost,omitempty"`
	Currency               string           `json:"Currency,omitempty"`
	TotalQuantity          *decimal.Decimal `json:"TotalQuantity,omitempty"`
	TotalAvailableQuantity *decimal.Decimal `json:"TotalAvailableQuantity,omitempty"`
	AveragePrice           *decimal.Decimal `json:"AveragePrice,omitempty"`
}

type HoldingChange struct {
	O       string        `json:"O"`
	Holding *HoldingState `json:"Holding,omitempty"`
}

type OrderDetails struct {
	Exchange        string           `json:"Exchange"`
	Code            string           `json:"Code"`
	Side            string           `json:"Side"`
	Type            string           `json:"Type"`
	LimitPrice      *decimal.Decimal `json:"LimitPrice,omitempty"`
	Quantity        decimal.Decimal  `json:"Quantity"`
	HiddenQuantity  *decimal.Decimal `json:"HiddenQuantity,omitempty"`
	MinimumQuantity *decimal.Decimal `json:"MinimumQuantity,omitempty"`
	Validity        string           `json:"Validity"`
	ExpiryDate      *string          `json:"ExpiryDate,omitempty"`
}

type OrderRoute struct {
	Algorithm string `json:"Algorithm"`
	Market    string `json:"Market,omitempty"`
}

type OrderTrigger struct {
	Type  string           `json:"Type"`
	Value *decimal.Decimal `json:"Value,omitempty"`
}

type OrderState struct {
	ID                 string           `json:"ID"`
	Account            string           `json:"Account"`
	ExternalID         string           `json:"ExternalID,omitempty"`
	DepthOrderID       string           `json:"DepthOrderID,omitempty"`
	Status             string           `json:"Status"`
	Market             string           `json:"Market"`
	TradingMarket      string           `json:"TradingMarket"`
	Currency           string           `json:"Currency"`
	EstimatedBrokerage decimal.Decimal  `json:"EstimatedBrokerage"`
	CurrentBrokerage   decimal.Decimal  `json:"CurrentBrokerage"`
	EstimatedTax       decimal.Decimal  `json:"EstimatedTax"`
	CurrentTax         decimal.Decimal  `json:"CurrentTax"`
	CurrentValue       decimal.Decimal  `json:"CurrentValue"`
	CreatedDate        string           `json:"CreatedDate"`
	UpdatedDate        string           `json:"UpdatedDate"`
	ExecutedQuantity   decimal.Decimal  `json:"ExecutedQuantity"`
	AveragePrice       *decimal.Decimal `json:"AveragePrice,omitempty"`
	Details            OrderDetails     `json:"Details"`
	Route              OrderRoute       `json:"Route"`
	Trigger            *OrderTrigger    `json:"Trigger,omitempty"`
}

type OrderChange struct {
	O     string      `json:"O"`
	Order *OrderState `json:"Order,omitempty"`
	// ID is set on removal.
	ID string `json:"ID,omitempty"`
}

type BalanceState struct {
	Account  string          `json:"Account"`
	Currency string          `json:"Currency"`
	Type     string          `json:"Type"`
	Amount   decimal.Decimal `json:"Amount"`
}

type BalanceChange struct {
	O       string        `json:"O"`
	Balance *BalanceState `json:"Balance,omitempty"`
}

type TransactionState struct {
	ID             string          `json:"ID"`
	Account        string          `json:"Account"`
	Exchange       string          `json:"Exchange"`
	TradingMarket  string          `json:"TradingMarket"`
	Code           string          `json:"Code"`
	Side           string          `json:"Side"`
	Quantity       decimal.Decimal `json:"Quantity"`
	Price          decimal.Decimal `json:"Price"`
	TradeDate      string          `json:"TradeDate"`
	SettlementDate string          `json:"SettlementDate"`
	GrossAmount    decimal.Decimal `json:"GrossAmount"`
	NetAmount      decimal.Decimal `json:"NetAmount"`
	Brokerage      decimal.Decimal `json:"Brokerage"`
	Tax            decimal.Decimal `json:"Tax"`
	OrderID        string          `json:"OrderID,omitempty"`
}

type QueryTransactionsRequest struct {
	Account  string  `json:"Account"`
	FromDate *string `json:"FromDate,omitempty"`
	ToDate   *string `json:"ToDate,omitempty"`
	Count    *int    `json:"Count,omitempty"`
}

type PlaceOrderRequest struct {
	Account string        `json:"Account"`
	Flags   []string      `json:"Flags,omitempty"`
	Details OrderDetails  `json:"Details"`
	Route   OrderRoute    `json:"Route"`
	Trigger *OrderTrigger `json:"Trigger,omitempty"`
}

type AmendOrderRequest struct {
	Account string        `json:"Account"`
	OrderID string        `json:"OrderID"`
	Flags   []string      `json:"Flags,omitempty"`
	Details OrderDetails  `json:"Details"`
	Route   *OrderRoute   `json:"Route,omitempty"`
	Trigger *OrderTrigger `json:"Trigger,omitempty"`
}

type CancelOrderRequest struct {
	Account string   `json:"Account"`
	OrderID string   `json:"OrderID"`
	Flags   []string `json:"Flags,omitempty"`
}

type MoveOrderRequest struct {
	Account     string   `json:"Account"`
	OrderID     string   `json:"OrderID"`
	Destination string   `json:"Destination"`
	Flags       []string `json:"Flags,omitempty"`
}

type OrderRequestError struct {
	Code  string `json:"Code"`
	Value string `json:"Value,omitempty"`
}

type OrderResponse struct {
	Result        string                     `json:"Result"`
	Order         *OrderState                `json:"Order,omitempty"`
	Errors        []OrderRequestError        `json:"Errors,omitempty"`
	EstimatedFees map[string]decimal.Decimal `json:"EstimatedFees,omitempty"`
}
