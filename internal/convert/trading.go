package convert

import (
	"fmt"

	"github.com/shopspring/decimal"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

func parseAccounts(msg zenith.Message) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, parseAccountChange)
	if err != nil {
		return nil, err
	}
	return domain.BrokerageAccountsDataMessage{Changes: changes}, nil
}

func parseAccountChange(w zenith.AccountChange) (domain.AccountChange, error) {
	kind, err := abbreviatedChangeTypeTable.decode(w.O)
	if err != nil {
		return domain.AccountChange{}, err
	}
	switch kind {
	case domain.ChangeAdd, domain.ChangeUpdate:
		if w.Account == nil {
			return domain.AccountChange{}, domain.NewDataError(domain.CodeAccountChangeMissingData, w.O)
		}
		data, err := DecodeAccountState(*w.Account)
		if err != nil {
			return domain.AccountChange{}, err
		}
		return domain.AccountChange{Type: kind, Data: &data}, nil
	case domain.ChangeRemove:
		if w.Account == nil {
			return domain.AccountChange{}, domain.NewDataError(domain.CodeAccountChangeMissingData, w.O)
		}
		key, err := DecodeAccount(w.Account.ID)
		if err != nil {
			return domain.AccountChange{}, err
		}
		return domain.AccountChange{Type: kind, Key: key}, nil
	case domain.ChangeClear:
		return domain.AccountChange{Type: kind}, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "account change "+string(kind))
		return domain.AccountChange{}, nil
	}
}

// DecodeAccountState converts a wire account.
func DecodeAccountState(s zenith.AccountState) (domain.AccountData, error) {
	key, err := DecodeAccount(s.ID)
	if err != nil {
		return domain.AccountData{}, err
	}
	data := domain.AccountData{
		ID:          key.ID,
		Environment: key.Environment,
		Name:        patchOf(s.Name),
		BrokerCode:  patchOf(s.BrokerCode),
		BranchCode:  patchOf(s.BranchCode),
		AdvisorCode: patchOf(s.AdvisorCode),
	}
	if data.Currency, err = mapPatch(s.Currency, currencyTable.decode); err != nil {
		return domain.AccountData{}, err
	}
	if s.Feed != "" {
		if data.TradingFeed, err = tradingFeedTable.decode(s.Feed); err != nil {
			return domain.AccountData{}, err
		}
	}
	return data, nil
}

// EncodeAccountState is the inverse of DecodeAccountState.
func EncodeAccountState(d domain.AccountData) zenith.AccountState {
	s := zenith.AccountState{
		ID:          EncodeAccount(d.Key()),
		Name:        fieldOf(d.Name),
		BrokerCode:  fieldOf(d.BrokerCode),
		BranchCode:  fieldOf(d.BranchCode),
		AdvisorCode: fieldOf(d.AdvisorCode),
	}
	switch d.Currency.Kind {
	case domain.PatchSet:
		s.Currency = zenith.Present(currencyTable.encode(d.Currency.Value))
	case domain.PatchClear:
		s.Currency = zenith.Null[string]()
	case domain.PatchUnchanged:
	}
	if d.TradingFeed != "" {
		s.Feed = tradingFeedTable.encode(d.TradingFeed)
	}
	return s
}

func checkAccount(raw string, expected domain.AccountKey) error {
	key, err := DecodeAccount(raw)
	if err != nil {
		return err
	}
	if key != expected {
		return domain.NewDataError(domain.CodeWrongAccount,
			fmt.Sprintf("expected %s, got %s", expected.MapKey(), key.MapKey()))
	}
	return nil
}

func parseHoldings(msg zenith.Message, account domain.AccountKey) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.HoldingChange) (domain.HoldingChange, error) {
		return parseHoldingChange(w, account)
	})
	if err != nil {
		return nil, err
	}
	return domain.BrokerageAccountHoldingsDataMessage{Account: account, Changes: changes}, nil
}

func parseHoldingChange(w zenith.HoldingChange, account domain.AccountKey) (domain.HoldingChange, error) {
	kind, err := changeTypeTable.decode(w.O)
	if err != nil {
		return domain.HoldingChange{}, err
	}
	switch kind {
	case domain.ChangeAdd, domain.ChangeUpdate:
		if w.Holding == nil {
			return domain.HoldingChange{}, domain.NewDataError(domain.CodeHoldingChangeMissingData, w.O)
		}
		data, err := decodeHolding(*w.Holding, account)
		if err != nil {
			return domain.HoldingChange{}, err
		}
		return domain.HoldingChange{Type: kind, Data: &data}, nil
	case domain.ChangeRemove:
		if w.Holding == nil {
			return domain.HoldingChange{}, domain.NewDataError(domain.CodeHoldingChangeMissingData, w.O)
		}
		if err := checkAccount(w.Holding.Account, account); err != nil {
			return domain.HoldingChange{}, err
		}
		exchange, err := exchangeTable.decode(w.Holding.Exchange)
		if err != nil {
			return domain.HoldingChange{}, err
		}
		return domain.HoldingChange{
			Type: kind,
			Key:  domain.HoldingKey{Exchange: exchange, Code: w.Holding.Code, Account: account},
		}, nil
	case domain.ChangeClear:
		return domain.HoldingChange{Type: kind}, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "holding change "+string(kind))
		return domain.HoldingChange{}, nil
	}
}

func requireDecimal(v *decimal.Decimal, code domain.ErrorCode, field string) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Decimal{}, domain.NewDataError(code, field)
	}
	return *v, nil
}

func decodeHolding(s zenith.HoldingState, account domain.AccountKey) (domain.HoldingData, error) {
	if err := checkAccount(s.Account, account); err != nil {
		return domain.HoldingData{}, err
	}
	const missing = domain.CodeHoldingChangeMissingData
	var (
		d   = domain.HoldingData{Code: s.Code, AccountID: account.ID, Environment: account.Environment}
		err error
	)
	if d.Exchange, err = exchangeTable.decode(s.Exchange); err != nil {
		return d, err
	}
	if d.Style, err = holdingStyleTable.decode(s.Style); err != nil {
		return d, err
	}
	if d.Currency, err = currencyTable.decode(s.Currency); err != nil {
		return d, err
	}
	if d.Cost, err = requireDecimal(s.Cost, missing, "Cost"); err != nil {
		return d, err
	}
	if d.TotalQuantity, err = requireDecimal(s.TotalQuantity, missing, "TotalQuantity"); err != nil {
		return d, err
	}
	if d.TotalAvailableQuantity, err = requireDecimal(s.TotalAvailableQuantity, missing, "TotalAvailableQuantity"); err != nil {
		return d, err
	}
	if d.AveragePrice, err = requireDecimal(s.AveragePrice, missing, "AveragePrice"); err != nil {
		return d, err
	}
	return d, nil
}

// EncodeHolding converts a holding to its wire form.
func EncodeHolding(d domain.HoldingData) zenith.HoldingState {
	return zenith.HoldingState{
		Exchange:               exchangeTable.encode(d.Exchange),
		Code:                   d.Code,
		Account:                EncodeAccount(domain.AccountKey{ID: d.AccountID, Environment: d.Environment}),
		Style:                  holdingStyleTable.encode(d.Style),
		Cost:                   &d.Cost,
		Currency:               currencyTable.encode(d.Currency),
		TotalQuantity:          &d.TotalQuantity,
		TotalAvailableQuantity: &d.TotalAvailableQuantity,
		AveragePrice:           &d.AveragePrice,
	}
}

func parseOrders(msg zenith.Message, account domain.AccountKey) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.OrderChange) (domain.OrderChange, error) {
		return parseOrderChange(w, account)
	})
	if err != nil {
		return nil, err
	}
	return domain.BrokerageAccountOrdersDataMessage{Account: account, Changes: changes}, nil
}

func parseOrderChange(w zenith.OrderChange, account domain.AccountKey) (domain.OrderChange, error) {
	kind, err := abbreviatedChangeTypeTable.decode(w.O)
	if err != nil {
		return domain.OrderChange{}, err
	}
	switch kind {
	case domain.ChangeAdd, domain.ChangeUpdate:
		if w.Order == nil {
			return domain.OrderChange{}, domain.NewDataError(domain.CodeOrderChangeMissingData, w.O)
		}
		data, err := DecodeOrder(*w.Order, account)
		if err != nil {
			return domain.OrderChange{}, err
		}
		return domain.OrderChange{Type: kind, Data: &data}, nil
	case domain.ChangeRemove:
		if w.ID == "" {
			return domain.OrderChange{}, domain.NewDataError(domain.CodeOrderChangeMissingData, "remove without ID")
		}
		return domain.OrderChange{Type: kind, Key: domain.OrderKey{ID: w.ID, Account: account}}, nil
	case domain.ChangeClear:
		return domain.OrderChange{Type: kind}, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "order change "+string(kind))
		return domain.OrderChange{}, nil
	}
}

// DecodeOrder converts a wire order that must belong to account.
func DecodeOrder(s zenith.OrderState, account domain.AccountKey) (domain.OrderData, error) {
	if s.ID == "" {
		return domain.OrderData{}, domain.NewDataError(domain.CodeOrderChangeMissingData, "ID")
	}
	if err := checkAccount(s.Account, account); err != nil {
		return domain.OrderData{}, err
	}
	d := domain.OrderData{
		ID:                 s.ID,
		AccountID:          account.ID,
		Environment:        account.Environment,
		ExternalID:         s.ExternalID,
		DepthOrderID:       s.DepthOrderID,
		Status:             domain.OrderStatus(s.Status),
		EstimatedBrokerage: s.EstimatedBrokerage,
		CurrentBrokerage:   s.CurrentBrokerage,
		EstimatedTax:       s.EstimatedTax,
		CurrentTax:         s.CurrentTax,
		CurrentValue:       s.CurrentValue,
		ExecutedQuantity:   s.ExecutedQuantity,
		AveragePrice:       s.AveragePrice,
	}
	var err error
	if d.Market, _, err = DecodeMarket(s.Market); err != nil {
		return d, err
	}
	if d.TradingMarket, _, err = DecodeMarket(s.TradingMarket); err != nil {
		return d, err
	}
	if d.Currency, err = currencyTable.decode(s.Currency); err != nil {
		return d, err
	}
	if d.CreatedDate, err = DecodeDateTime(s.CreatedDate); err != nil {
		return d, err
	}
	if d.UpdatedDate, err = DecodeDateTime(s.UpdatedDate); err != nil {
		return d, err
	}
	if d.Details, err = decodeOrderDetails(s.Details); err != nil {
		return d, err
	}
	if d.Route, err = decodeOrderRoute(s.Route); err != nil {
		return d, err
	}
	if d.Trigger, err = decodeOrderTrigger(s.Trigger); err != nil {
		return d, err
	}
	return d, nil
}

// EncodeOrder converts an order to its wire form.
func EncodeOrder(d domain.OrderData) zenith.OrderState {
	return zenith.OrderState{
		ID:                 d.ID,
		Account:            EncodeAccount(domain.AccountKey{ID: d.AccountID, Environment: d.Environment}),
		ExternalID:         d.ExternalID,
		DepthOrderID:       d.DepthOrderID,
		Status:             string(d.Status),
		Market:             marketTable.encode(d.Market),
		TradingMarket:      marketTable.encode(d.TradingMarket),
		Currency:           currencyTable.encode(d.Currency),
		EstimatedBrokerage: d.EstimatedBrokerage,
		CurrentBrokerage:   d.CurrentBrokerage,
		EstimatedTax:       d.EstimatedTax,
		CurrentTax:         d.CurrentTax,
		CurrentValue:       d.CurrentValue,
		CreatedDate:        EncodeDateTime(d.CreatedDate),
		UpdatedDate:        EncodeDateTime(d.UpdatedDate),
		ExecutedQuantity:   d.ExecutedQuantity,
		AveragePrice:       d.AveragePrice,
		Details:            encodeOrderDetails(d.Details),
		Route:              encodeOrderRoute(d.Route),
		Trigger:            encodeOrderTrigger(d.Trigger),
	}
}

func decodeOrderDetails(s zenith.OrderDetails) (domain.OrderDetails, error) {
	d := domain.OrderDetails{
		Code:            s.Code,
		LimitPrice:      s.LimitPrice,
		Quantity:        s.Quantity,
		HiddenQuantity:  s.HiddenQuantity,
		MinimumQuantity: s.MinimumQuantity,
	}
	var err error
	if d.Exchange, err = exchangeTable.decode(s.Exchange); err != nil {
		return d, err
	}
	if d.Side, err = orderSideTable.decode(s.Side); err != nil {
		return d, err
	}
	if d.Type, err = orderTypeTable.decode(s.Type); err != nil {
		return d, err
	}
	if d.TimeInForce, err = timeInForceTable.decode(s.Validity); err != nil {
		return d, err
	}
	if d.ExpiryDate, err = decodeOptionalDateTime(s.ExpiryDate); err != nil {
		return d, err
	}
	return d, nil
}

func encodeOrderDetails(d domain.OrderDetails) zenith.OrderDetails {
	return zenith.OrderDetails{
		Exchange:        exchangeTable.encode(d.Exchange),
		Code:            d.Code,
		Side:            orderSideTable.encode(d.Side),
		Type:            orderTypeTable.encode(d.Type),
		LimitPrice:      d.LimitPrice,
		Quantity:        d.Quantity,
		HiddenQuantity:  d.HiddenQuantity,
		MinimumQuantity: d.MinimumQuantity,
		Validity:        timeInForceTable.encode(d.TimeInForce),
		ExpiryDate:      encodeOptionalDateTime(d.ExpiryDate),
	}
}

func decodeOrderRoute(s zenith.OrderRoute) (domain.OrderRoute, error) {
	algorithm, err := routeAlgorithmTable.decode(s.Algorithm)
	if err != nil {
		return domain.OrderRoute{}, err
	}
	route := domain.OrderRoute{Algorithm: algorithm}
	if s.Market != "" {
		if route.Market, _, err = DecodeMarket(s.Market); err != nil {
			return domain.OrderRoute{}, err
		}
	}
	return route, nil
}

func encodeOrderRoute(r domain.OrderRoute) zenith.OrderRoute {
	s := zenith.OrderRoute{Algorithm: routeAlgorithmTable.encode(r.Algorithm)}
	if r.Market != "" {
		s.Market = marketTable.encode(r.Market)
	}
	return s
}

// A missing trigger means the order is released immediately.
func decodeOrderTrigger(s *zenith.OrderTrigger) (domain.OrderTrigger, error) {
	if s == nil {
		return domain.OrderTrigger{TypeID: domain.OrderTriggerImmediate}, nil
	}
	typeID, err := triggerTypeTable.decode(s.Type)
	if err != nil {
		return domain.OrderTrigger{}, err
	}
	return domain.OrderTrigger{TypeID: typeID, Value: s.Value}, nil
}

func encodeOrderTrigger(t domain.OrderTrigger) *zenith.OrderTrigger {
	if t.TypeID == "" || (t.TypeID == domain.OrderTriggerImmediate && t.Value == nil) {
		return nil
	}
	return &zenith.OrderTrigger{Type: triggerTypeTable.encode(t.TypeID), Value: t.Value}
}

func encodeFlags(flags []domain.OrderRequestFlagID) []string {
	if len(flags) == 0 {
		return nil
	}
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, orderRequestFlagTable.encode(f))
	}
	return out
}

func encodePlaceOrder(r domain.PlaceOrderRequest) zenith.PlaceOrderRequest {
	return zenith.PlaceOrderRequest{
		Account: EncodeAccount(r.Account),
		Flags:   encodeFlags(r.Flags),
		Details: encodeOrderDetails(r.Details),
		Route:   encodeOrderRoute(r.Route),
		Trigger: encodeOrderTrigger(r.Trigger),
	}
}

func encodeAmendOrder(r domain.AmendOrderRequest) zenith.AmendOrderRequest {
	s := zenith.AmendOrderRequest{
		Account: EncodeAccount(r.Account),
		OrderID: r.OrderID,
		Flags:   encodeFlags(r.Flags),
		Details: encodeOrderDetails(r.Details),
	}
	if r.Route != nil {
		route := encodeOrderRoute(*r.Route)
		s.Route = &route
	}
	if r.Trigger != nil {
		s.Trigger = encodeOrderTrigger(*r.Trigger)
	}
	return s
}

func parseOrderResponse(msg zenith.Message, account domain.AccountKey) (domain.DataMessage, error) {
	var w zenith.OrderResponse
	if err := unmarshalData(msg, &w); err != nil {
		return nil, err
	}
	result, err := orderRequestResultTable.decode(w.Result)
	if err != nil {
		return nil, err
	}
	resp := domain.OrderRequestResponse{Result: result, EstimatedFees: w.EstimatedFees}
	if w.Order != nil {
		order, err := DecodeOrder(*w.Order, account)
		if err != nil {
			return nil, fmt.Errorf("order: %w", err)
		}
		resp.Order = &order
	}
	for _, e := range w.Errors {
		resp.Errors = append(resp.Errors, domain.OrderRequestError{Code: e.Code, Value: e.Value})
	}
	return domain.OrderResponseDataMessage{Response: resp}, nil
}

func parseBalances(msg zenith.Message, account domain.AccountKey) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.BalanceChange) (domain.BalanceChange, error) {
		return parseBalanceChange(w, account)
	})
	if err != nil {
		return nil, err
	}
	return domain.BrokerageAccountBalancesDataMessage{Account: account, Changes: changes}, nil
}

func parseBalanceChange(w zenith.BalanceChange, account domain.AccountKey) (domain.BalanceChange, error) {
	kind, err := changeTypeTable.decode(w.O)
	if err != nil {
		return domain.BalanceChange{}, err
	}
	switch kind {
	case domain.ChangeAdd, domain.ChangeUpdate, domain.ChangeRemove:
		if w.Balance == nil {
			return domain.BalanceChange{}, domain.NewDataError(domain.CodeBalanceChangeMissingData, w.O)
		}
		if err := checkAccount(w.Balance.Account, account); err != nil {
			return domain.BalanceChange{}, err
		}
		currency, err := currencyTable.decode(w.Balance.Currency)
		if err != nil {
			return domain.BalanceChange{}, err
		}
		return domain.BalanceChange{Type: kind, Data: &domain.BalanceData{
			AccountID:   account.ID,
			Environment: account.Environment,
			Currency:    currency,
			Type:        w.Balance.Type,
			Amount:      w.Balance.Amount,
		}}, nil
	case domain.ChangeClear:
		return domain.BalanceChange{Type: kind}, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "balance change "+string(kind))
		return domain.BalanceChange{}, nil
	}
}

func parseTransactions(msg zenith.Message, account domain.AccountKey) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.TransactionState) (domain.TransactionChange, error) {
		data, err := decodeTransaction(w, account)
		if err != nil {
			return domain.TransactionChange{}, err
		}
		return domain.TransactionChange{Type: domain.ChangeAdd, Data: &data, ID: data.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.TransactionsDataMessage{Account: account, Changes: changes}, nil
}

func decodeTransaction(s zenith.TransactionState, account domain.AccountKey) (domain.TransactionData, error) {
	if err := checkAccount(s.Account, account); err != nil {
		return domain.TransactionData{}, err
	}
	d := domain.TransactionData{
		ID:          s.ID,
		AccountID:   account.ID,
		Environment: account.Environment,
		Code:        s.Code,
		Quantity:    s.Quantity,
		Price:       s.Price,
		GrossAmount: s.GrossAmount,
		NetAmount:   s.NetAmount,
		Brokerage:   s.Brokerage,
		Tax:         s.Tax,
		OrderID:     s.OrderID,
	}
	var err error
	if d.Exchange, err = exchangeTable.decode(s.Exchange); err != nil {
		return d, err
	}
	if d.TradingMarket, _, err = DecodeMarket(s.TradingMarket); err != nil {
		return d, err
	}
	if d.Side, err = orderSideTable.decode(s.Side); err != nil {
		return d, err
	}
	if d.TradeDate, err = DecodeDateTime(s.TradeDate); err != nil {
		return d, err
	}
	if d.SettlementDate, err = DecodeDateTime(s.SettlementDate); err != nil {
		return d, err
	}
	return d, nil
}
