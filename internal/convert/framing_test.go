package convert

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

var demoAccount = domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentDemo}

func newTestCodec(warnings *[]string) *Codec {
	return New(WarnFunc(func(code domain.ErrorCode, value string) {
		if warnings != nil {
			*warnings = append(*warnings, string(code)+":"+value)
		}
	}))
}

func TestCreateRequestMessage_Subscribe(t *testing.T) {
	msg, err := CreateRequestMessage(domain.BrokerageAccountHoldingsDefinition{Account: demoAccount}, 7)
	require.NoError(t, err)

	assert.Equal(t, zenith.ControllerTrading, msg.Controller)
	assert.Equal(t, "Holdings!A1[Demo]", msg.Topic)
	assert.Equal(t, zenith.ActionSub, msg.Action)
	assert.Equal(t, uint64(7), msg.TransactionID)
	assert.False(t, msg.HasData())

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Controller":"Trading","Topic":"Holdings!A1[Demo]","Action":"Sub","TransactionID":7}`, string(data))
}

func TestCreateSubUnsubMessage_Unsub(t *testing.T) {
	def := domain.TradesDefinition{LitIvem: domain.LitIvemID{Code: "BHP", Market: domain.MarketAsxTradeMatch, Environment: domain.DataEnvironmentProduction}}
	msg, err := CreateSubUnsubMessage(def, zenith.ActionUnsub, 9)
	require.NoError(t, err)
	assert.Equal(t, zenith.ControllerMarket, msg.Controller)
	assert.Equal(t, "Trades!BHP.ASX:TM", msg.Topic)
	assert.Equal(t, zenith.ActionUnsub, msg.Action)
}

func TestCreatePublishMessage_PlaceOrder(t *testing.T) {
	limit := decimal.RequireFromString("41.50")
	def := domain.PlaceOrderRequestDefinition{Request: domain.PlaceOrderRequest{
		Account: demoAccount,
		Flags:   []domain.OrderRequestFlagID{domain.OrderRequestFlagPreview},
		Details: domain.OrderDetails{
			Exchange:    domain.ExchangeAsx,
			Code:        "BHP",
			Side:        domain.OrderSideBid,
			Type:        domain.OrderTypeLimit,
			LimitPrice:  &limit,
			Quantity:    decimal.NewFromInt(100),
			TimeInForce: domain.TimeInForceDay,
		},
		Route:   domain.OrderRoute{Algorithm: domain.OrderRouteMarket, Market: domain.MarketAsxTradeMatch},
		Trigger: domain.OrderTrigger{TypeID: domain.OrderTriggerImmediate},
	}}

	msg, err := CreateRequestMessage(def, 3)
	require.NoError(t, err)
	assert.Equal(t, zenith.ActionPublish, msg.Action)
	assert.Equal(t, zenith.TopicPlaceOrder, msg.Topic)
	assert.JSONEq(t, `{
		"Account":"A1[Demo]",
		"Flags":["Preview"],
		"Details":{"Exchange":"ASX","Code":"BHP","Side":"Bid","Type":"Limit","LimitPrice":"41.5","Quantity":"100","Validity":"Day"},
		"Route":{"Algorithm":"Market","Market":"ASX:TM"}
	}`, string(msg.Data))
}

func TestCreatePublishMessage_QueryTransactions(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	count := 50
	msg, err := CreatePublishMessage(domain.QueryTransactionsDefinition{Account: demoAccount, FromDate: &from, Count: &count}, 4)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Account":"A1[Demo]","FromDate":"2024-03-01T00:00:00.000Z","Count":50}`, string(msg.Data))
}

func TestCheckMessage_Mismatch(t *testing.T) {
	def := domain.BrokerageAccountOrdersDefinition{Account: demoAccount}

	err := CheckMessage(zenith.Message{Controller: zenith.ControllerMarket, Topic: "Orders!A1[Demo]"}, def)
	requireDataCode(t, err, domain.CodeControllerMismatch)

	err = CheckMessage(zenith.Message{Controller: zenith.ControllerTrading, Topic: "Orders!A2[Demo]"}, def)
	requireDataCode(t, err, domain.CodeTopicMismatch)

	err = CheckMessage(zenith.Message{Controller: zenith.ControllerTrading, Topic: "Orders!A1[Demo]"}, def)
	assert.NoError(t, err)
}

func TestParseMessage_AccountCreation(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      zenith.TopicAccounts,
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"O":"A","Account":{"ID":"A1[Demo]","Name":"Test","Feed":"Oms"}}]`),
	}

	got, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountsDefinition{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	accounts, ok := got[0].(domain.BrokerageAccountsDataMessage)
	require.True(t, ok)
	require.Len(t, accounts.Changes, 1)

	change := accounts.Changes[0]
	assert.Equal(t, domain.ChangeAdd, change.Type)
	require.NotNil(t, change.Data)
	assert.Equal(t, demoAccount, change.Data.Key())
	assert.Equal(t, domain.Set("Test"), change.Data.Name)
	assert.Equal(t, domain.TradingFeedOms, change.Data.TradingFeed)
	assert.Equal(t, domain.PatchUnchanged, change.Data.Currency.Kind)
}

func TestParseMessage_AccountUpdateTriState(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      zenith.TopicAccounts,
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"O":"U","Account":{"ID":"A1[Demo]","Name":null,"Currency":"AUD"}},{"O":"R","Account":{"ID":"A2"}},{"O":"C"}]`),
	}

	got, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountsDefinition{})
	require.NoError(t, err)
	changes := got[0].(domain.BrokerageAccountsDataMessage).Changes
	require.Len(t, changes, 3)

	assert.Equal(t, domain.ChangeUpdate, changes[0].Type)
	assert.Equal(t, domain.PatchClear, changes[0].Data.Name.Kind)
	assert.Equal(t, domain.Set(domain.CurrencyAud), changes[0].Data.Currency)
	assert.Equal(t, domain.PatchUnchanged, changes[0].Data.BrokerCode.Kind)

	assert.Equal(t, domain.ChangeRemove, changes[1].Type)
	assert.Equal(t, domain.AccountKey{ID: "A2", Environment: domain.TradingEnvironmentProduction}, changes[1].Key)

	assert.Equal(t, domain.ChangeClear, changes[2].Type)
}

func TestParseMessage_BatchFailureCarriesIndex(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      "Holdings!A1[Demo]",
		Action:     zenith.ActionSub,
		Data: json.RawMessage(`[
			{"O":"Add","Holding":{"Exchange":"ASX","Code":"BHP","Account":"A1[Demo]","Style":"Equity","Cost":1000,"Currency":"AUD","TotalQuantity":100,"TotalAvailableQuantity":100,"AveragePrice":10}},
			{"O":"Add","Holding":{"Exchange":"ASX","Code":"CBA","Account":"A1[Demo]","Style":"Equity","Currency":"AUD"}}
		]`),
	}

	_, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountHoldingsDefinition{Account: demoAccount})
	requireDataCode(t, err, domain.CodeHoldingChangeMissingData)

	var indexed *domain.IndexedError
	require.True(t, errors.As(err, &indexed))
	assert.Equal(t, 1, indexed.Index)
}

func TestParseMessage_WrongAccount(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      "Balances!A1[Demo]",
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"O":"Add","Balance":{"Account":"A9[Demo]","Currency":"AUD","Type":"Cash","Amount":5}}]`),
	}
	_, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountBalancesDefinition{Account: demoAccount})
	requireDataCode(t, err, domain.CodeWrongAccount)
}

func TestParseMessage_Orders(t *testing.T) {
	order := `{"ID":"O1","Account":"A1[Demo]","Status":"Working","Market":"ASX:TM[Demo]","TradingMarket":"ASX:TM[Demo]",
		"Currency":"AUD","EstimatedBrokerage":9.5,"CurrentBrokerage":0,"EstimatedTax":0,"CurrentTax":0,"CurrentValue":4150,
		"CreatedDate":"2024-03-01T10:00:00.000+11:00","UpdatedDate":"2024-03-01T10:00:01.000+11:00","ExecutedQuantity":0,
		"Details":{"Exchange":"ASX","Code":"BHP","Side":"Bid","Type":"Limit","LimitPrice":41.5,"Quantity":100,"Validity":"GTC"},
		"Route":{"Algorithm":"Market","Market":"ASX:TM"}}`
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      "Orders!A1[Demo]",
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"O":"A","Order":` + order + `},{"O":"R","ID":"O0"}]`),
	}

	got, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountOrdersDefinition{Account: demoAccount})
	require.NoError(t, err)
	changes := got[0].(domain.BrokerageAccountOrdersDataMessage).Changes
	require.Len(t, changes, 2)

	o := changes[0].Data
	require.NotNil(t, o)
	assert.Equal(t, "O1", o.ID)
	assert.Equal(t, domain.OrderStatus("Working"), o.Status)
	assert.Equal(t, domain.MarketAsxTradeMatch, o.Market)
	assert.Equal(t, domain.TimeInForceGoodTillCancel, o.Details.TimeInForce)
	assert.Equal(t, domain.OrderTriggerImmediate, o.Trigger.TypeID)
	assert.True(t, o.Details.LimitPrice.Equal(decimal.RequireFromString("41.5")))

	assert.Equal(t, domain.ChangeRemove, changes[1].Type)
	assert.Equal(t, domain.OrderKey{ID: "O0", Account: demoAccount}, changes[1].Key)
}

func TestParseMessage_OrderStatusCarriedVerbatim(t *testing.T) {
	order := `{"ID":"O1","Account":"A1[Demo]","Status":"PendingReview","Market":"ASX:TM[Demo]","TradingMarket":"ASX:TM[Demo]",
		"Currency":"AUD","EstimatedBrokerage":0,"CurrentBrokerage":0,"EstimatedTax":0,"CurrentTax":0,"CurrentValue":0,
		"CreatedDate":"2024-03-01T10:00:00.000+11:00","UpdatedDate":"2024-03-01T10:00:00.000+11:00","ExecutedQuantity":0,
		"Details":{"Exchange":"ASX","Code":"BHP","Side":"Bid","Type":"Limit","LimitPrice":41.5,"Quantity":100,"Validity":"GTC"},
		"Route":{"Algorithm":"Market","Market":"ASX:TM"}}`
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      "Orders!A1[Demo]",
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"O":"A","Order":` + order + `}]`),
	}
	var warnings []string

	got, err := newTestCodec(&warnings).ParseMessage(msg, domain.BrokerageAccountOrdersDefinition{Account: demoAccount})

	require.NoError(t, err)
	changes := got[0].(domain.BrokerageAccountOrdersDataMessage).Changes
	require.Len(t, changes, 1)
	assert.Equal(t, domain.OrderStatus("PendingReview"), changes[0].Data.Status)
	assert.Empty(t, warnings)
}

func TestParseMessage_MarketsDegradeUnknownValues(t *testing.T) {
	var warnings []string
	msg := zenith.Message{
		Controller: zenith.ControllerMarket,
		Topic:      zenith.TopicMarkets,
		Action:     zenith.ActionSub,
		Data: json.RawMessage(`[{"Code":"ASX:TM[Demo]","Feed":"Rebooting","Status":"Open",
			"States":[{"Name":"Open","Allows":"OrderPlace, OrderAmend, Teleport"}]}]`),
	}

	got, err := newTestCodec(&warnings).ParseMessage(msg, domain.MarketsDefinition{})
	require.NoError(t, err)
	markets := got[0].(domain.MarketsDataMessage).Markets
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, domain.DataEnvironmentDemo, m.Environment)
	assert.Equal(t, domain.FeedStatusInactive, m.FeedStatus)
	require.Len(t, m.TradingStates, 1)
	assert.True(t, m.TradingStates[0].Allows.Has(domain.AllowOrderPlace|domain.AllowOrderAmend))
	assert.False(t, m.TradingStates[0].Allows.Has(domain.AllowOrderCancel))
	assert.Equal(t, []string{
		string(domain.CodeUnknownFeedStatus) + ":Rebooting",
		string(domain.CodeUnknownTradingStateAllow) + ":Teleport",
	}, warnings)
}

func TestParseMessage_UnknownFeedClassFails(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerZenith,
		Topic:      zenith.TopicFeeds,
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`[{"Class":"Market","Name":"ASX","Status":"Active"},{"Class":"Weather","Name":"X","Status":"Active"}]`),
	}
	_, err := newTestCodec(nil).ParseMessage(msg, domain.FeedsDefinition{})
	requireDataCode(t, err, domain.CodeUnknownFeedClass)
}

func TestParseMessage_RejectsFramingActions(t *testing.T) {
	for _, action := range []zenith.Action{zenith.ActionError, zenith.ActionCancel, zenith.ActionUnsub, "Bogus"} {
		msg := zenith.Message{Controller: zenith.ControllerZenith, Topic: zenith.TopicFeeds, Action: action}
		_, err := newTestCodec(nil).ParseMessage(msg, domain.FeedsDefinition{})
		requireDataCode(t, err, domain.CodeUnexpectedAction)
	}
}

func TestParseMessage_PublishWithoutData(t *testing.T) {
	msg := zenith.Message{Controller: zenith.ControllerNotify, Topic: zenith.TopicQueryChannels, Action: zenith.ActionPublish}
	_, err := newTestCodec(nil).ParseMessage(msg, domain.NotificationChannelsDefinition{})
	requireDataCode(t, err, domain.CodeMissingData)

	ack := zenith.Message{Controller: zenith.ControllerWatchlist, Topic: zenith.TopicAddToWatchlist, Action: zenith.ActionPublish}
	got, err := newTestCodec(nil).ParseMessage(ack, domain.AddToWatchlistDefinition{WatchlistID: "W1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      zenith.TopicAccounts,
		Action:     zenith.ActionSub,
		Data:       json.RawMessage(`{"not":"an array"}`),
	}
	_, err := newTestCodec(nil).ParseMessage(msg, domain.BrokerageAccountsDefinition{})
	requireDataCode(t, err, domain.CodeInvalidJSON)
}

func TestParseMessage_OrderResponse(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerTrading,
		Topic:      zenith.TopicCancelOrder,
		Action:     zenith.ActionPublish,
		Data:       json.RawMessage(`{"Result":"Rejected","Errors":[{"Code":"OrderNotFound","Value":"O1"}]}`),
	}
	def := domain.CancelOrderRequestDefinition{Request: domain.CancelOrderRequest{Account: demoAccount, OrderID: "O1"}}

	got, err := newTestCodec(nil).ParseMessage(msg, def)
	require.NoError(t, err)
	resp := got[0].(domain.OrderResponseDataMessage).Response
	assert.Equal(t, domain.OrderRequestRejected, resp.Result)
	assert.Nil(t, resp.Order)
	assert.Equal(t, []domain.OrderRequestError{{Code: "OrderNotFound", Value: "O1"}}, resp.Errors)
}

func TestParseMessage_Watchlist(t *testing.T) {
	msg := zenith.Message{
		Controller: zenith.ControllerWatchlist,
		Topic:      "Watchlist!W1",
		Action:     zenith.ActionSub,
		Data: json.RawMessage(`{"Details":{"Name":"Miners","Description":null},
			"Members":[{"O":"Add","Symbols":["BHP.ASX:TM","RIO.ASX:TM"],"Index":0},{"O":"Remove","Symbols":["FMG.ASX:TM"]},{"O":"Clear"}]}`),
	}

	got, err := newTestCodec(nil).ParseMessage(msg, domain.WatchlistDefinition{WatchlistID: "W1"})
	require.NoError(t, err)
	wl := got[0].(domain.WatchlistDataMessage)
	require.NotNil(t, wl.Update)
	assert.Equal(t, domain.Set("Miners"), wl.Update.Name)
	assert.Equal(t, domain.PatchClear, wl.Update.Description.Kind)
	assert.Equal(t, domain.PatchUnchanged, wl.Update.Category.Kind)
	require.Len(t, wl.Changes, 3)
	assert.Equal(t, 0, wl.Changes[0].Index)
	assert.Len(t, wl.Changes[0].Members, 2)
	assert.Equal(t, -1, wl.Changes[1].Index)
	assert.Equal(t, domain.ChangeClear, wl.Changes[2].Type)
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"structured", `{"Code":"E1","Message":"no access"}`, "E1: no access"},
		{"string", `"server busy"`, "server busy"},
		{"list", `["a","b"]`, "a; b"},
		{"empty", ``, "Error Feeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := zenith.Message{Controller: zenith.ControllerZenith, Topic: zenith.TopicFeeds, Action: zenith.ActionError}
			if tt.data != "" {
				msg.Data = json.RawMessage(tt.data)
			}
			assert.Equal(t, tt.want, ErrorText(msg))
		})
	}
}

func TestAccountState_RoundTrip(t *testing.T) {
	data := domain.AccountData{
		ID:          "A1",
		Environment: domain.TradingEnvironmentDemo,
		Name:        domain.Set("Test"),
		Currency:    domain.Set(domain.CurrencyNzd),
		TradingFeed: domain.TradingFeedMotif,
		BranchCode:  domain.Clear[string](),
	}
	got, err := DecodeAccountState(EncodeAccountState(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOrder_RoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	data := domain.OrderData{
		ID:            "O1",
		AccountID:     "A1",
		Environment:   domain.TradingEnvironmentDemo,
		Status:        "Filled",
		Market:        domain.MarketChixAustLimit,
		TradingMarket: domain.MarketChixAustLimit,
		Currency:      domain.CurrencyAud,
		CreatedDate:   created,
		UpdatedDate:   created.Add(time.Minute),
		Details: domain.OrderDetails{
			Exchange:    domain.ExchangeCxa,
			Code:        "BHP",
			Side:        domain.OrderSideAsk,
			Type:        domain.OrderTypeMarket,
			Quantity:    decimal.NewFromInt(10),
			TimeInForce: domain.TimeInForceFillOrKill,
		},
		Route:   domain.OrderRoute{Algorithm: domain.OrderRouteBestMarket},
		Trigger: domain.OrderTrigger{TypeID: domain.OrderTriggerImmediate},
	}
	got, err := DecodeOrder(EncodeOrder(data), demoAccount)
	require.NoError(t, err)
	assert.True(t, got.CreatedDate.Equal(data.CreatedDate))
	got.CreatedDate, got.UpdatedDate = data.CreatedDate, data.UpdatedDate
	assert.Equal(t, data, got)
}
