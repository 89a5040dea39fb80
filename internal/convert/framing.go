package convert

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

// Codec parses inbound messages. It holds no mutable state; the Warner only
// observes values degraded to defaults.
type Codec struct {
	warn Warner
}

// New creates a Codec. A nil warner logs through log.Default.
func New(warn Warner) *Codec {
	if warn == nil {
		warn = LogWarner{Logger: log.Default()}
	}
	return &Codec{warn: warn}
}

// TopicFor returns the controller and topic a definition subscribes or publishes to.
func TopicFor(def domain.DataDefinition) (zenith.Controller, string, error) {
	switch d := def.(type) {
	case domain.BrokerageAccountsDefinition:
		return zenith.ControllerTrading, zenith.TopicAccounts, nil
	case domain.BrokerageAccountHoldingsDefinition:
		return zenith.ControllerTrading, zenith.MakeTopic(zenith.TopicHoldings, EncodeAccount(d.Account)), nil
	case domain.BrokerageAccountOrdersDefinition:
		return zenith.ControllerTrading, zenith.MakeTopic(zenith.TopicOrders, EncodeAccount(d.Account)), nil
	case domain.BrokerageAccountBalancesDefinition:
		return zenith.ControllerTrading, zenith.MakeTopic(zenith.TopicBalances, EncodeAccount(d.Account)), nil
	case domain.QueryTransactionsDefinition:
		return zenith.ControllerTrading, zenith.TopicQueryTransactions, nil
	case domain.PlaceOrderRequestDefinition:
		return zenith.ControllerTrading, zenith.TopicPlaceOrder, nil
	case domain.AmendOrderRequestDefinition:
		return zenith.ControllerTrading, zenith.TopicAmendOrder, nil
	case domain.CancelOrderRequestDefinition:
		return zenith.ControllerTrading, zenith.TopicCancelOrder, nil
	case domain.MoveOrderRequestDefinition:
		return zenith.ControllerTrading, zenith.TopicMoveOrder, nil
	case domain.MarketsDefinition:
		return zenith.ControllerMarket, zenith.TopicMarkets, nil
	case domain.DepthDefinition:
		symbol, err := EncodeSymbol(d.LitIvem)
		if err != nil {
			return "", "", err
		}
		return zenith.ControllerMarket, zenith.MakeTopic(zenith.TopicDepth, symbol), nil
	case domain.TradesDefinition:
		symbol, err := EncodeSymbol(d.LitIvem)
		if err != nil {
			return "", "", err
		}
		return zenith.ControllerMarket, zenith.MakeTopic(zenith.TopicTrades, symbol), nil
	case domain.QueryChartHistoryDefinition:
		return zenith.ControllerMarket, zenith.TopicQueryChartHistory, nil
	case domain.FeedsDefinition:
		return zenith.ControllerZenith, zenith.TopicFeeds, nil
	case domain.ServerInfoDefinition:
		return zenith.ControllerZenith, zenith.TopicServerInfo, nil
	case domain.QueryWatchlistsDefinition:
		return zenith.ControllerWatchlist, zenith.TopicQueryWatchlists, nil
	case domain.WatchlistDefinition:
		return zenith.ControllerWatchlist, zenith.MakeTopic(zenith.TopicWatchlist, d.WatchlistID), nil
	case domain.AddToWatchlistDefinition:
		return zenith.ControllerWatchlist, zenith.TopicAddToWatchlist, nil
	case domain.NotificationChannelsDefinition:
		return zenith.ControllerNotify, zenith.TopicQueryChannels, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("%T", def))
		return "", "", nil
	}
}

// CreateRequestMessage builds the message that starts a subscription or request.
func CreateRequestMessage(def domain.DataDefinition, transactionID uint64) (zenith.Message, error) {
	if def.Publish() {
		return CreatePublishMessage(def, transactionID)
	}
	return CreateSubUnsubMessage(def, zenith.ActionSub, transactionID)
}

// CreateSubUnsubMessage builds a Sub or Unsub message for a streaming definition.
func CreateSubUnsubMessage(def domain.DataDefinition, action zenith.Action, transactionID uint64) (zenith.Message, error) {
	if def.Publish() {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, "sub/unsub of publish definition "+def.Description())
	}
	if action != zenith.ActionSub && action != zenith.ActionUnsub {
		domain.PanicInternal(domain.CodeUnhandledEnum, "sub/unsub action "+string(action))
	}
	controller, topic, err := TopicFor(def)
	if err != nil {
		return zenith.Message{}, err
	}
	return zenith.Message{
		Controller:    controller,
		Topic:         topic,
		Action:        action,
		TransactionID: transactionID,
	}, nil
}

// CreatePublishMessage builds a Publish message carrying the request payload.
func CreatePublishMessage(def domain.DataDefinition, transactionID uint64) (zenith.Message, error) {
	if !def.Publish() {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, "publish of streaming definition "+def.Description())
	}
	controller, topic, err := TopicFor(def)
	if err != nil {
		return zenith.Message{}, err
	}
	payload, err := encodeRequestData(def)
	if err != nil {
		return zenith.Message{}, err
	}
	msg := zenith.Message{
		Controller:    controller,
		Topic:         topic,
		Action:        zenith.ActionPublish,
		TransactionID: transactionID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return zenith.Message{}, fmt.Errorf("marshal %s request: %w", topic, err)
		}
		msg.Data = data
	}
	return msg, nil
}

func encodeRequestData(def domain.DataDefinition) (any, error) {
	switch d := def.(type) {
	case domain.QueryTransactionsDefinition:
		return zenith.QueryTransactionsRequest{
			Account:  EncodeAccount(d.Account),
			FromDate: encodeOptionalDateTime(d.FromDate),
			ToDate:   encodeOptionalDateTime(d.ToDate),
			Count:    d.Count,
		}, nil
	case domain.QueryChartHistoryDefinition:
		symbol, err := EncodeSymbol(d.LitIvem)
		if err != nil {
			return nil, err
		}
		return zenith.QueryChartHistoryRequest{
			Symbol:   symbol,
			Interval: chartIntervalTable.encode(d.Interval),
			FromDate: encodeOptionalDateTime(d.FromDate),
			ToDate:   encodeOptionalDateTime(d.ToDate),
			Count:    d.Count,
		}, nil
	case domain.QueryWatchlistsDefinition, domain.NotificationChannelsDefinition:
		return nil, nil
	case domain.AddToWatchlistDefinition:
		members := make([]string, 0, len(d.Members))
		for i, m := range d.Members {
			symbol, err := EncodeSymbol(m)
			if err != nil {
				return nil, domain.AtIndex(i, err)
			}
			members = append(members, symbol)
		}
		return zenith.AddToWatchlistRequest{WatchlistID: d.WatchlistID, Members: members}, nil
	case domain.PlaceOrderRequestDefinition:
		return encodePlaceOrder(d.Request), nil
	case domain.AmendOrderRequestDefinition:
		return encodeAmendOrder(d.Request), nil
	case domain.CancelOrderRequestDefinition:
		return zenith.CancelOrderRequest{
			Account: EncodeAccount(d.Request.Account),
			OrderID: d.Request.OrderID,
			Flags:   encodeFlags(d.Request.Flags),
		}, nil
	case domain.MoveOrderRequestDefinition:
		return zenith.MoveOrderRequest{
			Account:     EncodeAccount(d.Request.Account),
			OrderID:     d.Request.OrderID,
			Destination: d.Request.DestinationAccount,
			Flags:       encodeFlags(d.Request.Flags),
		}, nil
	default:
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("publish %T", def))
		return nil, nil
	}
}

// CheckMessage verifies the message belongs to the definition's controller and topic.
func CheckMessage(msg zenith.Message, def domain.DataDefinition) error {
	controller, topic, err := TopicFor(def)
	if err != nil {
		return err
	}
	if msg.Controller != controller {
		return domain.NewDataError(domain.CodeControllerMismatch,
			fmt.Sprintf("expected %s, got %s (topic %s)", controller, msg.Controller, msg.Topic))
	}
	if msg.Topic != topic {
		return domain.NewDataError(domain.CodeTopicMismatch,
			fmt.Sprintf("expected %s, got %s", topic, msg.Topic))
	}
	return nil
}

// ParseMessage converts a Sub or Publish payload into data messages.
// Error, Cancel and Unsub frames carry no topic data and are rejected.
func (c *Codec) ParseMessage(msg zenith.Message, def domain.DataDefinition) ([]domain.DataMessage, error) {
	if err := CheckMessage(msg, def); err != nil {
		return nil, err
	}
	switch msg.Action {
	case zenith.ActionSub:
		if !msg.HasData() {
			return nil, nil
		}
		return c.parseData(msg, def)
	case zenith.ActionPublish:
		if !msg.HasData() {
			if _, ok := def.(domain.AddToWatchlistDefinition); ok {
				return nil, nil
			}
			return nil, domain.NewDataError(domain.CodeMissingData, msg.Topic)
		}
		return c.parseData(msg, def)
	case zenith.ActionError, zenith.ActionCancel, zenith.ActionUnsub:
		return nil, domain.NewDataError(domain.CodeUnexpectedAction, fmt.Sprintf("%s on %s", msg.Action, msg.Topic))
	default:
		return nil, domain.NewDataError(domain.CodeUnexpectedAction, fmt.Sprintf("%q on %s", msg.Action, msg.Topic))
	}
}

func (c *Codec) parseData(msg zenith.Message, def domain.DataDefinition) ([]domain.DataMessage, error) {
	var (
		dm  domain.DataMessage
		err error
	)
	switch d := def.(type) {
	case domain.BrokerageAccountsDefinition:
		dm, err = parseAccounts(msg)
	case domain.BrokerageAccountHoldingsDefinition:
		dm, err = parseHoldings(msg, d.Account)
	case domain.BrokerageAccountOrdersDefinition:
		dm, err = parseOrders(msg, d.Account)
	case domain.BrokerageAccountBalancesDefinition:
		dm, err = parseBalances(msg, d.Account)
	case domain.QueryTransactionsDefinition:
		dm, err = parseTransactions(msg, d.Account)
	case domain.PlaceOrderRequestDefinition:
		dm, err = parseOrderResponse(msg, d.Request.Account)
	case domain.AmendOrderRequestDefinition:
		dm, err = parseOrderResponse(msg, d.Request.Account)
	case domain.CancelOrderRequestDefinition:
		dm, err = parseOrderResponse(msg, d.Request.Account)
	case domain.MoveOrderRequestDefinition:
		dm, err = parseOrderResponse(msg, d.Request.Account)
	case domain.MarketsDefinition:
		dm, err = c.parseMarkets(msg)
	case domain.FeedsDefinition:
		dm, err = c.parseFeeds(msg)
	case domain.DepthDefinition:
		dm, err = parseDepth(msg, d.LitIvem)
	case domain.TradesDefinition:
		dm, err = c.parseTrades(msg, d.LitIvem)
	case domain.ServerInfoDefinition:
		dm, err = parseServerInfo(msg)
	case domain.QueryChartHistoryDefinition:
		dm, err = parseChartHistory(msg, d.LitIvem)
	case domain.QueryWatchlistsDefinition:
		dm, err = parseWatchlists(msg)
	case domain.WatchlistDefinition:
		dm, err = parseWatchlist(msg, d.WatchlistID)
	case domain.AddToWatchlistDefinition:
		return nil, nil
	case domain.NotificationChannelsDefinition:
		dm, err = parseChannels(msg)
	default:
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("parse %T", def))
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", msg.Controller, msg.Topic, err)
	}
	return []domain.DataMessage{dm}, nil
}

// ErrorText extracts the reason carried by an Error or Cancel frame.
func ErrorText(msg zenith.Message) string {
	if !msg.HasData() {
		return string(msg.Action) + " " + msg.Topic
	}
	var structured zenith.ErrorData
	if err := json.Unmarshal(msg.Data, &structured); err == nil && structured.Message != "" {
		if structured.Code != "" {
			return structured.Code + ": " + structured.Message
		}
		return structured.Message
	}
	var text string
	if err := json.Unmarshal(msg.Data, &text); err == nil {
		return text
	}
	var texts []string
	if err := json.Unmarshal(msg.Data, &texts); err == nil {
		return strings.Join(texts, "; ")
	}
	return domain.Truncate(string(msg.Data))
}

func unmarshalData(msg zenith.Message, v any) error {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return domain.NewDataError(domain.CodeInvalidJSON, fmt.Sprintf("%v: %s", err, msg.Data))
	}
	return nil
}

// decodeEach unmarshals a JSON array element by element so a failure carries
// the index of the element that caused it.
func decodeEach[W any, D any](msg zenith.Message, fn func(W) (D, error)) ([]D, error) {
	var raws []json.RawMessage
	if err := unmarshalData(msg, &raws); err != nil {
		return nil, err
	}
	out := make([]D, 0, len(raws))
	for i, raw := range raws {
		var w W
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, domain.AtIndex(i, domain.NewDataError(domain.CodeInvalidJSON, fmt.Sprintf("%v: %s", err, raw)))
		}
		d, err := fn(w)
		if err != nil {
			return nil, domain.AtIndex(i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func patchOf[T any](f zenith.Field[T]) domain.Patch[T] {
	switch f.State {
	case zenith.FieldAbsent:
		return domain.Patch[T]{}
	case zenith.FieldNull:
		return domain.Clear[T]()
	case zenith.FieldPresent:
		return domain.Set(f.Value)
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "field state")
		return domain.Patch[T]{}
	}
}

func mapPatch[W any, D any](f zenith.Field[W], fn func(W) (D, error)) (domain.Patch[D], error) {
	if f.State != zenith.FieldPresent {
		switch f.State {
		case zenith.FieldNull:
			return domain.Clear[D](), nil
		default:
			return domain.Patch[D]{}, nil
		}
	}
	v, err := fn(f.Value)
	if err != nil {
		return domain.Patch[D]{}, err
	}
	return domain.Set(v), nil
}

func fieldOf[T any](p domain.Patch[T]) zenith.Field[T] {
	switch p.Kind {
	case domain.PatchUnchanged:
		return zenith.Field[T]{}
	case domain.PatchClear:
		return zenith.Null[T]()
	case domain.PatchSet:
		return zenith.Present(p.Value)
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "patch kind")
		return zenith.Field[T]{}
	}
}
