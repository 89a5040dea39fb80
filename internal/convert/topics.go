package convert

import (
	"fmt"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

// DefinitionForTopic returns the definition a streaming topic belongs to.
// Requests whose responses depend on request parameters, such as chart
// history or order requests, have no topic-only definition and are reported
// as a topic mismatch.
func DefinitionForTopic(controller zenith.Controller, topic string) (domain.DataDefinition, error) {
	name, arg := zenith.SplitTopic(topic)
	mismatch := func() (domain.DataDefinition, error) {
		return nil, domain.NewDataError(domain.CodeTopicMismatch, fmt.Sprintf("no definition for %s/%s", controller, topic))
	}

	switch controller {
	case zenith.ControllerTrading:
		switch name {
		case zenith.TopicAccounts:
			return domain.BrokerageAccountsDefinition{}, nil
		case zenith.TopicHoldings, zenith.TopicOrders, zenith.TopicBalances:
			account, err := DecodeAccount(arg)
			if err != nil {
				return nil, fmt.Errorf("topic %s: %w", topic, err)
			}
			switch name {
			case zenith.TopicHoldings:
				return domain.BrokerageAccountHoldingsDefinition{Account: account}, nil
			case zenith.TopicOrders:
				return domain.BrokerageAccountOrdersDefinition{Account: account}, nil
			default:
				return domain.BrokerageAccountBalancesDefinition{Account: account}, nil
			}
		}
	case zenith.ControllerMarket:
		switch name {
		case zenith.TopicMarkets:
			return domain.MarketsDefinition{}, nil
		case zenith.TopicDepth, zenith.TopicTrades:
			litIvem, err := DecodeSymbol(arg)
			if err != nil {
				return nil, fmt.Errorf("topic %s: %w", topic, err)
			}
			if name == zenith.TopicDepth {
				return domain.DepthDefinition{LitIvem: litIvem}, nil
			}
			return domain.TradesDefinition{LitIvem: litIvem}, nil
		}
	case zenith.ControllerZenith:
		switch name {
		case zenith.TopicFeeds:
			return domain.FeedsDefinition{}, nil
		case zenith.TopicServerInfo:
			return domain.ServerInfoDefinition{}, nil
		}
	case zenith.ControllerWatchlist:
		switch name {
		case zenith.TopicQueryWatchlists:
			return domain.QueryWatchlistsDefinition{}, nil
		case zenith.TopicWatchlist:
			if arg == "" {
				return mismatch()
			}
			return domain.WatchlistDefinition{WatchlistID: arg}, nil
		}
	case zenith.ControllerNotify:
		if name == zenith.TopicQueryChannels {
			return domain.NotificationChannelsDefinition{}, nil
		}
	}
	return mismatch()
}
