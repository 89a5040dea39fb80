package convert

import (
	"fmt"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

// decodeFeedStatus degrades unknown statuses to Inactive, which reads as an
// error correctness, rather than failing the whole feeds message.
func (c *Codec) decodeFeedStatus(s string) domain.FeedStatusID {
	status, err := feedStatusTable.decode(s)
	if err != nil {
		c.warn.Warn(domain.CodeUnknownFeedStatus, s)
		return domain.FeedStatusInactive
	}
	return status
}

func (c *Codec) parseMarkets(msg zenith.Message) (domain.DataMessage, error) {
	markets, err := decodeEach(msg, c.decodeMarketState)
	if err != nil {
		return nil, err
	}
	return domain.MarketsDataMessage{Markets: markets}, nil
}

func (c *Codec) decodeMarketState(s zenith.MarketState) (domain.MarketInfo, error) {
	market, env, err := DecodeMarket(s.Code)
	if err != nil {
		return domain.MarketInfo{}, err
	}
	info := domain.MarketInfo{
		Market:      market,
		Environment: env,
		FeedStatus:  c.decodeFeedStatus(s.Feed),
		Status:      s.Status,
	}
	if info.TradingDate, err = decodeOptionalDateTime(s.TradingDate); err != nil {
		return info, err
	}
	if info.MarketTime, err = decodeOptionalDateTime(s.MarketTime); err != nil {
		return info, err
	}
	for _, st := range s.States {
		info.TradingStates = append(info.TradingStates, domain.TradingState{
			Name:   st.Name,
			Allows: DecodeTradingStateAllows(st.Allows, c.warn),
			Reason: st.Reason,
		})
	}
	return info, nil
}

func (c *Codec) parseFeeds(msg zenith.Message) (domain.DataMessage, error) {
	feeds, err := decodeEach(msg, func(s zenith.FeedState) (domain.FeedData, error) {
		class, err := feedClassTable.decode(s.Class)
		if err != nil {
			return domain.FeedData{}, err
		}
		return domain.FeedData{Class: class, Name: s.Name, Status: c.decodeFeedStatus(s.Status)}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.FeedsDataMessage{Feeds: feeds}, nil
}

func parseServerInfo(msg zenith.Message) (domain.DataMessage, error) {
	var s zenith.ServerInfo
	if err := unmarshalData(msg, &s); err != nil {
		return nil, err
	}
	return domain.ServerInfoDataMessage{Info: domain.ServerInfo{
		Name:            s.Name,
		Class:           s.Class,
		SoftwareVersion: s.SoftwareVersion,
		ProtocolVersion: s.ProtocolVersion,
	}}, nil
}

func (c *Codec) parseTrades(msg zenith.Message, litIvem domain.LitIvemID) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.TradeChange) (domain.TradeChange, error) {
		kind, err := changeTypeTable.decode(w.O)
		if err != nil {
			return domain.TradeChange{}, err
		}
		if kind == domain.ChangeClear {
			return domain.TradeChange{Type: kind}, nil
		}
		if w.Trade == nil {
			return domain.TradeChange{}, domain.NewDataError(domain.CodeMissingData, "trade "+w.O)
		}
		data, err := c.decodeTrade(*w.Trade)
		if err != nil {
			return domain.TradeChange{}, err
		}
		return domain.TradeChange{Type: kind, Data: &data}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.TradesDataMessage{LitIvem: litIvem, Changes: changes}, nil
}

func (c *Codec) decodeTrade(s zenith.Trade) (domain.TradeData, error) {
	d := domain.TradeData{
		ID:               s.ID,
		Price:            s.Price,
		Quantity:         s.Quantity,
		BuyDepthOrderID:  s.BuyDepthOrderID,
		SellDepthOrderID: s.SellDepthOrderID,
	}
	var err error
	if d.Time, err = decodeOptionalDateTime(s.Time); err != nil {
		return d, err
	}
	if s.Market != "" {
		if d.Market, _, err = DecodeMarket(s.Market); err != nil {
			return d, err
		}
	}
	for _, f := range s.Flags {
		flag, err := tradeFlagTable.decode(f)
		if err != nil {
			c.warn.Warn(domain.CodeUnknownTradeFlag, f)
			continue
		}
		d.Flags = append(d.Flags, flag)
	}
	return d, nil
}

func parseDepth(msg zenith.Message, litIvem domain.LitIvemID) (domain.DataMessage, error) {
	changes, err := decodeEach(msg, func(w zenith.DepthChange) (domain.DepthChange, error) {
		kind, err := depthChangeTypeTable.decode(w.O)
		if err != nil {
			return domain.DepthChange{}, err
		}
		switch kind {
		case domain.ChangeAdd, domain.ChangeUpdate:
			if w.Order == nil {
				return domain.DepthChange{}, domain.NewDataError(domain.CodeMissingData, "depth "+w.O)
			}
			order, err := decodeDepthOrder(*w.Order)
			if err != nil {
				return domain.DepthChange{}, err
			}
			return domain.DepthChange{Type: kind, Order: &order}, nil
		case domain.ChangeRemove:
			if w.ID == "" {
				return domain.DepthChange{}, domain.NewDataError(domain.CodeMissingData, "depth remove without ID")
			}
			return domain.DepthChange{Type: kind, OrderID: w.ID}, nil
		case domain.ChangeClear:
			return domain.DepthChange{Type: kind}, nil
		default:
			domain.PanicInternal(domain.CodeUnhandledEnum, "depth change "+string(kind))
			return domain.DepthChange{}, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return domain.DepthDataMessage{LitIvem: litIvem, Changes: changes}, nil
}

func decodeDepthOrder(s zenith.DepthOrder) (domain.DepthOrder, error) {
	d := domain.DepthOrder{
		ID:         s.ID,
		Price:      s.Price,
		Position:   s.Position,
		Broker:     s.Broker,
		Quantity:   s.Quantity,
		Attributes: s.Attributes,
	}
	var err error
	if d.Side, err = orderSideTable.decode(s.Side); err != nil {
		return d, err
	}
	if s.Market != "" {
		if d.Market, _, err = DecodeMarket(s.Market); err != nil {
			return d, err
		}
	}
	return d, nil
}

func parseChartHistory(msg zenith.Message, litIvem domain.LitIvemID) (domain.DataMessage, error) {
	records, err := decodeEach(msg, func(s zenith.ChartRecord) (domain.ChartRecord, error) {
		t, err := DecodeDateTime(s.Time)
		if err != nil {
			return domain.ChartRecord{}, err
		}
		return domain.ChartRecord{
			Time:   t,
			Open:   s.Open,
			High:   s.High,
			Low:    s.Low,
			Close:  s.Close,
			Volume: s.Volume,
			Trades: s.Trades,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.ChartHistoryDataMessage{LitIvem: litIvem, Records: records}, nil
}

func parseWatchlists(msg zenith.Message) (domain.DataMessage, error) {
	lists, err := decodeEach(msg, func(s zenith.WatchlistState) (domain.WatchlistData, error) {
		if s.ID == "" {
			return domain.WatchlistData{}, domain.NewDataError(domain.CodeMissingData, "watchlist ID")
		}
		return domain.WatchlistData{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Category:    s.Category,
			IsWritable:  s.IsWritable,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.WatchlistsDataMessage{Watchlists: lists}, nil
}

func parseWatchlist(msg zenith.Message, watchlistID string) (domain.DataMessage, error) {
	var w zenith.WatchlistUpdate
	if err := unmarshalData(msg, &w); err != nil {
		return nil, err
	}
	result := domain.WatchlistDataMessage{WatchlistID: watchlistID}
	if w.Details != nil {
		result.Update = &domain.WatchlistUpdate{
			Name:        patchOf(w.Details.Name),
			Description: patchOf(w.Details.Description),
			Category:    patchOf(w.Details.Category),
		}
	}
	for i, m := range w.Members {
		change, err := decodeWatchlistMemberChange(m)
		if err != nil {
			return nil, domain.AtIndex(i, err)
		}
		result.Changes = append(result.Changes, change)
	}
	return result, nil
}

func decodeWatchlistMemberChange(w zenith.WatchlistMemberChange) (domain.WatchlistMemberChange, error) {
	kind, err := changeTypeTable.decode(w.O)
	if err != nil {
		return domain.WatchlistMemberChange{}, err
	}
	change := domain.WatchlistMemberChange{Type: kind, Index: -1}
	switch kind {
	case domain.ChangeAdd, domain.ChangeRemove:
		if len(w.Symbols) == 0 {
			return change, domain.NewDataError(domain.CodeMissingData, "watchlist members "+w.O)
		}
		for i, raw := range w.Symbols {
			symbol, err := DecodeSymbol(raw)
			if err != nil {
				return change, fmt.Errorf("symbol %d: %w", i, err)
			}
			change.Members = append(change.Members, symbol)
		}
		if kind == domain.ChangeAdd && w.Index != nil {
			change.Index = *w.Index
		}
		return change, nil
	case domain.ChangeClear:
		return change, nil
	case domain.ChangeUpdate:
		return change, domain.NewDataError(domain.CodeUnknownChangeType, "watchlist members Update")
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "watchlist change "+string(kind))
		return change, nil
	}
}

func parseChannels(msg zenith.Message) (domain.DataMessage, error) {
	channels, err := decodeEach(msg, func(s zenith.NotificationChannel) (domain.NotificationChannel, error) {
		distribution, err := channelDistributionTable.decode(s.Distribution)
		if err != nil {
			return domain.NotificationChannel{}, err
		}
		return domain.NotificationChannel{
			ID:           s.ID,
			Name:         s.Name,
			Description:  s.Description,
			Enabled:      s.Enabled,
			Distribution: distribution,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.NotificationChannelsDataMessage{Channels: channels}, nil
}
