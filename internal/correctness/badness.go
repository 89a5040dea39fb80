package correctness

import "fmt"

// ReasonID explains why a data source is not fully good.
type ReasonID int

const (
	NotBadReason ReasonID = iota
	Inactive
	Custom
	CommunicationsWaiting
	CommunicationsError
	PublisherSubscriptionSubscribing
	PublisherSubscriptionWaiting
	PublisherSubscriptionError
	PublisherSubscriptionOffline
	PublisherSubscriptionUnsubscribed
	NoAuthorityFeed
	FeedsWaiting
	FeedsError
	FeedWaiting
	FeedError
	FeedNotAvailable
	BrokerageAccountsWaiting
	BrokerageAccountsError
	BrokerageAccountWaiting
	BrokerageAccountError
	BrokerageAccountNotAvailable
	BrokerageAccountDataListsWaiting
	BrokerageAccountDataListsError
	OrderStatusesWaiting
	OrderStatusesError
	MarketsWaiting
	MarketsError
	WatchlistWaiting
	WatchlistError
)

type reasonInfo struct {
	name        string
	correctness ID
	display     string
}

// Keyed by ReasonID so table order can never drift from the constant order.
var reasons = map[ReasonID]reasonInfo{
	NotBadReason:                      {"NotBad", Good, ""},
	Inactive:                          {"Inactive", Suspect, "Inactive"},
	Custom:                            {"Custom", Error, "Error"},
	CommunicationsWaiting:             {"CommunicationsWaiting", Suspect, "Waiting for connection"},
	CommunicationsError:               {"CommunicationsError", Error, "Communications error"},
	PublisherSubscriptionSubscribing:  {"PublisherSubscriptionSubscribing", Suspect, "Subscribing"},
	PublisherSubscriptionWaiting:      {"PublisherSubscriptionWaiting", Suspect, "Waiting for data"},
	PublisherSubscriptionError:        {"PublisherSubscriptionError", Error, "Subscription error"},
	PublisherSubscriptionOffline:      {"PublisherSubscriptionOffline", Suspect, "Offline"},
	PublisherSubscriptionUnsubscribed: {"PublisherSubscriptionUnsubscribed", Suspect, "Unsubscribed"},
	NoAuthorityFeed:                   {"NoAuthorityFeed", Error, "No authority feed"},
	FeedsWaiting:                      {"FeedsWaiting", Suspect, "Waiting for feeds"},
	FeedsError:                        {"FeedsError", Error, "Feeds error"},
	FeedWaiting:                       {"FeedWaiting", Suspect, "Waiting for feed"},
	FeedError:                         {"FeedError", Error, "Feed error"},
	FeedNotAvailable:                  {"FeedNotAvailable", Error, "Feed not available"},
	BrokerageAccountsWaiting:          {"BrokerageAccountsWaiting", Suspect, "Waiting for accounts"},
	BrokerageAccountsError:            {"BrokerageAccountsError", Error, "Accounts error"},
	BrokerageAccountWaiting:           {"BrokerageAccountWaiting", Suspect, "Waiting for account"},
	BrokerageAccountError:             {"BrokerageAccountError", Error, "Account error"},
	BrokerageAccountNotAvailable:      {"BrokerageAccountNotAvailable", Error, "Account not available"},
	BrokerageAccountDataListsWaiting:  {"BrokerageAccountDataListsWaiting", Suspect, "Waiting for account data"},
	BrokerageAccountDataListsError:    {"BrokerageAccountDataListsError", Error, "Account data error"},
	OrderStatusesWaiting:              {"OrderStatusesWaiting", Suspect, "Waiting for order statuses"},
	OrderStatusesError:                {"OrderStatusesError", Error, "Order statuses error"},
	MarketsWaiting:                    {"MarketsWaiting", Suspect, "Waiting for markets"},
	MarketsError:                      {"MarketsError", Error, "Markets error"},
	WatchlistWaiting:                  {"WatchlistWaiting", Suspect, "Waiting for watchlist"},
	WatchlistError:                    {"WatchlistError", Error, "Watchlist error"},
}

func (r ReasonID) info() reasonInfo {
	info, ok := reasons[r]
	if !ok {
		panic(fmt.Sprintf("correctness: unknown badness reason %d", int(r)))
	}
	return info
}

// String returns the stable name of the reason.
func (r ReasonID) String() string {
	return r.info().name
}

// Correctness returns the correctness a source has while it carries this reason.
func (r ReasonID) Correctness() ID {
	return r.info().correctness
}

// Badness is a reason plus free text elaboration, usually upstream error text.
type Badness struct {
	ReasonID    ReasonID
	ReasonExtra string
}

// NotBad is the canonical nothing-wrong value.
var NotBad = Badness{ReasonID: NotBadReason}

// New creates a Badness with extra text.
func New(reason ReasonID, extra string) Badness {
	return Badness{ReasonID: reason, ReasonExtra: extra}
}

// IsGood reports whether b is NotBad.
func (b Badness) IsGood() bool {
	return b.ReasonID == NotBadReason
}

// Correctness returns the correctness implied by the reason.
func (b Badness) Correctness() ID {
	return b.ReasonID.Correctness()
}

// IsUsable reports whether data carrying this badness is usable.
func (b Badness) IsUsable() bool {
	return IsUsable(b.Correctness())
}

// Equal compares reason and extra text.
func (b Badness) Equal(other Badness) bool {
	return b.ReasonID == other.ReasonID && b.ReasonExtra == other.ReasonExtra
}

// Display returns text suitable for a status bar.
func (b Badness) Display() string {
	display := b.ReasonID.info().display
	if b.ReasonExtra == "" {
		return display
	}
	if display == "" {
		return b.ReasonExtra
	}
	return display + ": " + b.ReasonExtra
}

func (b Badness) String() string {
	if b.ReasonExtra == "" {
		return b.ReasonID.String()
	}
	return fmt.Sprintf("%s(%s)", b.ReasonID, b.ReasonExtra)
}

// First returns the first badness with the worst correctness among candidates.
// Ties keep the earlier candidate so callers can order by specificity.
func First(candidates ...Badness) Badness {
	result := NotBad
	for _, b := range candidates {
		if b.Correctness() > result.Correctness() {
			result = b
		}
	}
	return result
}
