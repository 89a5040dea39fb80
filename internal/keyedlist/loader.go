package keyedlist

import (
	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
)

// Reasons are the badness reasons a subscription-backed list reports.
type Reasons struct {
	Waiting correctness.ReasonID
	Error   correctness.ReasonID
}

// Loader drives a list's usability from publisher status messages.
//
// After the publisher reports an error or goes offline, the next data message
// starts a fresh image, so records left from the previous image are cleared
// first. After a local apply error the list ignores data until Restart, since
// later deltas would be applied to a view that no longer matches the server.
type Loader[R Record] struct {
	list    *List[R]
	reasons Reasons
	stale   bool
	failed  bool
	onError func(error)
}

// NewLoader marks list as waiting for its first image.
func NewLoader[R Record](list *List[R], reasons Reasons) *Loader[R] {
	list.SetUnusable(correctness.New(reasons.Waiting, ""))
	return &Loader[R]{list: list, reasons: reasons}
}

// BeginData must be called before a data message is applied. It reports
// false if the message must be dropped.
func (ld *Loader[R]) BeginData() bool {
	if ld.failed {
		return false
	}
	if ld.stale {
		ld.stale = false
		ld.list.Clear()
		ld.list.SetUnusable(correctness.New(ld.reasons.Waiting, ""))
	}
	return true
}

// ApplyStatus handles the publisher status messages. It reports false for
// data messages, which the caller applies itself.
func (ld *Loader[R]) ApplyStatus(msg domain.DataMessage) bool {
	switch m := msg.(type) {
	case domain.SynchronisedPublisherSubscriptionDataMessage:
		if ld.BeginData() {
			ld.list.SetUsable(correctness.NotBad)
		}
	case domain.ErrorPublisherSubscriptionDataMessage:
		ld.failed = false
		ld.stale = true
		ld.list.SetUnusable(correctness.New(ld.reasons.Error, m.ErrorText))
	case domain.OfflinePublisherSubscriptionDataMessage:
		ld.failed = false
		ld.stale = true
		ld.list.SetUnusable(correctness.New(correctness.PublisherSubscriptionOffline, m.Reason))
	default:
		return false
	}
	return true
}

// Failed reports whether a local apply error is waiting for Restart.
func (ld *Loader[R]) Failed() bool { return ld.failed }

// SetErrorHandler registers a function told about every reported error.
func (ld *Loader[R]) SetErrorHandler(h func(error)) {
	ld.onError = h
}

// Report fails the list with err, usually a data error raised while applying
// a message.
func (ld *Loader[R]) Report(err error) {
	ld.failed = true
	ld.stale = true
	ld.list.SetUnusable(correctness.New(ld.reasons.Error, domain.Truncate(err.Error())))
	if ld.onError != nil {
		ld.onError(err)
	}
}

// Restart prepares the list for a new subscription image.
func (ld *Loader[R]) Restart() {
	ld.failed = false
	ld.stale = true
	ld.list.SetUnusable(correctness.New(ld.reasons.Waiting, ""))
}
