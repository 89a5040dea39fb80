package publisher

import (
	"strings"
	"time"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
)

// State is the lifecycle position of a subscription.
type State int

const (
	// StateInactive: created, not yet sent.
	StateInactive State = iota
	// StateSubscribeSent: Sub sent, initial image not yet received.
	StateSubscribeSent
	// StateResponseWaiting: publish request sent, response not yet received.
	StateResponseWaiting
	StateSynchronised
	// StateOffline: connection lost; re-issued on reconnect.
	StateOffline
	StateUnsubscribed
	StateError
)

var stateNames = map[State]string{
	StateInactive:        "Inactive",
	StateSubscribeSent:   "SubscribeSent",
	StateResponseWaiting: "ResponseWaiting",
	StateSynchronised:    "Synchronised",
	StateOffline:         "Offline",
	StateUnsubscribed:    "Unsubscribed",
	StateError:           "Error",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledEnum, "subscription state")
	}
	return name
}

// Receiver consumes the data messages produced for one subscription.
type Receiver interface {
	ReceiveDataMessage(msg domain.DataMessage)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(msg domain.DataMessage)

func (f ReceiverFunc) ReceiveDataMessage(msg domain.DataMessage) {
	f(msg)
}

// Subscription is one logical subscription or request. It is created by
// Manager.Subscribe and only mutated by the Manager.
type Subscription struct {
	def      domain.DataDefinition
	receiver Receiver
	topicKey string

	transactionID     uint64
	state             State
	errorWarningCount int
	errorTexts        []string
	retryType         domain.AllowedRetryTypeID
	sentAt            time.Time
	erroredAt         time.Time
}

// Definition returns what the subscription asked for.
func (s *Subscription) Definition() domain.DataDefinition { return s.def }

// TransactionID returns the id of the most recent request, or 0 if none was sent.
func (s *Subscription) TransactionID() uint64 { return s.transactionID }

// State returns the current lifecycle state.
func (s *Subscription) State() State { return s.state }

// ErrorWarningCount returns the number of Error frames received for the current request.
func (s *Subscription) ErrorWarningCount() int { return s.errorWarningCount }

// ErrorText returns the accumulated error text of the current request.
func (s *Subscription) ErrorText() string { return strings.Join(s.errorTexts, "; ") }

// RetryType returns the retry classification of the last error.
func (s *Subscription) RetryType() domain.AllowedRetryTypeID { return s.retryType }

// Badness describes the subscription state for list correctness.
func (s *Subscription) Badness() correctness.Badness {
	switch s.state {
	case StateInactive:
		return correctness.New(correctness.Inactive, "")
	case StateSubscribeSent:
		return correctness.New(correctness.PublisherSubscriptionSubscribing, "")
	case StateResponseWaiting:
		return correctness.New(correctness.PublisherSubscriptionWaiting, "")
	case StateSynchronised:
		return correctness.NotBad
	case StateOffline:
		return correctness.New(correctness.PublisherSubscriptionOffline, "")
	case StateUnsubscribed:
		return correctness.New(correctness.PublisherSubscriptionUnsubscribed, "")
	case StateError:
		return correctness.New(correctness.PublisherSubscriptionError, s.ErrorText())
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "subscription state")
		return correctness.NotBad
	}
}

func (s *Subscription) active() bool {
	return s.state != StateUnsubscribed
}

func (s *Subscription) awaitingResponse() bool {
	return s.state == StateSubscribeSent || s.state == StateResponseWaiting
}

func (s *Subscription) resetErrors() {
	s.errorWarningCount = 0
	s.errorTexts = nil
}

func (s *Subscription) addError(text string) {
	s.errorWarningCount++
	s.errorTexts = append(s.errorTexts, text)
}

// retryTypeFor classifies how a failed request may be re-issued. Order
// requests are never retried since a repeat could duplicate a trade.
func retryTypeFor(def domain.DataDefinition) domain.AllowedRetryTypeID {
	if domain.IsOrderRequest(def) {
		return domain.RetryNever
	}
	return domain.RetryDelay
}
