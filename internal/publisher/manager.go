package publisher

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/gammazero/deque"

	"zenith-sync/internal/convert"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

// ErrDuplicateSubscription is returned when a streaming topic already has a subscription.
var ErrDuplicateSubscription = errors.New("publisher: duplicate subscription")

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetryDelay     = 10 * time.Second
)

// Sender writes an outbound message to the transport.
type Sender interface {
	Send(msg zenith.Message) error
}

// Options configures a Manager.
type Options struct {
	Sender         Sender
	Codec          *convert.Codec
	RequestTimeout time.Duration // Default: 30s - publish requests fail after this
	RetryDelay     time.Duration // Default: 10s - errored subscriptions re-issue after this
	Now            func() time.Time
	Logger         *log.Logger
}

// Manager owns every subscription and the transaction id generator. It is
// driven from a single goroutine and is not safe for concurrent use.
type Manager struct {
	ids            TransactionIDGenerator
	sender         Sender
	codec          *convert.Codec
	requestTimeout time.Duration
	retryDelay     time.Duration
	now            func() time.Time
	logger         *log.Logger

	subs          []*Subscription
	byTransaction map[uint64]*Subscription
	byTopic       map[string]*Subscription

	outbound  deque.Deque[zenith.Message]
	connected bool
}

// NewManager creates a disconnected Manager.
func NewManager(opts Options) *Manager {
	requestTimeout := opts.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}
	retryDelay := opts.RetryDelay
	if retryDelay == 0 {
		retryDelay = defaultRetryDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	codec := opts.Codec
	if codec == nil {
		codec = convert.New(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		sender:         opts.Sender,
		codec:          codec,
		requestTimeout: requestTimeout,
		retryDelay:     retryDelay,
		now:            now,
		logger:         logger,
		byTransaction:  make(map[uint64]*Subscription),
		byTopic:        make(map[string]*Subscription),
	}
}

// Connected reports whether the transport is usable.
func (m *Manager) Connected() bool { return m.connected }

// ActiveCount returns the number of live subscriptions and outstanding requests.
func (m *Manager) ActiveCount() int { return len(m.subs) }

// PendingOutbound returns the number of queued outbound messages.
func (m *Manager) PendingOutbound() int { return m.outbound.Len() }

// LastTransactionID returns the most recently issued transaction id.
func (m *Manager) LastTransactionID() uint64 { return m.ids.Last() }

func topicKey(controller zenith.Controller, topic string) string {
	return string(controller) + "/" + topic
}

// Subscribe starts a subscription or request. Data messages are delivered to
// receiver on the goroutine that calls HandleMessage.
func (m *Manager) Subscribe(def domain.DataDefinition, receiver Receiver) (*Subscription, error) {
	controller, topic, err := convert.TopicFor(def)
	if err != nil {
		return nil, err
	}
	sub := &Subscription{def: def, receiver: receiver, state: StateInactive}
	if !def.Publish() {
		sub.topicKey = topicKey(controller, topic)
		if _, exists := m.byTopic[sub.topicKey]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, def.Description())
		}
		m.byTopic[sub.topicKey] = sub
	}
	m.subs = append(m.subs, sub)
	if m.connected {
		m.issue(sub)
		m.flush()
	}
	return sub, nil
}

// Unsubscribe ends a subscription. Unsubscribing twice, or after a request
// has completed, is a no-op.
func (m *Manager) Unsubscribe(sub *Subscription) {
	if sub == nil || !sub.active() {
		return
	}
	wasLive := sub.state == StateSubscribeSent || sub.state == StateSynchronised
	m.remove(sub)
	sub.state = StateUnsubscribed
	if sub.def.Publish() || !wasLive || !m.connected {
		return
	}
	msg, err := convert.CreateSubUnsubMessage(sub.def, zenith.ActionUnsub, m.ids.Next())
	if err != nil {
		m.logger.Printf("Error building unsubscribe for %s: %v", sub.def.Description(), err)
		return
	}
	m.outbound.PushBack(msg)
	m.flush()
}

// SetConnected records a transport state change. Losing the connection takes
// every subscription offline and fails outstanding order requests; regaining
// it re-issues everything that is not in error.
func (m *Manager) SetConnected(connected bool) {
	if connected == m.connected {
		return
	}
	m.connected = connected
	if !connected {
		for m.outbound.Len() > 0 {
			m.outbound.PopFront()
		}
		for _, sub := range slices.Clone(m.subs) {
			m.goOffline(sub)
		}
		return
	}
	for _, sub := range slices.Clone(m.subs) {
		if sub.state == StateInactive || sub.state == StateOffline {
			m.issue(sub)
		}
	}
	m.flush()
}

// Tick fails publish requests that have waited longer than the request
// timeout and re-issues errored streaming subscriptions whose retry delay
// has passed.
func (m *Manager) Tick() {
	now := m.now()
	for _, sub := range slices.Clone(m.subs) {
		if !sub.active() {
			continue
		}
		switch {
		case sub.state == StateResponseWaiting && now.Sub(sub.sentAt) >= m.requestTimeout:
			sub.addError("Request timed out")
			m.fail(sub, sub.ErrorText(), retryTypeFor(sub.def))
		case sub.state == StateError && !sub.def.Publish() && m.connected &&
			sub.retryType == domain.RetryDelay && now.Sub(sub.erroredAt) >= m.retryDelay:
			m.logger.Printf("Retrying %s after error: %s", sub.def.Description(), sub.ErrorText())
			m.issue(sub)
		}
	}
	m.flush()
}

// Retry re-issues a subscription in error unless its retry type is Never.
func (m *Manager) Retry(sub *Subscription) bool {
	if sub == nil || sub.state != StateError || sub.retryType == domain.RetryNever {
		return false
	}
	// Failed requests were removed from the table; streaming subscriptions were not.
	if !m.containsSub(sub) {
		m.subs = append(m.subs, sub)
	}
	if !m.connected {
		sub.state = StateOffline
		return true
	}
	m.issue(sub)
	m.flush()
	return true
}

// HandleMessage routes one inbound message to its subscription. Messages for
// subscriptions that no longer exist are dropped. A data error is returned
// after the subscription has been moved to the error state.
func (m *Manager) HandleMessage(msg zenith.Message) error {
	if msg.Action == zenith.ActionUnsub {
		return nil
	}
	sub := m.route(msg)
	if sub == nil {
		if msg.Action == zenith.ActionPublish && msg.TransactionID == 0 {
			return domain.NewDataError(domain.CodeMissingTransactionID, msg.Topic)
		}
		return nil
	}
	switch msg.Action {
	case zenith.ActionSub:
		return m.handleData(sub, msg)
	case zenith.ActionPublish:
		if sub.def.Publish() {
			return m.handlePublishResponse(sub, msg)
		}
		return m.handleData(sub, msg)
	case zenith.ActionError:
		sub.addError(convert.ErrorText(msg))
		if sub.def.Publish() {
			return nil
		}
		m.fail(sub, sub.ErrorText(), domain.RetryDelay)
		return nil
	case zenith.ActionCancel:
		sub.addError("Cancelled by server: " + convert.ErrorText(msg))
		m.fail(sub, sub.ErrorText(), retryTypeFor(sub.def))
		return nil
	default:
		return domain.NewDataError(domain.CodeUnexpectedAction, fmt.Sprintf("%q on %s", msg.Action, msg.Topic))
	}
}

func (m *Manager) route(msg zenith.Message) *Subscription {
	if msg.TransactionID != 0 {
		if sub, ok := m.byTransaction[msg.TransactionID]; ok {
			return sub
		}
	}
	sub, ok := m.byTopic[topicKey(msg.Controller, msg.Topic)]
	if !ok || sub.state == StateError || sub.state == StateOffline {
		return nil
	}
	return sub
}

func (m *Manager) handleData(sub *Subscription, msg zenith.Message) error {
	messages, err := m.codec.ParseMessage(msg, sub.def)
	if err != nil {
		sub.addError(err.Error())
		m.fail(sub, sub.ErrorText(), retryTypeFor(sub.def))
		return err
	}
	if !m.deliver(sub, messages) {
		return nil
	}
	if sub.state == StateSubscribeSent && msg.TransactionID == sub.transactionID {
		sub.state = StateSynchronised
		delete(m.byTransaction, sub.transactionID)
		sub.receiver.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	}
	return nil
}

func (m *Manager) handlePublishResponse(sub *Subscription, msg zenith.Message) error {
	if sub.errorWarningCount > 0 {
		m.fail(sub, sub.ErrorText(), retryTypeFor(sub.def))
		return nil
	}
	messages, err := m.codec.ParseMessage(msg, sub.def)
	if err != nil {
		sub.addError(err.Error())
		m.fail(sub, sub.ErrorText(), retryTypeFor(sub.def))
		return err
	}
	m.remove(sub)
	sub.state = StateSynchronised
	if m.deliver(sub, messages) {
		sub.receiver.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	}
	return nil
}

// deliver hands messages to the receiver, stopping if the receiver
// unsubscribes part way through. It reports whether the subscription is
// still active.
func (m *Manager) deliver(sub *Subscription, messages []domain.DataMessage) bool {
	for _, dm := range messages {
		if !sub.active() {
			return false
		}
		sub.receiver.ReceiveDataMessage(dm)
	}
	return sub.active()
}

// fail moves sub to the error state and tells the receiver. Streaming
// subscriptions stay registered so Tick can retry them; requests are removed.
func (m *Manager) fail(sub *Subscription, text string, retry domain.AllowedRetryTypeID) {
	delete(m.byTransaction, sub.transactionID)
	if sub.def.Publish() {
		m.remove(sub)
	}
	sub.state = StateError
	sub.retryType = retry
	sub.erroredAt = m.now()
	sub.receiver.ReceiveDataMessage(domain.ErrorPublisherSubscriptionDataMessage{
		ErrorText:        domain.Truncate(text),
		AllowedRetryType: retry,
	})
}

func (m *Manager) goOffline(sub *Subscription) {
	delete(m.byTransaction, sub.transactionID)
	if domain.IsOrderRequest(sub.def) && sub.state == StateResponseWaiting {
		sub.addError("Connection lost before response")
		m.fail(sub, sub.ErrorText(), domain.RetryNever)
		return
	}
	if sub.state == StateError {
		return
	}
	sub.state = StateOffline
	sub.receiver.ReceiveDataMessage(domain.OfflinePublisherSubscriptionDataMessage{Reason: "Connection lost"})
}

func (m *Manager) issue(sub *Subscription) {
	txID := m.ids.Next()
	msg, err := convert.CreateRequestMessage(sub.def, txID)
	if err != nil {
		m.logger.Printf("Error building request for %s: %v", sub.def.Description(), err)
		sub.addError(err.Error())
		m.fail(sub, sub.ErrorText(), domain.RetryNever)
		return
	}
	sub.resetErrors()
	sub.transactionID = txID
	sub.sentAt = m.now()
	if sub.def.Publish() {
		sub.state = StateResponseWaiting
	} else {
		sub.state = StateSubscribeSent
	}
	m.byTransaction[txID] = sub
	m.outbound.PushBack(msg)
}

func (m *Manager) flush() {
	if !m.connected || m.sender == nil {
		return
	}
	for m.outbound.Len() > 0 {
		msg := m.outbound.Front()
		if err := m.sender.Send(msg); err != nil {
			m.logger.Printf("Error sending %s %s: %v", msg.Action, msg.Topic, err)
			return
		}
		m.outbound.PopFront()
	}
}

func (m *Manager) remove(sub *Subscription) {
	delete(m.byTransaction, sub.transactionID)
	if sub.topicKey != "" && m.byTopic[sub.topicKey] == sub {
		delete(m.byTopic, sub.topicKey)
	}
	if i := slices.Index(m.subs, sub); i >= 0 {
		m.subs = slices.Delete(m.subs, i, i+1)
	}
}

func (m *Manager) containsSub(sub *Subscription) bool {
	return slices.Contains(m.subs, sub)
}
