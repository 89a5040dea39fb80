// Package session runs the client side of a Zenith connection: it drives the
// publisher manager from transport traffic on one goroutine and keeps the
// standing lists subscribed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gammazero/deque"

	"zenith-sync/internal/brokerage"
	"zenith-sync/internal/convert"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/feed"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/observability"
	"zenith-sync/internal/publisher"
	"zenith-sync/internal/storage"
	"zenith-sync/internal/transport"
	"zenith-sync/internal/watchlist"
	"zenith-sync/internal/zenith"
)

// ErrNoPreferenceStore is returned by group preference calls when the
// session has no preference store.
var ErrNoPreferenceStore = errors.New("session: no preference store configured")

const (
	defaultTickInterval = time.Second
	defaultMaxBatch     = 256
)

// Transport carries messages to and from the server.
// *transport.WSTransport implements it.
type Transport interface {
	Send(msg zenith.Message) error
	Messages() <-chan zenith.Message
	States() <-chan transport.State
}

// Options configures a Session.
type Options struct {
	Transport      Transport
	Codec          *convert.Codec
	RequestTimeout time.Duration
	RetryDelay     time.Duration
	TickInterval   time.Duration // Default: 1s
	// MaxBatch bounds how many queued inbound messages are handled before
	// gauges are refreshed and audit records flushed. Default: 256.
	MaxBatch int
	// Watchlists subscribes the watchlist directory and every watchlist in it.
	Watchlists  bool
	Metrics     *observability.Metrics
	AuditStore  storage.OrderAuditStore
	Preferences storage.AccountGroupPreferenceStore
	Now         func() time.Time
	Logger      *log.Logger
}

// Session owns the publisher manager and the standing lists. Apart from
// Run, Exec and the group preference calls, methods must be called from
// functions passed to Exec.
type Session struct {
	transport    Transport
	manager      *publisher.Manager
	metrics      *observability.Metrics
	preferences  storage.AccountGroupPreferenceStore
	tickInterval time.Duration
	maxBatch     int
	now          func() time.Time
	logger       *log.Logger

	feeds     *feed.List
	accounts  *brokerage.AccountsList
	dataLists *brokerage.AccountDataLists
	directory *watchlist.Directory
	audit     *orderAudit

	bindings          []*publisher.Binding
	directoryBinding  *publisher.Binding
	watchlistBindings map[string]*publisher.Binding

	inbound    deque.Deque[zenith.Message]
	calls      chan func()
	everOnline bool
}

// New builds a session and binds its standing lists. Nothing is sent until
// the transport reports a connection.
func New(opts Options) (*Session, error) {
	if opts.Transport == nil {
		return nil, errors.New("session: transport is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	maxBatch := opts.MaxBatch
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}

	s := &Session{
		transport:         opts.Transport,
		metrics:           opts.Metrics,
		preferences:       opts.Preferences,
		tickInterval:      tick,
		maxBatch:          maxBatch,
		now:               now,
		logger:            logger,
		watchlistBindings: make(map[string]*publisher.Binding),
		calls:             make(chan func()),
	}
	s.manager = publisher.NewManager(publisher.Options{
		Sender:         sender{s},
		Codec:          opts.Codec,
		RequestTimeout: opts.RequestTimeout,
		RetryDelay:     opts.RetryDelay,
		Now:            now,
		Logger:         logger,
	})

	s.feeds = feed.NewList()
	s.accounts = brokerage.NewAccountsList(s.feeds)
	s.dataLists = brokerage.NewAccountDataLists(s.accounts, s.manager)

	if err := s.bind(s.feeds); err != nil {
		return nil, err
	}
	if err := s.bind(s.accounts); err != nil {
		return nil, err
	}

	if opts.AuditStore != nil {
		s.audit = newOrderAudit(opts.AuditStore, s.dataLists, now, opts.Metrics, logger)
		s.accounts.SubscribeListChangeEvent(s.handleAccountsListChange)
	}

	if opts.Watchlists {
		s.directory = watchlist.NewDirectory()
		s.directory.SubscribeListChangeEvent(s.handleDirectoryChange)
		if err := s.RefreshWatchlists(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) bind(list publisher.List) error {
	b, err := s.manager.Bind(list)
	if err != nil {
		return fmt.Errorf("bind %s: %w", list.Definition().Description(), err)
	}
	s.bindings = append(s.bindings, b)
	return nil
}

// Manager returns the publisher manager.
func (s *Session) Manager() *publisher.Manager { return s.manager }

// Feeds returns the feeds list.
func (s *Session) Feeds() *feed.List { return s.feeds }

// Accounts returns the accounts list.
func (s *Session) Accounts() *brokerage.AccountsList { return s.accounts }

// AccountData returns the per-account holdings, orders and balances lists.
func (s *Session) AccountData() *brokerage.AccountDataLists { return s.dataLists }

// Watchlists returns the watchlist directory, or nil when watchlists are off.
func (s *Session) Watchlists() *watchlist.Directory { return s.directory }

// RefreshWatchlists issues a new watchlists query. The directory merges the
// response into the watchlists it already holds.
func (s *Session) RefreshWatchlists() error {
	if s.directory == nil {
		return errors.New("session: watchlists are not enabled")
	}
	if s.directoryBinding != nil {
		s.directoryBinding.Close()
	}
	b, err := s.manager.Bind(s.directory)
	if err != nil {
		return fmt.Errorf("bind watchlists: %w", err)
	}
	s.directoryBinding = b
	return nil
}

// Run handles transport traffic until ctx is done or the transport closes
// its message channel.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	defer s.flushAudit(context.Background())

	messages := s.transport.Messages()
	states := s.transport.States()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			s.handleState(st)
			s.afterBatch(ctx)

		case msg, ok := <-messages:
			if !ok {
				s.logger.Printf("Transport closed, stopping session")
				return nil
			}
			s.inbound.PushBack(msg)
			s.drain(messages)
			for s.inbound.Len() > 0 {
				s.handleMessage(s.inbound.PopFront())
			}
			s.afterBatch(ctx)

		case <-ticker.C:
			s.manager.Tick()
			s.afterBatch(ctx)

		case fn := <-s.calls:
			fn()
			s.afterBatch(ctx)
		}
	}
}

// drain queues messages that are already waiting, up to MaxBatch.
func (s *Session) drain(messages <-chan zenith.Message) {
	for s.inbound.Len() < s.maxBatch {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			s.inbound.PushBack(msg)
		default:
			return
		}
	}
}

// Exec runs fn on the session goroutine and waits for it to return.
func (s *Session) Exec(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	call := func() {
		defer close(done)
		fn()
	}
	select {
	case s.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unsubscribes every list.
func (s *Session) Close() {
	for name, b := range s.watchlistBindings {
		b.Close()
		delete(s.watchlistBindings, name)
	}
	if s.directoryBinding != nil {
		s.directoryBinding.Close()
	}
	s.dataLists.Close()
	for _, b := range s.bindings {
		b.Close()
	}
	s.bindings = nil
	s.accounts.Dispose()
}

func (s *Session) handleState(st transport.State) {
	connected := st == transport.StateConnected
	if connected {
		if s.everOnline && s.metrics != nil {
			s.metrics.Reconnects.Inc()
		}
		s.everOnline = true
	}
	s.logger.Printf("Transport %s", st)
	s.manager.SetConnected(connected)
	if s.metrics != nil {
		s.metrics.SetConnected(connected)
	}
}

func (s *Session) handleMessage(msg zenith.Message) {
	start := s.now()
	if s.metrics != nil {
		s.metrics.RecordInbound(string(msg.Controller), msg.Topic)
	}
	if err := s.manager.HandleMessage(msg); err != nil {
		s.logger.Printf("Error handling %s %s %s: %v", msg.Controller, msg.Topic, msg.Action, err)
		if s.metrics != nil {
			s.metrics.RecordDataError(err)
		}
	}
	if s.metrics != nil {
		s.metrics.HandleLatency.Observe(s.now().Sub(start).Seconds())
	}
}

// afterBatch refreshes gauges and flushes audit records.
func (s *Session) afterBatch(ctx context.Context) {
	s.flushAudit(ctx)
	if s.metrics == nil {
		return
	}
	s.metrics.ActiveSubscriptions.Set(float64(s.manager.ActiveCount()))
	s.metrics.PendingOutbound.Set(float64(s.manager.PendingOutbound()))
	s.metrics.UpdateList("feeds", s.feeds.Count(), s.feeds.Usable())
	s.metrics.UpdateList("accounts", s.accounts.Count(), s.accounts.Usable())
	if s.directory != nil {
		s.metrics.UpdateList("watchlists", s.directory.Count(), s.directory.Usable())
	}
}

func (s *Session) flushAudit(ctx context.Context) {
	if s.audit != nil {
		s.audit.flush(ctx)
	}
}

// handleAccountsListChange opens the data lists of every account so that
// order changes reach the audit store.
func (s *Session) handleAccountsListChange(c keyedlist.Change) {
	if c.Type != keyedlist.ChangePreUsableAdd && c.Type != keyedlist.ChangeInsert {
		return
	}
	for i := c.Index; i < c.Index+c.Count; i++ {
		key := s.accounts.At(i).Key()
		if _, err := s.dataLists.Orders(key); err != nil {
			s.logger.Printf("Error opening orders of %s: %v", key, err)
		}
	}
}

// handleDirectoryChange keeps one member subscription per watchlist.
func (s *Session) handleDirectoryChange(c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
		for i := c.Index; i < c.Index+c.Count; i++ {
			w := s.directory.At(i)
			b, err := s.manager.Bind(w)
			if err != nil {
				s.logger.Printf("Error subscribing watchlist %s: %v", w.ID(), err)
				continue
			}
			s.watchlistBindings[w.MapKey()] = b
		}
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			s.closeWatchlist(s.directory.At(i).MapKey())
		}
	case keyedlist.ChangeClear, keyedlist.ChangePreUsableClear:
		for key := range s.watchlistBindings {
			s.closeWatchlist(key)
		}
	case keyedlist.ChangeUsable, keyedlist.ChangeUnusable:
	case keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
		domain.PanicInternal(domain.CodeReplaceNotSupported, "watchlist directory got "+c.String())
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

func (s *Session) closeWatchlist(key string) {
	if b, ok := s.watchlistBindings[key]; ok {
		b.Close()
		delete(s.watchlistBindings, key)
	}
}

// sender counts outbound messages before handing them to the transport.
type sender struct{ s *Session }

func (w sender) Send(msg zenith.Message) error {
	if err := w.s.transport.Send(msg); err != nil {
		return err
	}
	if w.s.metrics != nil {
		w.s.metrics.RecordOutbound(string(msg.Action))
	}
	return nil
}
