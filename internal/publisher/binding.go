package publisher

import "zenith-sync/internal/domain"

// List is a record list fed by one subscription.
type List interface {
	Receiver
	Definition() domain.DataDefinition
	SetErrorHandler(h func(error))
	Restart()
}

// Binding keeps a list subscribed. When the list fails to apply a message it
// is restarted on a fresh subscription so that it reloads a full image.
type Binding struct {
	m      *Manager
	list   List
	sub    *Subscription
	closed bool
}

// Bind subscribes list to its definition.
func (m *Manager) Bind(list List) (*Binding, error) {
	sub, err := m.Subscribe(list.Definition(), list)
	if err != nil {
		return nil, err
	}
	b := &Binding{m: m, list: list, sub: sub}
	list.SetErrorHandler(b.handleListError)
	return b, nil
}

// Subscription returns the current subscription.
func (b *Binding) Subscription() *Subscription { return b.sub }

// Close unsubscribes the list. Closing twice is a no-op.
func (b *Binding) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.list.SetErrorHandler(nil)
	b.m.Unsubscribe(b.sub)
}

func (b *Binding) handleListError(err error) {
	if b.closed {
		return
	}
	def := b.list.Definition()
	b.m.logger.Printf("Error applying %s, resubscribing: %v", def.Description(), err)
	b.m.Unsubscribe(b.sub)
	b.list.Restart()
	sub, serr := b.m.Subscribe(def, b.list)
	if serr != nil {
		b.m.logger.Printf("Error resubscribing %s: %v", def.Description(), serr)
		return
	}
	b.sub = sub
}
