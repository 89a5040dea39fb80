// Package multievent provides a handler list with stable subscription tokens.
package multievent

// SubscriptionID identifies one subscribed handler. Zero is never issued.
type SubscriptionID uint64

// Event holds subscribed handlers in subscription order.
// It is not safe for concurrent use; callers run on one goroutine.
type Event[H any] struct {
	nextID   SubscriptionID
	ids      []SubscriptionID
	handlers map[SubscriptionID]H
}

// Subscribe adds handler and returns the token that removes it.
func (e *Event[H]) Subscribe(handler H) SubscriptionID {
	if e.handlers == nil {
		e.handlers = make(map[SubscriptionID]H)
	}
	e.nextID++
	id := e.nextID
	e.ids = append(e.ids, id)
	e.handlers[id] = handler
	return id
}

// Unsubscribe removes the handler registered under id.
// Unknown or already removed ids are ignored.
func (e *Event[H]) Unsubscribe(id SubscriptionID) {
	if _, ok := e.handlers[id]; !ok {
		return
	}
	delete(e.handlers, id)
	for i, existing := range e.ids {
		if existing == id {
			e.ids = append(e.ids[:i], e.ids[i+1:]...)
			break
		}
	}
}

// Handlers returns a snapshot copy of the handlers in subscription order.
// Notifiers iterate the snapshot so handlers may subscribe or unsubscribe
// while a notification is in progress.
func (e *Event[H]) Handlers() []H {
	result := make([]H, 0, len(e.ids))
	for _, id := range e.ids {
		result = append(result, e.handlers[id])
	}
	return result
}

// Count returns the number of subscribed handlers.
func (e *Event[H]) Count() int {
	return len(e.ids)
}

// Notify calls fn with every handler from a snapshot.
func (e *Event[H]) Notify(fn func(H)) {
	for _, h := range e.Handlers() {
		fn(h)
	}
}
