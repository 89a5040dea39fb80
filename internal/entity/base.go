package entity

import (
	"zenith-sync/internal/correctness"
	"zenith-sync/internal/multievent"
)

// ChangedHandler receives every field changed by one update.
type ChangedHandler[F comparable] func(changes []FieldChange[F])

// CorrectnessChangedHandler is called after an entity's correctness changes.
type CorrectnessChangedHandler func()

// Base carries the derived correctness and the two events every entity
// exposes. Embed it and call Notify after applying an update.
type Base[F comparable] struct {
	correctness      correctness.ID
	changedEvent     multievent.Event[ChangedHandler[F]]
	correctnessEvent multievent.Event[CorrectnessChangedHandler]
}

// Correctness returns the derived correctness.
func (b *Base[F]) Correctness() correctness.ID { return b.correctness }

// Usable reports whether the entity's correctness is usable.
func (b *Base[F]) Usable() bool { return correctness.IsUsable(b.correctness) }

// SubscribeChangedEvent registers a field change handler.
func (b *Base[F]) SubscribeChangedEvent(h ChangedHandler[F]) multievent.SubscriptionID {
	return b.changedEvent.Subscribe(h)
}

// UnsubscribeChangedEvent removes a field change handler.
func (b *Base[F]) UnsubscribeChangedEvent(id multievent.SubscriptionID) {
	b.changedEvent.Unsubscribe(id)
}

// SubscribeCorrectnessChangedEvent registers a correctness change handler.
func (b *Base[F]) SubscribeCorrectnessChangedEvent(h CorrectnessChangedHandler) multievent.SubscriptionID {
	return b.correctnessEvent.Subscribe(h)
}

// UnsubscribeCorrectnessChangedEvent removes a correctness change handler.
func (b *Base[F]) UnsubscribeCorrectnessChangedEvent(id multievent.SubscriptionID) {
	b.correctnessEvent.Unsubscribe(id)
}

// InitCorrectness sets the starting correctness without notifying.
func (b *Base[F]) InitCorrectness(c correctness.ID) {
	b.correctness = c
}

// SetCorrectness updates the derived correctness, notifying only on change.
func (b *Base[F]) SetCorrectness(c correctness.ID) {
	if c == b.correctness {
		return
	}
	b.correctness = c
	b.correctnessEvent.Notify(func(h CorrectnessChangedHandler) { h() })
}

// Notify fires one changed event carrying every change, if there were any.
func (b *Base[F]) Notify(changes *Changes[F]) {
	if changes.Len() == 0 {
		return
	}
	list := changes.List()
	b.changedEvent.Notify(func(h ChangedHandler[F]) { h(list) })
}
