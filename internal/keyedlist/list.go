package keyedlist

import (
	"fmt"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/multievent"
)

// ChangeHandler receives list change notifications.
type ChangeHandler func(Change)

// BadnessChangeHandler is called after the list badness changes.
type BadnessChangeHandler func()

// List is an ordered collection of records with MapKey lookup and change
// notification. It is not safe for concurrent use.
//
// Adds are announced after mutation, removes and clears before mutation.
// A change handler must not mutate the list it is observing.
type List[R Record] struct {
	records []R
	filled  []bool
	byKey   map[string]R

	usable   bool
	badness  correctness.Badness
	changing bool

	changeEvent  multievent.Event[ChangeHandler]
	badnessEvent multievent.Event[BadnessChangeHandler]
}

// New creates an empty list that is not usable.
func New[R Record]() *List[R] {
	return &List[R]{
		byKey:   make(map[string]R),
		badness: correctness.New(correctness.Inactive, ""),
	}
}

// Count returns the number of slots, including reserved ones not yet set.
func (l *List[R]) Count() int {
	return len(l.records)
}

// At returns the record at index.
func (l *List[R]) At(index int) R {
	l.checkRange(index, 1)
	return l.records[index]
}

// Records returns a snapshot of the records in order.
func (l *List[R]) Records() []R {
	out := make([]R, len(l.records))
	copy(out, l.records)
	return out
}

// GetByMapKey looks up a record.
func (l *List[R]) GetByMapKey(key string) (R, bool) {
	r, ok := l.byKey[key]
	return r, ok
}

// IndexOfMapKey returns the position of the record with key, or -1.
func (l *List[R]) IndexOfMapKey(key string) int {
	if _, ok := l.byKey[key]; !ok {
		return -1
	}
	for i, r := range l.records {
		if l.filled[i] && r.MapKey() == key {
			return i
		}
	}
	return -1
}

// Usable reports whether the list has been declared authoritative.
func (l *List[R]) Usable() bool {
	return l.usable
}

// Badness returns the current reason the list is not fully good.
func (l *List[R]) Badness() correctness.Badness {
	return l.badness
}

// Correctness returns the correctness implied by the list badness.
func (l *List[R]) Correctness() correctness.ID {
	return l.badness.Correctness()
}

// SubscribeListChangeEvent registers a change handler.
func (l *List[R]) SubscribeListChangeEvent(h ChangeHandler) multievent.SubscriptionID {
	return l.changeEvent.Subscribe(h)
}

// UnsubscribeListChangeEvent removes a change handler. Unknown ids are ignored.
func (l *List[R]) UnsubscribeListChangeEvent(id multievent.SubscriptionID) {
	l.changeEvent.Unsubscribe(id)
}

// SubscribeBadnessChangeEvent registers a badness change handler.
func (l *List[R]) SubscribeBadnessChangeEvent(h BadnessChangeHandler) multievent.SubscriptionID {
	return l.badnessEvent.Subscribe(h)
}

// UnsubscribeBadnessChangeEvent removes a badness change handler.
func (l *List[R]) UnsubscribeBadnessChangeEvent(id multievent.SubscriptionID) {
	l.badnessEvent.Unsubscribe(id)
}

// ExtendRecordCount reserves count trailing slots and returns the first
// reserved index. Every reserved slot must be set before CommitAdd.
func (l *List[R]) ExtendRecordCount(count int) int {
	l.checkNotChanging()
	start := len(l.records)
	var zero R
	for i := 0; i < count; i++ {
		l.records = append(l.records, zero)
		l.filled = append(l.filled, false)
	}
	return start
}

// SetRecord installs record at a reserved or existing slot.
func (l *List[R]) SetRecord(index int, record R) {
	l.checkNotChanging()
	l.checkRange(index, 1)
	if l.filled[index] {
		delete(l.byKey, l.records[index].MapKey())
	}
	l.records[index] = record
	l.filled[index] = true
	l.byKey[record.MapKey()] = record
}

// CommitAdd announces records set into slots reserved by ExtendRecordCount.
func (l *List[R]) CommitAdd(index, count int) {
	l.checkRange(index, count)
	for i := index; i < index+count; i++ {
		if !l.filled[i] {
			domain.PanicInternal(domain.CodeListSlotNotReserved, fmt.Sprintf("slot %d not set", i))
		}
	}
	if l.usable {
		l.notify(Change{Type: ChangeInsert, Index: index, Count: count})
	} else {
		l.notify(Change{Type: ChangePreUsableAdd, Index: index, Count: count})
	}
}

// AddRecords appends records and announces them.
func (l *List[R]) AddRecords(records ...R) {
	if len(records) == 0 {
		return
	}
	start := l.ExtendRecordCount(len(records))
	for i, r := range records {
		l.SetRecord(start+i, r)
	}
	l.CommitAdd(start, len(records))
}

// InsertRecords inserts records at index and announces them.
func (l *List[R]) InsertRecords(index int, records ...R) {
	l.checkNotChanging()
	if index < 0 || index > len(l.records) {
		domain.PanicInternal(domain.CodeListIndexOutOfRange, fmt.Sprintf("insert at %d of %d", index, len(l.records)))
	}
	if len(records) == 0 {
		return
	}
	if index == len(l.records) {
		l.AddRecords(records...)
		return
	}
	count := len(records)
	l.records = append(l.records[:index], append(append([]R(nil), records...), l.records[index:]...)...)
	filled := make([]bool, count)
	for i := range filled {
		filled[i] = true
	}
	l.filled = append(l.filled[:index], append(filled, l.filled[index:]...)...)
	for _, r := range records {
		l.byKey[r.MapKey()] = r
	}
	l.CommitAdd(index, count)
}

// RemoveRecordsAt announces and then removes count records starting at index.
func (l *List[R]) RemoveRecordsAt(index, count int) {
	l.checkNotChanging()
	l.checkRange(index, count)
	if count == 0 {
		return
	}
	l.notify(Change{Type: ChangeRemove, Index: index, Count: count})
	for i := index; i < index+count; i++ {
		if l.filled[i] {
			delete(l.byKey, l.records[i].MapKey())
		}
	}
	l.records = append(l.records[:index], l.records[index+count:]...)
	l.filled = append(l.filled[:index], l.filled[index+count:]...)
}

// RemoveByMapKey removes the record with key. It reports whether one was found.
func (l *List[R]) RemoveByMapKey(key string) bool {
	index := l.IndexOfMapKey(key)
	if index < 0 {
		return false
	}
	l.RemoveRecordsAt(index, 1)
	return true
}

// ReplaceRecords overwrites records in place starting at index.
func (l *List[R]) ReplaceRecords(index int, records ...R) {
	l.checkNotChanging()
	count := len(records)
	l.checkRange(index, count)
	if count == 0 {
		return
	}
	l.notify(Change{Type: ChangeBeforeReplace, Index: index, Count: count})
	for i, r := range records {
		if l.filled[index+i] {
			delete(l.byKey, l.records[index+i].MapKey())
		}
		l.records[index+i] = r
		l.filled[index+i] = true
		l.byKey[r.MapKey()] = r
	}
	l.notify(Change{Type: ChangeAfterReplace, Index: index, Count: count})
}

// Clear announces and then removes every record. A list that is not usable
// announces PreUsableClear even when empty so consumers reset.
func (l *List[R]) Clear() {
	l.checkNotChanging()
	if l.usable {
		if len(l.records) == 0 {
			return
		}
		l.notify(Change{Type: ChangeClear, Index: 0, Count: len(l.records)})
	} else {
		l.notify(Change{Type: ChangePreUsableClear, Index: 0, Count: len(l.records)})
	}
	l.records = nil
	l.filled = nil
	l.byKey = make(map[string]R)
}

// SetUsable declares the list authoritative with badness, which must be usable.
func (l *List[R]) SetUsable(badness correctness.Badness) {
	l.checkNotChanging()
	if !badness.IsUsable() {
		domain.PanicInternal(domain.CodeUnhandledEnum, "usable with "+badness.String())
	}
	if !l.usable {
		l.usable = true
		l.notify(Change{Type: ChangeUsable})
	}
	l.setBadness(badness)
}

// SetUnusable marks records present as stale.
func (l *List[R]) SetUnusable(badness correctness.Badness) {
	l.checkNotChanging()
	if l.usable {
		l.usable = false
		l.notify(Change{Type: ChangeUnusable})
	}
	l.setBadness(badness)
}

func (l *List[R]) setBadness(badness correctness.Badness) {
	if l.badness.Equal(badness) {
		return
	}
	l.badness = badness
	l.badnessEvent.Notify(func(h BadnessChangeHandler) { h() })
}

func (l *List[R]) notify(change Change) {
	l.changing = true
	defer func() { l.changing = false }()
	l.changeEvent.Notify(func(h ChangeHandler) { h(change) })
}

func (l *List[R]) checkNotChanging() {
	if l.changing {
		domain.PanicInternal(domain.CodeListReentrantChange, "list mutated from change handler")
	}
}

func (l *List[R]) checkRange(index, count int) {
	if index < 0 || count < 0 || index+count > len(l.records) {
		domain.PanicInternal(domain.CodeListIndexOutOfRange,
			fmt.Sprintf("range %d+%d of %d", index, count, len(l.records)))
	}
}
