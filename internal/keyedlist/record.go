package keyedlist

import "zenith-sync/internal/correctness"

// Record is an element of a keyed list.
// MapKey must be derived purely from the record's immutable key.
type Record interface {
	MapKey() string
	Correctness() correctness.ID
}
