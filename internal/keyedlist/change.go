// Package keyedlist holds ordered collections of keyed records and the change
// vocabulary consumers use to follow them from not loaded to live.
package keyedlist

import (
	"fmt"

	"zenith-sync/internal/domain"
)

// ChangeType is the kind of shape change a list announces.
// Handlers switch over every value; an unmatched value is a programming error.
type ChangeType int

const (
	// ChangeUnusable: records present are stale.
	ChangeUnusable ChangeType = iota
	// ChangePreUsableClear: drop any cached view of the list now.
	ChangePreUsableClear
	// ChangePreUsableAdd: records appended while the list is still loading.
	ChangePreUsableAdd
	// ChangeUsable: the list is authoritative and live.
	ChangeUsable
	// ChangeInsert: records added after the list became usable. Positions are post-mutation.
	ChangeInsert
	// ChangeRemove: records about to be removed. Positions are pre-mutation.
	ChangeRemove
	// ChangeClear: every record is about to be removed.
	ChangeClear
	// ChangeBeforeReplace and ChangeAfterReplace bracket an in-place replace.
	ChangeBeforeReplace
	ChangeAfterReplace
)

var changeTypeNames = map[ChangeType]string{
	ChangeUnusable:       "Unusable",
	ChangePreUsableClear: "PreUsableClear",
	ChangePreUsableAdd:   "PreUsableAdd",
	ChangeUsable:         "Usable",
	ChangeInsert:         "Insert",
	ChangeRemove:         "Remove",
	ChangeClear:          "Clear",
	ChangeBeforeReplace:  "BeforeReplace",
	ChangeAfterReplace:   "AfterReplace",
}

func (t ChangeType) String() string {
	name, ok := changeTypeNames[t]
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledListChange, fmt.Sprintf("change type %d", int(t)))
	}
	return name
}

// Change is one list change notification.
type Change struct {
	Type  ChangeType
	Index int
	Count int
}

func (c Change) String() string {
	switch c.Type {
	case ChangePreUsableAdd, ChangeInsert, ChangeRemove, ChangeBeforeReplace, ChangeAfterReplace:
		return fmt.Sprintf("%s(%d,%d)", c.Type, c.Index, c.Count)
	default:
		return c.Type.String()
	}
}
