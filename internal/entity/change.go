// Package entity holds the field diff helpers and event plumbing shared by
// the record entities (feeds, accounts, holdings, orders, balances, watchlists).
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"zenith-sync/internal/domain"
)

// ValueChangeKind describes how a field changed.
type ValueChangeKind int

const (
	ValueChangeUpdate ValueChangeKind = iota
	ValueChangeIncrease
	ValueChangeDecrease
)

func (k ValueChangeKind) String() string {
	switch k {
	case ValueChangeUpdate:
		return "Update"
	case ValueChangeIncrease:
		return "Increase"
	case ValueChangeDecrease:
		return "Decrease"
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, "value change kind")
		return ""
	}
}

// FieldChange is one changed field of an entity.
type FieldChange[F comparable] struct {
	Field F
	Kind  ValueChangeKind
}

// Changes accumulates the field changes of one update.
type Changes[F comparable] struct {
	list []FieldChange[F]
}

// Add records a change.
func (c *Changes[F]) Add(field F, kind ValueChangeKind) {
	c.list = append(c.list, FieldChange[F]{Field: field, Kind: kind})
}

// List returns the accumulated changes.
func (c *Changes[F]) List() []FieldChange[F] { return c.list }

// Len returns the number of changes.
func (c *Changes[F]) Len() int { return len(c.list) }

// SetValue assigns next to *current when they differ.
func SetValue[T comparable, F comparable](c *Changes[F], field F, current *T, next T) {
	if *current == next {
		return
	}
	*current = next
	c.Add(field, ValueChangeUpdate)
}

// SetPatch applies a tri-state patch to *current.
func SetPatch[T comparable, F comparable](c *Changes[F], field F, current *T, p domain.Patch[T]) {
	next, mentioned := p.Apply(*current)
	if !mentioned {
		return
	}
	SetValue(c, field, current, next)
}

// DecimalChangeKind compares two numbers.
func DecimalChangeKind(old, next decimal.Decimal) ValueChangeKind {
	switch next.Cmp(old) {
	case 1:
		return ValueChangeIncrease
	case -1:
		return ValueChangeDecrease
	default:
		return ValueChangeUpdate
	}
}

// SetDecimal assigns next when it differs by value and records the direction.
func SetDecimal[F comparable](c *Changes[F], field F, current *decimal.Decimal, next decimal.Decimal) {
	if current.Equal(next) {
		return
	}
	kind := DecimalChangeKind(*current, next)
	*current = next
	c.Add(field, kind)
}

// SetOptionalDecimal is SetDecimal for values that may be absent. Gaining or
// losing a value is an Update.
func SetOptionalDecimal[F comparable](c *Changes[F], field F, current **decimal.Decimal, next *decimal.Decimal) {
	switch {
	case *current == nil && next == nil:
		return
	case *current == nil || next == nil:
		*current = copyDecimal(next)
		c.Add(field, ValueChangeUpdate)
	case !(*current).Equal(*next):
		kind := DecimalChangeKind(**current, *next)
		*current = copyDecimal(next)
		c.Add(field, kind)
	}
}

// SetTime assigns next when it is a different instant.
func SetTime[F comparable](c *Changes[F], field F, current *time.Time, next time.Time) {
	if current.Equal(next) {
		return
	}
	*current = next
	c.Add(field, ValueChangeUpdate)
}

// SetOptionalTime is SetTime for values that may be absent.
func SetOptionalTime[F comparable](c *Changes[F], field F, current **time.Time, next *time.Time) {
	switch {
	case *current == nil && next == nil:
		return
	case *current != nil && next != nil && (*current).Equal(*next):
		return
	}
	if next == nil {
		*current = nil
	} else {
		t := *next
		*current = &t
	}
	c.Add(field, ValueChangeUpdate)
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
