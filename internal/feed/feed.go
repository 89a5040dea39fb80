// Package feed maintains the server's feed list and derives correctness from
// each feed's status.
package feed

import (
	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
)

// FieldID identifies a mutable feed field.
type FieldID int

const (
	FieldStatus FieldID = iota
)

// StatusCorrectness maps a feed status to correctness.
func StatusCorrectness(status domain.FeedStatusID) correctness.ID {
	switch status {
	case domain.FeedStatusActive:
		return correctness.Good
	case domain.FeedStatusImpaired, domain.FeedStatusExpired:
		return correctness.Suspect
	case domain.FeedStatusInitialising, domain.FeedStatusClosed, domain.FeedStatusInactive:
		return correctness.Error
	default:
		return correctness.Error
	}
}

// Feed is one server data feed.
type Feed struct {
	entity.Base[FieldID]

	class           domain.FeedClassID
	name            string
	status          domain.FeedStatusID
	listCorrectness correctness.ID
}

// New creates a feed from its first state.
func New(data domain.FeedData, listCorrectness correctness.ID) *Feed {
	f := &Feed{
		class:           data.Class,
		name:            data.Name,
		status:          data.Status,
		listCorrectness: listCorrectness,
	}
	f.InitCorrectness(f.calculateCorrectness())
	return f
}

// MapKey returns "Class:Name".
func (f *Feed) MapKey() string {
	return domain.FeedData{Class: f.class, Name: f.name}.MapKey()
}

func (f *Feed) Class() domain.FeedClassID         { return f.class }
func (f *Feed) Name() string                      { return f.name }
func (f *Feed) Status() domain.FeedStatusID       { return f.status }
func (f *Feed) StatusCorrectness() correctness.ID { return StatusCorrectness(f.status) }

// Update applies a new state for the same feed.
func (f *Feed) Update(data domain.FeedData) error {
	if data.Class != f.class || data.Name != f.name {
		return domain.NewDataError(domain.CodeRecordNotFound, "feed "+data.MapKey()+" applied to "+f.MapKey())
	}
	var changes entity.Changes[FieldID]
	entity.SetValue(&changes, FieldStatus, &f.status, data.Status)
	f.Notify(&changes)
	f.SetCorrectness(f.calculateCorrectness())
	return nil
}

func (f *Feed) setListCorrectness(c correctness.ID) {
	f.listCorrectness = c
	f.SetCorrectness(f.calculateCorrectness())
}

func (f *Feed) calculateCorrectness() correctness.ID {
	return correctness.Merge(f.listCorrectness, StatusCorrectness(f.status))
}
