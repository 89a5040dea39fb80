package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/keyedlist"
)

func oms(status domain.FeedStatusID) domain.FeedData {
	return domain.FeedData{Class: domain.FeedClassTrading, Name: "Oms", Status: status}
}

func recordChanges(l *List) *[]string {
	var got []string
	l.SubscribeListChangeEvent(func(c keyedlist.Change) { got = append(got, c.String()) })
	return &got
}

func TestStatusCorrectness(t *testing.T) {
	tests := []struct {
		status domain.FeedStatusID
		want   correctness.ID
	}{
		{domain.FeedStatusActive, correctness.Good},
		{domain.FeedStatusImpaired, correctness.Suspect},
		{domain.FeedStatusExpired, correctness.Suspect},
		{domain.FeedStatusInitialising, correctness.Error},
		{domain.FeedStatusClosed, correctness.Error},
		{domain.FeedStatusInactive, correctness.Error},
		{"Unknown", correctness.Error},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCorrectness(tt.status))
		})
	}
}

func TestList_ImageThenSynchronised(t *testing.T) {
	l := NewList()
	got := recordChanges(l)

	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{
		oms(domain.FeedStatusActive),
		{Class: domain.FeedClassMarket, Name: "AsxTradeMatch", Status: domain.FeedStatusActive},
	}})
	f, ok := l.Get(domain.FeedClassTrading, "Oms")
	require.True(t, ok)
	assert.Equal(t, correctness.Suspect, f.Correctness(), "list still waiting")
	assert.False(t, l.Usable())

	l.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})

	assert.Equal(t, []string{"PreUsableAdd(0,2)", "Usable"}, *got)
	assert.True(t, l.Usable())
	assert.Equal(t, correctness.Good, f.Correctness())
	assert.Equal(t, "Trading:Oms", f.MapKey())
}

func TestFeed_StatusUpdateNotifiesOnce(t *testing.T) {
	l := NewList()
	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{oms(domain.FeedStatusActive)}})
	l.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	f, _ := l.Get(domain.FeedClassTrading, "Oms")

	var changes [][]entity.FieldChange[FieldID]
	f.SubscribeChangedEvent(func(c []entity.FieldChange[FieldID]) { changes = append(changes, c) })
	correctnessEvents := 0
	f.SubscribeCorrectnessChangedEvent(func() { correctnessEvents++ })
	got := recordChanges(l)

	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{oms(domain.FeedStatusImpaired)}})

	require.Len(t, changes, 1)
	assert.Equal(t, []entity.FieldChange[FieldID]{{Field: FieldStatus, Kind: entity.ValueChangeUpdate}}, changes[0])
	assert.Equal(t, 1, correctnessEvents)
	assert.Equal(t, correctness.Suspect, f.Correctness())
	assert.Empty(t, *got, "updates do not change the list shape")

	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{oms(domain.FeedStatusImpaired)}})
	assert.Len(t, changes, 1, "unchanged status is not announced")
}

func TestList_OfflineThenDataReloads(t *testing.T) {
	l := NewList()
	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{
		oms(domain.FeedStatusActive),
		{Class: domain.FeedClassNews, Name: "Asx", Status: domain.FeedStatusActive},
	}})
	l.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	got := recordChanges(l)

	l.ReceiveDataMessage(domain.OfflinePublisherSubscriptionDataMessage{Reason: "Connection lost"})
	assert.False(t, l.Usable())
	assert.Equal(t, correctness.PublisherSubscriptionOffline, l.Badness().ReasonID)
	assert.Equal(t, 2, l.Count(), "records stay until the next image")

	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{oms(domain.FeedStatusActive)}})
	l.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})

	assert.Equal(t, []string{"Unusable", "PreUsableClear", "PreUsableAdd(0,1)", "Usable"}, *got)
	assert.Equal(t, 1, l.Count())
}

func TestList_RepeatedKeyInOneMessage(t *testing.T) {
	l := NewList()
	got := recordChanges(l)

	l.ReceiveDataMessage(domain.FeedsDataMessage{Feeds: []domain.FeedData{
		oms(domain.FeedStatusActive),
		oms(domain.FeedStatusExpired),
	}})

	assert.Equal(t, []string{"PreUsableAdd(0,1)"}, *got)
	require.Equal(t, 1, l.Count())
	assert.Equal(t, domain.FeedStatusExpired, l.At(0).Status())
}

func TestList_ErrorStatus(t *testing.T) {
	l := NewList()
	l.ReceiveDataMessage(domain.ErrorPublisherSubscriptionDataMessage{ErrorText: "no access"})

	assert.False(t, l.Usable())
	assert.Equal(t, correctness.New(correctness.FeedsError, "no access"), l.Badness())
	assert.Equal(t, correctness.Error, l.Correctness())
}
