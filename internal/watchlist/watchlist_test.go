package watchlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/entity"
	"zenith-sync/internal/keyedlist"
)

func asx(code string) domain.LitIvemID {
	return domain.LitIvemID{Code: code, Market: domain.MarketAsxTradeMatch, Environment: domain.DataEnvironmentProduction}
}

func add(index int, codes ...string) domain.WatchlistMemberChange {
	c := domain.WatchlistMemberChange{Type: domain.ChangeAdd, Index: index}
	for _, code := range codes {
		c.Members = append(c.Members, asx(code))
	}
	return c
}

func remove(codes ...string) domain.WatchlistMemberChange {
	c := domain.WatchlistMemberChange{Type: domain.ChangeRemove, Index: -1}
	for _, code := range codes {
		c.Members = append(c.Members, asx(code))
	}
	return c
}

func members(w *Watchlist) []string {
	var out []string
	for _, m := range w.Members().Records() {
		out = append(out, m.LitIvemID().Code)
	}
	return out
}

func recordChanges[R keyedlist.Record](l *keyedlist.List[R]) *[]string {
	var got []string
	l.SubscribeListChangeEvent(func(c keyedlist.Change) { got = append(got, c.String()) })
	return &got
}

func newWatchlist() *Watchlist {
	return New(domain.WatchlistData{ID: "W1", Name: "Miners", IsWritable: true})
}

func TestWatchlist_MembersLoadThenChange(t *testing.T) {
	w := newWatchlist()
	got := recordChanges(w.Members())
	assert.Equal(t, correctness.Suspect, w.Correctness())

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{add(-1, "BHP", "RIO")}})
	w.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	assert.Equal(t, correctness.Good, w.Correctness())
	assert.Equal(t, correctness.Good, w.Members().At(0).Correctness())

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{
		add(1, "FMG"),
		remove("BHP"),
		add(-1, "S32"),
	}})

	assert.Equal(t, []string{"FMG", "RIO", "S32"}, members(w))
	assert.Equal(t, []string{
		"PreUsableAdd(0,2)", "Usable", "Insert(1,1)", "Remove(0,1)", "Insert(2,1)",
	}, *got)
	m, ok := w.Members().GetByMapKey("FMG.AsxTradeMatch")
	require.True(t, ok)
	assert.Equal(t, asx("FMG"), m.LitIvemID())
}

func TestWatchlist_Clear(t *testing.T) {
	w := newWatchlist()
	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{add(-1, "BHP")}})
	w.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	got := recordChanges(w.Members())

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{
		{Type: domain.ChangeClear, Index: -1},
	}})

	assert.Equal(t, []string{"Clear"}, *got)
	assert.Equal(t, 0, w.Members().Count())
}

func TestWatchlist_HeaderPatch(t *testing.T) {
	w := newWatchlist()
	var events [][]entity.FieldChange[FieldID]
	w.SubscribeChangedEvent(func(c []entity.FieldChange[FieldID]) { events = append(events, c) })

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Update: &domain.WatchlistUpdate{
		Name:        domain.Set("Big miners"),
		Description: domain.Set("ASX 50 miners"),
	}})

	require.Len(t, events, 1)
	assert.Equal(t, []entity.FieldChange[FieldID]{
		{Field: FieldName, Kind: entity.ValueChangeUpdate},
		{Field: FieldDescription, Kind: entity.ValueChangeUpdate},
	}, events[0])
	assert.Equal(t, "Big miners", w.Name())
	assert.Equal(t, "", w.Category())
}

func TestWatchlist_ApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		changes []domain.WatchlistMemberChange
		code    domain.ErrorCode
	}{
		{"duplicate in batch", []domain.WatchlistMemberChange{add(-1, "BHP", "BHP")}, domain.CodeRecordAlreadyExists},
		{"already member", []domain.WatchlistMemberChange{add(-1, "RIO")}, domain.CodeRecordAlreadyExists},
		{"missing member", []domain.WatchlistMemberChange{remove("BHP")}, domain.CodeRecordNotFound},
		{"index past end", []domain.WatchlistMemberChange{add(5, "BHP")}, domain.CodeRecordNotFound},
		{"update", []domain.WatchlistMemberChange{{Type: domain.ChangeUpdate, Index: 0}}, domain.CodeUnknownChangeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatchlist()
			require.NoError(t, w.Apply(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{add(-1, "RIO")}}))

			err := w.Apply(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: tt.changes})

			require.True(t, errors.Is(err, domain.ErrData), "error: %v", err)
			var de *domain.DataError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
			var ie *domain.IndexedError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, 0, ie.Index)
		})
	}
}

func TestWatchlist_ErrorFailsUntilRestart(t *testing.T) {
	w := newWatchlist()
	var reported []error
	w.SetErrorHandler(func(err error) { reported = append(reported, err) })

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W2"})

	require.Len(t, reported, 1)
	assert.Equal(t, correctness.WatchlistError, w.Members().Badness().ReasonID)
	assert.Equal(t, correctness.Error, w.Correctness())

	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{add(-1, "BHP")}})
	assert.Equal(t, 0, w.Members().Count())

	w.Restart()
	w.ReceiveDataMessage(domain.WatchlistDataMessage{WatchlistID: "W1", Changes: []domain.WatchlistMemberChange{add(-1, "BHP")}})
	w.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	assert.Equal(t, []string{"BHP"}, members(w))
	assert.Equal(t, correctness.Good, w.Correctness())
}

func TestWatchlist_Definitions(t *testing.T) {
	w := newWatchlist()

	assert.Equal(t, domain.WatchlistDefinition{WatchlistID: "W1"}, w.Definition())
	assert.Equal(t, domain.AddToWatchlistDefinition{WatchlistID: "W1", Members: []domain.LitIvemID{asx("BHP")}}, w.AddRequest(asx("BHP")))
}

func TestDirectory_ImageMerge(t *testing.T) {
	d := NewDirectory()
	d.ReceiveDataMessage(domain.WatchlistsDataMessage{Watchlists: []domain.WatchlistData{
		{ID: "W1", Name: "Miners"},
		{ID: "W2", Name: "Banks"},
	}})
	d.ReceiveDataMessage(domain.SynchronisedPublisherSubscriptionDataMessage{})
	require.True(t, d.Usable())
	w1, _ := d.GetByMapKey("W1")
	got := recordChanges(d.List)

	require.NoError(t, d.Apply([]domain.WatchlistData{
		{ID: "W1", Name: "Big miners"},
		{ID: "W3", Name: "Tech"},
	}))

	assert.Equal(t, []string{"Remove(1,1)", "Insert(1,1)"}, *got)
	same, ok := d.GetByMapKey("W1")
	require.True(t, ok)
	assert.Same(t, w1, same)
	assert.Equal(t, "Big miners", same.Name())
	assert.Equal(t, domain.QueryWatchlistsDefinition{}, d.Definition())
}

func TestDirectory_DuplicateID(t *testing.T) {
	d := NewDirectory()
	var reported []error
	d.SetErrorHandler(func(err error) { reported = append(reported, err) })

	d.ReceiveDataMessage(domain.WatchlistsDataMessage{Watchlists: []domain.WatchlistData{{ID: "W1"}, {ID: "W1"}}})

	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], domain.ErrData))
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, correctness.WatchlistError, d.Badness().ReasonID)
}
