package watchlist

import (
	"fmt"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/keyedlist"
)

// Directory lists the user's watchlists from the watchlists query. Each
// query response is a full image: watchlists it omits are removed.
type Directory struct {
	*keyedlist.List[*Watchlist]
	loader *keyedlist.Loader[*Watchlist]
}

func NewDirectory() *Directory {
	l := keyedlist.New[*Watchlist]()
	return &Directory{List: l, loader: keyedlist.NewLoader(l, reasons)}
}

func (d *Directory) Definition() domain.DataDefinition { return domain.QueryWatchlistsDefinition{} }

func (d *Directory) SetErrorHandler(h func(error)) { d.loader.SetErrorHandler(h) }

// Restart prepares the directory for a new query.
func (d *Directory) Restart() { d.loader.Restart() }

func (d *Directory) ReceiveDataMessage(msg domain.DataMessage) {
	if d.loader.ApplyStatus(msg) {
		return
	}
	m, ok := msg.(domain.WatchlistsDataMessage)
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("watchlists got %T", msg))
	}
	if !d.loader.BeginData() {
		return
	}
	if err := d.Apply(m.Watchlists); err != nil {
		d.loader.Report(err)
	}
}

// Apply merges a watchlists image. Existing watchlists keep their identity
// and member subscriptions.
func (d *Directory) Apply(image []domain.WatchlistData) error {
	present := make(map[string]struct{}, len(image))
	for i, data := range image {
		if _, dup := present[data.ID]; dup {
			return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordAlreadyExists, data.ID))
		}
		present[data.ID] = struct{}{}
	}

	for i := d.Count() - 1; i >= 0; i-- {
		if _, ok := present[d.At(i).ID()]; !ok {
			d.RemoveRecordsAt(i, 1)
		}
	}
	var added []*Watchlist
	for _, data := range image {
		if w, ok := d.GetByMapKey(data.ID); ok {
			if err := w.UpdateHeader(data); err != nil {
				return err
			}
			continue
		}
		added = append(added, New(data))
	}
	d.AddRecords(added...)
	return nil
}
