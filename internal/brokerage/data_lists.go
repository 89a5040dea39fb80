package brokerage

import (
	"errors"
	"fmt"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/multievent"
	"zenith-sync/internal/publisher"
)

// ErrAccountNotFound is returned when data is requested for an unknown account.
var ErrAccountNotFound = errors.New("brokerage: account not found")

// Binder keeps lists subscribed. *publisher.Manager implements it.
type Binder interface {
	Bind(list publisher.List) (*publisher.Binding, error)
}

type accountData struct {
	holdings        *HoldingsList
	holdingsBinding *publisher.Binding
	orders          *OrdersList
	ordersBinding   *publisher.Binding
	balances        *BalancesList
	balancesBinding *publisher.Binding
}

// AccountDataLists creates the holdings, orders and balances lists of an
// account the first time they are asked for, and releases them when the
// account is removed.
type AccountDataLists struct {
	accounts    *AccountsList
	binder      Binder
	entries     map[string]*accountData
	accountsSub multievent.SubscriptionID
	created     multievent.Event[func(key domain.AccountKey)]
}

// NewAccountDataLists follows accounts.
func NewAccountDataLists(accounts *AccountsList, binder Binder) *AccountDataLists {
	d := &AccountDataLists{
		accounts: accounts,
		binder:   binder,
		entries:  make(map[string]*accountData),
	}
	d.accountsSub = accounts.SubscribeListChangeEvent(d.handleAccountsListChange)
	return d
}

// SubscribeCreatedEvent registers a handler called after an account's data
// lists are first created.
func (d *AccountDataLists) SubscribeCreatedEvent(h func(key domain.AccountKey)) multievent.SubscriptionID {
	return d.created.Subscribe(h)
}

// UnsubscribeCreatedEvent removes a created handler.
func (d *AccountDataLists) UnsubscribeCreatedEvent(id multievent.SubscriptionID) {
	d.created.Unsubscribe(id)
}

// Holdings returns the holdings list of an account, subscribing it if needed.
func (d *AccountDataLists) Holdings(key domain.AccountKey) (*HoldingsList, error) {
	e, err := d.entry(key)
	if err != nil {
		return nil, err
	}
	return e.holdings, nil
}

// Orders returns the orders list of an account, subscribing it if needed.
func (d *AccountDataLists) Orders(key domain.AccountKey) (*OrdersList, error) {
	e, err := d.entry(key)
	if err != nil {
		return nil, err
	}
	return e.orders, nil
}

// Balances returns the balances list of an account, subscribing it if needed.
func (d *AccountDataLists) Balances(key domain.AccountKey) (*BalancesList, error) {
	e, err := d.entry(key)
	if err != nil {
		return nil, err
	}
	return e.balances, nil
}

// Keys returns the accounts that currently have data lists.
func (d *AccountDataLists) Keys() []domain.AccountKey {
	keys := make([]domain.AccountKey, 0, len(d.entries))
	for _, e := range d.entries {
		keys = append(keys, e.holdings.Account())
	}
	return keys
}

// Release unsubscribes and disposes the lists of one account.
func (d *AccountDataLists) Release(key domain.AccountKey) {
	mapKey := key.MapKey()
	e, ok := d.entries[mapKey]
	if !ok {
		return
	}
	delete(d.entries, mapKey)
	e.holdingsBinding.Close()
	e.ordersBinding.Close()
	e.balancesBinding.Close()
	e.holdings.Dispose()
	e.orders.Dispose()
	e.balances.Dispose()
}

// Close releases every account and stops following the accounts list.
func (d *AccountDataLists) Close() {
	d.accounts.UnsubscribeListChangeEvent(d.accountsSub)
	for _, e := range d.entries {
		d.Release(e.holdings.Account())
	}
}

func (d *AccountDataLists) entry(key domain.AccountKey) (*accountData, error) {
	if e, ok := d.entries[key.MapKey()]; ok {
		return e, nil
	}
	account, ok := d.accounts.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key.MapKey())
	}
	e := &accountData{
		holdings: NewHoldingsList(key, account),
		orders:   NewOrdersList(key, account),
		balances: NewBalancesList(key, account),
	}
	var err error
	if e.holdingsBinding, err = d.binder.Bind(e.holdings); err != nil {
		return nil, err
	}
	if e.ordersBinding, err = d.binder.Bind(e.orders); err != nil {
		e.holdingsBinding.Close()
		return nil, err
	}
	if e.balancesBinding, err = d.binder.Bind(e.balances); err != nil {
		e.holdingsBinding.Close()
		e.ordersBinding.Close()
		return nil, err
	}
	d.entries[key.MapKey()] = e
	d.created.Notify(func(h func(key domain.AccountKey)) { h(key) })
	return e, nil
}

// handleAccountsListChange releases lists of removed accounts. A reload of
// the accounts list only detaches the lists from the old account entities;
// they are attached again as the accounts come back.
func (d *AccountDataLists) handleAccountsListChange(c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			d.Release(d.accounts.At(i).Key())
		}
	case keyedlist.ChangeClear:
		for _, a := range d.accounts.Records() {
			d.Release(a.Key())
		}
	case keyedlist.ChangePreUsableClear:
		for _, e := range d.entries {
			e.setAccount(nil)
		}
	case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
		for i := c.Index; i < c.Index+c.Count; i++ {
			a := d.accounts.At(i)
			if e, ok := d.entries[a.MapKey()]; ok {
				e.setAccount(a)
			}
		}
	case keyedlist.ChangeUnusable, keyedlist.ChangeUsable:
	case keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
		domain.PanicInternal(domain.CodeReplaceNotSupported, "account data lists got "+c.String())
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

func (e *accountData) setAccount(a *Account) {
	e.holdings.setAccount(a)
	e.orders.setAccount(a)
	e.balances.setAccount(a)
}
