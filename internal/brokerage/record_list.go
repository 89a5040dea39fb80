package brokerage

import (
	"fmt"

	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/multievent"
)

var dataListReasons = keyedlist.Reasons{
	Waiting: correctness.BrokerageAccountDataListsWaiting,
	Error:   correctness.BrokerageAccountDataListsError,
}

// AccountRecord is a record that belongs to one account.
type AccountRecord[D any] interface {
	keyedlist.Record
	Update(data D) error
	SetCorrectness(c correctness.ID)
	accountKey() domain.AccountKey
}

// recordChange is a change record with its key resolved.
type recordChange[D any] struct {
	typ  domain.ChangeTypeID
	data *D
	key  string
}

// recordKind describes one kind of per-account list.
type recordKind[R AccountRecord[D], D any] struct {
	name       string
	definition func(account domain.AccountKey) domain.DataDefinition
	create     func(data D, c correctness.ID) R
	accountOf  func(data D) domain.AccountKey
	// changes extracts the change records from a data message of this kind.
	changes func(msg domain.DataMessage) (domain.AccountKey, []recordChange[D], bool)
}

// AccountRecordList holds the records of one kind for one account.
type AccountRecordList[R AccountRecord[D], D any] struct {
	*keyedlist.List[R]
	loader *keyedlist.Loader[R]
	kind   *recordKind[R, D]

	key        domain.AccountKey
	account    *Account
	accountSub multievent.SubscriptionID
	badnessSub multievent.SubscriptionID
}

// HoldingsList holds the holdings of one account.
type HoldingsList = AccountRecordList[*Holding, domain.HoldingData]

// OrdersList holds the orders of one account.
type OrdersList = AccountRecordList[*Order, domain.OrderData]

// BalancesList holds the balances of one account.
type BalancesList = AccountRecordList[*Balance, domain.BalanceData]

// NewHoldingsList creates an empty holdings list for key. account may be nil
// when the account entity is not known.
func NewHoldingsList(key domain.AccountKey, account *Account) *HoldingsList {
	return newAccountRecordList(holdingKind, key, account)
}

// NewOrdersList creates an empty orders list for key.
func NewOrdersList(key domain.AccountKey, account *Account) *OrdersList {
	return newAccountRecordList(orderKind, key, account)
}

// NewBalancesList creates an empty balances list for key.
func NewBalancesList(key domain.AccountKey, account *Account) *BalancesList {
	return newAccountRecordList(balanceKind, key, account)
}

func newAccountRecordList[R AccountRecord[D], D any](kind *recordKind[R, D], key domain.AccountKey, account *Account) *AccountRecordList[R, D] {
	inner := keyedlist.New[R]()
	l := &AccountRecordList[R, D]{
		List:    inner,
		loader:  keyedlist.NewLoader(inner, dataListReasons),
		kind:    kind,
		key:     key,
		account: account,
	}
	if account != nil {
		l.accountSub = account.SubscribeCorrectnessChangedEvent(l.refreshCorrectness)
	}
	l.badnessSub = inner.SubscribeBadnessChangeEvent(l.refreshCorrectness)
	return l
}

// Account returns the key of the owning account.
func (l *AccountRecordList[R, D]) Account() domain.AccountKey { return l.key }

// Definition is the subscription that feeds this list.
func (l *AccountRecordList[R, D]) Definition() domain.DataDefinition {
	return l.kind.definition(l.key)
}

// SetErrorHandler registers a function told about apply errors.
func (l *AccountRecordList[R, D]) SetErrorHandler(h func(error)) { l.loader.SetErrorHandler(h) }

// Restart prepares the list for a new subscription.
func (l *AccountRecordList[R, D]) Restart() { l.loader.Restart() }

// Dispose detaches the list from its account.
func (l *AccountRecordList[R, D]) Dispose() {
	if l.account != nil {
		l.account.UnsubscribeCorrectnessChangedEvent(l.accountSub)
		l.account = nil
	}
	l.UnsubscribeBadnessChangeEvent(l.badnessSub)
}

// setAccount attaches the list to a new account entity, or detaches it when
// a is nil.
func (l *AccountRecordList[R, D]) setAccount(a *Account) {
	if l.account == a {
		return
	}
	if l.account != nil {
		l.account.UnsubscribeCorrectnessChangedEvent(l.accountSub)
	}
	l.account = a
	if a != nil {
		l.accountSub = a.SubscribeCorrectnessChangedEvent(l.refreshCorrectness)
	}
	l.refreshCorrectness()
}

// RecordCorrectness is the correctness given to every record: the list's
// correctness merged with the account's.
func (l *AccountRecordList[R, D]) RecordCorrectness() correctness.ID {
	if l.account == nil {
		return l.Correctness()
	}
	return correctness.Merge(l.Correctness(), l.account.Correctness())
}

// ReceiveDataMessage applies a message from the list's subscription.
func (l *AccountRecordList[R, D]) ReceiveDataMessage(msg domain.DataMessage) {
	if l.loader.ApplyStatus(msg) {
		return
	}
	account, changes, ok := l.kind.changes(msg)
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledDataDefinition, fmt.Sprintf("%s list got %T", l.kind.name, msg))
	}
	if !l.loader.BeginData() {
		return
	}
	if account != l.key {
		l.loader.Report(domain.NewDataError(domain.CodeWrongAccount, account.MapKey()+" sent to "+l.key.MapKey()))
		return
	}
	if err := l.applyChanges(changes); err != nil {
		l.loader.Report(err)
	}
}

func (l *AccountRecordList[R, D]) applyChanges(changes []recordChange[D]) error {
	var (
		pending     []R
		pendingKeys = make(map[string]struct{})
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		start := l.ExtendRecordCount(len(pending))
		for i, r := range pending {
			l.SetRecord(start+i, r)
		}
		l.CommitAdd(start, len(pending))
		pending = nil
		clear(pendingKeys)
	}
	defer flush()

	for i, c := range changes {
		if c.data != nil && l.kind.accountOf(*c.data) != l.key {
			return domain.AtIndex(i, domain.NewDataError(domain.CodeWrongAccount, c.key))
		}
		switch c.typ {
		case domain.ChangeAdd:
			if _, dup := pendingKeys[c.key]; dup {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordAlreadyExists, c.key))
			}
			if _, exists := l.GetByMapKey(c.key); exists {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordAlreadyExists, c.key))
			}
			pending = append(pending, l.kind.create(*c.data, l.RecordCorrectness()))
			pendingKeys[c.key] = struct{}{}
		case domain.ChangeUpdate:
			flush()
			r, ok := l.GetByMapKey(c.key)
			if !ok {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordNotFound, c.key))
			}
			if err := r.Update(*c.data); err != nil {
				return domain.AtIndex(i, err)
			}
		case domain.ChangeRemove:
			flush()
			if !l.RemoveByMapKey(c.key) {
				return domain.AtIndex(i, domain.NewDataError(domain.CodeRecordNotFound, c.key))
			}
		case domain.ChangeClear:
			flush()
			l.Clear()
		default:
			domain.PanicInternal(domain.CodeUnhandledEnum, l.kind.name+" change "+string(c.typ))
		}
	}
	return nil
}

func (l *AccountRecordList[R, D]) refreshCorrectness() {
	c := l.RecordCorrectness()
	for _, r := range l.Records() {
		r.SetCorrectness(c)
	}
}

var holdingKind = &recordKind[*Holding, domain.HoldingData]{
	name: "holdings",
	definition: func(account domain.AccountKey) domain.DataDefinition {
		return domain.BrokerageAccountHoldingsDefinition{Account: account}
	},
	create:    NewHolding,
	accountOf: func(d domain.HoldingData) domain.AccountKey { return d.Key().Account },
	changes: func(msg domain.DataMessage) (domain.AccountKey, []recordChange[domain.HoldingData], bool) {
		m, ok := msg.(domain.BrokerageAccountHoldingsDataMessage)
		if !ok {
			return domain.AccountKey{}, nil, false
		}
		out := make([]recordChange[domain.HoldingData], len(m.Changes))
		for i, c := range m.Changes {
			key := c.Key
			if c.Data != nil {
				key = c.Data.Key()
			}
			out[i] = recordChange[domain.HoldingData]{typ: c.Type, data: c.Data, key: key.MapKey()}
		}
		return m.Account, out, true
	},
}

var orderKind = &recordKind[*Order, domain.OrderData]{
	name: "orders",
	definition: func(account domain.AccountKey) domain.DataDefinition {
		return domain.BrokerageAccountOrdersDefinition{Account: account}
	},
	create:    NewOrder,
	accountOf: func(d domain.OrderData) domain.AccountKey { return d.Key().Account },
	changes: func(msg domain.DataMessage) (domain.AccountKey, []recordChange[domain.OrderData], bool) {
		m, ok := msg.(domain.BrokerageAccountOrdersDataMessage)
		if !ok {
			return domain.AccountKey{}, nil, false
		}
		out := make([]recordChange[domain.OrderData], len(m.Changes))
		for i, c := range m.Changes {
			key := c.Key
			if c.Data != nil {
				key = c.Data.Key()
			}
			out[i] = recordChange[domain.OrderData]{typ: c.Type, data: c.Data, key: key.MapKey()}
		}
		return m.Account, out, true
	},
}

var balanceKind = &recordKind[*Balance, domain.BalanceData]{
	name: "balances",
	definition: func(account domain.AccountKey) domain.DataDefinition {
		return domain.BrokerageAccountBalancesDefinition{Account: account}
	},
	create:    NewBalance,
	accountOf: func(d domain.BalanceData) domain.AccountKey { return d.Key().Account },
	changes: func(msg domain.DataMessage) (domain.AccountKey, []recordChange[domain.BalanceData], bool) {
		m, ok := msg.(domain.BrokerageAccountBalancesDataMessage)
		if !ok {
			return domain.AccountKey{}, nil, false
		}
		out := make([]recordChange[domain.BalanceData], len(m.Changes))
		for i, c := range m.Changes {
			var key string
			if c.Data != nil {
				key = c.Data.Key().MapKey()
			}
			out[i] = recordChange[domain.BalanceData]{typ: c.Type, data: c.Data, key: key}
		}
		return m.Account, out, true
	},
}
