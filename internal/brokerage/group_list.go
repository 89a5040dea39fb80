package brokerage

import (
	"zenith-sync/internal/correctness"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/keyedlist"
	"zenith-sync/internal/multievent"
)

// SourceList is the part of a per-account list a group list follows.
type SourceList[R keyedlist.Record] interface {
	Count() int
	At(index int) R
	Records() []R
	Usable() bool
	Badness() correctness.Badness
	SubscribeListChangeEvent(h keyedlist.ChangeHandler) multievent.SubscriptionID
	UnsubscribeListChangeEvent(id multievent.SubscriptionID)
	SubscribeBadnessChangeEvent(h keyedlist.BadnessChangeHandler) multievent.SubscriptionID
	UnsubscribeBadnessChangeEvent(id multievent.SubscriptionID)
}

// SourceFunc returns the list of one account.
type SourceFunc[R keyedlist.Record] func(key domain.AccountKey) (SourceList[R], error)

type groupMember[R keyedlist.Record] struct {
	key        domain.AccountKey
	list       SourceList[R]
	changeSub  multievent.SubscriptionID
	badnessSub multievent.SubscriptionID
}

// GroupRecordList merges the records of every account in an account group.
// Records appear in the order their accounts delivered them.
type GroupRecordList[R keyedlist.Record] struct {
	*keyedlist.List[R]

	group       domain.AccountGroup
	accounts    *AccountsList
	source      SourceFunc[R]
	members     []*groupMember[R]
	accountsSub multievent.SubscriptionID
	badnessSub  multievent.SubscriptionID
	sourceErr   error
}

// NewGroupRecordList follows the accounts of group and merges their lists.
func NewGroupRecordList[R keyedlist.Record](group domain.AccountGroup, accounts *AccountsList, source SourceFunc[R]) *GroupRecordList[R] {
	g := &GroupRecordList[R]{
		List:     keyedlist.New[R](),
		group:    group,
		accounts: accounts,
		source:   source,
	}
	g.accountsSub = accounts.SubscribeListChangeEvent(g.handleAccountsListChange)
	g.badnessSub = accounts.SubscribeBadnessChangeEvent(g.updateUsability)
	for _, a := range accounts.Records() {
		g.addMember(a.Key())
	}
	g.updateUsability()
	return g
}

// NewHoldingsGroupList merges the holdings of the accounts in group.
func NewHoldingsGroupList(group domain.AccountGroup, accounts *AccountsList, lists *AccountDataLists) *GroupRecordList[*Holding] {
	return NewGroupRecordList(group, accounts, func(key domain.AccountKey) (SourceList[*Holding], error) {
		l, err := lists.Holdings(key)
		if err != nil {
			return nil, err
		}
		return l, nil
	})
}

// NewOrdersGroupList merges the orders of the accounts in group.
func NewOrdersGroupList(group domain.AccountGroup, accounts *AccountsList, lists *AccountDataLists) *GroupRecordList[*Order] {
	return NewGroupRecordList(group, accounts, func(key domain.AccountKey) (SourceList[*Order], error) {
		l, err := lists.Orders(key)
		if err != nil {
			return nil, err
		}
		return l, nil
	})
}

// NewBalancesGroupList merges the balances of the accounts in group.
func NewBalancesGroupList(group domain.AccountGroup, accounts *AccountsList, lists *AccountDataLists) *GroupRecordList[*Balance] {
	return NewGroupRecordList(group, accounts, func(key domain.AccountKey) (SourceList[*Balance], error) {
		l, err := lists.Balances(key)
		if err != nil {
			return nil, err
		}
		return l, nil
	})
}

// Group returns the account group the list covers.
func (g *GroupRecordList[R]) Group() domain.AccountGroup { return g.group }

// MemberCount returns the number of accounts being merged.
func (g *GroupRecordList[R]) MemberCount() int { return len(g.members) }

// Dispose stops following the accounts and their lists.
func (g *GroupRecordList[R]) Dispose() {
	g.accounts.UnsubscribeListChangeEvent(g.accountsSub)
	g.accounts.UnsubscribeBadnessChangeEvent(g.badnessSub)
	for _, m := range g.members {
		m.list.UnsubscribeListChangeEvent(m.changeSub)
		m.list.UnsubscribeBadnessChangeEvent(m.badnessSub)
	}
	g.members = nil
}

func (g *GroupRecordList[R]) addMember(key domain.AccountKey) {
	if !g.group.Contains(key) || g.memberIndex(key) >= 0 {
		return
	}
	list, err := g.source(key)
	if err != nil {
		g.sourceErr = err
		return
	}
	g.sourceErr = nil
	m := &groupMember[R]{key: key, list: list}
	m.changeSub = list.SubscribeListChangeEvent(func(c keyedlist.Change) { g.handleMemberChange(m, c) })
	m.badnessSub = list.SubscribeBadnessChangeEvent(g.updateUsability)
	g.members = append(g.members, m)
	g.AddRecords(list.Records()...)
}

func (g *GroupRecordList[R]) removeMember(key domain.AccountKey) {
	i := g.memberIndex(key)
	if i < 0 {
		return
	}
	m := g.members[i]
	g.members = append(g.members[:i], g.members[i+1:]...)
	m.list.UnsubscribeListChangeEvent(m.changeSub)
	m.list.UnsubscribeBadnessChangeEvent(m.badnessSub)
	g.removeRecords(m.list.Records())
}

func (g *GroupRecordList[R]) memberIndex(key domain.AccountKey) int {
	for i, m := range g.members {
		if m.key == key {
			return i
		}
	}
	return -1
}

func (g *GroupRecordList[R]) removeRecords(records []R) {
	for _, r := range records {
		g.RemoveByMapKey(r.MapKey())
	}
}

func (g *GroupRecordList[R]) handleMemberChange(m *groupMember[R], c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
		records := make([]R, 0, c.Count)
		for i := c.Index; i < c.Index+c.Count; i++ {
			records = append(records, m.list.At(i))
		}
		g.AddRecords(records...)
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			g.RemoveByMapKey(m.list.At(i).MapKey())
		}
	case keyedlist.ChangeClear, keyedlist.ChangePreUsableClear:
		g.removeRecords(m.list.Records())
	case keyedlist.ChangeUnusable, keyedlist.ChangeUsable:
		g.updateUsability()
	case keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
		domain.PanicInternal(domain.CodeReplaceNotSupported, "account group list got "+c.String())
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

func (g *GroupRecordList[R]) handleAccountsListChange(c keyedlist.Change) {
	switch c.Type {
	case keyedlist.ChangePreUsableAdd, keyedlist.ChangeInsert:
		for i := c.Index; i < c.Index+c.Count; i++ {
			g.addMember(g.accounts.At(i).Key())
		}
		g.updateUsability()
	case keyedlist.ChangeRemove:
		for i := c.Index; i < c.Index+c.Count; i++ {
			g.removeMember(g.accounts.At(i).Key())
		}
		g.updateUsability()
	case keyedlist.ChangeClear:
		for _, a := range g.accounts.Records() {
			g.removeMember(a.Key())
		}
		g.updateUsability()
	case keyedlist.ChangePreUsableClear, keyedlist.ChangeUnusable, keyedlist.ChangeUsable:
		g.updateUsability()
	case keyedlist.ChangeBeforeReplace, keyedlist.ChangeAfterReplace:
		domain.PanicInternal(domain.CodeReplaceNotSupported, "account group list got "+c.String())
	default:
		domain.PanicInternal(domain.CodeUnhandledListChange, c.String())
	}
}

// updateUsability makes the list usable only when the accounts list and
// every member list are usable.
func (g *GroupRecordList[R]) updateUsability() {
	var unusable, usable []correctness.Badness
	collect := func(ok bool, b correctness.Badness) {
		if ok {
			usable = append(usable, b)
		} else {
			unusable = append(unusable, b)
		}
	}
	collect(g.accounts.Usable(), g.accounts.Badness())
	for _, m := range g.members {
		collect(m.list.Usable(), m.list.Badness())
	}
	if g.sourceErr != nil {
		unusable = append(unusable, correctness.New(correctness.BrokerageAccountDataListsError, domain.Truncate(g.sourceErr.Error())))
	}
	if g.group.TypeID == domain.AccountGroupSingle && len(g.members) == 0 && g.accounts.Usable() {
		unusable = append(unusable, correctness.New(correctness.BrokerageAccountNotAvailable, g.group.Account.MapKey()))
	}
	if len(unusable) > 0 {
		g.SetUnusable(correctness.First(unusable...))
		return
	}
	g.SetUsable(correctness.First(usable...))
}
