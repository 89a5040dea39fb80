package session

import (
	"context"
	"fmt"

	"zenith-sync/internal/brokerage"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
)

// SaveGroup stores group under name, replacing any earlier selection.
func (s *Session) SaveGroup(ctx context.Context, name string, group domain.AccountGroup) error {
	if s.preferences == nil {
		return ErrNoPreferenceStore
	}
	p := &storage.AccountGroupPreference{
		Name:      name,
		Key:       group.Persist(),
		UpdatedAt: s.now().UnixMilli(),
	}
	if err := s.preferences.Save(ctx, p); err != nil {
		return fmt.Errorf("save group %q: %w", name, err)
	}
	return nil
}

// LoadGroup returns the group saved under name. A saved key that no longer
// decodes is reported as a data error.
func (s *Session) LoadGroup(ctx context.Context, name string) (domain.AccountGroup, error) {
	if s.preferences == nil {
		return domain.AccountGroup{}, ErrNoPreferenceStore
	}
	p, err := s.preferences.Get(ctx, name)
	if err != nil {
		return domain.AccountGroup{}, fmt.Errorf("load group %q: %w", name, err)
	}
	group, err := domain.AccountGroupFromPersisted(p.Key)
	if err != nil {
		return domain.AccountGroup{}, fmt.Errorf("load group %q: %w", name, err)
	}
	return group, nil
}

// OrdersForGroup aggregates the orders of every account in group. The caller
// disposes the list.
func (s *Session) OrdersForGroup(group domain.AccountGroup) *brokerage.GroupRecordList[*brokerage.Order] {
	return brokerage.NewOrdersGroupList(group, s.accounts, s.dataLists)
}

// HoldingsForGroup aggregates the holdings of every account in group.
func (s *Session) HoldingsForGroup(group domain.AccountGroup) *brokerage.GroupRecordList[*brokerage.Holding] {
	return brokerage.NewHoldingsGroupList(group, s.accounts, s.dataLists)
}

// BalancesForGroup aggregates the balances of every account in group.
func (s *Session) BalancesForGroup(group domain.AccountGroup) *brokerage.GroupRecordList[*brokerage.Balance] {
	return brokerage.NewBalancesGroupList(group, s.accounts, s.dataLists)
}
