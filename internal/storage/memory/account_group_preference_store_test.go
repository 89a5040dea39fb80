package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
)

func TestAccountGroupPreferenceStore_SaveAndGet(t *testing.T) {
	store := NewAccountGroupPreferenceStore()
	ctx := context.Background()

	pref := &storage.AccountGroupPreference{
		Name:      "blotter",
		Key:       domain.SingleAccountGroup(domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentDemo}).Persist(),
		UpdatedAt: 1704067200000,
	}
	require.NoError(t, store.Save(ctx, pref))

	got, err := store.Get(ctx, "blotter")
	require.NoError(t, err)
	assert.Equal(t, pref, got)

	got.Name = "mutated"
	again, err := store.Get(ctx, "blotter")
	require.NoError(t, err)
	assert.Equal(t, "blotter", again.Name, "store returns copies")
}

func TestAccountGroupPreferenceStore_SaveReplaces(t *testing.T) {
	store := NewAccountGroupPreferenceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &storage.AccountGroupPreference{Name: "blotter", Key: domain.AllAccountsGroup().Persist()}))
	single := domain.SingleAccountGroup(domain.AccountKey{ID: "A1", Environment: domain.TradingEnvironmentProduction}).Persist()
	require.NoError(t, store.Save(ctx, &storage.AccountGroupPreference{Name: "blotter", Key: single}))

	got, err := store.Get(ctx, "blotter")
	require.NoError(t, err)
	assert.Equal(t, single, got.Key)
}

func TestAccountGroupPreferenceStore_ListAndDelete(t *testing.T) {
	store := NewAccountGroupPreferenceStore()
	ctx := context.Background()

	for _, name := range []string{"orders", "holdings", "balances"} {
		require.NoError(t, store.Save(ctx, &storage.AccountGroupPreference{Name: name, Key: domain.AllAccountsGroup().Persist()}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "balances", list[0].Name)
	assert.Equal(t, "orders", list[2].Name)

	require.NoError(t, store.Delete(ctx, "holdings"))
	assert.ErrorIs(t, store.Delete(ctx, "holdings"), storage.ErrNotFound)
	_, err = store.Get(ctx, "holdings")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAccountGroupPreferenceStore_InvalidInput(t *testing.T) {
	store := NewAccountGroupPreferenceStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(ctx, &storage.AccountGroupPreference{Key: domain.AllAccountsGroup().Persist()}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(ctx, &storage.AccountGroupPreference{Name: "x"}), storage.ErrInvalidInput)
}
