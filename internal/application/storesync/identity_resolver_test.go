package storesync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/storesync"
)

func TestIdentityResolver_ResolveStore(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		stores := new(MockStoreRepository)
		stores.On("FindByInventoryOrgID", ctx, "org-1").Return(newTestStore(), nil)

		store, err := NewIdentityResolver(stores, nil).ResolveStore(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), store.ID)
	})

	t.Run("not found", func(t *testing.T) {
		stores := new(MockStoreRepository)
		stores.On("FindByInventoryOrgID", ctx, "org-x").Return(nil, storesync.ErrStoreNotFound)

		_, err := NewIdentityResolver(stores, nil).ResolveStore(ctx, "org-x")
		assert.ErrorIs(t, err, storesync.ErrStoreNotFound)
	})

	t.Run("missing organization id", func(t *testing.T) {
		stores := new(MockStoreRepository)

		_, err := NewIdentityResolver(stores, nil).ResolveStore(ctx, "")
		assert.ErrorIs(t, err, storesync.ErrOrganizationMissing)
		stores.AssertNotCalled(t, "FindByInventoryOrgID", mock.Anything, mock.Anything)
	})
}

func TestIdentityResolver_ResolveItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	items := new(MockItemRepository)
	items.On("FindByInventoryItemID", ctx, int64(7), "inv-1").Return(newTestItem(11, "inv-1", 555), nil)
	items.On("FindByInventoryItemID", ctx, int64(7), "inv-missing").Return(nil, storesync.ErrItemNotFound)

	resolver := NewIdentityResolver(nil, items)

	first, err := resolver.ResolveItem(ctx, store, "inv-1")
	require.NoError(t, err)
	second, err := resolver.ResolveItem(ctx, store, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for range 2 {
		_, err := resolver.ResolveItem(ctx, store, "inv-missing")
		assert.ErrorIs(t, err, storesync.ErrItemNotFound)
	}

	_, err = resolver.ResolveItem(ctx, store, "")
	assert.ErrorIs(t, err, storesync.ErrItemNotFound)

	items.AssertNumberOfCalls(t, "FindByInventoryItemID", 4)
}

func TestIdentityResolver_StorefrontLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	stores := new(MockStoreRepository)
	stores.On("FindByStorefrontStoreID", ctx, int64(1003)).Return(store, nil)
	items := new(MockItemRepository)
	items.On("FindByStorefrontItemID", ctx, int64(7), int64(555)).Return(newTestItem(11, "inv-1", 555), nil)

	resolver := NewIdentityResolver(stores, items)

	got, err := resolver.ResolveStoreByStorefrontID(ctx, 1003)
	require.NoError(t, err)
	assert.Equal(t, store, got)

	item, err := resolver.ResolveItemByStorefrontID(ctx, store, 555)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", item.InventoryItemID)

	_, err = resolver.ResolveStoreByStorefrontID(ctx, 0)
	assert.ErrorIs(t, err, storesync.ErrStoreNotFound)
}
