package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/services"
)

func TestCartService_AddItemIncrementsExistingLine(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	u := f.user(t, "alice", false)
	p := f.product(t, "Widget", "10.00")

	_, err := svc.AddItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	summary, err := svc.AddItem(ctx, u.ID, p.ID)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, 2, summary.TotalItems)
	assert.True(t, dec("20").Equal(summary.TotalPrice), "total was %s", summary.TotalPrice)
	assert.Equal(t, int64(1), f.count(t, &models.Cart{}))
}

func TestCartService_AddItemUnknownOrInactiveProduct(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	u := f.user(t, "alice", false)

	_, err := svc.AddItem(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p := f.product(t, "Retired", "5.00")
	p.IsActive = false
	require.NoError(t, f.store.Products().Update(ctx, p))
	_, err = svc.AddItem(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, int64(0), f.count(t, &models.CartItem{}))
}

func TestCartService_SummaryUsesLivePrices(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	u := f.user(t, "alice", false)
	p := f.product(t, "Widget", "10.00")

	_, err := svc.AddItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	p.Price = dec("12.50")
	require.NoError(t, f.store.Products().Update(ctx, p))

	summary, err := svc.GetSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, dec("12.50").Equal(summary.TotalPrice), "total was %s", summary.TotalPrice)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	u := f.user(t, "alice", false)
	p := f.product(t, "Widget", "10.00")

	summary, err := svc.AddItem(ctx, u.ID, p.ID)
	require.NoError(t, err)
	itemID := summary.Items[0].ItemID

	summary, err = svc.UpdateItemQuantity(ctx, u.ID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalItems)

	t.Run("zero removes the line", func(t *testing.T) {
		summary, err := svc.UpdateItemQuantity(ctx, u.ID, itemID, 0)
		require.NoError(t, err)
		assert.Empty(t, summary.Items)
		assert.Equal(t, 0, summary.TotalItems)
		assert.Equal(t, int64(0), f.count(t, &models.CartItem{}))
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, u.ID, itemID, 2)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestCartService_OtherUsersLineIsForbidden(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	mallory := f.user(t, "mallory", false)
	p := f.product(t, "Widget", "10.00")

	summary, err := svc.AddItem(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	itemID := summary.Items[0].ItemID

	_, err = svc.UpdateItemQuantity(ctx, mallory.ID, itemID, 9)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)
	_, err = svc.RemoveItem(ctx, mallory.ID, itemID)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)

	summary, err = svc.GetSummary(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)
}

func TestCartService_ClearAndCount(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCartService(f.store)
	ctx := context.Background()
	u := f.user(t, "alice", false)

	count, err := svc.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	require.NoError(t, svc.Clear(ctx, u.ID), "clearing a missing cart succeeds")

	a := f.product(t, "Widget", "10.00")
	b := f.product(t, "Gadget", "3.00")
	for _, id := range []string{a.ID, a.ID, b.ID} {
		_, err := svc.AddItem(ctx, u.ID, id)
		require.NoError(t, err)
	}
	count, err = svc.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.Clear(ctx, u.ID))
	summary, err := svc.GetSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.TotalPrice.IsZero())
}
