package wishlist_test

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	first := w.Product(t, seller, "Guitar", "1500", 1)
	second := w.Product(t, seller, "Drum", "900", 0)
	buyer := w.Customer(t)

	it, err := w.Wishlist.Add(ctx, buyer, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guitar", it.ProductName)
	assert.True(t, first.Price.Equal(it.Price))

	_, err = w.Wishlist.Add(ctx, buyer, first.ID)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	// out of stock products can still be wished for
	_, err = w.Wishlist.Add(ctx, buyer, second.ID)
	require.NoError(t, err)
	_, err = w.Wishlist.Add(ctx, buyer, 5050)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := w.Wishlist.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 2)

	empty, err := w.Wishlist.List(ctx, w.Customer(t))
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, w.Wishlist.Remove(ctx, buyer, first.ID))
	assert.ErrorIs(t, w.Wishlist.Remove(ctx, buyer, first.ID), apperr.ErrNotFound)
	list, err = w.Wishlist.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ProductID)
}
