package catalog_test

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"slices"
	"testing"
)

func names(ps []catalog.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestProductsFilterSortAndPage(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	w.Product(t, seller, "Red Shirt", "150000", 5)
	w.Product(t, seller, "Blue Shirt", "90000", 0)
	w.Product(t, seller, "Coffee Mug", "45000", 12)
	w.Product(t, seller, "Shirt Hanger", "10000", 100)

	floor := decimal.NewFromInt(20000)
	page, err := w.Catalog.Products(ctx, catalog.ProductFilter{
		SearchTerm: "shirt",
		MinPrice:   &floor,
		SortBy:     catalog.ByPrice,
		Desc:       true,
		Page:       paging.Normalize(1, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Shirt", "Blue Shirt"}, names(page.Items))
	assert.Equal(t, paging.Meta{TotalItems: 2, TotalPages: 1, CurrentPage: 1, PageSize: 10}, page.Meta)

	page, err = w.Catalog.Products(ctx, catalog.ProductFilter{SortBy: catalog.ByName, Page: paging.Normalize(2, 3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shirt Hanger"}, names(page.Items))
	assert.Equal(t, 4, page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)

	page, err = w.Catalog.Products(ctx, catalog.ProductFilter{Page: paging.Normalize(9, 3)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestProductsRejectInvertedPriceRange(t *testing.T) {
	w := testkit.New(t)
	lo, hi := decimal.NewFromInt(10), decimal.NewFromInt(5)
	_, err := w.Catalog.Products(context.Background(), catalog.ProductFilter{MinPrice: &lo, MaxPrice: &hi, Page: paging.Normalize(1, 10)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseSortKeyAndDirection(t *testing.T) {
	k, err := catalog.ParseSortKey(" Price ")
	require.NoError(t, err)
	assert.Equal(t, catalog.ByPrice, k)

	k, err = catalog.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, catalog.ByID, k)

	_, err = catalog.ParseSortKey("rating")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	desc, err := catalog.ParseDirection("desc")
	require.NoError(t, err)
	assert.True(t, desc)
	_, err = catalog.ParseDirection("sideways")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSortProductsIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		ps := make([]catalog.Product, n)
		for i := range ps {
			ps[i] = catalog.Product{
				ID:    int64(i + 1),
				Name:  rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "name"),
				Price: decimal.NewFromInt(int64(rapid.IntRange(1, 5).Draw(t, "price"))),
				Stock: rapid.IntRange(0, 3).Draw(t, "stock"),
			}
		}
		key := catalog.SortKey(rapid.IntRange(0, 3).Draw(t, "key"))
		desc := rapid.Bool().Draw(t, "desc")

		catalog.SortProducts(ps, key, desc)
		for i := 1; i < len(ps); i++ {
			c := key.Compare(ps[i-1], ps[i])
			if desc {
				c = -c
			}
			if c > 0 {
				t.Fatalf("products %d and %d out of order", ps[i-1].ID, ps[i].ID)
			}
		}
	})
}

func TestSellerLifecycle(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	user := w.Customer(t)

	in := catalog.SellerInput{StoreName: "Toko Budi", ContactEmail: "toko@example.com"}
	s, err := w.Catalog.CreateSeller(ctx, user, in)
	require.NoError(t, err)
	assert.False(t, s.IsApproved)
	assert.True(t, s.Rating.IsZero())

	_, err = w.Catalog.CreateSeller(ctx, user, in)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	pending, err := w.Catalog.PendingSellers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = w.Catalog.CreateProduct(ctx, user, catalog.ProductInput{Name: "Thing", Description: "x", Price: decimal.NewFromInt(1), CategoryID: w.Category.ID})
	assert.ErrorIs(t, err, apperr.ErrForbidden, "unapproved store")

	_, err = w.Catalog.ApproveSeller(ctx, user, s.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = w.Catalog.ApproveSeller(ctx, w.Admin, s.ID)
	require.NoError(t, err)
	assert.True(t, w.Reload(t, user).Has("Seller"))

	other := w.Customer(t)
	_, err = w.Catalog.UpdateSeller(ctx, other, s.ID, in)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	in.StoreName = "Toko Budi Jaya"
	upd, err := w.Catalog.UpdateSeller(ctx, user, s.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Toko Budi Jaya", upd.StoreName)

	p := w.Product(t, user, "Batik", "250000", 3)
	require.NotNil(t, p.SellerID)
	assert.Equal(t, s.ID, *p.SellerID)
	assert.Equal(t, "Toko Budi Jaya", p.SellerStoreName)

	stats, err := w.Catalog.MyStats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.True(t, stats.IsApproved)
}

func TestCreateProductValidatesCategory(t *testing.T) {
	w := testkit.New(t)
	_, err := w.Catalog.CreateProduct(context.Background(), w.Admin, catalog.ProductInput{
		Name: "Ghost", Description: "x", Price: decimal.NewFromInt(1), CategoryID: 9999,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBulkCreateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)

	_, err := w.Catalog.BulkCreateProducts(ctx, seller, []catalog.ProductInput{
		{Name: "One", Description: "x", Price: decimal.NewFromInt(1), Stock: 1, CategoryID: w.Category.ID},
		{Name: "Two", Description: "x", Price: decimal.NewFromInt(1), Stock: 1, CategoryID: 9999},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	mine, err := w.Catalog.MyProducts(ctx, seller)
	require.NoError(t, err)
	assert.Empty(t, mine)

	created, err := w.Catalog.BulkCreateProducts(ctx, seller, []catalog.ProductInput{
		{Name: "One", Description: "x", Price: decimal.NewFromInt(1), Stock: 1, CategoryID: w.Category.ID},
		{Name: "Two", Description: "x", Price: decimal.NewFromInt(2), Stock: 2, CategoryID: w.Category.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, names(created))
}

func TestBulkUpdateStockOwnership(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	rival, _ := w.Seller(t)
	mine := w.Product(t, seller, "Mine", "10", 1)
	theirs := w.Product(t, rival, "Theirs", "10", 1)

	err := w.Catalog.BulkUpdateStock(ctx, seller, []catalog.StockUpdate{
		{ProductID: mine.ID, NewStock: 50},
		{ProductID: theirs.ID, NewStock: 50},
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, 1, w.Stock(t, mine.ID), "nothing applied")

	require.NoError(t, w.Catalog.BulkUpdateStock(ctx, seller, []catalog.StockUpdate{{ProductID: mine.ID, NewStock: 50}}))
	assert.Equal(t, 50, w.Stock(t, mine.ID))
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	sold := w.Product(t, seller, "Sold", "10", 5)
	unsold := w.Product(t, seller, "Unsold", "10", 5)
	w.Order(t, w.Customer(t), sold.ID, 1)

	assert.ErrorIs(t, w.Catalog.DeleteProduct(ctx, seller, unsold.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, w.Catalog.DeleteProduct(ctx, w.Admin, sold.ID), apperr.ErrBusinessRule)
	require.NoError(t, w.Catalog.DeleteProduct(ctx, w.Admin, unsold.ID))

	all, err := w.Catalog.Products(ctx, catalog.ProductFilter{Page: paging.Normalize(1, 10)})
	require.NoError(t, err)
	assert.False(t, slices.ContainsFunc(all.Items, func(p catalog.Product) bool { return p.ID == unsold.ID }))
}
