package reports_test

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(product, seller int64, qty int, price string, st orders.ItemStatus) orders.Item {
	return orders.Item{ProductID: product, SellerID: seller, Quantity: qty, UnitPrice: dec(price), Status: st, ProductName: "p"}
}

var (
	day1 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 2, 23, 30, 0, 0, time.UTC)
)

func sample() []orders.Order {
	return []orders.Order{
		{ID: 1, OrderDate: day1, Status: orders.StatusPending, PaymentMethod: "Card", TotalAmount: dec("100"),
			Items: []orders.Item{item(10, 1, 1, "60", orders.ItemPending), item(20, 2, 2, "20", orders.ItemAccepted)}},
		{ID: 2, OrderDate: day1.Add(time.Hour), Status: orders.StatusDelivered, PaymentMethod: "Transfer", TotalAmount: dec("50"),
			Items: []orders.Item{item(10, 1, 1, "50", orders.ItemDelivered)}},
		{ID: 3, OrderDate: day2, Status: orders.StatusPending, PaymentMethod: "Card", TotalAmount: dec("25"),
			Items: []orders.Item{item(30, 2, 1, "25", orders.ItemPending)}},
	}
}

func TestComputeOrderStats(t *testing.T) {
	st := reports.ComputeOrderStats(sample())

	assert.Equal(t, 3, st.TotalOrders)
	assert.True(t, dec("175").Equal(st.TotalRevenue))
	assert.True(t, dec("58.33").Equal(st.AverageOrderValue), st.AverageOrderValue.String())
	assert.Equal(t, []reports.StatusCount{{Status: "Delivered", Count: 1}, {Status: "Pending", Count: 2}}, st.OrdersByStatus)

	require.Len(t, st.DailyStats, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), st.DailyStats[0].Date)
	assert.Equal(t, 2, st.DailyStats[0].OrderCount)
	assert.True(t, dec("150").Equal(st.DailyStats[0].Revenue))

	require.Len(t, st.PaymentMethodStats, 2)
	assert.Equal(t, "Card", st.PaymentMethodStats[0].Method)
	assert.Equal(t, 2, st.PaymentMethodStats[0].Count)
	assert.True(t, dec("125").Equal(st.PaymentMethodStats[0].TotalAmount))
}

func TestComputeOrderStatsEmpty(t *testing.T) {
	st := reports.ComputeOrderStats(nil)
	assert.Zero(t, st.TotalOrders)
	assert.True(t, st.AverageOrderValue.IsZero())
	assert.NotNil(t, st.OrdersByStatus)
	assert.NotNil(t, st.DailyStats)
	assert.NotNil(t, st.PaymentMethodStats)
}

func TestComputeSellerReport(t *testing.T) {
	rep := reports.ComputeSellerReport(sample(), 1)

	assert.True(t, dec("110").Equal(rep.TotalRevenue))
	assert.Equal(t, 2, rep.TotalOrders)
	assert.Equal(t, 1, rep.CompletedOrders)
	assert.Equal(t, 1, rep.PendingOrders)
	assert.True(t, dec("55").Equal(rep.AverageOrderValue))
	require.Len(t, rep.TopProducts, 1)
	assert.Equal(t, int64(10), rep.TopProducts[0].ProductID)
	assert.Equal(t, 2, rep.TopProducts[0].TotalSales)
	require.Len(t, rep.DailyRevenue, 1)
	assert.Equal(t, 2, rep.DailyRevenue[0].OrderCount)

	other := reports.ComputeSellerReport(sample(), 2)
	require.Len(t, other.TopProducts, 2)
	assert.Equal(t, int64(20), other.TopProducts[0].ProductID, "highest revenue first")

	none := reports.ComputeSellerReport(sample(), 99)
	assert.Zero(t, none.TotalOrders)
	assert.Empty(t, none.TopProducts)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestReportsService(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Now().UTC().Add(-48 * time.Hour)}
	w := testkit.New(t, orders.WithClock(clk.Now))
	seller, _ := w.Seller(t)
	cheap := w.Product(t, seller, "Cheap", "10", 50)
	dear := w.Product(t, seller, "Dear", "500", 50)
	buyer := w.Customer(t)

	old := w.Order(t, buyer, cheap.ID, 1)
	clk.now = time.Now().UTC().Add(-time.Hour)
	mid := w.Order(t, buyer, cheap.ID, 3)
	big := w.Order(t, buyer, dear.ID, 2)
	require.NoError(t, w.Store.SetPaymentStatus(ctx, big.ID, orders.PaymentCompleted))

	// default window covers the last 30 days
	st, err := w.Reports.OrderStats(ctx, w.Admin, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalOrders)

	from := time.Now().UTC().Add(-24 * time.Hour)
	st, err = w.Reports.OrderStats(ctx, w.Admin, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalOrders)

	before := from.Add(-72 * time.Hour)
	_, err = w.Reports.OrderStats(ctx, w.Admin, &from, &before)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = w.Reports.OrderStats(ctx, buyer, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	rep, err := w.Reports.SellerReport(ctx, seller, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalOrders)
	assert.True(t, dec("1040").Equal(rep.TotalRevenue))
	_, err = w.Reports.SellerReport(ctx, buyer, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	minAmount := dec("20")
	page, err := w.Reports.SearchOrders(ctx, w.Admin, reports.OrderQuery{
		MinAmount: &minAmount,
		Sort:      reports.AmountAsc,
		Page:      paging.Normalize(1, 10),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, mid.ID, page.Items[0].ID)
	assert.Equal(t, big.ID, page.Items[1].ID)
	assert.Len(t, page.Items[1].Items, 1)

	completed := orders.PaymentCompleted
	page, err = w.Reports.SearchOrders(ctx, w.Admin, reports.OrderQuery{PaymentStatus: &completed, Page: paging.Normalize(1, 10)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, big.ID, page.Items[0].ID)

	page, err = w.Reports.SearchOrders(ctx, w.Admin, reports.OrderQuery{Sort: reports.DateAsc, Page: paging.Normalize(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, old.ID, page.Items[0].ID)
	assert.Equal(t, 3, page.Meta.TotalPages)

	hi, lo := dec("5"), dec("50")
	_, err = w.Reports.SearchOrders(ctx, w.Admin, reports.OrderQuery{MinAmount: &lo, MaxAmount: &hi, Page: paging.Normalize(1, 10)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	d, err := w.Reports.Dashboard(ctx, w.Admin)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalUsers)
	assert.Equal(t, 1, d.TotalSellers)
	assert.Equal(t, 2, d.TotalProducts)
	assert.Equal(t, 3, d.TotalOrders)
	assert.True(t, dec("1000").Equal(d.TotalRevenue))
	require.Len(t, d.RecentOrders, 3)
	assert.Equal(t, big.ID, d.RecentOrders[0].OrderID)
	_, err = w.Reports.Dashboard(ctx, seller)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestParseOrderSort(t *testing.T) {
	s, err := reports.ParseOrderSort("AMOUNT_DESC")
	require.NoError(t, err)
	assert.Equal(t, reports.AmountDesc, s)
	s, err = reports.ParseOrderSort("")
	require.NoError(t, err)
	assert.Equal(t, reports.DateDesc, s)
	_, err = reports.ParseOrderSort("random")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
