package reports

import (
	"cmp"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DailyOrders struct {
	Date       time.Time       `json:"date"`
	OrderCount int             `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type PaymentMethodStats struct {
	Method      string          `json:"method"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderStats struct {
	TotalOrders        int                  `json:"totalOrders"`
	TotalRevenue       decimal.Decimal      `json:"totalRevenue"`
	AverageOrderValue  decimal.Decimal      `json:"averageOrderValue"`
	OrdersByStatus     []StatusCount        `json:"ordersByStatus"`
	DailyStats         []DailyOrders        `json:"dailyStats"`
	PaymentMethodStats []PaymentMethodStats `json:"paymentMethodStats"`
}

type TopProduct struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	TotalSales  int             `json:"totalSales"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type SellerReport struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	CompletedOrders   int             `json:"completedOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TopProducts       []TopProduct    `json:"topProducts"`
	DailyRevenue      []DailyOrders   `json:"dailyRevenue"`
}

const topProductsLimit = 5

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), 2)
}

// ComputeOrderStats aggregates whole orders. Empty input gives zero values and empty lists.
func ComputeOrderStats(os []orders.Order) OrderStats {
	st := OrderStats{
		TotalRevenue:       decimal.Zero,
		OrdersByStatus:     []StatusCount{},
		DailyStats:         []DailyOrders{},
		PaymentMethodStats: []PaymentMethodStats{},
	}
	byStatus := map[string]int{}
	byDay := map[time.Time]*DailyOrders{}
	byMethod := map[string]*PaymentMethodStats{}

	for _, o := range os {
		st.TotalOrders++
		st.TotalRevenue = st.TotalRevenue.Add(o.TotalAmount)
		byStatus[string(o.Status)]++

		d := day(o.OrderDate)
		if byDay[d] == nil {
			byDay[d] = &DailyOrders{Date: d, Revenue: decimal.Zero}
		}
		byDay[d].OrderCount++
		byDay[d].Revenue = byDay[d].Revenue.Add(o.TotalAmount)

		if byMethod[o.PaymentMethod] == nil {
			byMethod[o.PaymentMethod] = &PaymentMethodStats{Method: o.PaymentMethod, TotalAmount: decimal.Zero}
		}
		byMethod[o.PaymentMethod].Count++
		byMethod[o.PaymentMethod].TotalAmount = byMethod[o.PaymentMethod].TotalAmount.Add(o.TotalAmount)
	}
	st.AverageOrderValue = average(st.TotalRevenue, st.TotalOrders)

	for s, n := range byStatus {
		st.OrdersByStatus = append(st.OrdersByStatus, StatusCount{Status: s, Count: n})
	}
	slices.SortFunc(st.OrdersByStatus, func(a, b StatusCount) int { return cmp.Compare(a.Status, b.Status) })
	for _, d := range byDay {
		st.DailyStats = append(st.DailyStats, *d)
	}
	slices.SortFunc(st.DailyStats, func(a, b DailyOrders) int { return a.Date.Compare(b.Date) })
	for _, m := range byMethod {
		st.PaymentMethodStats = append(st.PaymentMethodStats, *m)
	}
	slices.SortFunc(st.PaymentMethodStats, func(a, b PaymentMethodStats) int { return cmp.Compare(a.Method, b.Method) })
	return st
}

// ComputeSellerReport aggregates the items of sellerID across os. An order counts as completed
// when one of the seller's items in it is Delivered, and as pending when one is still Pending.
func ComputeSellerReport(os []orders.Order, sellerID int64) SellerReport {
	rep := SellerReport{
		TotalRevenue: decimal.Zero,
		TopProducts:  []TopProduct{},
		DailyRevenue: []DailyOrders{},
	}
	all := map[int64]bool{}
	completed := map[int64]bool{}
	pending := map[int64]bool{}
	products := map[int64]*TopProduct{}
	type dayAgg struct {
		revenue decimal.Decimal
		orders  map[int64]bool
	}
	days := map[time.Time]*dayAgg{}

	for _, o := range os {
		for _, it := range o.Items {
			if it.SellerID != sellerID {
				continue
			}
			line := it.LineTotal()
			rep.TotalRevenue = rep.TotalRevenue.Add(line)
			all[o.ID] = true
			switch it.Status {
			case orders.ItemDelivered:
				completed[o.ID] = true
			case orders.ItemPending:
				pending[o.ID] = true
			}

			p := products[it.ProductID]
			if p == nil {
				p = &TopProduct{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
				products[it.ProductID] = p
			}
			p.TotalSales += it.Quantity
			p.Revenue = p.Revenue.Add(line)

			d := day(o.OrderDate)
			if days[d] == nil {
				days[d] = &dayAgg{revenue: decimal.Zero, orders: map[int64]bool{}}
			}
			days[d].revenue = days[d].revenue.Add(line)
			days[d].orders[o.ID] = true
		}
	}

	rep.TotalOrders = len(all)
	rep.CompletedOrders = len(completed)
	rep.PendingOrders = len(pending)
	rep.AverageOrderValue = average(rep.TotalRevenue, rep.TotalOrders)

	for _, p := range products {
		rep.TopProducts = append(rep.TopProducts, *p)
	}
	slices.SortFunc(rep.TopProducts, func(a, b TopProduct) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(rep.TopProducts) > topProductsLimit {
		rep.TopProducts = rep.TopProducts[:topProductsLimit]
	}

	for d, agg := range days {
		rep.DailyRevenue = append(rep.DailyRevenue, DailyOrders{Date: d, Revenue: agg.revenue, OrderCount: len(agg.orders)})
	}
	slices.SortFunc(rep.DailyRevenue, func(a, b DailyOrders) int { return a.Date.Compare(b.Date) })
	return rep
}
