package reports

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/shopspring/decimal"
	"time"
)

// DefaultWindow is the trailing range used when a report gets no dates.
const DefaultWindow = 30 * 24 * time.Hour

const recentOrdersLimit = 5

type Counts struct {
	TotalUsers     int `json:"totalUsers"`
	TotalSellers   int `json:"totalSellers"`
	TotalProducts  int `json:"totalProducts"`
	TotalOrders    int `json:"totalOrders"`
	PendingSellers int `json:"pendingSellers"`
	PendingReviews int `json:"pendingReviews"`
}

type RecentOrder struct {
	OrderID     int64           `json:"orderId"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      orders.Status   `json:"status"`
}

type Dashboard struct {
	Counts
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	RecentOrders []RecentOrder   `json:"recentOrders"`
}

// Source is the read side the reports are computed from. Orders come with their items.
type Source interface {
	OrdersBetween(ctx context.Context, from, to time.Time) ([]orders.Order, error)
	SearchOrders(ctx context.Context, q OrderQuery) ([]orders.Order, int, error)
	DashboardCounts(ctx context.Context) (Counts, error)
	CompletedRevenue(ctx context.Context) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, n int) ([]orders.Order, error)
}

type SellerResolver interface {
	SellerByUser(ctx context.Context, userID string) (*catalog.Seller, error)
}

type Service struct {
	src     Source
	sellers SellerResolver
	now     func() time.Time
}

func NewService(src Source, sellers SellerResolver) *Service {
	return &Service{src: src, sellers: sellers, now: time.Now}
}

// Window resolves optional bounds, defaulting to the trailing 30 days.
func (s *Service) Window(from, to *time.Time) (time.Time, time.Time, error) {
	end := s.now().UTC()
	if to != nil {
		end = *to
	}
	start := end.Add(-DefaultWindow)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperr.Validation("invalid date range", "startDate must not be after endDate")
	}
	return start, end, nil
}

func (s *Service) OrderStats(ctx context.Context, caller auth.Principal, from, to *time.Time) (*OrderStats, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can read order statistics")
	}
	start, end, err := s.Window(from, to)
	if err != nil {
		return nil, err
	}
	os, err := s.src.OrdersBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	st := ComputeOrderStats(os)
	return &st, nil
}

func (s *Service) SellerReport(ctx context.Context, caller auth.Principal, from, to *time.Time) (*SellerReport, error) {
	seller, err := s.sellers.SellerByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("seller profile not found")
		}
		return nil, err
	}
	start, end, err := s.Window(from, to)
	if err != nil {
		return nil, err
	}
	os, err := s.src.OrdersBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rep := ComputeSellerReport(os, seller.ID)
	return &rep, nil
}

func (s *Service) SearchOrders(ctx context.Context, caller auth.Principal, q OrderQuery) (paging.Page[orders.Order], error) {
	if !caller.IsAdmin() {
		return paging.Page[orders.Order]{}, apperr.Forbidden("only admins can search orders")
	}
	if q.MinAmount != nil && q.MaxAmount != nil && q.MinAmount.GreaterThan(*q.MaxAmount) {
		return paging.Page[orders.Order]{}, apperr.Validation("invalid filter", "minAmount must not exceed maxAmount")
	}
	items, total, err := s.src.SearchOrders(ctx, q)
	if err != nil {
		return paging.Page[orders.Order]{}, err
	}
	return paging.New(items, total, q.Page), nil
}

func (s *Service) Dashboard(ctx context.Context, caller auth.Principal) (*Dashboard, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can read the dashboard")
	}
	counts, err := s.src.DashboardCounts(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.src.CompletedRevenue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.src.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Counts: counts, TotalRevenue: revenue, RecentOrders: make([]RecentOrder, 0, len(recent))}
	for _, o := range recent {
		d.RecentOrders = append(d.RecentOrders, RecentOrder{
			OrderID:     o.ID,
			OrderDate:   o.OrderDate,
			TotalAmount: o.TotalAmount,
			Status:      o.Status,
		})
	}
	return d, nil
}
