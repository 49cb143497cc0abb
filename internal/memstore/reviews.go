package memstore

import (
	"cmp"
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

func (d *state) review(r reviews.Review) reviews.Review {
	if u, ok := d.users[r.UserID]; ok {
		r.UserName = u.UserName
	}
	return r
}

func newestReviewFirst(a, b reviews.Review) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (s *Store) CreateReview(ctx context.Context, r *reviews.Review) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.sellers[r.SellerID]; !ok {
			return apperr.NotFound("seller %d not found", r.SellerID)
		}
		for _, existing := range d.reviews {
			if existing.SellerID == r.SellerID && existing.UserID == r.UserID {
				return reviews.ErrDuplicate
			}
		}
		r.ID = d.nextID()
		d.reviews[r.ID] = *r
		return nil
	})
}

func (s *Store) HasReview(ctx context.Context, sellerID int64, userID string) (bool, error) {
	found := false
	err := s.do(ctx, func(d *state) error {
		for _, r := range d.reviews {
			if r.SellerID == sellerID && r.UserID == userID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (s *Store) Review(ctx context.Context, id int64) (*reviews.Review, error) {
	var out *reviews.Review
	err := s.do(ctx, func(d *state) error {
		r, ok := d.reviews[id]
		if !ok {
			return apperr.NotFound("review %d not found", id)
		}
		r = d.review(r)
		out = &r
		return nil
	})
	return out, err
}

func (s *Store) SellerReviews(ctx context.Context, sellerID int64, approvedOnly bool) ([]reviews.Review, error) {
	out := []reviews.Review{}
	err := s.do(ctx, func(d *state) error {
		for _, r := range d.reviews {
			if r.SellerID == sellerID && (!approvedOnly || r.IsApproved) {
				out = append(out, d.review(r))
			}
		}
		return nil
	})
	slices.SortFunc(out, newestReviewFirst)
	return out, err
}

func (s *Store) PendingReviews(ctx context.Context) ([]reviews.Review, error) {
	out := []reviews.Review{}
	err := s.do(ctx, func(d *state) error {
		for _, r := range d.reviews {
			if !r.IsApproved {
				out = append(out, d.review(r))
			}
		}
		return nil
	})
	slices.SortFunc(out, newestReviewFirst)
	return out, err
}

func (s *Store) SetReviewApproval(ctx context.Context, id int64, approved bool) error {
	return s.do(ctx, func(d *state) error {
		r, ok := d.reviews[id]
		if !ok {
			return apperr.NotFound("review %d not found", id)
		}
		r.IsApproved = approved
		d.reviews[id] = r
		return nil
	})
}

func (s *Store) ApprovedRatings(ctx context.Context, sellerID int64) ([]int, error) {
	var out []int
	err := s.do(ctx, func(d *state) error {
		for _, r := range d.reviews {
			if r.SellerID == sellerID && r.IsApproved {
				out = append(out, r.Rating)
			}
		}
		return nil
	})
	return out, err
}

// ---- reports ----

func (s *Store) OrdersBetween(ctx context.Context, from, to time.Time) ([]orders.Order, error) {
	out := []orders.Order{}
	err := s.do(ctx, func(d *state) error {
		for _, o := range d.orders {
			if o.OrderDate.Before(from) || o.OrderDate.After(to) {
				continue
			}
			out = append(out, d.hydrate(o, nil))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b orders.Order) int { return -newestFirst(a, b) })
	return out, err
}

func (s *Store) SearchOrders(ctx context.Context, q reports.OrderQuery) ([]orders.Order, int, error) {
	var (
		page  []orders.Order
		total int
	)
	err := s.do(ctx, func(d *state) error {
		var all []orders.Order
		for _, o := range d.orders {
			if q.Matches(o) {
				all = append(all, o)
			}
		}
		slices.SortFunc(all, q.Sort.Compare)
		total = len(all)
		page = paging.Slice(all, q.Page)
		for i := range page {
			page[i] = d.hydrate(page[i], nil)
		}
		return nil
	})
	return page, total, err
}

func (s *Store) DashboardCounts(ctx context.Context) (reports.Counts, error) {
	var c reports.Counts
	err := s.do(ctx, func(d *state) error {
		c.TotalUsers = len(d.users)
		c.TotalSellers = len(d.sellers)
		c.TotalProducts = len(d.products)
		c.TotalOrders = len(d.orders)
		for _, sl := range d.sellers {
			if !sl.IsApproved {
				c.PendingSellers++
			}
		}
		for _, r := range d.reviews {
			if !r.IsApproved {
				c.PendingReviews++
			}
		}
		return nil
	})
	return c, err
}

func (s *Store) CompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.do(ctx, func(d *state) error {
		for _, o := range d.orders {
			if o.PaymentStatus == orders.PaymentCompleted {
				total = total.Add(o.TotalAmount)
			}
		}
		return nil
	})
	return total, err
}

func (s *Store) RecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	var all []orders.Order
	err := s.do(ctx, func(d *state) error {
		for _, o := range d.orders {
			all = append(all, o)
		}
		return nil
	})
	slices.SortFunc(all, newestFirst)
	if len(all) > n {
		all = all[:n]
	}
	return all, err
}
