package postgres

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type ReportRepo struct{ DB *DB }

var _ reports.Source = (*ReportRepo)(nil)

func (r *ReportRepo) OrdersBetween(ctx context.Context, from, to time.Time) ([]orders.Order, error) {
	q := r.DB.q(ctx)
	rows, err := q.Query(ctx, `SELECT `+orderColumns+` FROM orders o
		WHERE o.order_date BETWEEN $1 AND $2
		ORDER BY o.order_date, o.id`, from, to)
	if err != nil {
		return nil, err
	}
	out, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	return out, attachItems(ctx, q, out, 0, nil)
}

func (r *ReportRepo) SearchOrders(ctx context.Context, f reports.OrderQuery) ([]orders.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != nil {
		conds = append(conds, "o.status = "+arg(string(*f.Status)))
	}
	if f.PaymentStatus != nil {
		conds = append(conds, "o.payment_status = "+arg(string(*f.PaymentStatus)))
	}
	if f.MinAmount != nil {
		conds = append(conds, "o.total_amount >= "+arg(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		conds = append(conds, "o.total_amount <= "+arg(*f.MaxAmount))
	}
	if f.From != nil {
		conds = append(conds, "o.order_date >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "o.order_date <= "+arg(*f.To))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	q := r.DB.q(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	page := fmt.Sprintf(" ORDER BY %s LIMIT %s OFFSET %s", f.Sort.OrderBy(), arg(f.Page.Size), arg(f.Page.Offset()))
	rows, err := q.Query(ctx, `SELECT `+orderColumns+` FROM orders o`+where+page, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, attachItems(ctx, q, out, 0, nil)
}

func (r *ReportRepo) DashboardCounts(ctx context.Context) (reports.Counts, error) {
	var c reports.Counts
	err := r.DB.q(ctx).QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM sellers),
		(SELECT COUNT(*) FROM products),
		(SELECT COUNT(*) FROM orders),
		(SELECT COUNT(*) FROM sellers WHERE NOT is_approved),
		(SELECT COUNT(*) FROM seller_reviews WHERE NOT is_approved)`).
		Scan(&c.TotalUsers, &c.TotalSellers, &c.TotalProducts, &c.TotalOrders, &c.PendingSellers, &c.PendingReviews)
	return c, err
}

func (r *ReportRepo) CompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.q(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status=$1`,
		string(orders.PaymentCompleted)).Scan(&total)
	return total, err
}

func (r *ReportRepo) RecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT `+orderColumns+` FROM orders o
		ORDER BY o.order_date DESC, o.id DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}
