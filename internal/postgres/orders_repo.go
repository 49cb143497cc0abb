package postgres

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/jackc/pgx/v5"
)

type OrderRepo struct{ DB *DB }

var _ orders.Store = (*OrderRepo)(nil)

// LockProducts takes row locks in ascending id order so concurrent placements touching the
// same products queue instead of deadlocking.
func (r *OrderRepo) LockProducts(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, p.seller_id,
		       '', ''
		FROM products p
		WHERE p.id = ANY($1)
		ORDER BY p.id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *OrderRepo) DecrementStock(ctx context.Context, productID int64, qty int) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id=$1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrStockConflict
	}
	return nil
}

func (r *OrderRepo) CreateOrder(ctx context.Context, o *orders.Order) error {
	return r.DB.WithTransaction(ctx, func(ctx context.Context) error {
		q := r.DB.q(ctx)
		err := q.QueryRow(ctx, `
			INSERT INTO orders(user_id, order_date, status, total_amount, shipping_address, contact_phone,
			                   payment_method, payment_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			o.UserID, o.OrderDate, string(o.Status), o.TotalAmount, o.ShippingAddress, o.ContactPhone,
			o.PaymentMethod, string(o.PaymentStatus)).Scan(&o.ID)
		if err != nil {
			return err
		}
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			if err := q.QueryRow(ctx, `
				INSERT INTO order_items(order_id, product_id, seller_id, quantity, unit_price, status)
				VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
				o.ID, it.ProductID, it.SellerID, it.Quantity, it.UnitPrice, string(it.Status)).Scan(&it.ID); err != nil {
				if pgCode(err) == codeForeignKeyViolation {
					return apperr.NotFound("product %d not found", it.ProductID)
				}
				return err
			}
		}
		return nil
	})
}

const orderColumns = `o.id, o.user_id, o.order_date, o.status, o.total_amount, o.shipping_address,
	o.contact_phone, o.payment_method, o.payment_status`

func scanOrder(row pgx.Row) (orders.Order, error) {
	var (
		o           orders.Order
		status, pay string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.OrderDate, &status, &o.TotalAmount, &o.ShippingAddress,
		&o.ContactPhone, &o.PaymentMethod, &pay)
	o.Status, o.PaymentStatus = orders.Status(status), orders.PaymentStatus(pay)
	o.Items = []orders.Item{}
	return o, err
}

const itemSelect = `SELECT i.id, i.order_id, i.product_id, i.seller_id, i.quantity, i.unit_price, i.status,
	COALESCE(p.name, ''), COALESCE(s.store_name, '')
	FROM order_items i
	LEFT JOIN products p ON p.id = i.product_id
	LEFT JOIN sellers s ON s.id = i.seller_id`

func scanItem(row pgx.Row) (orders.Item, error) {
	var (
		it     orders.Item
		status string
	)
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.Quantity, &it.UnitPrice, &status,
		&it.ProductName, &it.SellerStoreName)
	it.Status = orders.ItemStatus(status)
	return it, err
}

// attachItems loads the items of os in one query and appends them in ascending id order.
// sellerID and status narrow the items when set.
func attachItems(ctx context.Context, q querier, os []orders.Order, sellerID int64, status *orders.ItemStatus) error {
	if len(os) == 0 {
		return nil
	}
	ids := make([]int64, len(os))
	at := make(map[int64]int, len(os))
	for i, o := range os {
		ids[i] = o.ID
		at[o.ID] = i
	}
	var st *string
	if status != nil {
		v := string(*status)
		st = &v
	}
	rows, err := q.Query(ctx, itemSelect+`
		WHERE i.order_id = ANY($1)
		  AND ($2::bigint = 0 OR i.seller_id = $2)
		  AND ($3::text IS NULL OR i.status = $3)
		ORDER BY i.id`, ids, sellerID, st)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		o := &os[at[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrderRepo) Order(ctx context.Context, id int64) (*orders.Order, error) {
	o, err := scanOrder(r.DB.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id=$1`, id))
	if err != nil {
		return nil, notFound(err, "order %d not found", id)
	}
	one := []orders.Order{o}
	if err := attachItems(ctx, r.DB.q(ctx), one, 0, nil); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *OrderRepo) OrderStatus(ctx context.Context, id int64) (orders.Status, error) {
	var s string
	err := r.DB.q(ctx).QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&s)
	if err != nil {
		return "", notFound(err, "order %d not found", id)
	}
	return orders.Status(s), nil
}

func (r *OrderRepo) SetOrderStatus(ctx context.Context, id int64, s orders.Status) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(s))
	if err != nil {
		return err
	}
	return mustAffect(ct, "order %d not found", id)
}

func (r *OrderRepo) LockItem(ctx context.Context, itemID int64) (*orders.Item, error) {
	var (
		it     orders.Item
		status string
	)
	err := r.DB.q(ctx).QueryRow(ctx, `
		SELECT id, order_id, product_id, seller_id, quantity, unit_price, status
		FROM order_items WHERE id=$1 FOR UPDATE`, itemID).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.Quantity, &it.UnitPrice, &status)
	if err != nil {
		return nil, notFound(err, "order item %d not found", itemID)
	}
	it.Status = orders.ItemStatus(status)
	return &it, nil
}

func (r *OrderRepo) SetItemStatus(ctx context.Context, itemID int64, s orders.ItemStatus) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE order_items SET status=$2 WHERE id=$1`, itemID, string(s))
	if err != nil {
		return err
	}
	return mustAffect(ct, "order item %d not found", itemID)
}

func (r *OrderRepo) ItemStatuses(ctx context.Context, orderID int64) ([]orders.ItemStatus, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT status FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []orders.ItemStatus
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, orders.ItemStatus(s))
	}
	return out, rows.Err()
}

func (r *OrderRepo) SellerOrders(ctx context.Context, sellerID int64, status *orders.ItemStatus) ([]orders.Order, error) {
	var st *string
	if status != nil {
		v := string(*status)
		st = &v
	}
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT `+orderColumns+` FROM orders o
		WHERE EXISTS (SELECT 1 FROM order_items i
		              WHERE i.order_id = o.id AND i.seller_id = $1 AND ($2::text IS NULL OR i.status = $2))
		ORDER BY o.order_date DESC, o.id DESC`, sellerID, st)
	if err != nil {
		return nil, err
	}
	out, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := attachItems(ctx, r.DB.q(ctx), out, sellerID, status); err != nil {
		return nil, err
	}
	return out, nil
}

func collectOrders(rows pgx.Rows) ([]orders.Order, error) {
	defer rows.Close()
	out := []orders.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
