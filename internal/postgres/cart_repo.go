package postgres

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"github.com/shopspring/decimal"
	"time"
)

// CartRepo stores carts and wishlists; both are per-user product lists.
type CartRepo struct{ DB *DB }

var (
	_ cart.Store     = (*CartRepo)(nil)
	_ wishlist.Store = (*CartRepo)(nil)
)

func (r *CartRepo) EnsureCart(ctx context.Context, userID string, now time.Time) (*cart.Cart, error) {
	q := r.DB.q(ctx)
	if _, err := q.Exec(ctx, `
		INSERT INTO carts(user_id, created_at, updated_at) VALUES ($1,$2,$2)
		ON CONFLICT (user_id) DO NOTHING`, userID, now); err != nil {
		return nil, err
	}
	c := cart.Cart{Items: []cart.Item{}}
	if err := q.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price,
		       p.name, p.image_url, COALESCE(s.store_name, '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN sellers s ON s.id = p.seller_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.ProductName, &it.ProductImage, &it.SellerStoreName); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *CartRepo) SetCartItem(ctx context.Context, cartID, productID int64, qty int, unitPrice decimal.Decimal) error {
	_, err := r.DB.q(ctx).Exec(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity, unit_price) VALUES ($1,$2,$3,$4)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		cartID, productID, qty, unitPrice)
	if pgCode(err) == codeForeignKeyViolation {
		return apperr.NotFound("product %d not found", productID)
	}
	return err
}

func (r *CartRepo) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID)
	if err != nil {
		return err
	}
	return mustAffect(ct, "product %d is not in the cart", productID)
}

func (r *CartRepo) TouchCart(ctx context.Context, cartID int64, at time.Time) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE carts SET updated_at=$2 WHERE id=$1`, cartID, at)
	if err != nil {
		return err
	}
	return mustAffect(ct, "cart %d not found", cartID)
}

func (r *CartRepo) AddWishlistItem(ctx context.Context, it *wishlist.Item) error {
	err := r.DB.q(ctx).QueryRow(ctx, `
		INSERT INTO wishlist_items(user_id, product_id, added_at) VALUES ($1,$2,$3) RETURNING id`,
		it.UserID, it.ProductID, it.AddedAt).Scan(&it.ID)
	switch pgCode(err) {
	case codeUniqueViolation:
		return wishlist.ErrDuplicate
	case codeForeignKeyViolation:
		return apperr.NotFound("product %d not found", it.ProductID)
	}
	return err
}

func (r *CartRepo) RemoveWishlistItem(ctx context.Context, userID string, productID int64) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return err
	}
	return mustAffect(ct, "product %d is not in the wishlist", productID)
}

func (r *CartRepo) Wishlist(ctx context.Context, userID string) ([]wishlist.Item, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.added_at, p.name, p.image_url, p.price, COALESCE(s.store_name, '')
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		LEFT JOIN sellers s ON s.id = p.seller_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []wishlist.Item{}
	for rows.Next() {
		var it wishlist.Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.AddedAt,
			&it.ProductName, &it.ProductImage, &it.Price, &it.SellerStoreName); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
