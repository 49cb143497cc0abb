package memstore

import (
	"cmp"
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

func (s *Store) EnsureCart(ctx context.Context, userID string, now time.Time) (*cart.Cart, error) {
	var out *cart.Cart
	err := s.do(ctx, func(d *state) error {
		var c cart.Cart
		found := false
		for _, existing := range d.carts {
			if existing.UserID == userID {
				c, found = existing, true
				break
			}
		}
		if !found {
			c = cart.Cart{ID: d.nextID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
			d.carts[c.ID] = c
		}
		c.Items = []cart.Item{}
		for _, it := range d.cartItems {
			if it.CartID != c.ID {
				continue
			}
			if p, ok := d.product(it.ProductID); ok {
				it.ProductName, it.ProductImage, it.SellerStoreName = p.Name, p.ImageURL, p.SellerStoreName
			}
			c.Items = append(c.Items, it)
		}
		slices.SortFunc(c.Items, func(a, b cart.Item) int { return cmp.Compare(a.ID, b.ID) })
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) SetCartItem(ctx context.Context, cartID, productID int64, qty int, unitPrice decimal.Decimal) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.carts[cartID]; !ok {
			return apperr.NotFound("cart %d not found", cartID)
		}
		for id, it := range d.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				it.Quantity = qty
				d.cartItems[id] = it
				return nil
			}
		}
		id := d.nextID()
		d.cartItems[id] = cart.Item{ID: id, CartID: cartID, ProductID: productID, Quantity: qty, UnitPrice: unitPrice}
		return nil
	})
}

func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	return s.do(ctx, func(d *state) error {
		for id, it := range d.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				delete(d.cartItems, id)
				return nil
			}
		}
		return apperr.NotFound("product %d is not in the cart", productID)
	})
}

func (s *Store) TouchCart(ctx context.Context, cartID int64, at time.Time) error {
	return s.do(ctx, func(d *state) error {
		c, ok := d.carts[cartID]
		if !ok {
			return apperr.NotFound("cart %d not found", cartID)
		}
		c.UpdatedAt = at
		d.carts[cartID] = c
		return nil
	})
}

func (s *Store) AddWishlistItem(ctx context.Context, it *wishlist.Item) error {
	return s.do(ctx, func(d *state) error {
		for _, existing := range d.wishlist {
			if existing.UserID == it.UserID && existing.ProductID == it.ProductID {
				return wishlist.ErrDuplicate
			}
		}
		it.ID = d.nextID()
		d.wishlist[it.ID] = *it
		return nil
	})
}

func (s *Store) RemoveWishlistItem(ctx context.Context, userID string, productID int64) error {
	return s.do(ctx, func(d *state) error {
		for id, it := range d.wishlist {
			if it.UserID == userID && it.ProductID == productID {
				delete(d.wishlist, id)
				return nil
			}
		}
		return apperr.NotFound("product %d is not in the wishlist", productID)
	})
}

func (s *Store) Wishlist(ctx context.Context, userID string) ([]wishlist.Item, error) {
	out := []wishlist.Item{}
	err := s.do(ctx, func(d *state) error {
		for _, it := range d.wishlist {
			if it.UserID != userID {
				continue
			}
			if p, ok := d.product(it.ProductID); ok {
				it.ProductName, it.ProductImage = p.Name, p.ImageURL
				it.Price, it.SellerStoreName = p.Price, p.SellerStoreName
			}
			out = append(out, it)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b wishlist.Item) int {
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, err
}
