package memstore

import (
	"cmp"
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"slices"
)

// LockProducts returns the existing products among ids in ascending id order. The store lock
// already serializes transactions, so nothing more is needed here.
func (s *Store) LockProducts(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	out := []catalog.Product{}
	err := s.do(ctx, func(d *state) error {
		seen := map[int64]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if p, ok := d.product(id); ok {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b catalog.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (s *Store) DecrementStock(ctx context.Context, productID int64, qty int) error {
	return s.do(ctx, func(d *state) error {
		p, ok := d.products[productID]
		if !ok {
			return apperr.NotFound("product %d not found", productID)
		}
		if p.Stock < qty {
			return orders.ErrStockConflict
		}
		p.Stock -= qty
		d.products[productID] = p
		return nil
	})
}

func (s *Store) CreateOrder(ctx context.Context, o *orders.Order) error {
	return s.do(ctx, func(d *state) error {
		o.ID = d.nextID()
		for i := range o.Items {
			if _, ok := d.products[o.Items[i].ProductID]; !ok {
				return apperr.NotFound("product %d not found", o.Items[i].ProductID)
			}
			o.Items[i].ID = d.nextID()
			o.Items[i].OrderID = o.ID
			d.items[o.Items[i].ID] = o.Items[i]
		}
		head := *o
		head.Items = nil
		d.orders[o.ID] = head
		return nil
	})
}

// hydrate attaches items (ascending id) with product and store names.
func (d *state) hydrate(o orders.Order, keep func(orders.Item) bool) orders.Order {
	o.Items = []orders.Item{}
	for _, it := range d.items {
		if it.OrderID != o.ID || (keep != nil && !keep(it)) {
			continue
		}
		it.ProductName = d.products[it.ProductID].Name
		if it.SellerID != 0 {
			it.SellerStoreName = d.sellers[it.SellerID].StoreName
		}
		o.Items = append(o.Items, it)
	}
	slices.SortFunc(o.Items, func(a, b orders.Item) int { return cmp.Compare(a.ID, b.ID) })
	return o
}

func (s *Store) Order(ctx context.Context, id int64) (*orders.Order, error) {
	var out *orders.Order
	err := s.do(ctx, func(d *state) error {
		o, ok := d.orders[id]
		if !ok {
			return apperr.NotFound("order %d not found", id)
		}
		o = d.hydrate(o, nil)
		out = &o
		return nil
	})
	return out, err
}

func (s *Store) OrderStatus(ctx context.Context, id int64) (orders.Status, error) {
	var st orders.Status
	err := s.do(ctx, func(d *state) error {
		o, ok := d.orders[id]
		if !ok {
			return apperr.NotFound("order %d not found", id)
		}
		st = o.Status
		return nil
	})
	return st, err
}

func (s *Store) SetOrderStatus(ctx context.Context, id int64, st orders.Status) error {
	return s.do(ctx, func(d *state) error {
		o, ok := d.orders[id]
		if !ok {
			return apperr.NotFound("order %d not found", id)
		}
		o.Status = st
		d.orders[id] = o
		return nil
	})
}

// SetPaymentStatus is not reachable from the API; tests use it to shape dashboard data.
func (s *Store) SetPaymentStatus(ctx context.Context, id int64, st orders.PaymentStatus) error {
	return s.do(ctx, func(d *state) error {
		o, ok := d.orders[id]
		if !ok {
			return apperr.NotFound("order %d not found", id)
		}
		o.PaymentStatus = st
		d.orders[id] = o
		return nil
	})
}

func (s *Store) LockItem(ctx context.Context, itemID int64) (*orders.Item, error) {
	var out *orders.Item
	err := s.do(ctx, func(d *state) error {
		it, ok := d.items[itemID]
		if !ok {
			return apperr.NotFound("order item %d not found", itemID)
		}
		out = &it
		return nil
	})
	return out, err
}

func (s *Store) SetItemStatus(ctx context.Context, itemID int64, st orders.ItemStatus) error {
	return s.do(ctx, func(d *state) error {
		it, ok := d.items[itemID]
		if !ok {
			return apperr.NotFound("order item %d not found", itemID)
		}
		it.Status = st
		d.items[itemID] = it
		return nil
	})
}

func (s *Store) ItemStatuses(ctx context.Context, orderID int64) ([]orders.ItemStatus, error) {
	var out []orders.ItemStatus
	err := s.do(ctx, func(d *state) error {
		for _, it := range d.items {
			if it.OrderID == orderID {
				out = append(out, it.Status)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SellerOrders(ctx context.Context, sellerID int64, status *orders.ItemStatus) ([]orders.Order, error) {
	out := []orders.Order{}
	err := s.do(ctx, func(d *state) error {
		keep := func(it orders.Item) bool {
			return it.SellerID == sellerID && (status == nil || it.Status == *status)
		}
		for _, o := range d.orders {
			h := d.hydrate(o, keep)
			if len(h.Items) > 0 {
				out = append(out, h)
			}
		}
		return nil
	})
	slices.SortFunc(out, newestFirst)
	return out, err
}

func newestFirst(a, b orders.Order) int {
	if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
