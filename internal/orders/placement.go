package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/events"
	"slices"
)

// InsufficientStockError names the first line whose product cannot cover the request.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return apperr.ErrBusinessRule }

type OrderValidationError struct {
	Reason     string
	ProductIDs []int64
}

func (e *OrderValidationError) Error() string {
	if len(e.ProductIDs) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.ProductIDs)
}

func (e *OrderValidationError) Unwrap() error { return apperr.ErrValidation }

// PlaceOrder validates the lines, reserves stock and persists the order in one transaction.
// With a non-empty idemKey a repeated call returns the order placed first; replayed reports that.
func (s *Service) PlaceOrder(ctx context.Context, caller auth.Principal, idemKey string, in PlaceOrderInput) (o *Order, replayed bool, err error) {
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, false, err
	}

	useIdem := s.idem != nil && idemKey != ""
	if useIdem {
		existing, fresh, err := s.idem.Reserve(ctx, caller.UserID, idemKey)
		if err != nil {
			return nil, false, err
		}
		if !fresh {
			if existing == 0 {
				return nil, false, apperr.Conflict("an order with this idempotency key is still being placed")
			}
			o, err := s.Order(ctx, caller, existing)
			return o, true, err
		}
	}

	placed, err := s.place(ctx, caller, lines, in)
	// the key must settle even when the request deadline has passed
	settle := context.WithoutCancel(ctx)
	if err != nil {
		if useIdem {
			if rerr := s.idem.Release(settle, caller.UserID, idemKey); rerr != nil {
				s.log.WarnContext(ctx, "release idempotency key", "err", rerr)
			}
		}
		return nil, false, err
	}
	if useIdem {
		if err := s.idem.Complete(settle, caller.UserID, idemKey, placed.ID); err != nil {
			s.log.WarnContext(ctx, "complete idempotency key", "order_id", placed.ID, "err", err)
		}
	}

	s.publish(ctx, events.TopicOrderCreated, events.EventOrderCreated, placed.ID, createdPayload(placed))

	detail, err := s.store.Order(ctx, placed.ID)
	if err != nil {
		return nil, false, err
	}
	return detail, false, nil
}

func (s *Service) place(ctx context.Context, caller auth.Principal, lines []LineInput, in PlaceOrderInput) (*Order, error) {
	var order *Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		slices.Sort(ids)

		products, err := s.store.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]catalog.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		if len(byID) != len(ids) {
			var missing []int64
			for _, id := range ids {
				if _, ok := byID[id]; !ok {
					missing = append(missing, id)
				}
			}
			return &OrderValidationError{Reason: "products not found", ProductIDs: missing}
		}

		// check every line before touching stock
		for _, l := range lines {
			p := byID[l.ProductID]
			if p.Stock < l.Quantity {
				return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: p.Stock}
			}
		}

		items := make([]Item, 0, len(lines))
		for _, l := range lines {
			p := byID[l.ProductID]
			items = append(items, Item{
				ProductID:       p.ID,
				SellerID:        p.SellerOrZero(),
				Quantity:        l.Quantity,
				UnitPrice:       p.Price,
				Status:          ItemPending,
				ProductName:     p.Name,
				SellerStoreName: p.SellerStoreName,
			})
		}

		for _, id := range ids {
			qty := quantityOf(lines, id)
			if err := s.store.DecrementStock(ctx, id, qty); err != nil {
				if errors.Is(err, ErrStockConflict) {
					p := byID[id]
					return &InsufficientStockError{ProductID: id, ProductName: p.Name, Requested: qty, Available: p.Stock}
				}
				return err
			}
		}

		order = &Order{
			UserID:          caller.UserID,
			OrderDate:       s.now().UTC(),
			Status:          StatusPending,
			TotalAmount:     ItemsTotal(items),
			ShippingAddress: in.ShippingAddress,
			ContactPhone:    in.ContactPhone,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   PaymentPending,
			Items:           items,
		}
		return s.store.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// mergeLines rejects empty requests and non-positive quantities and sums duplicate products,
// keeping the order in which products first appear.
func mergeLines(in []LineInput) ([]LineInput, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("invalid request", "items must not be empty")
	}
	out := make([]LineInput, 0, len(in))
	pos := make(map[int64]int, len(in))
	for _, l := range in {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("invalid request", fmt.Sprintf("quantity for product %d must be greater than 0", l.ProductID))
		}
		if i, ok := pos[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func quantityOf(lines []LineInput, productID int64) int {
	for _, l := range lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func createdPayload(o *Order) events.OrderCreatedPayload {
	lines := make([]events.ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.ItemLine{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return events.OrderCreatedPayload{OrderID: o.ID, UserID: o.UserID, Items: lines, TotalAmount: o.TotalAmount}
}
