package orders

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/events"
)

type StatusChange struct {
	Item        Item       `json:"item"`
	From        ItemStatus `json:"from"`
	OrderStatus Status     `json:"orderStatus"`
}

// UpdateItemStatus moves one order item along the fulfillment graph on behalf of the seller
// that owns it, then re-derives the order status from all sibling items.
// Stock is not returned for rejected items.
func (s *Service) UpdateItemStatus(ctx context.Context, caller auth.Principal, itemID int64, to ItemStatus) (*StatusChange, error) {
	seller, err := s.sellerFor(ctx, caller)
	if err != nil {
		return nil, err
	}

	var change StatusChange
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		it, err := s.store.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		// items of other sellers are invisible to the caller
		if it.SellerID != seller.ID {
			return apperr.NotFound("order item %d not found", itemID)
		}
		if it.Status.Terminal() {
			return apperr.BusinessRule("order item %d is already %s", itemID, it.Status)
		}
		if !CanTransition(it.Status, to) {
			return apperr.BusinessRule("order item %d cannot move from %s to %s", itemID, it.Status, to)
		}
		if err := s.store.SetItemStatus(ctx, itemID, to); err != nil {
			return err
		}

		siblings, err := s.store.ItemStatuses(ctx, it.OrderID)
		if err != nil {
			return err
		}
		current, err := s.store.OrderStatus(ctx, it.OrderID)
		if err != nil {
			return err
		}
		next := DeriveOrderStatus(current, siblings)
		if next != current {
			if err := s.store.SetOrderStatus(ctx, it.OrderID, next); err != nil {
				return err
			}
		}

		change.From = it.Status
		it.Status = to
		change.Item = *it
		change.OrderStatus = next
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("order item %d not found", itemID)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, change.Item.OrderID); err != nil {
			s.log.WarnContext(ctx, "order cache invalidate failed", "order_id", change.Item.OrderID, "err", err)
		}
	}
	s.publish(ctx, events.TopicItemStatusChanged, events.EventOrderItemStatusChanged, change.Item.OrderID,
		events.ItemStatusChangedPayload{
			OrderID:     change.Item.OrderID,
			ItemID:      change.Item.ID,
			ProductID:   change.Item.ProductID,
			SellerID:    change.Item.SellerID,
			Quantity:    change.Item.Quantity,
			From:        string(change.From),
			To:          string(to),
			OrderStatus: string(change.OrderStatus),
		})
	return &change, nil
}
