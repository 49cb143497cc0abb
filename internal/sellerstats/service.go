// Package sellerstats keeps sellers' total_sales counters in step with delivered order items.
package sellerstats

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/events"
	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"log/slog"
)

type Store interface {
	AddSellerSales(ctx context.Context, sellerID int64, qty int) error
}

// Dedup remembers processed event ids. FirstSeen marks id and reports whether it was new.
type Dedup interface {
	FirstSeen(ctx context.Context, service, id string) (bool, error)
	Forget(ctx context.Context, service, id string) error
}

type Service struct {
	Store       Store
	Dedup       Dedup
	ServiceName string
	Log         *slog.Logger
}

// HandleItemStatusChanged is installed as the consumer handler.
// Returning nil lets the consumer commit the offset.
func (s *Service) HandleItemStatusChanged(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.DecodeEnvelope(m)
	if err != nil {
		s.Log.WarnContext(ctx, "skip malformed message", "offset", m.Offset, "partition", m.Partition, "err", err)
		return nil
	}
	if env.EventType != events.EventOrderItemStatusChanged {
		return nil
	}
	p, err := events.Decode[events.ItemStatusChangedPayload](env)
	if err != nil {
		s.Log.WarnContext(ctx, "skip malformed payload", "event_id", env.EventID, "err", err)
		return nil
	}
	if p.To != string(orders.ItemDelivered) || p.SellerID == 0 || p.Quantity <= 0 {
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	if err := s.Store.AddSellerSales(ctx, p.SellerID, p.Quantity); err != nil {
		// the consumer retries the message; it must not look like a duplicate
		if ferr := s.Dedup.Forget(ctx, s.ServiceName, env.EventID); ferr != nil {
			s.Log.WarnContext(ctx, "forget dedup key", "event_id", env.EventID, "err", ferr)
		}
		return err
	}
	s.Log.InfoContext(ctx, "seller sales updated", "seller_id", p.SellerID, "qty", p.Quantity, "order_id", p.OrderID)
	return nil
}
