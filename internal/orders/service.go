package orders

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/events"
	"log/slog"
	"time"
)

// ErrStockConflict is returned by Store.DecrementStock when the guarded update matched no row.
var ErrStockConflict = errors.New("stock changed concurrently")

type Store interface {
	// LockProducts loads the products with ids, locking their rows in ascending id order.
	LockProducts(ctx context.Context, ids []int64) ([]catalog.Product, error)
	DecrementStock(ctx context.Context, productID int64, qty int) error

	CreateOrder(ctx context.Context, o *Order) error // assigns order and item ids
	Order(ctx context.Context, id int64) (*Order, error)
	OrderStatus(ctx context.Context, id int64) (Status, error)
	SetOrderStatus(ctx context.Context, id int64, s Status) error

	LockItem(ctx context.Context, itemID int64) (*Item, error)
	SetItemStatus(ctx context.Context, itemID int64, s ItemStatus) error
	ItemStatuses(ctx context.Context, orderID int64) ([]ItemStatus, error)

	// SellerOrders returns the orders holding items of sellerID, each carrying only those items.
	SellerOrders(ctx context.Context, sellerID int64, status *ItemStatus) ([]Order, error)
}

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type SellerResolver interface {
	SellerByUser(ctx context.Context, userID string) (*catalog.Seller, error)
}

// DetailCache keeps order details keyed by id and a generation. Invalidate bumps the
// generation, so a Put carrying the generation seen before a concurrent change is never served.
type DetailCache interface {
	// Get returns the current generation even on a miss (nil order).
	Get(ctx context.Context, id int64) (o *Order, gen int64, err error)
	Put(ctx context.Context, o *Order, gen int64) error
	Invalidate(ctx context.Context, id int64) error
}

// Idempotency reserves client keys for order placement.
// Reserve reports fresh=true when the key was unused; otherwise orderID is the order already
// placed under it, or 0 while that placement is still running.
type Idempotency interface {
	Reserve(ctx context.Context, scope, key string) (orderID int64, fresh bool, err error)
	Complete(ctx context.Context, scope, key string, orderID int64) error
	Release(ctx context.Context, scope, key string) error
}

type Service struct {
	store    Store
	tx       TxManager
	sellers  SellerResolver
	cache    DetailCache
	idem     Idempotency
	pub      events.Publisher
	producer string
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c DetailCache) Option { return func(s *Service) { s.cache = c } }

func WithIdempotency(i Idempotency) Option { return func(s *Service) { s.idem = i } }

func WithPublisher(p events.Publisher, producer string) Option {
	return func(s *Service) { s.pub, s.producer = p, producer }
}

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, tx TxManager, sellers SellerResolver, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tx:       tx,
		sellers:  sellers,
		pub:      events.Discard{},
		producer: "marketplace-api",
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Order returns the order detail to its owner or an admin.
func (s *Service) Order(ctx context.Context, caller auth.Principal, id int64) (*Order, error) {
	var (
		gen  int64
		fill bool
	)
	if s.cache != nil {
		cached, g, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "order cache get failed", "order_id", id, "err", err)
		case cached != nil:
			return authorizeView(caller, cached)
		default:
			gen, fill = g, true
		}
	}
	o, err := s.store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := s.cache.Put(ctx, o, gen); err != nil {
			s.log.WarnContext(ctx, "order cache put failed", "order_id", id, "err", err)
		}
	}
	return authorizeView(caller, o)
}

func authorizeView(caller auth.Principal, o *Order) (*Order, error) {
	if o.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperr.Forbidden("order %d belongs to another user", o.ID)
	}
	return o, nil
}

// SellerOrders lists the caller's items grouped per order. TotalAmount is the seller's share.
func (s *Service) SellerOrders(ctx context.Context, caller auth.Principal, status string) ([]Order, error) {
	seller, err := s.sellerFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	var filter *ItemStatus
	if status != "" {
		st, err := ParseItemStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}
	out, err := s.store.SellerOrders(ctx, seller.ID, filter)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].TotalAmount = ItemsTotal(out[i].Items)
	}
	return out, nil
}

func (s *Service) sellerFor(ctx context.Context, caller auth.Principal) (*catalog.Seller, error) {
	seller, err := s.sellers.SellerByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("seller profile not found")
		}
		return nil, err
	}
	return seller, nil
}

func (s *Service) publish(ctx context.Context, topic, eventType string, orderID int64, payload any) {
	key := events.PartitionKey(orderID)
	env, err := events.New(eventType, s.producer, string(key), payload)
	if err != nil {
		s.log.ErrorContext(ctx, "build event", "event_type", eventType, "err", err)
		return
	}
	if err := s.pub.Publish(ctx, topic, key, env); err != nil {
		s.log.WarnContext(ctx, "publish event failed", "event_type", eventType, "order_id", orderID, "err", err)
	}
}
