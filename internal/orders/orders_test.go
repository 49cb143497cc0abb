package orders_test

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/events"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"sync"
	"testing"
)

type published struct {
	topic string
	env   events.Envelope
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *fakePublisher) Publish(_ context.Context, topic string, _ []byte, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{topic: topic, env: env})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.env.EventType)
	}
	return out
}

type idemEntry struct {
	orderID int64
}

// fakeIdem mirrors the redis reservation: a key is pending (0) until completed.
type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]*idemEntry
}

func newFakeIdem() *fakeIdem { return &fakeIdem{keys: map[string]*idemEntry{}} }

func (f *fakeIdem) Reserve(_ context.Context, scope, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.keys[scope+"/"+key]; ok {
		return e.orderID, false, nil
	}
	f.keys[scope+"/"+key] = &idemEntry{}
	return 0, true, nil
}

func (f *fakeIdem) Complete(_ context.Context, scope, key string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[scope+"/"+key] = &idemEntry{orderID: orderID}
	return nil
}

func (f *fakeIdem) Release(_ context.Context, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, scope+"/"+key)
	return nil
}

func place(w *testkit.World, buyer auth.Principal, lines ...orders.LineInput) (*orders.Order, error) {
	in := testkit.PlaceInput()
	in.Items = lines
	o, _, err := w.Orders.PlaceOrder(context.Background(), buyer, "", in)
	return o, err
}

func TestPlaceOrderReservesStock(t *testing.T) {
	pub := &fakePublisher{}
	w := testkit.New(t, orders.WithPublisher(pub, "test"))
	seller, s := w.Seller(t)
	shirt := w.Product(t, seller, "Shirt", "100.50", 10)
	mug := w.Product(t, seller, "Mug", "25", 3)
	buyer := w.Customer(t)

	o, err := place(w, buyer,
		orders.LineInput{ProductID: shirt.ID, Quantity: 2},
		orders.LineInput{ProductID: mug.ID, Quantity: 1},
		orders.LineInput{ProductID: shirt.ID, Quantity: 1},
	)
	require.NoError(t, err)

	assert.Equal(t, buyer.UserID, o.UserID)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, orders.PaymentPending, o.PaymentStatus)
	assert.True(t, decimal.RequireFromString("326.50").Equal(o.TotalAmount), o.TotalAmount.String())
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.Equal(t, s.ID, it.SellerID)
		assert.Equal(t, orders.ItemPending, it.Status)
		assert.NotZero(t, it.ID)
	}
	assert.Equal(t, 7, w.Stock(t, shirt.ID))
	assert.Equal(t, 2, w.Stock(t, mug.ID))
	assert.Equal(t, []string{events.EventOrderCreated}, pub.types())
	assert.Equal(t, events.TopicOrderCreated, pub.sent[0].topic)

	p, err := events.Decode[events.OrderCreatedPayload](pub.sent[0].env)
	require.NoError(t, err)
	assert.Equal(t, o.ID, p.OrderID)
	assert.Len(t, p.Items, 2)
}

func TestPlaceOrderKeepsPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Lamp", "40", 5)
	o := w.Order(t, w.Customer(t), p.ID, 1)

	_, err := w.Catalog.UpdateProduct(ctx, w.Admin, p.ID, catalog.ProductInput{
		Name: "Lamp", Description: "desk lamp", Price: decimal.NewFromInt(99), Stock: 5, CategoryID: w.Category.ID,
	})
	require.NoError(t, err)

	got, err := w.Orders.Order(ctx, w.Admin, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(got.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(40).Equal(got.TotalAmount))
}

func TestPlaceOrderFailuresLeaveStockAlone(t *testing.T) {
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	a := w.Product(t, seller, "A item", "10", 5)
	b := w.Product(t, seller, "B item", "10", 1)
	buyer := w.Customer(t)

	_, err := place(w, buyer, orders.LineInput{ProductID: a.ID, Quantity: 2}, orders.LineInput{ProductID: b.ID, Quantity: 2})
	var short *orders.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, b.ID, short.ProductID)
	assert.Equal(t, 1, short.Available)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	_, err = place(w, buyer, orders.LineInput{ProductID: a.ID, Quantity: 1}, orders.LineInput{ProductID: 4242, Quantity: 1})
	var invalid *orders.OrderValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []int64{4242}, invalid.ProductIDs)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = place(w, buyer)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, 5, w.Stock(t, a.ID))
	assert.Equal(t, 1, w.Stock(t, b.ID))
}

func TestPlaceOrderIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	idem := newFakeIdem()
	pub := &fakePublisher{}
	w := testkit.New(t, orders.WithIdempotency(idem), orders.WithPublisher(pub, "test"))
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Book", "12", 10)
	buyer := w.Customer(t)
	in := testkit.PlaceInput()
	in.Items = []orders.LineInput{{ProductID: p.ID, Quantity: 2}}

	first, replayed, err := w.Orders.PlaceOrder(ctx, buyer, "key-1", in)
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := w.Orders.PlaceOrder(ctx, buyer, "key-1", in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 8, w.Stock(t, p.ID))
	assert.Len(t, pub.types(), 1)

	// the same key from another user is a different request
	_, replayed, err = w.Orders.PlaceOrder(ctx, w.Customer(t), "key-1", in)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 6, w.Stock(t, p.ID))

	// a placement still in flight
	_, _, err = idem.Reserve(ctx, buyer.UserID, "key-2")
	require.NoError(t, err)
	_, _, err = w.Orders.PlaceOrder(ctx, buyer, "key-2", in)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// failures release the key
	in.Items[0].Quantity = 100
	_, _, err = w.Orders.PlaceOrder(ctx, buyer, "key-3", in)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
	in.Items[0].Quantity = 1
	_, replayed, err = w.Orders.PlaceOrder(ctx, buyer, "key-3", in)
	require.NoError(t, err)
	assert.False(t, replayed)
}

// deadlineIdem refuses writes once the caller's ctx is done, like a redis client would.
// The request ctx is cancelled right after the key is reserved.
type deadlineIdem struct {
	*fakeIdem
	cancel func()
}

func (d *deadlineIdem) Reserve(ctx context.Context, scope, key string) (int64, bool, error) {
	id, fresh, err := d.fakeIdem.Reserve(ctx, scope, key)
	if d.cancel != nil {
		d.cancel()
	}
	return id, fresh, err
}

func (d *deadlineIdem) Complete(ctx context.Context, scope, key string, orderID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.fakeIdem.Complete(ctx, scope, key, orderID)
}

func (d *deadlineIdem) Release(ctx context.Context, scope, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.fakeIdem.Release(ctx, scope, key)
}

func TestIdempotencyKeySettlesAfterDeadline(t *testing.T) {
	idem := &deadlineIdem{fakeIdem: newFakeIdem()}
	w := testkit.New(t, orders.WithIdempotency(idem))
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Pan", "30", 4)
	buyer := w.Customer(t)
	in := testkit.PlaceInput()
	in.Items = []orders.LineInput{{ProductID: p.ID, Quantity: 1}}

	ctx, cancel := context.WithCancel(context.Background())
	idem.cancel = cancel
	first, _, err := w.Orders.PlaceOrder(ctx, buyer, "late-1", in)
	require.NoError(t, err)

	idem.cancel = nil
	again, replayed, err := w.Orders.PlaceOrder(context.Background(), buyer, "late-1", in)
	require.NoError(t, err, "a committed order must be replayed, not reported as in flight")
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, w.Stock(t, p.ID))

	// a failed placement frees the key under the same conditions
	in.Items[0].Quantity = 50
	ctx, cancel = context.WithCancel(context.Background())
	idem.cancel = cancel
	_, _, err = w.Orders.PlaceOrder(ctx, buyer, "late-2", in)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	idem.cancel = nil
	in.Items[0].Quantity = 1
	_, replayed, err = w.Orders.PlaceOrder(context.Background(), buyer, "late-2", in)
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestOrderVisibility(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Pen", "3", 10)
	owner := w.Customer(t)
	o := w.Order(t, owner, p.ID, 1)

	_, err := w.Orders.Order(ctx, owner, o.ID)
	require.NoError(t, err)
	_, err = w.Orders.Order(ctx, w.Admin, o.ID)
	require.NoError(t, err)
	_, err = w.Orders.Order(ctx, w.Customer(t), o.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = w.Orders.Order(ctx, owner, 98765)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// Any sequence of placements keeps stock at or above zero, and the stock removed equals what
// the successful orders hold.
func TestPlacementConservesStock(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := testkit.New(rt)
		seller, _ := w.Seller(rt)
		nProducts := rapid.IntRange(1, 4).Draw(rt, "products")
		initial := map[int64]int{}
		var ids []int64
		for i := range nProducts {
			stock := rapid.IntRange(0, 8).Draw(rt, "stock")
			p := w.Product(rt, seller, fmt.Sprintf("P%d", i), "5", stock)
			initial[p.ID] = stock
			ids = append(ids, p.ID)
		}
		buyer := w.Customer(rt)

		ordered := map[int64]int{}
		for range rapid.IntRange(1, 12).Draw(rt, "orders") {
			var lines []orders.LineInput
			for range rapid.IntRange(1, 3).Draw(rt, "lines") {
				lines = append(lines, orders.LineInput{
					ProductID: rapid.SampledFrom(ids).Draw(rt, "product"),
					Quantity:  rapid.IntRange(1, 5).Draw(rt, "qty"),
				})
			}
			o, err := place(w, buyer, lines...)
			if err != nil {
				if !errors.Is(err, apperr.ErrBusinessRule) {
					rt.Fatalf("unexpected error: %v", err)
				}
				continue
			}
			for _, it := range o.Items {
				ordered[it.ProductID] += it.Quantity
			}
		}

		for _, id := range ids {
			left := w.Stock(rt, id)
			if left < 0 {
				rt.Fatalf("product %d stock went negative: %d", id, left)
			}
			if left+ordered[id] != initial[id] {
				rt.Fatalf("product %d: left %d + ordered %d != initial %d", id, left, ordered[id], initial[id])
			}
		}
	})
}

func TestConcurrentPlacementsNeverOversell(t *testing.T) {
	w := testkit.New(t)
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Limited", "99", 5)
	buyers := make([]auth.Principal, 20)
	for i := range buyers {
		buyers[i] = w.Customer(t)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, b := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := place(w, b, orders.LineInput{ProductID: p.ID, Quantity: 1})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperr.ErrBusinessRule)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, success)
	assert.Equal(t, 0, w.Stock(t, p.ID))
}
