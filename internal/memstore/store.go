// Package memstore is an in-memory implementation of every store interface. Transactions hold
// one mutex and restore a snapshot when the callback fails.
package memstore

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/ariefcatur/go-marketplace/internal/sellerstats"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"maps"
	"slices"
	"sync"
)

var (
	_ auth.UserStore    = (*Store)(nil)
	_ catalog.Store     = (*Store)(nil)
	_ orders.Store      = (*Store)(nil)
	_ cart.Store        = (*Store)(nil)
	_ wishlist.Store    = (*Store)(nil)
	_ reviews.Store     = (*Store)(nil)
	_ reports.Source    = (*Store)(nil)
	_ sellerstats.Store = (*Store)(nil)
)

type state struct {
	seq        int64
	users      map[string]auth.User
	categories map[int64]catalog.Category
	sellers    map[int64]catalog.Seller
	products   map[int64]catalog.Product
	carts      map[int64]cart.Cart // lines live in cartItems
	cartItems  map[int64]cart.Item
	wishlist   map[int64]wishlist.Item
	orders     map[int64]orders.Order // items live in items
	items      map[int64]orders.Item
	reviews    map[int64]reviews.Review
}

func newState() *state {
	return &state{
		users:      map[string]auth.User{},
		categories: map[int64]catalog.Category{},
		sellers:    map[int64]catalog.Seller{},
		products:   map[int64]catalog.Product{},
		carts:      map[int64]cart.Cart{},
		cartItems:  map[int64]cart.Item{},
		wishlist:   map[int64]wishlist.Item{},
		orders:     map[int64]orders.Order{},
		items:      map[int64]orders.Item{},
		reviews:    map[int64]reviews.Review{},
	}
}

func (d *state) nextID() int64 {
	d.seq++
	return d.seq
}

// clone copies every table. Values are plain structs except the few pointer and slice fields
// copied explicitly below.
func (d *state) clone() *state {
	c := &state{
		seq:        d.seq,
		users:      maps.Clone(d.users),
		categories: maps.Clone(d.categories),
		sellers:    maps.Clone(d.sellers),
		products:   maps.Clone(d.products),
		carts:      maps.Clone(d.carts),
		cartItems:  maps.Clone(d.cartItems),
		wishlist:   maps.Clone(d.wishlist),
		orders:     maps.Clone(d.orders),
		items:      maps.Clone(d.items),
		reviews:    maps.Clone(d.reviews),
	}
	for id, u := range c.users {
		u.Roles = slices.Clone(u.Roles)
		c.users[id] = u
	}
	for id, p := range c.products {
		p.SellerID = clonePtr(p.SellerID)
		c.products[id] = p
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	b, _ := ctx.Value(txKey{}).(bool)
	return b
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func New() *Store { return &Store{data: newState()} }

// do runs fn against the tables, taking the lock unless the caller already holds it.
func (s *Store) do(ctx context.Context, fn func(d *state) error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

// WithTransaction serializes fn against every other store call. A failing fn leaves no trace.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	return s.do(ctx, func(d *state) error {
		for _, existing := range d.users {
			if existing.Email == u.Email {
				return auth.ErrDuplicateEmail
			}
		}
		cp := *u
		cp.Roles = slices.Clone(u.Roles)
		d.users[u.ID] = cp
		return nil
	})
}

func (s *Store) UserByID(ctx context.Context, id string) (*auth.User, error) {
	var out *auth.User
	err := s.do(ctx, func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return apperr.NotFound("user %s not found", id)
		}
		u.Roles = slices.Clone(u.Roles)
		out = &u
		return nil
	})
	return out, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var out *auth.User
	err := s.do(ctx, func(d *state) error {
		for _, u := range d.users {
			if u.Email == email {
				u.Roles = slices.Clone(u.Roles)
				out = &u
				return nil
			}
		}
		return apperr.NotFound("user not found")
	})
	return out, err
}

func (s *Store) AddRole(ctx context.Context, userID string, r auth.Role) error {
	return s.do(ctx, func(d *state) error {
		u, ok := d.users[userID]
		if !ok {
			return apperr.NotFound("user %s not found", userID)
		}
		if !slices.Contains(u.Roles, r) {
			u.Roles = append(slices.Clone(u.Roles), r)
			d.users[userID] = u
		}
		return nil
	})
}
