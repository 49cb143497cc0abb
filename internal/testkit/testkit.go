// Package testkit wires every service over one in-memory store and seeds the accounts most
// tests start from.
package testkit

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/memstore"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"sync/atomic"
	"time"
)

const Password = "Secret123"

// T is the part of testing.TB the helpers use; *rapid.T satisfies it too.
type T interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

type World struct {
	Store    *memstore.Store
	Sessions *memstore.Sessions
	Auth     *auth.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Cart     *cart.Service
	Wishlist *wishlist.Service
	Reviews  *reviews.Service
	Reports  *reports.Service

	Admin    auth.Principal
	Category *catalog.Category

	seq atomic.Int64
}

// New builds a world holding one admin and one category. opts go to the orders service.
func New(t T, opts ...orders.Option) *World {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	w := &World{Store: st, Sessions: memstore.NewSessions()}
	w.Auth = auth.NewService(st, w.Sessions, time.Hour).WithBcryptCost(bcrypt.MinCost)
	w.Catalog = catalog.NewService(st, st, w.Auth)
	w.Orders = orders.NewService(st, st, st, opts...)
	w.Cart = cart.NewService(st, st, st)
	w.Wishlist = wishlist.NewService(st, st)
	w.Reviews = reviews.NewService(st, st, st)
	w.Reports = reports.NewService(st, st)

	admin, err := w.Auth.Register(ctx, auth.RegisterInput{UserName: "admin", Email: "admin@example.com", Password: Password}, auth.RoleAdmin)
	require.NoError(t, err)
	w.Admin = admin.Principal()

	w.Category, err = w.Catalog.CreateCategory(ctx, w.Admin, catalog.CategoryInput{Name: "General"})
	require.NoError(t, err)
	return w
}

func (w *World) Customer(t T) auth.Principal {
	t.Helper()
	n := w.seq.Add(1)
	u, err := w.Auth.Register(context.Background(), auth.RegisterInput{
		UserName: fmt.Sprintf("customer%d", n),
		Email:    fmt.Sprintf("customer%d@example.com", n),
		Password: Password,
	})
	require.NoError(t, err)
	return u.Principal()
}

// Seller registers a user, opens a store for it and approves the store. The returned principal
// carries the Seller role.
func (w *World) Seller(t T) (auth.Principal, *catalog.Seller) {
	t.Helper()
	ctx := context.Background()
	p := w.Customer(t)
	s, err := w.Catalog.CreateSeller(ctx, p, catalog.SellerInput{
		StoreName:    "store of " + p.UserName,
		ContactEmail: p.UserName + "@shop.example.com",
	})
	require.NoError(t, err)
	s, err = w.Catalog.ApproveSeller(ctx, w.Admin, s.ID)
	require.NoError(t, err)
	return w.Reload(t, p), s
}

// Reload reads the principal's roles again.
func (w *World) Reload(t T, p auth.Principal) auth.Principal {
	t.Helper()
	u, err := w.Store.UserByID(context.Background(), p.UserID)
	require.NoError(t, err)
	return u.Principal()
}

func (w *World) Product(t T, seller auth.Principal, name, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := w.Catalog.CreateProduct(context.Background(), seller, catalog.ProductInput{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CategoryID:  w.Category.ID,
	})
	require.NoError(t, err)
	return p
}

// Order places an order for the given product quantities (product id, qty, product id, qty ...).
func (w *World) Order(t T, buyer auth.Principal, pairs ...int64) *orders.Order {
	t.Helper()
	require.Zero(t, len(pairs)%2, "pairs must be product id and quantity")
	in := PlaceInput()
	for i := 0; i < len(pairs); i += 2 {
		in.Items = append(in.Items, orders.LineInput{ProductID: pairs[i], Quantity: int(pairs[i+1])})
	}
	o, _, err := w.Orders.PlaceOrder(context.Background(), buyer, "", in)
	require.NoError(t, err)
	return o
}

func PlaceInput() orders.PlaceOrderInput {
	return orders.PlaceOrderInput{
		ShippingAddress: "Jl. Sudirman 1, Jakarta",
		ContactPhone:    "0812345678",
		PaymentMethod:   "CreditCard",
	}
}

func (w *World) Stock(t T, productID int64) int {
	t.Helper()
	p, err := w.Store.Product(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}
