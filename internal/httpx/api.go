package httpx

import (
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/ariefcatur/go-marketplace/internal/wishlist"
	"github.com/go-chi/chi/v5"
	"log/slog"
)

// API binds the services to their routes under /api.
type API struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Cart     *cart.Service
	Wishlist *wishlist.Service
	Reviews  *reviews.Service
	Reports  *reports.Service
	Log      *slog.Logger
}

func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.register)
		r.Post("/auth/login", a.login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(a.Auth, a.Log))
			admin := RequireRole(a.Log, auth.RoleAdmin)
			seller := RequireRole(a.Log, auth.RoleSeller)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", a.getCart)
				r.Post("/items", a.addCartItem)
				r.Put("/items/{productId}", a.updateCartItem)
				r.Delete("/items/{productId}", a.removeCartItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", a.getWishlist)
				r.Post("/{productId}", a.addWishlistItem)
				r.Delete("/{productId}", a.removeWishlistItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", a.placeOrder)
				r.With(seller).Get("/seller", a.sellerOrders)
				r.With(seller).Put("/seller/items/{id}/status", a.updateItemStatus)
				r.With(admin).Get("/stats", a.orderStats)
				r.With(admin).Get("/search", a.searchOrders)
				r.Get("/{id}", a.getOrder)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", a.listProducts)
				r.Get("/filter", a.listProducts)
				r.Get("/{id}", a.getProduct)
				r.Post("/", a.createProduct)
				r.With(admin).Put("/{id}", a.updateProduct)
				r.With(admin).Delete("/{id}", a.deleteProduct)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.listCategories)
				r.With(admin).Post("/", a.createCategory)
			})

			r.Route("/sellers", func(r chi.Router) {
				r.Get("/", a.listSellers)
				r.Post("/", a.createSeller)
				r.With(seller).Get("/my-products", a.myProducts)
				r.With(seller).Get("/my-stats", a.myStats)
				r.With(seller).Get("/reports", a.sellerReport)
				r.With(seller).Post("/bulk-create-products", a.bulkCreateProducts)
				r.With(seller).Put("/bulk-update-stock", a.bulkUpdateStock)
				r.Get("/{id}", a.getSeller)
				r.Put("/{id}", a.updateSeller)
				r.With(admin).Put("/{id}/approve", a.approveSeller)
				r.Post("/{id}/reviews", a.createReview)
				r.Get("/{id}/reviews", a.listReviews)
				r.Get("/{id}/reviews/{reviewId}", a.getReview)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Get("/pending-sellers", a.pendingSellers)
				r.Get("/pending-reviews", a.pendingReviews)
				r.Put("/reviews/{id}/approve", a.approveReview)
				r.Get("/dashboard", a.dashboard)
			})
		})
	})
}
