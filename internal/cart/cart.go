package cart

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/shopspring/decimal"
	"time"
)

type Cart struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Item struct {
	ID        int64 `json:"id"`
	CartID    int64 `json:"cartId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	// UnitPrice is the product price when the line was first added. Later price changes do not
	// reach the cart; the order takes the price current at placement.
	UnitPrice decimal.Decimal `json:"unitPrice"`

	ProductName     string `json:"productName,omitempty"`
	ProductImage    string `json:"productImage,omitempty"`
	SellerStoreName string `json:"sellerStoreName,omitempty"`
}

func (it Item) TotalPrice() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Total is computed from the lines on every read.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

func (c Cart) line(productID int64) (Item, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}

type Store interface {
	// EnsureCart returns the user's cart with its lines, creating an empty one first if needed.
	EnsureCart(ctx context.Context, userID string, now time.Time) (*Cart, error)
	// SetCartItem inserts the line or overwrites its quantity. unitPrice is only stored on insert.
	SetCartItem(ctx context.Context, cartID, productID int64, qty int, unitPrice decimal.Decimal) error
	DeleteCartItem(ctx context.Context, cartID, productID int64) error
	TouchCart(ctx context.Context, cartID int64, at time.Time) error
}

type ProductReader interface {
	Product(ctx context.Context, id int64) (*catalog.Product, error)
}

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type AddItemInput struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type Service struct {
	store    Store
	products ProductReader
	tx       TxManager
	now      func() time.Time
}

func NewService(store Store, products ProductReader, tx TxManager) *Service {
	return &Service{store: store, products: products, tx: tx, now: time.Now}
}

func (s *Service) Get(ctx context.Context, caller auth.Principal) (*Cart, error) {
	return s.store.EnsureCart(ctx, caller.UserID, s.now().UTC())
}

// AddItem adds qty of a product, merging with an existing line. The merged quantity must not
// exceed stock.
func (s *Service) AddItem(ctx context.Context, caller auth.Principal, in AddItemInput) (*Cart, error) {
	if in.Quantity <= 0 {
		return nil, apperr.Validation("invalid request", "quantity must be greater than 0")
	}
	return s.mutate(ctx, caller, func(ctx context.Context, c *Cart) error {
		p, err := s.products.Product(ctx, in.ProductID)
		if err != nil {
			return err
		}
		qty := in.Quantity
		if existing, ok := c.line(in.ProductID); ok {
			qty += existing.Quantity
		}
		if qty > p.Stock {
			return apperr.BusinessRule("not enough stock for %q: requested %d, available %d", p.Name, qty, p.Stock)
		}
		return s.store.SetCartItem(ctx, c.ID, p.ID, qty, p.Price)
	})
}

func (s *Service) UpdateItem(ctx context.Context, caller auth.Principal, productID int64, in UpdateItemInput) (*Cart, error) {
	if in.Quantity <= 0 {
		return nil, apperr.Validation("invalid request", "quantity must be greater than 0")
	}
	return s.mutate(ctx, caller, func(ctx context.Context, c *Cart) error {
		existing, ok := c.line(productID)
		if !ok {
			return apperr.NotFound("product %d is not in the cart", productID)
		}
		p, err := s.products.Product(ctx, productID)
		if err != nil {
			return err
		}
		if in.Quantity > p.Stock {
			return apperr.BusinessRule("not enough stock for %q: requested %d, available %d", p.Name, in.Quantity, p.Stock)
		}
		return s.store.SetCartItem(ctx, c.ID, productID, in.Quantity, existing.UnitPrice)
	})
}

func (s *Service) RemoveItem(ctx context.Context, caller auth.Principal, productID int64) (*Cart, error) {
	return s.mutate(ctx, caller, func(ctx context.Context, c *Cart) error {
		if _, ok := c.line(productID); !ok {
			return apperr.NotFound("product %d is not in the cart", productID)
		}
		return s.store.DeleteCartItem(ctx, c.ID, productID)
	})
}

// mutate runs fn against the caller's cart, stamps UpdatedAt and returns the fresh cart.
func (s *Service) mutate(ctx context.Context, caller auth.Principal, fn func(ctx context.Context, c *Cart) error) (*Cart, error) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		now := s.now().UTC()
		c, err := s.store.EnsureCart(ctx, caller.UserID, now)
		if err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		return s.store.TouchCart(ctx, c.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, caller)
}
