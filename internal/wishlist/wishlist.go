package wishlist

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/shopspring/decimal"
	"time"
)

var ErrDuplicate = errors.New("product already in wishlist")

type Item struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	ProductID int64     `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`

	ProductName     string          `json:"productName,omitempty"`
	ProductImage    string          `json:"productImage,omitempty"`
	Price           decimal.Decimal `json:"price"`
	SellerStoreName string          `json:"sellerStoreName,omitempty"`
}

type Store interface {
	AddWishlistItem(ctx context.Context, it *Item) error // ErrDuplicate when (user, product) exists
	RemoveWishlistItem(ctx context.Context, userID string, productID int64) error
	Wishlist(ctx context.Context, userID string) ([]Item, error) // newest first
}

type ProductReader interface {
	Product(ctx context.Context, id int64) (*catalog.Product, error)
}

type Service struct {
	store    Store
	products ProductReader
	now      func() time.Time
}

func NewService(store Store, products ProductReader) *Service {
	return &Service{store: store, products: products, now: time.Now}
}

func (s *Service) List(ctx context.Context, caller auth.Principal) ([]Item, error) {
	return s.store.Wishlist(ctx, caller.UserID)
}

func (s *Service) Add(ctx context.Context, caller auth.Principal, productID int64) (*Item, error) {
	p, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	it := &Item{
		UserID:          caller.UserID,
		ProductID:       p.ID,
		AddedAt:         s.now().UTC(),
		ProductName:     p.Name,
		ProductImage:    p.ImageURL,
		Price:           p.Price,
		SellerStoreName: p.SellerStoreName,
	}
	if err := s.store.AddWishlistItem(ctx, it); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.BusinessRule("product %d is already in the wishlist", productID)
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) Remove(ctx context.Context, caller auth.Principal, productID int64) error {
	return s.store.RemoveWishlistItem(ctx, caller.UserID, productID)
}
