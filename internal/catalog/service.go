package catalog

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

var ErrDuplicateSeller = errors.New("seller profile already exists")

type Store interface {
	Product(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error)
	ProductsBySeller(ctx context.Context, sellerID int64) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SetStock(ctx context.Context, productID int64, stock int) error

	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error

	Seller(ctx context.Context, id int64) (*Seller, error)
	SellerByUser(ctx context.Context, userID string) (*Seller, error)
	ListSellers(ctx context.Context, approved *bool) ([]Seller, error)
	CreateSeller(ctx context.Context, s *Seller) error // ErrDuplicateSeller when the user already has one
	UpdateSeller(ctx context.Context, s *Seller) error
}

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RoleGranter interface {
	GrantRole(ctx context.Context, userID string, r auth.Role) error
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,max=500"`
	CategoryID  int64           `json:"categoryId" validate:"gt=0"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"max=200"`
}

type SellerInput struct {
	StoreName    string `json:"storeName" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=500"`
	ContactEmail string `json:"contactEmail" validate:"required,email,max=100"`
	ContactPhone string `json:"contactPhone" validate:"max=20"`
	Address      string `json:"address" validate:"max=200"`
}

type StockUpdate struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	NewStock  int   `json:"newStock" validate:"gte=0"`
}

type Service struct {
	store Store
	tx    TxManager
	roles RoleGranter
	now   func() time.Time
}

func NewService(store Store, tx TxManager, roles RoleGranter) *Service {
	return &Service{store: store, tx: tx, roles: roles, now: time.Now}
}

func (s *Service) Products(ctx context.Context, f ProductFilter) (paging.Page[Product], error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return paging.Page[Product]{}, apperr.Validation("invalid filter", "minPrice must not exceed maxPrice")
	}
	items, total, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return paging.Page[Product]{}, err
	}
	return paging.New(items, total, f.Page), nil
}

func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	return s.store.Product(ctx, id)
}

// CreateProduct is open to admins and approved sellers. A seller's product is bound to its store.
func (s *Service) CreateProduct(ctx context.Context, caller auth.Principal, in ProductInput) (*Product, error) {
	var sellerID *int64
	if !caller.IsAdmin() {
		seller, err := s.approvedSeller(ctx, caller)
		if err != nil {
			return nil, err
		}
		sellerID = &seller.ID
	}
	p := newProduct(in, sellerID)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return err
		}
		return s.store.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Product(ctx, p.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, caller auth.Principal, id int64, in ProductInput) (*Product, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can change products")
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.store.Product(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return err
		}
		p.Name, p.Description, p.Price = in.Name, in.Description, in.Price.Round(2)
		p.Stock, p.ImageURL, p.CategoryID = in.Stock, in.ImageURL, in.CategoryID
		return s.store.UpdateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Product(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, caller auth.Principal, id int64) error {
	if !caller.IsAdmin() {
		return apperr.Forbidden("only admins can delete products")
	}
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.store.Categories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, caller auth.Principal, in CategoryInput) (*Category, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can create categories")
	}
	c := &Category{Name: in.Name, Description: in.Description}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Sellers(ctx context.Context) ([]Seller, error) {
	return s.store.ListSellers(ctx, nil)
}

func (s *Service) PendingSellers(ctx context.Context) ([]Seller, error) {
	approved := false
	return s.store.ListSellers(ctx, &approved)
}

func (s *Service) Seller(ctx context.Context, id int64) (*Seller, error) {
	return s.store.Seller(ctx, id)
}

// CreateSeller opens a store for the caller. New stores wait for admin approval.
func (s *Service) CreateSeller(ctx context.Context, caller auth.Principal, in SellerInput) (*Seller, error) {
	seller := &Seller{
		UserID:       caller.UserID,
		StoreName:    in.StoreName,
		Description:  in.Description,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		CreatedAt:    s.now().UTC(),
		Rating:       decimal.Zero,
	}
	if err := s.store.CreateSeller(ctx, seller); err != nil {
		if errors.Is(err, ErrDuplicateSeller) {
			return nil, apperr.BusinessRule("user already has a seller profile")
		}
		return nil, err
	}
	return seller, nil
}

func (s *Service) UpdateSeller(ctx context.Context, caller auth.Principal, id int64, in SellerInput) (*Seller, error) {
	var out *Seller
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		seller, err := s.store.Seller(ctx, id)
		if err != nil {
			return err
		}
		if seller.UserID != caller.UserID && !caller.IsAdmin() {
			return apperr.Forbidden("only the store owner can update seller %d", id)
		}
		seller.StoreName, seller.Description = in.StoreName, in.Description
		seller.ContactEmail, seller.ContactPhone, seller.Address = in.ContactEmail, in.ContactPhone, in.Address
		if err := s.store.UpdateSeller(ctx, seller); err != nil {
			return err
		}
		out = seller
		return nil
	})
	return out, err
}

// ApproveSeller flags the store approved and grants its owner the Seller role.
func (s *Service) ApproveSeller(ctx context.Context, caller auth.Principal, id int64) (*Seller, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can approve sellers")
	}
	var out *Seller
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		seller, err := s.store.Seller(ctx, id)
		if err != nil {
			return err
		}
		seller.IsApproved = true
		if err := s.store.UpdateSeller(ctx, seller); err != nil {
			return err
		}
		if err := s.roles.GrantRole(ctx, seller.UserID, auth.RoleSeller); err != nil {
			return err
		}
		out = seller
		return nil
	})
	return out, err
}

func (s *Service) MyProducts(ctx context.Context, caller auth.Principal) ([]Product, error) {
	seller, err := s.SellerFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.store.ProductsBySeller(ctx, seller.ID)
}

func (s *Service) MyStats(ctx context.Context, caller auth.Principal) (*SellerStats, error) {
	seller, err := s.SellerFor(ctx, caller)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ProductsBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	return &SellerStats{
		StoreName:     seller.StoreName,
		TotalProducts: len(products),
		TotalSales:    seller.TotalSales,
		Rating:        seller.Rating,
		IsApproved:    seller.IsApproved,
		JoinDate:      seller.CreatedAt,
	}, nil
}

// BulkCreateProducts inserts all products under the caller's store or none of them.
func (s *Service) BulkCreateProducts(ctx context.Context, caller auth.Principal, in []ProductInput) ([]Product, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("invalid request", "products must not be empty")
	}
	seller, err := s.approvedSeller(ctx, caller)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(in))
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, pi := range in {
			if err := s.requireCategory(ctx, pi.CategoryID); err != nil {
				return err
			}
			p := newProduct(pi, &seller.ID)
			if err := s.store.CreateProduct(ctx, p); err != nil {
				return err
			}
			ids = append(ids, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.Product(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// BulkUpdateStock sets absolute stock levels. Every product must belong to the caller's store.
func (s *Service) BulkUpdateStock(ctx context.Context, caller auth.Principal, updates []StockUpdate) error {
	if len(updates) == 0 {
		return apperr.Validation("invalid request", "products must not be empty")
	}
	seller, err := s.SellerFor(ctx, caller)
	if err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, u := range updates {
			if u.NewStock < 0 {
				return apperr.Validation("invalid request", "newStock must not be negative")
			}
			p, err := s.store.Product(ctx, u.ProductID)
			if err != nil {
				return err
			}
			if p.SellerID == nil || *p.SellerID != seller.ID {
				return apperr.Forbidden("product %d does not belong to your store", u.ProductID)
			}
			if err := s.store.SetStock(ctx, u.ProductID, u.NewStock); err != nil {
				return err
			}
		}
		return nil
	})
}

// SellerFor resolves the caller's seller profile.
func (s *Service) SellerFor(ctx context.Context, caller auth.Principal) (*Seller, error) {
	seller, err := s.store.SellerByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("seller profile not found")
		}
		return nil, err
	}
	return seller, nil
}

func (s *Service) approvedSeller(ctx context.Context, caller auth.Principal) (*Seller, error) {
	seller, err := s.store.SellerByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Forbidden("an approved seller account is required")
		}
		return nil, err
	}
	if !seller.IsApproved {
		return nil, apperr.Forbidden("an approved seller account is required")
	}
	return seller, nil
}

func (s *Service) requireCategory(ctx context.Context, id int64) error {
	if _, err := s.store.Category(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("invalid request", "categoryId does not exist")
		}
		return err
	}
	return nil
}

func newProduct(in ProductInput, sellerID *int64) *Product {
	return &Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
		SellerID:    sellerID,
	}
}

// SortProducts orders ps in place the way ListProducts does.
func SortProducts(ps []Product, key SortKey, desc bool) {
	slices.SortFunc(ps, func(a, b Product) int {
		if desc {
			return key.Compare(b, a)
		}
		return key.Compare(a, b)
	})
}
