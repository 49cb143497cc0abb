package memstore

import (
	"cmp"
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/shopspring/decimal"
	"slices"
)

func (d *state) product(id int64) (catalog.Product, bool) {
	p, ok := d.products[id]
	if !ok {
		return p, false
	}
	p.SellerID = clonePtr(p.SellerID)
	p.CategoryName = d.categories[p.CategoryID].Name
	if p.SellerID != nil {
		p.SellerStoreName = d.sellers[*p.SellerID].StoreName
	}
	return p, true
}

func (s *Store) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	var out *catalog.Product
	err := s.do(ctx, func(d *state) error {
		p, ok := d.product(id)
		if !ok {
			return apperr.NotFound("product %d not found", id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (s *Store) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, int, error) {
	var (
		page  []catalog.Product
		total int
	)
	err := s.do(ctx, func(d *state) error {
		var all []catalog.Product
		for id := range d.products {
			p, _ := d.product(id)
			if f.Matches(p) {
				all = append(all, p)
			}
		}
		catalog.SortProducts(all, f.SortBy, f.Desc)
		total = len(all)
		page = paging.Slice(all, f.Page)
		return nil
	})
	return page, total, err
}

func (s *Store) ProductsBySeller(ctx context.Context, sellerID int64) ([]catalog.Product, error) {
	out := []catalog.Product{}
	err := s.do(ctx, func(d *state) error {
		for id, p := range d.products {
			if p.SellerID != nil && *p.SellerID == sellerID {
				hp, _ := d.product(id)
				out = append(out, hp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b catalog.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.categories[p.CategoryID]; !ok {
			return apperr.Validation("invalid request", "categoryId does not exist")
		}
		p.ID = d.nextID()
		cp := *p
		cp.SellerID = clonePtr(p.SellerID)
		cp.CategoryName, cp.SellerStoreName = "", ""
		d.products[p.ID] = cp
		return nil
	})
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.products[p.ID]; !ok {
			return apperr.NotFound("product %d not found", p.ID)
		}
		if p.Stock < 0 {
			return apperr.Validation("invalid request", "stock must not be negative")
		}
		cp := *p
		cp.SellerID = clonePtr(p.SellerID)
		cp.CategoryName, cp.SellerStoreName = "", ""
		d.products[p.ID] = cp
		return nil
	})
}

// DeleteProduct refuses products that order items still reference. Cart and wishlist lines go
// with the product.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.products[id]; !ok {
			return apperr.NotFound("product %d not found", id)
		}
		for _, it := range d.items {
			if it.ProductID == id {
				return apperr.BusinessRule("product %d is referenced by orders", id)
			}
		}
		for cid, ci := range d.cartItems {
			if ci.ProductID == id {
				delete(d.cartItems, cid)
			}
		}
		for wid, wi := range d.wishlist {
			if wi.ProductID == id {
				delete(d.wishlist, wid)
			}
		}
		delete(d.products, id)
		return nil
	})
}

func (s *Store) SetStock(ctx context.Context, productID int64, stock int) error {
	return s.do(ctx, func(d *state) error {
		p, ok := d.products[productID]
		if !ok {
			return apperr.NotFound("product %d not found", productID)
		}
		if stock < 0 {
			return apperr.Validation("invalid request", "stock must not be negative")
		}
		p.Stock = stock
		d.products[productID] = p
		return nil
	})
}

func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	out := []catalog.Category{}
	err := s.do(ctx, func(d *state) error {
		for _, c := range d.categories {
			out = append(out, c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b catalog.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (s *Store) Category(ctx context.Context, id int64) (*catalog.Category, error) {
	var out *catalog.Category
	err := s.do(ctx, func(d *state) error {
		c, ok := d.categories[id]
		if !ok {
			return apperr.NotFound("category %d not found", id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return s.do(ctx, func(d *state) error {
		c.ID = d.nextID()
		d.categories[c.ID] = *c
		return nil
	})
}

func (s *Store) Seller(ctx context.Context, id int64) (*catalog.Seller, error) {
	var out *catalog.Seller
	err := s.do(ctx, func(d *state) error {
		sl, ok := d.sellers[id]
		if !ok {
			return apperr.NotFound("seller %d not found", id)
		}
		out = &sl
		return nil
	})
	return out, err
}

func (s *Store) SellerByUser(ctx context.Context, userID string) (*catalog.Seller, error) {
	var out *catalog.Seller
	err := s.do(ctx, func(d *state) error {
		for _, sl := range d.sellers {
			if sl.UserID == userID {
				out = &sl
				return nil
			}
		}
		return apperr.NotFound("seller profile not found")
	})
	return out, err
}

func (s *Store) ListSellers(ctx context.Context, approved *bool) ([]catalog.Seller, error) {
	out := []catalog.Seller{}
	err := s.do(ctx, func(d *state) error {
		for _, sl := range d.sellers {
			if approved == nil || sl.IsApproved == *approved {
				out = append(out, sl)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b catalog.Seller) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (s *Store) CreateSeller(ctx context.Context, sl *catalog.Seller) error {
	return s.do(ctx, func(d *state) error {
		for _, existing := range d.sellers {
			if existing.UserID == sl.UserID {
				return catalog.ErrDuplicateSeller
			}
		}
		sl.ID = d.nextID()
		d.sellers[sl.ID] = *sl
		return nil
	})
}

func (s *Store) UpdateSeller(ctx context.Context, sl *catalog.Seller) error {
	return s.do(ctx, func(d *state) error {
		if _, ok := d.sellers[sl.ID]; !ok {
			return apperr.NotFound("seller %d not found", sl.ID)
		}
		d.sellers[sl.ID] = *sl
		return nil
	})
}

func (s *Store) SetSellerRating(ctx context.Context, sellerID int64, rating decimal.Decimal) error {
	return s.do(ctx, func(d *state) error {
		sl, ok := d.sellers[sellerID]
		if !ok {
			return apperr.NotFound("seller %d not found", sellerID)
		}
		sl.Rating = rating
		d.sellers[sellerID] = sl
		return nil
	})
}

func (s *Store) AddSellerSales(ctx context.Context, sellerID int64, qty int) error {
	return s.do(ctx, func(d *state) error {
		sl, ok := d.sellers[sellerID]
		if !ok {
			return apperr.NotFound("seller %d not found", sellerID)
		}
		sl.TotalSales += qty
		d.sellers[sellerID] = sl
		return nil
	})
}
