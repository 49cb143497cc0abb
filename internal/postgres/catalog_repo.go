package postgres

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/sellerstats"
	"github.com/jackc/pgx/v5"
	"strings"
)

type CatalogRepo struct{ DB *DB }

var (
	_ catalog.Store     = (*CatalogRepo)(nil)
	_ sellerstats.Store = (*CatalogRepo)(nil)
)

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, p.seller_id,
	COALESCE(c.name, ''), COALESCE(s.store_name, '')`

const productFrom = `FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN sellers s ON s.id = p.seller_id`

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CategoryID, &p.SellerID,
		&p.CategoryName, &p.SellerStoreName)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]catalog.Product, error) {
	defer rows.Close()
	out := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := scanProduct(r.DB.q(ctx).QueryRow(ctx, `SELECT `+productColumns+` `+productFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "product %d not found", id)
	}
	return &p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.SearchTerm != "" {
		p := arg(containsPattern(f.SearchTerm))
		conds = append(conds, "(p.name ILIKE "+p+` ESCAPE '\' OR p.description ILIKE `+p+` ESCAPE '\')`)
	}
	if f.MinPrice != nil {
		conds = append(conds, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= "+arg(*f.MaxPrice))
	}
	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = "+arg(*f.CategoryID))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	q := r.DB.q(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, p.id %s", f.SortBy.Column(), dir, dir)
	limit := fmt.Sprintf(" LIMIT %s OFFSET %s", arg(f.Page.Size), arg(f.Page.Offset()))
	rows, err := q.Query(ctx, `SELECT `+productColumns+` `+productFrom+where+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectProducts(rows)
	return items, total, err
}

func (r *CatalogRepo) ProductsBySeller(ctx context.Context, sellerID int64) ([]catalog.Product, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT `+productColumns+` `+productFrom+` WHERE p.seller_id = $1 ORDER BY p.id`, sellerID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	err := r.DB.q(ctx).QueryRow(ctx, `
		INSERT INTO products(name, description, price, stock, image_url, category_id, seller_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.CategoryID, p.SellerID).Scan(&p.ID)
	if pgCode(err) == codeForeignKeyViolation {
		return apperr.Validation("invalid request", "categoryId does not exist")
	}
	return err
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	tag, err := r.DB.q(ctx).Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, stock=$5, image_url=$6, category_id=$7, seller_id=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.CategoryID, p.SellerID)
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return apperr.Validation("invalid request", "categoryId does not exist")
	case codeCheckViolation:
		return apperr.Validation("invalid request", "stock must not be negative")
	}
	if err != nil {
		return err
	}
	return mustAffect(tag, "product %d not found", p.ID)
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.DB.q(ctx).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if pgCode(err) == codeForeignKeyViolation {
		return apperr.BusinessRule("product %d is referenced by orders", id)
	}
	if err != nil {
		return err
	}
	return mustAffect(tag, "product %d not found", id)
}

func (r *CatalogRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	tag, err := r.DB.q(ctx).Exec(ctx, `UPDATE products SET stock=$2 WHERE id=$1`, productID, stock)
	if pgCode(err) == codeCheckViolation {
		return apperr.Validation("invalid request", "stock must not be negative")
	}
	if err != nil {
		return err
	}
	return mustAffect(tag, "product %d not found", productID)
}

func (r *CatalogRepo) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) Category(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := r.DB.q(ctx).QueryRow(ctx, `SELECT id, name, description FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, notFound(err, "category %d not found", id)
	}
	return &c, nil
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return r.DB.q(ctx).QueryRow(ctx, `INSERT INTO categories(name, description) VALUES ($1,$2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
}

const sellerColumns = `id, user_id, store_name, description, contact_email, contact_phone, address,
	created_at, is_approved, rating, total_sales`

func scanSeller(row pgx.Row) (catalog.Seller, error) {
	var s catalog.Seller
	err := row.Scan(&s.ID, &s.UserID, &s.StoreName, &s.Description, &s.ContactEmail, &s.ContactPhone, &s.Address,
		&s.CreatedAt, &s.IsApproved, &s.Rating, &s.TotalSales)
	return s, err
}

func (r *CatalogRepo) Seller(ctx context.Context, id int64) (*catalog.Seller, error) {
	s, err := scanSeller(r.DB.q(ctx).QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "seller %d not found", id)
	}
	return &s, nil
}

func (r *CatalogRepo) SellerByUser(ctx context.Context, userID string) (*catalog.Seller, error) {
	s, err := scanSeller(r.DB.q(ctx).QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE user_id=$1`, userID))
	if err != nil {
		return nil, notFound(err, "seller profile not found")
	}
	return &s, nil
}

func (r *CatalogRepo) ListSellers(ctx context.Context, approved *bool) ([]catalog.Seller, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT `+sellerColumns+` FROM sellers
		WHERE $1::boolean IS NULL OR is_approved = $1 ORDER BY id`, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Seller{}
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) CreateSeller(ctx context.Context, s *catalog.Seller) error {
	err := r.DB.q(ctx).QueryRow(ctx, `
		INSERT INTO sellers(user_id, store_name, description, contact_email, contact_phone, address,
		                    created_at, is_approved, rating, total_sales)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		s.UserID, s.StoreName, s.Description, s.ContactEmail, s.ContactPhone, s.Address,
		s.CreatedAt, s.IsApproved, s.Rating, s.TotalSales).Scan(&s.ID)
	if pgCode(err) == codeUniqueViolation {
		return catalog.ErrDuplicateSeller
	}
	return err
}

func (r *CatalogRepo) UpdateSeller(ctx context.Context, s *catalog.Seller) error {
	tag, err := r.DB.q(ctx).Exec(ctx, `
		UPDATE sellers SET store_name=$2, description=$3, contact_email=$4, contact_phone=$5, address=$6,
		                   is_approved=$7
		WHERE id=$1`,
		s.ID, s.StoreName, s.Description, s.ContactEmail, s.ContactPhone, s.Address, s.IsApproved)
	if err != nil {
		return err
	}
	return mustAffect(tag, "seller %d not found", s.ID)
}

func (r *CatalogRepo) AddSellerSales(ctx context.Context, sellerID int64, qty int) error {
	tag, err := r.DB.q(ctx).Exec(ctx, `UPDATE sellers SET total_sales = total_sales + $2 WHERE id=$1`, sellerID, qty)
	if err != nil {
		return err
	}
	return mustAffect(tag, "seller %d not found", sellerID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term literally anywhere in the column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
