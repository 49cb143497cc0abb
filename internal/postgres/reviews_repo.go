package postgres

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ReviewRepo struct{ DB *DB }

var _ reviews.Store = (*ReviewRepo)(nil)

const reviewSelect = `SELECT r.id, r.seller_id, r.user_id, COALESCE(u.user_name, ''), r.rating, r.comment,
	r.created_at, r.is_approved
	FROM seller_reviews r
	LEFT JOIN users u ON u.id = r.user_id`

func scanReview(row pgx.Row) (reviews.Review, error) {
	var rv reviews.Review
	err := row.Scan(&rv.ID, &rv.SellerID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.IsApproved)
	return rv, err
}

func (r *ReviewRepo) list(ctx context.Context, where string, args ...any) ([]reviews.Review, error) {
	rows, err := r.DB.q(ctx).Query(ctx, reviewSelect+` `+where+` ORDER BY r.created_at DESC, r.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []reviews.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) CreateReview(ctx context.Context, rv *reviews.Review) error {
	err := r.DB.q(ctx).QueryRow(ctx, `
		INSERT INTO seller_reviews(seller_id, user_id, rating, comment, created_at, is_approved)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		rv.SellerID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt, rv.IsApproved).Scan(&rv.ID)
	switch pgCode(err) {
	case codeUniqueViolation:
		return reviews.ErrDuplicate
	case codeForeignKeyViolation:
		return apperr.NotFound("seller %d not found", rv.SellerID)
	}
	return err
}

func (r *ReviewRepo) HasReview(ctx context.Context, sellerID int64, userID string) (bool, error) {
	var ok bool
	err := r.DB.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seller_reviews WHERE seller_id=$1 AND user_id=$2)`,
		sellerID, userID).Scan(&ok)
	return ok, err
}

func (r *ReviewRepo) Review(ctx context.Context, id int64) (*reviews.Review, error) {
	rv, err := scanReview(r.DB.q(ctx).QueryRow(ctx, reviewSelect+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, notFound(err, "review %d not found", id)
	}
	return &rv, nil
}

func (r *ReviewRepo) SellerReviews(ctx context.Context, sellerID int64, approvedOnly bool) ([]reviews.Review, error) {
	return r.list(ctx, `WHERE r.seller_id=$1 AND (NOT $2 OR r.is_approved)`, sellerID, approvedOnly)
}

func (r *ReviewRepo) PendingReviews(ctx context.Context) ([]reviews.Review, error) {
	return r.list(ctx, `WHERE NOT r.is_approved`)
}

func (r *ReviewRepo) SetReviewApproval(ctx context.Context, id int64, approved bool) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE seller_reviews SET is_approved=$2 WHERE id=$1`, id, approved)
	if err != nil {
		return err
	}
	return mustAffect(ct, "review %d not found", id)
}

func (r *ReviewRepo) ApprovedRatings(ctx context.Context, sellerID int64) ([]int, error) {
	rows, err := r.DB.q(ctx).Query(ctx, `SELECT rating FROM seller_reviews WHERE seller_id=$1 AND is_approved ORDER BY id`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) SetSellerRating(ctx context.Context, sellerID int64, rating decimal.Decimal) error {
	ct, err := r.DB.q(ctx).Exec(ctx, `UPDATE sellers SET rating=$2 WHERE id=$1`, sellerID, rating)
	if err != nil {
		return err
	}
	return mustAffect(ct, "seller %d not found", sellerID)
}
