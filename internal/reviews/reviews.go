// Package reviews handles seller reviews and keeps each seller's rating equal to the mean of
// its approved reviews.
package reviews

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/shopspring/decimal"
	"time"
)

var ErrDuplicate = errors.New("review already exists")

type Review struct {
	ID         int64     `json:"id"`
	SellerID   int64     `json:"sellerId"`
	UserID     string    `json:"-"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	IsApproved bool      `json:"isApproved"`
}

type Store interface {
	CreateReview(ctx context.Context, r *Review) error // ErrDuplicate on (seller, user)
	HasReview(ctx context.Context, sellerID int64, userID string) (bool, error)
	Review(ctx context.Context, id int64) (*Review, error)
	SellerReviews(ctx context.Context, sellerID int64, approvedOnly bool) ([]Review, error) // newest first
	PendingReviews(ctx context.Context) ([]Review, error)
	SetReviewApproval(ctx context.Context, id int64, approved bool) error
	ApprovedRatings(ctx context.Context, sellerID int64) ([]int, error)
	SetSellerRating(ctx context.Context, sellerID int64, rating decimal.Decimal) error
}

type SellerReader interface {
	Seller(ctx context.Context, id int64) (*catalog.Seller, error)
}

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CreateInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Average is the arithmetic mean of ratings rounded to two places; 0 for none.
func Average(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return decimal.NewFromInt(int64(sum)).
		DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
}

type Service struct {
	store   Store
	sellers SellerReader
	tx      TxManager
	now     func() time.Time
}

func NewService(store Store, sellers SellerReader, tx TxManager) *Service {
	return &Service{store: store, sellers: sellers, tx: tx, now: time.Now}
}

// Create stores an unapproved review. Each user may review a seller once.
func (s *Service) Create(ctx context.Context, caller auth.Principal, sellerID int64, in CreateInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("invalid request", "rating must be between 1 and 5")
	}
	if _, err := s.sellers.Seller(ctx, sellerID); err != nil {
		return nil, err
	}
	exists, err := s.store.HasReview(ctx, sellerID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BusinessRule("you have already reviewed seller %d", sellerID)
	}
	r := &Review{
		SellerID:  sellerID,
		UserID:    caller.UserID,
		UserName:  caller.UserName,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateReview(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.BusinessRule("you have already reviewed seller %d", sellerID)
		}
		return nil, err
	}
	return r, nil
}

// List returns the seller's approved reviews, newest first.
func (s *Service) List(ctx context.Context, sellerID int64) ([]Review, error) {
	if _, err := s.sellers.Seller(ctx, sellerID); err != nil {
		return nil, err
	}
	return s.store.SellerReviews(ctx, sellerID, true)
}

// Get returns an approved review of the seller.
func (s *Service) Get(ctx context.Context, sellerID, reviewID int64) (*Review, error) {
	r, err := s.store.Review(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.SellerID != sellerID || !r.IsApproved {
		return nil, apperr.NotFound("review %d not found", reviewID)
	}
	return r, nil
}

func (s *Service) Pending(ctx context.Context, caller auth.Principal) ([]Review, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can list pending reviews")
	}
	return s.store.PendingReviews(ctx)
}

// Approve sets the approval flag and recomputes the seller rating in the same transaction.
func (s *Service) Approve(ctx context.Context, caller auth.Principal, reviewID int64, approved bool) (*Review, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("only admins can approve reviews")
	}
	var out *Review
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := s.store.Review(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := s.store.SetReviewApproval(ctx, reviewID, approved); err != nil {
			return err
		}
		ratings, err := s.store.ApprovedRatings(ctx, r.SellerID)
		if err != nil {
			return err
		}
		if err := s.store.SetSellerRating(ctx, r.SellerID, Average(ratings)); err != nil {
			return err
		}
		r.IsApproved = approved
		out = r
		return nil
	})
	return out, err
}
