package reviews_test

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAverage(t *testing.T) {
	cases := []struct {
		in   []int
		want string
	}{
		{nil, "0"},
		{[]int{5}, "5"},
		{[]int{3, 5}, "4"},
		{[]int{4, 4, 5}, "4.33"},
		{[]int{1, 2}, "1.5"},
	}
	for _, tc := range cases {
		got := reviews.Average(tc.in)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%v: got %s", tc.in, got)
	}
}

func TestReviewApprovalDrivesRating(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	_, s := w.Seller(t)
	alice, bob, carol := w.Customer(t), w.Customer(t), w.Customer(t)

	r1, err := w.Reviews.Create(ctx, alice, s.ID, reviews.CreateInput{Rating: 3, Comment: "ok"})
	require.NoError(t, err)
	assert.False(t, r1.IsApproved)
	r2, err := w.Reviews.Create(ctx, bob, s.ID, reviews.CreateInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = w.Reviews.Create(ctx, carol, s.ID, reviews.CreateInput{Rating: 1, Comment: "bad"})
	require.NoError(t, err)

	list, err := w.Reviews.List(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing approved yet")
	_, err = w.Reviews.Get(ctx, s.ID, r1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	pending, err := w.Reviews.Pending(ctx, w.Admin)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
	_, err = w.Reviews.Pending(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = w.Reviews.Approve(ctx, alice, r1.ID, true)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = w.Reviews.Approve(ctx, w.Admin, r1.ID, true)
	require.NoError(t, err)
	approved, err := w.Reviews.Approve(ctx, w.Admin, r2.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	seller, err := w.Catalog.Seller(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(seller.Rating), "unapproved 1-star is ignored, got %s", seller.Rating)

	list, err = w.Reviews.List(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID, "newest first")

	got, err := w.Reviews.Get(ctx, s.ID, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserName, got.UserName)

	_, err = w.Reviews.Approve(ctx, w.Admin, r2.ID, false)
	require.NoError(t, err)
	seller, err = w.Catalog.Seller(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(seller.Rating))
}

func TestReviewCreateRules(t *testing.T) {
	ctx := context.Background()
	w := testkit.New(t)
	_, s := w.Seller(t)
	user := w.Customer(t)

	_, err := w.Reviews.Create(ctx, user, s.ID, reviews.CreateInput{Rating: 6})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = w.Reviews.Create(ctx, user, 31337, reviews.CreateInput{Rating: 4})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = w.Reviews.Create(ctx, user, s.ID, reviews.CreateInput{Rating: 4})
	require.NoError(t, err)
	_, err = w.Reviews.Create(ctx, user, s.ID, reviews.CreateInput{Rating: 2})
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	_, err = w.Reviews.Approve(ctx, w.Admin, 999999, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
