package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

type reviewFixture struct {
	*memoryFixture
	productID string
	owner     string
	other     string
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := newMemoryFixture(0)
	p := f.createProduct(context.Background(), f.addUser("olivia"), "Garden Hose", domain.CategoryHome, 20)
	return &reviewFixture{
		memoryFixture: f,
		productID:     p.ID,
		owner:         f.addUser("peggy"),
		other:         f.addUser("rupert"),
	}
}

func (f *reviewFixture) review(t *testing.T, userID string, rating float64) *domain.Review {
	t.Helper()
	r, _, err := f.reviews.CreateReview(context.Background(), &CreateReviewInput{
		ProductID: f.productID,
		UserID:    userID,
		Comment:   "works as described",
		Rating:    rating,
	})
	require.NoError(t, err)
	return r
}

func (f *reviewFixture) storedRating(t *testing.T) float64 {
	t.Helper()
	p, err := f.stores.Products.GetByID(context.Background(), f.productID)
	require.NoError(t, err)
	return p.Rating
}

// ============================================================================
// CreateReview Tests
// ============================================================================

func TestCreateReview_RecomputesRating(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	review, rating, err := f.reviews.CreateReview(ctx, &CreateReviewInput{
		ProductID: f.productID, UserID: f.owner, Comment: "  great  ", Rating: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "great", review.Comment)
	assert.Equal(t, 5.0, rating)

	_, rating, err = f.reviews.CreateReview(ctx, &CreateReviewInput{
		ProductID: f.productID, UserID: f.owner, Comment: "second thoughts", Rating: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, rating)
	assert.Equal(t, 3.5, f.storedRating(t))
	assert.Contains(t, f.cache.invalidated, f.productID)
	assert.Contains(t, f.events.topics, event.TopicReviewCreated)
	assert.Contains(t, f.events.topics, event.TopicRatingUpdated)
}

func TestCreateReview_InterleavedReadDoesNotCacheOldRating(t *testing.T) {
	f, hooked := newHookedFixture(0)
	ctx := context.Background()
	product := f.createProduct(ctx, f.addUser("olivia"), "Garden Hose", domain.CategoryHome, 20)
	reviewer := f.addUser("peggy")

	// Read the detail after the review is stored but before its rating is.
	hooked.beforeWrite = func(ctx context.Context, id string) {
		detail, err := f.products.GetProduct(ctx, id)
		require.NoError(t, err)
		assert.Len(t, detail.Reviews, 1)
		assert.Zero(t, detail.Product.Rating)
	}
	f.cache.ops = nil

	_, rating, err := f.reviews.CreateReview(ctx, &CreateReviewInput{
		ProductID: product.ID, UserID: reviewer, Comment: "sturdy", Rating: 4,
	})
	require.NoError(t, err)
	hooked.beforeWrite = nil

	assert.Equal(t, 4.0, rating)
	assert.Equal(t, []string{"invalidate", "set_detail", "set_rating", "invalidate"}, f.cache.ops)

	detail, err := f.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, detail.Product.Rating)
	assert.Len(t, detail.Reviews, 1)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	f := newReviewFixture(t)

	_, _, err := f.reviews.CreateReview(context.Background(), &CreateReviewInput{
		ProductID: "missing", UserID: f.owner, Comment: "hello", Rating: 3,
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	total, _ := f.reviews.CountReviews(context.Background())
	assert.Equal(t, int64(0), total)
}

func TestCreateReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateReviewInput
	}{
		{"missing product", CreateReviewInput{UserID: "u", Comment: "c", Rating: 1}},
		{"missing user", CreateReviewInput{ProductID: "p", Comment: "c", Rating: 1}},
		{"blank comment", CreateReviewInput{ProductID: "p", UserID: "u", Comment: "   ", Rating: 1}},
		{"rating above max", CreateReviewInput{ProductID: "p", UserID: "u", Comment: "c", Rating: 5.5}},
		{"negative rating", CreateReviewInput{ProductID: "p", UserID: "u", Comment: "c", Rating: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(mockReviewRepository)
			products := new(mockProductRepository)
			producer, _ := newTestProducer()
			svc := NewReviewService(Stores{Products: products, Reviews: reviews}, nil, newRecordingCache(), producer, newTestLogger())

			input := tt.input
			_, _, err := svc.CreateReview(context.Background(), &input)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReview_CreateError(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	producer, _ := newTestProducer()
	svc := NewReviewService(Stores{Products: products, Reviews: reviews}, nil, newRecordingCache(), producer, newTestLogger())
	ctx := context.Background()

	products.On("GetByID", ctx, "p1").Return(&domain.Product{ID: "p1"}, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(apperrors.Persistence(fmt.Errorf("timeout")))

	_, _, err := svc.CreateReview(ctx, &CreateReviewInput{ProductID: "p1", UserID: "u1", Comment: "nice", Rating: 4})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

// ============================================================================
// UpdateReview Tests
// ============================================================================

func TestUpdateReview_OwnerRecomputesRating(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	review := f.review(t, f.owner, 1)
	f.review(t, f.other, 3)

	updated, rating, err := f.reviews.UpdateReview(ctx, Caller{UserID: f.owner}, review.ID, domain.ReviewPatch{
		Rating: floatPtr(5),
	})

	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Rating)
	assert.Equal(t, "works as described", updated.Comment)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, 4.0, f.storedRating(t))
	assert.Contains(t, f.events.topics, event.TopicReviewUpdated)
}

func TestUpdateReview_AdminMayEditAnyReview(t *testing.T) {
	f := newReviewFixture(t)
	review := f.review(t, f.owner, 2)

	updated, _, err := f.reviews.UpdateReview(context.Background(), Caller{UserID: f.other, Admin: true}, review.ID, domain.ReviewPatch{
		Comment: strPtr("moderated"),
	})

	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Comment)
}

func TestUpdateReview_ForbiddenForOtherUser(t *testing.T) {
	f := newReviewFixture(t)
	review := f.review(t, f.owner, 2)

	_, _, err := f.reviews.UpdateReview(context.Background(), Caller{UserID: f.other}, review.ID, domain.ReviewPatch{
		Rating: floatPtr(5),
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 2.0, f.storedRating(t))
}

func TestUpdateReview_InvalidPatch(t *testing.T) {
	f := newReviewFixture(t)
	review := f.review(t, f.owner, 2)
	caller := Caller{UserID: f.owner}

	patches := map[string]domain.ReviewPatch{
		"empty":         {},
		"blank comment": {Comment: strPtr("  ")},
		"rating range":  {Rating: floatPtr(6)},
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.reviews.UpdateReview(context.Background(), caller, review.ID, patch)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestUpdateReview_NotFound(t *testing.T) {
	f := newReviewFixture(t)

	_, _, err := f.reviews.UpdateReview(context.Background(), Caller{UserID: f.owner}, "missing", domain.ReviewPatch{
		Rating: floatPtr(1),
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// DeleteReview Tests
// ============================================================================

func TestDeleteReview_RecomputesRating(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	low := f.review(t, f.owner, 1)
	f.review(t, f.other, 5)

	rating, err := f.reviews.DeleteReview(ctx, Caller{UserID: f.owner}, low.ID)

	require.NoError(t, err)
	assert.Equal(t, 5.0, rating)
	assert.Equal(t, 5.0, f.storedRating(t))
	assert.Contains(t, f.events.topics, event.TopicReviewDeleted)
}

func TestDeleteReview_LastReviewResetsRating(t *testing.T) {
	f := newReviewFixture(t)
	only := f.review(t, f.owner, 4)

	rating, err := f.reviews.DeleteReview(context.Background(), Caller{Admin: true}, only.ID)

	require.NoError(t, err)
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0.0, f.storedRating(t))
}

func TestDeleteReview_Forbidden(t *testing.T) {
	f := newReviewFixture(t)
	review := f.review(t, f.owner, 4)

	_, err := f.reviews.DeleteReview(context.Background(), Caller{UserID: f.other}, review.ID)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	total, _ := f.reviews.CountReviews(context.Background())
	assert.Equal(t, int64(1), total)
}

func TestDeleteReview_OrphanedProduct(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	review := f.review(t, f.owner, 4)
	_, err := f.stores.Products.Delete(ctx, f.productID)
	require.NoError(t, err)

	rating, err := f.reviews.DeleteReview(ctx, Caller{UserID: f.owner}, review.ID)

	require.NoError(t, err)
	assert.Equal(t, 0.0, rating)
}

// ============================================================================
// Listing Tests
// ============================================================================

func TestListUserReviews(t *testing.T) {
	f := newReviewFixture(t)
	first := f.review(t, f.owner, 3)
	f.review(t, f.other, 3)
	second := f.review(t, f.owner, 4)

	reviews, err := f.reviews.ListUserReviews(context.Background(), f.owner)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)
}

func TestListUserReviews_RequiresUser(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.reviews.ListUserReviews(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCountReviews_Error(t *testing.T) {
	reviews := new(mockReviewRepository)
	producer, _ := newTestProducer()
	svc := NewReviewService(Stores{Reviews: reviews}, nil, newRecordingCache(), producer, newTestLogger())
	ctx := context.Background()

	reviews.On("Count", ctx).Return(int64(0), fmt.Errorf("boom"))

	_, err := svc.CountReviews(ctx)

	assert.Error(t, err)
}
