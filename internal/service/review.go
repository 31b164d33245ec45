package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	Comment   string
	Rating    float64
}

// ReviewService implements the business logic for review operations. Every
// mutation recomputes the reviewed product's rating.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	ratings  *RatingAggregator
	cache    ProductCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(stores Stores, ratings *RatingAggregator, cache ProductCache, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  stores.Reviews,
		products: stores.Products,
		ratings:  ratings,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// CreateReview stores a review of an existing product and returns it together
// with the product's recomputed rating. A user may review a product any
// number of times.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, float64, error) {
	if input.ProductID == "" {
		return nil, 0, apperrors.InvalidInput("productId is required")
	}
	if input.UserID == "" {
		return nil, 0, apperrors.InvalidInput("userId is required")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, 0, apperrors.InvalidInput("comment is required")
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, 0, err
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, 0, fmt.Errorf("get product by id: %w", err)
	}

	review := &domain.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Comment:   comment,
		Rating:    input.Rating,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, 0, fmt.Errorf("create review: %w", err)
	}

	rating, err := s.afterChange(ctx, review.ProductID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("reviewer_id", review.UserID),
		slog.Float64("rating", review.Rating),
	)

	return review, rating, nil
}

// UpdateReview changes the comment or rating of a review owned by the caller,
// or any review when the caller is an admin.
func (s *ReviewService) UpdateReview(ctx context.Context, caller Caller, id string, patch domain.ReviewPatch) (*domain.Review, float64, error) {
	if patch.Comment == nil && patch.Rating == nil {
		return nil, 0, apperrors.InvalidInput("no fields to update")
	}
	if patch.Comment != nil {
		comment := strings.TrimSpace(*patch.Comment)
		if comment == "" {
			return nil, 0, apperrors.InvalidInput("comment must not be empty")
		}
		patch.Comment = &comment
	}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, 0, err
		}
	}

	if _, err := s.ownedReview(ctx, caller, id); err != nil {
		return nil, 0, err
	}

	review, err := s.reviews.Update(ctx, id, patch)
	if err != nil {
		return nil, 0, fmt.Errorf("update review: %w", err)
	}

	rating, err := s.afterChange(ctx, review.ProductID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return review, rating, nil
}

// DeleteReview removes a review owned by the caller, or any review when the
// caller is an admin, and returns the product's recomputed rating.
func (s *ReviewService) DeleteReview(ctx context.Context, caller Caller, id string) (float64, error) {
	review, err := s.ownedReview(ctx, caller, id)
	if err != nil {
		return 0, err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("delete review: %w", err)
	}

	rating, err := s.afterChange(ctx, review.ProductID)
	if err != nil {
		return 0, err
	}

	if err := s.producer.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return rating, nil
}

// ListUserReviews returns the reviews written by a user, newest first.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string) ([]domain.Review, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("userId is required")
	}
	reviews, err := s.reviews.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user reviews: %w", err)
	}
	return reviews, nil
}

// CountReviews returns the total number of reviews.
func (s *ReviewService) CountReviews(ctx context.Context) (int64, error) {
	n, err := s.reviews.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, caller Caller, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	if !caller.CanActFor(review.UserID) {
		return nil, apperrors.Forbidden("only the author or an admin may change this review")
	}
	return review, nil
}

// afterChange recomputes the product rating and drops the cached detail.
func (s *ReviewService) afterChange(ctx context.Context, productID string) (float64, error) {
	s.cache.Invalidate(ctx, productID)
	rating, err := s.ratings.Recompute(ctx, productID)
	// A detail read between the first invalidation and the stored rating
	// may have been cached with the old rating.
	s.cache.Invalidate(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("recompute rating: %w", err)
	}
	return rating, nil
}

func validateRating(rating float64) error {
	if rating < 0 || rating > domain.MaxRating {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between 0 and %g", domain.MaxRating))
	}
	return nil
}
