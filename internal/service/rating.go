package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// RatingAggregator keeps a product's derived rating equal to the mean of its
// reviews.
type RatingAggregator struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(products repository.ProductRepository, reviews repository.ReviewRepository, producer *event.Producer, logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{
		products: products,
		reviews:  reviews,
		producer: producer,
		logger:   logger,
	}
}

// Recompute reads every review of the product, stores their mean rating (0
// when there are none) on the product and returns it. A product that no
// longer exists is left alone and no error is returned.
func (a *RatingAggregator) Recompute(ctx context.Context, productID string) (float64, error) {
	reviews, err := a.reviews.FindByProduct(ctx, productID)
	if err != nil {
		ratingRecomputations.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("find product reviews: %w", err)
	}

	rating := domain.AverageRating(reviews)

	if err := a.products.SetRating(ctx, productID, rating); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			ratingRecomputations.WithLabelValues("missing_product").Inc()
			a.logger.DebugContext(ctx, "rating not stored, product no longer exists",
				slog.String("product_id", productID),
			)
			return rating, nil
		}
		ratingRecomputations.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("set product rating: %w", err)
	}
	ratingRecomputations.WithLabelValues("stored").Inc()

	if err := a.producer.PublishRatingUpdated(ctx, productID, rating, len(reviews)); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish rating_updated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	a.logger.InfoContext(ctx, "rating recomputed",
		slog.String("product_id", productID),
		slog.Float64("rating", rating),
		slog.Int("reviews", len(reviews)),
	)

	return rating, nil
}
