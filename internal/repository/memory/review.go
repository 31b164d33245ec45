package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cartflow/storefront/internal/domain"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository over a Store.
type ReviewRepository struct {
	store *Store
}

// NewReviewRepository creates a review repository backed by store.
func NewReviewRepository(store *Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

// Create stores a new review and assigns its identifier and timestamps.
func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	review.ID = uuid.New().String()
	review.CreatedAt = r.store.tick()
	review.UpdatedAt = review.CreatedAt

	stored := *review
	stored.Author = nil
	r.store.reviews[review.ID] = stored
	return nil
}

// GetByID retrieves a review by its unique identifier.
func (r *ReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rv, ok := r.store.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	return &rv, nil
}

// Update applies a patch to an existing review and returns the result.
func (r *ReviewRepository) Update(_ context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rv, ok := r.store.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	patch.Apply(&rv)
	rv.UpdatedAt = r.store.tick()
	r.store.reviews[id] = rv
	return &rv, nil
}

// Delete removes a single review.
func (r *ReviewRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.reviews[id]; !ok {
		return apperrors.NotFound("review", id)
	}
	delete(r.store.reviews, id)
	return nil
}

// FindByProduct returns every review of a product, newest first.
func (r *ReviewRepository) FindByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	return r.where(func(rv domain.Review) bool { return rv.ProductID == productID }), nil
}

// FindByUser returns every review written by a user, newest first.
func (r *ReviewRepository) FindByUser(_ context.Context, userID string) ([]domain.Review, error) {
	return r.where(func(rv domain.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepository) where(keep func(domain.Review) bool) []domain.Review {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Review, 0)
	for _, rv := range r.store.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	sortReviews(out)
	return out
}

// DeleteByProduct removes every review of a product.
func (r *ReviewRepository) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, rv := range r.store.reviews {
		if rv.ProductID == productID {
			delete(r.store.reviews, id)
			n++
		}
	}
	return n, nil
}

// Count returns the total number of reviews.
func (r *ReviewRepository) Count(context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.reviews)), nil
}
