package memory

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository over a Store.
type ProductRepository struct {
	store *Store
}

// NewProductRepository creates a product repository backed by store.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Insert stores a new product and assigns its identifier and timestamps.
func (r *ProductRepository) Insert(_ context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product.ID = uuid.New().String()
	product.CreatedAt = r.store.tick()
	product.UpdatedAt = product.CreatedAt

	stored := *product
	stored.Author = nil
	r.store.products[product.ID] = stored
	return nil
}

// GetByID retrieves a product by its unique identifier.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

// Find returns the window [skip, skip+limit) of products matching the filter.
func (r *ProductRepository) Find(_ context.Context, filter repository.ProductFilter, skip, limit int64) ([]domain.Product, error) {
	matched := r.matching(filter)
	if skip < 0 || skip >= int64(len(matched)) {
		return []domain.Product{}, nil
	}
	end := int64(len(matched))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], nil
}

// Count returns the number of products matching the filter.
func (r *ProductRepository) Count(_ context.Context, filter repository.ProductFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *ProductRepository) matching(filter repository.ProductFilter) []domain.Product {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Color != "" && p.Color != filter.Color {
			continue
		}
		if filter.Price != nil && (p.Price < filter.Price.Min || p.Price > filter.Price.Max) {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out)
	return out
}

// FindRelated returns other products whose name matches the pattern or whose
// category equals the filter category.
func (r *ProductRepository) FindRelated(_ context.Context, filter repository.RelatedFilter) ([]domain.Product, error) {
	var nameRe *regexp.Regexp
	if filter.NamePattern != "" {
		re, err := regexp.Compile("(?i)" + filter.NamePattern)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid name pattern: %v", err))
		}
		nameRe = re
	}

	r.store.mu.RLock()
	out := make([]domain.Product, 0)
	for _, p := range r.store.products {
		if p.ID == filter.ExcludeID {
			continue
		}
		if p.Category == filter.Category || (nameRe != nil && nameRe.MatchString(p.Name)) {
			out = append(out, p)
		}
	}
	r.store.mu.RUnlock()

	sortProducts(out)
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update applies a patch to an existing product and returns the result.
func (r *ProductRepository) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	patch.Apply(&p)
	p.UpdatedAt = r.store.tick()
	r.store.products[id] = p
	return &p, nil
}

// SetRating stores a recomputed rating on the product.
func (r *ProductRepository) SetRating(_ context.Context, id string, rating float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	p.Rating = rating
	r.store.products[id] = p
	return nil
}

// Delete removes a product and returns the removed record.
func (r *ProductRepository) Delete(_ context.Context, id string) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	delete(r.store.products, id)
	return &p, nil
}
