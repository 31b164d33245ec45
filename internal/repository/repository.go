package repository

import (
	"context"

	"github.com/cartflow/storefront/internal/domain"
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// ProductFilter defines the conjunctive filter applied to catalog listings.
// Empty strings and a nil Price disable the corresponding clause.
type ProductFilter struct {
	Category string
	Color    string
	Price    *PriceRange
}

// RelatedFilter selects products related to a source product: any other
// product whose name matches NamePattern case-insensitively or whose category
// equals Category. An empty NamePattern matches no name.
type RelatedFilter struct {
	ExcludeID   string
	NamePattern string
	Category    string
	Limit       int64
}

// ProductRepository defines the interface for product persistence operations.
// Listings are ordered by creation time descending, then by identifier
// descending, so that paging is stable.
type ProductRepository interface {
	// Insert stores a new product and assigns its identifier and timestamps.
	Insert(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Find returns the window [skip, skip+limit) of products matching the filter.
	Find(ctx context.Context, filter ProductFilter, skip, limit int64) ([]domain.Product, error)

	// Count returns the number of products matching the filter.
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// FindRelated returns products related to a source product.
	FindRelated(ctx context.Context, filter RelatedFilter) ([]domain.Product, error)

	// Update applies a patch to an existing product and returns the result.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)

	// SetRating stores a recomputed rating on the product.
	SetRating(ctx context.Context, id string, rating float64) error

	// Delete removes a product and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.Product, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create stores a new review and assigns its identifier and timestamps.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// Update applies a patch to an existing review and returns the result.
	Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error)

	// Delete removes a single review.
	Delete(ctx context.Context, id string) error

	// FindByProduct returns every review of a product, newest first.
	FindByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// FindByUser returns every review written by a user, newest first.
	FindByUser(ctx context.Context, userID string) ([]domain.Review, error)

	// DeleteByProduct removes every review of a product and returns how many
	// were removed.
	DeleteByProduct(ctx context.Context, productID string) (int64, error)

	// Count returns the total number of reviews.
	Count(ctx context.Context) (int64, error)
}

// UserRepository resolves the public projection of user accounts.
type UserRepository interface {
	// ResolveAuthor returns the author projection of a single user.
	ResolveAuthor(ctx context.Context, id string) (*domain.Author, error)

	// ResolveAuthors returns the author projections of the given users keyed by
	// identifier. Unknown identifiers are absent from the result.
	ResolveAuthors(ctx context.Context, ids []string) (map[string]domain.Author, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create stores a new order and assigns its identifier and timestamps.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns every order, newest first.
	List(ctx context.Context) ([]domain.Order, error)

	// ListByUser returns the orders placed by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// UpdateStatus sets the status of an order and returns the result.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

// Transactor runs a function inside a unit of work. Repository calls made
// with the context passed to fn take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
