package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	products     repository.ProductRepository
	reviews      repository.ReviewRepository
	users        repository.UserRepository
	tx           repository.Transactor
	ratings      *RatingAggregator
	cache        ProductCache
	producer     *event.Producer
	relatedLimit int
	logger       *slog.Logger
}

// NewProductService creates a new product service. A relatedLimit of zero
// leaves related-product lookups unbounded.
func NewProductService(stores Stores, ratings *RatingAggregator, cache ProductCache, producer *event.Producer, relatedLimit int, logger *slog.Logger) *ProductService {
	return &ProductService{
		products:     stores.Products,
		reviews:      stores.Reviews,
		users:        stores.Users,
		tx:           stores.Tx,
		ratings:      ratings,
		cache:        cache,
		producer:     producer,
		relatedLimit: relatedLimit,
		logger:       logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Category    string
	Description string
	Price       float64
	OldPrice    float64
	Image       string
	Color       string
	AuthorID    string
}

// CreateProduct stores a new product authored by the caller and computes its
// initial rating.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Description: input.Description,
		Price:       input.Price,
		OldPrice:    input.OldPrice,
		Image:       strings.TrimSpace(input.Image),
		Color:       input.Color,
		AuthorID:    input.AuthorID,
	}
	if product.Category == "" {
		product.Category = domain.DefaultCategory
	}
	if product.Color == "" {
		product.Color = domain.DefaultColor
	}
	if product.AuthorID == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	rating, err := s.ratings.Recompute(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}
	product.Rating = rating

	if err := s.attachAuthor(ctx, product); err != nil {
		return nil, err
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("author_id", product.AuthorID),
	)

	return product, nil
}

// GetProduct returns a product with its reviews, newest first. Authors are
// resolved to their public projection.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	if detail, ok := s.cache.GetDetail(ctx, id); ok {
		return detail, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	reviews, err := s.reviews.FindByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product reviews: %w", err)
	}

	products := []domain.Product{*product}
	if err := attachAuthors(ctx, s.users, products, reviews); err != nil {
		return nil, err
	}

	detail := &domain.ProductDetail{Product: &products[0], Reviews: reviews}
	s.cache.SetDetail(ctx, detail)
	return detail, nil
}

// UpdateProduct applies a partial update to the authored fields of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return nil, apperrors.InvalidInput("no fields to update")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.cache.Invalidate(ctx, id)

	if err := s.attachAuthor(ctx, product); err != nil {
		return nil, err
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product together with all of its reviews and
// returns how many reviews were removed. Reviews go first, so when the store
// cannot run both steps in one transaction a retried delete still finishes.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (int64, error) {
	var reviewsDeleted int64

	s.cache.Invalidate(ctx, id)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get product by id: %w", err)
		}

		n, err := s.reviews.DeleteByProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("delete product reviews: %w", err)
		}

		if _, err := s.products.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}

		reviewsDeleted = n
		return nil
	})
	// A failed cascade may still have removed reviews.
	s.cache.Invalidate(ctx, id)
	if err != nil {
		return 0, err
	}

	reviewsCascadeDeleted.Add(float64(reviewsDeleted))

	if err := s.producer.PublishProductDeleted(ctx, id, reviewsDeleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.Int64("reviews_deleted", reviewsDeleted),
	)

	return reviewsDeleted, nil
}

func (s *ProductService) attachAuthor(ctx context.Context, product *domain.Product) error {
	products := []domain.Product{*product}
	if err := attachAuthors(ctx, s.users, products, nil); err != nil {
		return err
	}
	product.Author = products[0].Author
	return nil
}

func validateProduct(p *domain.Product) error {
	switch {
	case utf8.RuneCountInString(p.Name) < domain.MinNameLength:
		return apperrors.InvalidInput(fmt.Sprintf("name must be at least %d characters", domain.MinNameLength))
	case utf8.RuneCountInString(p.Description) < domain.MinDescriptionLength:
		return apperrors.InvalidInput(fmt.Sprintf("description must be at least %d characters", domain.MinDescriptionLength))
	case p.Price < 0:
		return apperrors.InvalidInput("price must not be negative")
	case p.OldPrice < 0:
		return apperrors.InvalidInput("oldPrice must not be negative")
	case p.Image == "":
		return apperrors.InvalidInput("image is required")
	case !domain.IsValidCategory(p.Category):
		return apperrors.InvalidInput(fmt.Sprintf("invalid category %q", p.Category))
	case !domain.IsValidColor(p.Color):
		return apperrors.InvalidInput(fmt.Sprintf("invalid color %q", p.Color))
	}
	return nil
}

func validatePatch(p domain.ProductPatch) error {
	// Fill the unset fields with values that always pass, then reuse the
	// create-time rules.
	probe := &domain.Product{
		Name:        strings.Repeat("x", domain.MinNameLength),
		Category:    domain.DefaultCategory,
		Description: strings.Repeat("x", domain.MinDescriptionLength),
		Image:       "x",
		Color:       domain.DefaultColor,
	}
	p.Apply(probe)
	probe.Image = strings.TrimSpace(probe.Image)
	return validateProduct(probe)
}
