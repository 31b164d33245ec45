package service

import (
	"context"
	"fmt"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
)

// RelatedProducts returns the other products that share a name token (of two
// or more characters, matched case-insensitively) or the category with the
// given product, newest first. The result is capped by the configured related
// limit when it is positive.
func (s *ProductService) RelatedProducts(ctx context.Context, id string) ([]domain.Product, error) {
	source, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	related, err := s.products.FindRelated(ctx, repository.RelatedFilter{
		ExcludeID:   source.ID,
		NamePattern: domain.RelatedNamePattern(source.Name),
		Category:    source.Category,
		Limit:       int64(s.relatedLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("find related products: %w", err)
	}

	if err := attachAuthors(ctx, s.users, related, nil); err != nil {
		return nil, err
	}

	relatedResults.Observe(float64(len(related)))
	return related, nil
}
