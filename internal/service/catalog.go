package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
	"github.com/cartflow/storefront/pkg/pagination"
)

// CatalogQuery holds the raw listing constraints. Prices stay as strings
// because a value that does not parse disables the price filter instead of
// failing the request.
type CatalogQuery struct {
	Category string
	Color    string
	MinPrice string
	MaxPrice string
	Page     pagination.Params
}

// Filter converts the query into a store filter. Absent or "all" category
// and color values are dropped; the price range applies only when both
// bounds parse.
func (q CatalogQuery) Filter() repository.ProductFilter {
	var f repository.ProductFilter
	if !isAll(q.Category) {
		f.Category = q.Category
	}
	if !isAll(q.Color) {
		f.Color = q.Color
	}
	minPrice, minOK := parsePrice(q.MinPrice)
	maxPrice, maxOK := parsePrice(q.MaxPrice)
	if minOK && maxOK {
		f.Price = &repository.PriceRange{Min: minPrice, Max: maxPrice}
	}
	return f
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, domain.FilterAll)
}

func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func isFiltered(f repository.ProductFilter) bool {
	return f.Category != "" || f.Color != "" || f.Price != nil
}

// ListProducts returns one page of the catalog, newest first, with the total
// match count and page count. A page past the end is empty but still carries
// the totals.
func (s *ProductService) ListProducts(ctx context.Context, q CatalogQuery) (*domain.CatalogPage, error) {
	if q.Page.Page < 1 || q.Page.Limit < 1 {
		return nil, apperrors.InvalidInput("page and limit must be positive")
	}
	filter := q.Filter()

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products, err := s.products.Find(ctx, filter, q.Page.Skip(), int64(q.Page.Limit))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	if err := attachAuthors(ctx, s.users, products, nil); err != nil {
		return nil, err
	}

	catalogQueries.WithLabelValues(strconv.FormatBool(isFiltered(filter))).Inc()

	return &domain.CatalogPage{
		Products:      products,
		TotalPages:    pagination.TotalPages(total, q.Page.Limit),
		TotalProducts: total,
	}, nil
}
