package service

import (
	"context"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
)

// Stores bundles the repositories and the unit-of-work runner the services
// read and write through.
type Stores struct {
	Products repository.ProductRepository
	Reviews  repository.ReviewRepository
	Users    repository.UserRepository
	Orders   repository.OrderRepository
	Tx       repository.Transactor
}

// ProductCache is the read-through cache for product details.
type ProductCache interface {
	GetDetail(ctx context.Context, productID string) (*domain.ProductDetail, bool)
	SetDetail(ctx context.Context, detail *domain.ProductDetail)
	Invalidate(ctx context.Context, productID string)
}

// Caller is the already-authenticated identity an operation runs for.
// Authorization beyond ownership checks happens in the HTTP layer.
type Caller struct {
	UserID string
	Admin  bool
}

// CanActFor reports whether the caller may act on a resource owned by userID.
func (c Caller) CanActFor(userID string) bool {
	return c.Admin || (c.UserID != "" && c.UserID == userID)
}
