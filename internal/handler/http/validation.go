package http

import (
	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/pkg/validator"
)

// Request validation tags backed by the domain value lists.
const (
	tagCategory    = "category"
	tagColor       = "productcolor"
	tagOrderStatus = "orderstatus"
)

func init() {
	validator.MustRegisterSet(tagCategory, domain.ValidCategories()...)
	validator.MustRegisterSet(tagColor, domain.ValidColors()...)
	validator.MustRegisterSet(tagOrderStatus, domain.ValidOrderStatuses()...)
}
