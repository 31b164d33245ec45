package http

import (
	"log/slog"
	"net/http"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/httputil"
	"github.com/cartflow/storefront/pkg/middleware"
	"github.com/cartflow/storefront/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service         *service.ProductService
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, defaultPageSize, maxPageSize int, logger *slog.Logger) *ProductHandler {
	if defaultPageSize < 1 {
		defaultPageSize = pagination.DefaultLimit
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = pagination.MaxLimit
	}
	return &ProductHandler{
		service:         svc,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=3"`
	Category    string  `json:"category" validate:"omitempty,category"`
	Description string  `json:"description" validate:"required,min=10"`
	Price       float64 `json:"price" validate:"gte=0"`
	OldPrice    float64 `json:"oldPrice" validate:"gte=0"`
	Image       string  `json:"image" validate:"required"`
	Color       string  `json:"color" validate:"omitempty,productcolor"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
// Rating and author are derived and cannot be set.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=3"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Description *string  `json:"description" validate:"omitempty,min=10"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	OldPrice    *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Image       *string  `json:"image" validate:"omitempty,min=1"`
	Color       *string  `json:"color" validate:"omitempty,productcolor"`
}

func (req UpdateProductRequest) patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		Image:       req.Image,
		Color:       req.Color,
	}
}

// --- Response DTOs ---

// ProductUpdatedResponse is returned after a successful update.
type ProductUpdatedResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

// ProductDeletedResponse is returned after a product and its reviews are removed.
type ProductDeletedResponse struct {
	Message        string `json:"message"`
	ReviewsDeleted int64  `json:"reviewsDeleted"`
}

// --- Handlers ---

// ListProducts handles GET /api/products
// @Summary List products
// @Description Returns one page of the catalog, newest first, with totals
// @Tags products
// @Produce json
// @Param category query string false "Category or all"
// @Param color query string false "Color or all"
// @Param minPrice query number false "Lower price bound, applied only with maxPrice"
// @Param maxPrice query number false "Upper price bound, applied only with minPrice"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} domain.CatalogPage
// @Failure 400 {object} httputil.ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	result, err := h.service.ListProducts(r.Context(), service.CatalogQuery{
		Category: q.Get("category"),
		Color:    q.Get("color"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Page:     page,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/products/{id}
// @Summary Get a product with its reviews
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.ProductDetail
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "product id")
	if !ok {
		return
	}

	detail, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

// RelatedProducts handles GET /api/products/related/{id}
// @Summary List products related to a product
// @Description Other products sharing a name word or the category, newest first
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {array} domain.Product
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/products/related/{id} [get]
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "product id")
	if !ok {
		return
	}

	related, err := h.service.RelatedProducts(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, related)
}

// CreateProduct handles POST /api/products/create-product
// @Summary Create a product
// @Description The authenticated caller becomes the author
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product to create"
// @Success 201 {object} domain.Product
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Router /api/products/create-product [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		OldPrice:    req.OldPrice,
		Image:       req.Image,
		Color:       req.Color,
		AuthorID:    middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /api/products/update-product/{id}
// @Summary Update product fields
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} ProductUpdatedResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/products/update-product/{id} [patch]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "product id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req.patch())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ProductUpdatedResponse{
		Message: "Product updated successfully",
		Product: product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
// @Summary Delete a product and its reviews
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductDeletedResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "product id")
	if !ok {
		return
	}

	n, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ProductDeletedResponse{
		Message:        "Product deleted successfully",
		ReviewsDeleted: n,
	})
}
