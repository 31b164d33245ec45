package http

import (
	"log/slog"
	"net/http"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/httputil"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// OrderLineRequest is one product line of an order.
type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the JSON request body for placing an order.
type CreateOrderRequest struct {
	Products    []OrderLineRequest `json:"products" validate:"required,min=1,dive"`
	TotalAmount float64            `json:"totalAmount" validate:"required,gt=0"`
}

// UpdateOrderStatusRequest is the JSON request body for moving an order to a
// new status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,orderstatus"`
}

// --- Response DTOs ---

// OrderResponse acknowledges an order change.
type OrderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

// --- Handlers ---

// CreateOrder handles POST /api/orders
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order to place"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	lines := make([]domain.OrderLine, len(req.Products))
	for i, l := range req.Products {
		lines[i] = domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	order, err := h.service.CreateOrder(r.Context(), &service.CreateOrderInput{
		UserID:      callerFromRequest(r).UserID,
		Products:    lines,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, OrderResponse{
		Message: "Order placed successfully",
		Order:   order,
	})
}

// ListOrders handles GET /api/orders
// @Summary List all orders
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Failure 403 {object} httputil.ErrorResponse
// @Router /api/orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

// ListUserOrders handles GET /api/orders/user/{userId}
// @Summary List a user's orders
// @Tags orders
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} domain.Order
// @Failure 403 {object} httputil.ErrorResponse
// @Router /api/orders/user/{userId} [get]
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.PathParam(w, r, "userId", "user id")
	if !ok {
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), callerFromRequest(r), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /api/orders/{id}
// @Summary Change an order's status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body UpdateOrderStatusRequest true "New status"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "order id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OrderResponse{
		Message: "Order updated",
		Order:   order,
	})
}
