package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	UserID      string
	Products    []domain.OrderLine
	TotalAmount float64
}

// OrderService implements the business logic for order operations.
type OrderService struct {
	orders   repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrder places a pending order for the caller.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user is required")
	}
	if len(input.Products) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one product")
	}
	for i, line := range input.Products {
		if line.ProductID == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("products[%d]: product is required", i))
		}
		if line.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("products[%d]: quantity must be at least 1", i))
		}
	}
	if input.TotalAmount <= 0 {
		return nil, apperrors.InvalidInput("totalAmount must be positive")
	}

	order := &domain.Order{
		UserID:      input.UserID,
		Products:    input.Products,
		TotalAmount: input.TotalAmount,
		Status:      domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("customer_id", order.UserID),
		slog.Float64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListUserOrders returns the orders of a user. Callers may only list their
// own orders unless they are admins.
func (s *OrderService) ListUserOrders(ctx context.Context, caller Caller, userID string) ([]domain.Order, error) {
	if !caller.CanActFor(userID) {
		return nil, apperrors.Forbidden("cannot list another user's orders")
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("status", order.Status),
	)

	return order, nil
}
