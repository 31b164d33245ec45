package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/cartflow/storefront/internal/domain"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository over a Store.
type OrderRepository struct {
	store *Store
}

// NewOrderRepository creates an order repository backed by store.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Create stores a new order and assigns its identifier and timestamps.
func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order.ID = uuid.New().String()
	order.CreatedAt = r.store.tick()
	order.UpdatedAt = order.CreatedAt

	stored := *order
	stored.Products = slices.Clone(order.Products)
	r.store.orders[order.ID] = stored
	return nil
}

// GetByID retrieves an order by its unique identifier.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	return &o, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(context.Context) ([]domain.Order, error) {
	return r.where(func(domain.Order) bool { return true }), nil
}

// ListByUser returns the orders placed by a user, newest first.
func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.where(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) where(keep func(domain.Order) bool) []domain.Order {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, o := range r.store.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return out
}

// UpdateStatus sets the status of an order and returns the result.
func (r *OrderRepository) UpdateStatus(_ context.Context, id, status string) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = r.store.tick()
	r.store.orders[id] = o
	return &o, nil
}
