// Package memory provides map-backed repositories used for local development
// and tests. All repositories created from one Store share its state.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartflow/storefront/internal/domain"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	reviews  map[string]domain.Review
	users    map[string]domain.User
	orders   map[string]domain.Order
	last     time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		reviews:  make(map[string]domain.Review),
		users:    make(map[string]domain.User),
		orders:   make(map[string]domain.Order),
	}
}

// AddUser stores a user account and returns its identifier.
func (s *Store) AddUser(user domain.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.tick()
	}
	s.users[user.ID] = user
	return user.ID
}

// WithinTransaction runs fn directly. The store offers no rollback, so a
// failing fn leaves earlier writes in place.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// tick returns a strictly increasing UTC timestamp so that creation order is
// reflected by CreatedAt. Callers must hold the write lock.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

// newestFirst orders by creation time descending, then identifier descending.
func newestFirst(aCreated, bCreated time.Time, aID, bID string) int {
	if c := bCreated.Compare(aCreated); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func sortProducts(products []domain.Product) {
	slices.SortFunc(products, func(a, b domain.Product) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

func sortReviews(reviews []domain.Review) {
	slices.SortFunc(reviews, func(a, b domain.Review) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}

func sortOrders(orders []domain.Order) {
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
}
