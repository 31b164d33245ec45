package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cartflow/storefront/internal/domain"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// UserRepository implements repository.UserRepository over a Store.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// ResolveAuthor returns the author projection of a single user.
func (r *UserRepository) ResolveAuthor(_ context.Context, id string) (*domain.Author, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return u.Author(), nil
}

// ResolveAuthors returns the author projections of the known users among ids.
func (r *UserRepository) ResolveAuthors(_ context.Context, ids []string) (map[string]domain.Author, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[string]domain.Author, len(ids))
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			out[id] = *u.Author()
		}
	}
	return out, nil
}

// Save stores the user, replacing any existing account with the same email.
// The user's identifier and timestamps are set from the stored record.
func (r *UserRepository) Save(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, u := range r.store.users {
		if u.Email == user.Email {
			user.ID = id
			user.CreatedAt = u.CreatedAt
			break
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.store.tick()
	}
	r.store.users[user.ID] = *user
	return nil
}
