package service

import (
	"context"
	"fmt"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
)

// attachAuthors resolves the public author projection of every product and
// review in one lookup. Authors that cannot be resolved are left nil.
func attachAuthors(ctx context.Context, users repository.UserRepository, products []domain.Product, reviews []domain.Review) error {
	seen := make(map[string]struct{}, len(products)+len(reviews))
	ids := make([]string, 0, len(products)+len(reviews))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i := range products {
		add(products[i].AuthorID)
	}
	for i := range reviews {
		add(reviews[i].UserID)
	}
	if len(ids) == 0 {
		return nil
	}

	authors, err := users.ResolveAuthors(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve authors: %w", err)
	}

	for i := range products {
		products[i].Author = lookupAuthor(authors, products[i].AuthorID)
	}
	for i := range reviews {
		reviews[i].Author = lookupAuthor(authors, reviews[i].UserID)
	}
	return nil
}

func lookupAuthor(authors map[string]domain.Author, id string) *domain.Author {
	a, ok := authors[id]
	if !ok {
		return nil
	}
	return &a
}
