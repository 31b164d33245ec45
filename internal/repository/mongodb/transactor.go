package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// Transactor runs units of work in a MongoDB multi-document transaction.
// Transactions need a replica set or sharded cluster; when disabled, fn runs
// without one and callers order their writes so that a retry completes the work.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

// NewTransactor creates a transactor for client.
func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

// WithinTransaction runs fn inside a transaction. The driver retries fn on
// transient transaction errors.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("start session: %w", err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
