package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/pkg/database"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using MongoDB.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates a new MongoDB-backed order repository.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(CollectionOrders)}
}

// Create stores a new order and assigns its identifier and timestamps.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (err error) {
	doc := orderDocument{
		ID:          primitive.NewObjectID(),
		Products:    make([]orderLineDocument, len(order.Products)),
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   now(),
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.User, err = objectID("user", order.UserID); err != nil {
		return err
	}
	for i, l := range order.Products {
		pid, perr := objectID("product", l.ProductID)
		if perr != nil {
			return perr
		}
		doc.Products[i] = orderLineDocument{Product: pid, Quantity: l.Quantity}
	}

	ctx, end := database.TraceQuery(ctx, CollectionOrders, "insert")
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return apperrors.Persistence(fmt.Errorf("insert order: %w", err))
	}

	order.ID = doc.ID.Hex()
	order.CreatedAt = doc.CreatedAt
	order.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	oid, err := objectID("order", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionOrders, "findOne")
	defer func() { end(err) }()

	var doc orderDocument
	if err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	o := doc.toDomain()
	return &o, nil
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, "find", bson.M{})
}

// ListByUser returns the orders placed by a user, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	oid, err := objectID("user", userID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, "findByUser", bson.M{"user": oid})
}

func (r *OrderRepository) find(ctx context.Context, operation string, query bson.M) (_ []domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, CollectionOrders, operation)
	defer func() { end(err) }()

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("find orders: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decode orders: %w", err))
	}

	orders := make([]domain.Order, len(docs))
	for i := range docs {
		orders[i] = docs[i].toDomain()
	}
	return orders, nil
}

// UpdateStatus sets the status of an order and returns the result.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (_ *domain.Order, err error) {
	oid, err := objectID("order", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionOrders, "updateStatus")
	defer func() { end(err) }()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc orderDocument
	if err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "order", id)
	}
	o := doc.toDomain()
	return &o, nil
}
