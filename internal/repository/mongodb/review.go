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

// ReviewRepository implements repository.ReviewRepository using MongoDB.
type ReviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository creates a new MongoDB-backed review repository.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(CollectionReviews)}
}

// Create stores a new review and assigns its identifier and timestamps.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	doc := reviewDocument{
		ID:        primitive.NewObjectID(),
		Comment:   review.Comment,
		Rating:    review.Rating,
		CreatedAt: now(),
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.UserID, err = objectID("user", review.UserID); err != nil {
		return err
	}
	if doc.ProductID, err = objectID("product", review.ProductID); err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, CollectionReviews, "insert")
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return apperrors.Persistence(fmt.Errorf("insert review: %w", err))
	}

	review.ID = doc.ID.Hex()
	review.CreatedAt = doc.CreatedAt
	review.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	oid, err := objectID("review", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionReviews, "findOne")
	defer func() { end(err) }()

	var doc reviewDocument
	if err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "review", id)
	}
	rv := doc.toDomain()
	return &rv, nil
}

// Update applies a patch to an existing review and returns the result.
func (r *ReviewRepository) Update(ctx context.Context, id string, patch domain.ReviewPatch) (_ *domain.Review, err error) {
	oid, err := objectID("review", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionReviews, "update")
	defer func() { end(err) }()

	set := bson.M{"updatedAt": now()}
	if patch.Comment != nil {
		set["comment"] = *patch.Comment
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc reviewDocument
	if err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "review", id)
	}
	rv := doc.toDomain()
	return &rv, nil
}

// Delete removes a single review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	oid, err := objectID("review", id)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, CollectionReviews, "delete")
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("delete review: %w", err))
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// FindByProduct returns every review of a product, newest first.
func (r *ReviewRepository) FindByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	oid, err := objectID("product", productID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, "findByProduct", bson.M{"productId": oid})
}

// FindByUser returns every review written by a user, newest first.
func (r *ReviewRepository) FindByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	oid, err := objectID("user", userID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, "findByUser", bson.M{"userId": oid})
}

func (r *ReviewRepository) find(ctx context.Context, operation string, query bson.M) (_ []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, CollectionReviews, operation)
	defer func() { end(err) }()

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("find reviews: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decode reviews: %w", err))
	}

	reviews := make([]domain.Review, len(docs))
	for i := range docs {
		reviews[i] = docs[i].toDomain()
	}
	return reviews, nil
}

// DeleteByProduct removes every review of a product.
func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID string) (_ int64, err error) {
	oid, err := objectID("product", productID)
	if err != nil {
		return 0, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionReviews, "deleteByProduct")
	defer func() { end(err) }()

	res, err := r.coll.DeleteMany(ctx, bson.M{"productId": oid})
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("delete product reviews: %w", err))
	}
	return res.DeletedCount, nil
}

// Count returns the total number of reviews.
func (r *ReviewRepository) Count(ctx context.Context) (_ int64, err error) {
	ctx, end := database.TraceQuery(ctx, CollectionReviews, "count")
	defer func() { end(err) }()

	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("count reviews: %w", err))
	}
	return n, nil
}
