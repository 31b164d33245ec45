package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/repository"
	"github.com/cartflow/storefront/pkg/database"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// newestFirst is the listing order; _id breaks ties between equal timestamps.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// ProductRepository implements repository.ProductRepository using MongoDB.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(CollectionProducts)}
}

// Insert stores a new product and assigns its identifier and timestamps.
func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, CollectionProducts, "insert")
	defer func() { end(err) }()

	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Image:       p.Image,
		Color:       p.Color,
		Rating:      p.Rating,
		CreatedAt:   now(),
	}
	doc.UpdatedAt = doc.CreatedAt
	if p.AuthorID != "" {
		if doc.Author, err = objectID("author", p.AuthorID); err != nil {
			return err
		}
	}

	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return apperrors.Persistence(fmt.Errorf("insert product: %w", err))
	}

	p.ID = doc.ID.Hex()
	p.CreatedAt = doc.CreatedAt
	p.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	oid, err := objectID("product", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionProducts, "findOne")
	defer func() { end(err) }()

	var doc productDocument
	if err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	p := doc.toDomain()
	return &p, nil
}

// Find returns the window [skip, skip+limit) of products matching the filter.
func (r *ProductRepository) Find(ctx context.Context, filter repository.ProductFilter, skip, limit int64) (_ []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, CollectionProducts, "find")
	defer func() { end(err) }()

	opts := options.Find().SetSort(newestFirst).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, productQuery(filter), opts)
}

// Count returns the number of products matching the filter.
func (r *ProductRepository) Count(ctx context.Context, filter repository.ProductFilter) (_ int64, err error) {
	ctx, end := database.TraceQuery(ctx, CollectionProducts, "count")
	defer func() { end(err) }()

	n, err := r.coll.CountDocuments(ctx, productQuery(filter))
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("count products: %w", err))
	}
	return n, nil
}

// FindRelated returns other products whose name matches the pattern
// case-insensitively or whose category equals the filter category.
func (r *ProductRepository) FindRelated(ctx context.Context, filter repository.RelatedFilter) (_ []domain.Product, err error) {
	exclude, err := objectID("product", filter.ExcludeID)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionProducts, "findRelated")
	defer func() { end(err) }()

	opts := options.Find().SetSort(newestFirst)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	return r.find(ctx, relatedQuery(exclude, filter), opts)
}

func (r *ProductRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.Product, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("find products: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decode products: %w", err))
	}

	products := make([]domain.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toDomain()
	}
	return products, nil
}

// Update applies a patch to an existing product and returns the result.
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (_ *domain.Product, err error) {
	oid, err := objectID("product", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionProducts, "update")
	defer func() { end(err) }()

	set := patchSet(patch)
	set["updatedAt"] = now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	p := doc.toDomain()
	return &p, nil
}

// SetRating stores a recomputed rating on the product.
func (r *ProductRepository) SetRating(ctx context.Context, id string, rating float64) (err error) {
	oid, err := objectID("product", id)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, CollectionProducts, "setRating")
	defer func() { end(err) }()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("set product rating: %w", err))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// Delete removes a product and returns the removed record.
func (r *ProductRepository) Delete(ctx context.Context, id string) (_ *domain.Product, err error) {
	oid, err := objectID("product", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionProducts, "delete")
	defer func() { end(err) }()

	var doc productDocument
	if err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	p := doc.toDomain()
	return &p, nil
}

func productQuery(f repository.ProductFilter) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Color != "" {
		q["color"] = f.Color
	}
	if f.Price != nil {
		q["price"] = bson.M{"$gte": f.Price.Min, "$lte": f.Price.Max}
	}
	return q
}

func relatedQuery(exclude primitive.ObjectID, f repository.RelatedFilter) bson.M {
	or := bson.A{bson.M{"category": f.Category}}
	if f.NamePattern != "" {
		or = append(or, bson.M{"name": primitive.Regex{Pattern: f.NamePattern, Options: "i"}})
	}
	return bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": or,
	}
}

func patchSet(p domain.ProductPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.OldPrice != nil {
		set["oldPrice"] = *p.OldPrice
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Color != nil {
		set["color"] = *p.Color
	}
	return set
}
