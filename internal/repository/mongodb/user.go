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

// authorProjection limits user reads to public fields.
var authorProjection = bson.D{{Key: "username", Value: 1}, {Key: "email", Value: 1}}

// UserRepository implements repository.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(CollectionUsers)}
}

// ResolveAuthor returns the author projection of a single user.
func (r *UserRepository) ResolveAuthor(ctx context.Context, id string) (_ *domain.Author, err error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, CollectionUsers, "findOne")
	defer func() { end(err) }()

	var doc authorDocument
	opts := options.FindOne().SetProjection(authorProjection)
	if err = r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	a := doc.toDomain()
	return &a, nil
}

// ResolveAuthors returns the author projections of the known users among ids.
// Malformed identifiers cannot match a user and are skipped.
func (r *UserRepository) ResolveAuthors(ctx context.Context, ids []string) (_ map[string]domain.Author, err error) {
	out := make(map[string]domain.Author, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, perr := primitive.ObjectIDFromHex(id); perr == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return out, nil
	}

	ctx, end := database.TraceQuery(ctx, CollectionUsers, "findAuthors")
	defer func() { end(err) }()

	opts := options.Find().SetProjection(authorProjection)
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("find authors: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []authorDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decode authors: %w", err))
	}
	for i := range docs {
		out[docs[i].ID.Hex()] = docs[i].toDomain()
	}
	return out, nil
}

// Save upserts the user keyed by email. An existing account keeps its
// identifier and creation time; its username and role are overwritten. A
// username held by another account is reported as already existing.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (err error) {
	ctx, end := database.TraceQuery(ctx, CollectionUsers, "upsert")
	defer func() { end(err) }()

	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	update := bson.M{
		"$set": bson.M{"username": user.Username, "role": role},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"email": user.Email}, update, opts).Decode(&doc)
	switch {
	case mongo.IsDuplicateKeyError(err):
		return apperrors.AlreadyExists("user", "username", user.Username)
	case err != nil:
		return apperrors.Persistence(fmt.Errorf("save user: %w", err))
	}

	*user = doc.toDomain()
	return nil
}
