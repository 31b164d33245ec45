// Package mongodb implements the repositories on MongoDB.
package mongodb

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cartflow/storefront/internal/domain"
	apperrors "github.com/cartflow/storefront/pkg/errors"
)

// Collection names.
const (
	CollectionProducts = "products"
	CollectionReviews  = "reviews"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	OldPrice    float64            `bson:"oldPrice"`
	Image       string             `bson:"image"`
	Color       string             `bson:"color"`
	Rating      float64            `bson:"rating"`
	Author      primitive.ObjectID `bson:"author"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *productDocument) toDomain() domain.Product {
	p := domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Price:       d.Price,
		OldPrice:    d.OldPrice,
		Image:       d.Image,
		Color:       d.Color,
		Rating:      d.Rating,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if !d.Author.IsZero() {
		p.AuthorID = d.Author.Hex()
	}
	return p
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Comment   string             `bson:"comment"`
	Rating    float64            `bson:"rating"`
	UserID    primitive.ObjectID `bson:"userId"`
	ProductID primitive.ObjectID `bson:"productId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *reviewDocument) toDomain() domain.Review {
	return domain.Review{
		ID:        d.ID.Hex(),
		Comment:   d.Comment,
		Rating:    d.Rating,
		UserID:    d.UserID.Hex(),
		ProductID: d.ProductID.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type authorDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
}

func (d *authorDocument) toDomain() domain.Author {
	return domain.Author{ID: d.ID.Hex(), Username: d.Username, Email: d.Email}
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
	}
}

type orderLineDocument struct {
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
}

type orderDocument struct {
	ID          primitive.ObjectID  `bson:"_id"`
	User        primitive.ObjectID  `bson:"user"`
	Products    []orderLineDocument `bson:"products"`
	TotalAmount float64             `bson:"totalAmount"`
	Status      string              `bson:"status"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func (d *orderDocument) toDomain() domain.Order {
	lines := make([]domain.OrderLine, len(d.Products))
	for i, l := range d.Products {
		lines[i] = domain.OrderLine{ProductID: l.Product.Hex(), Quantity: l.Quantity}
	}
	return domain.Order{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		Products:    lines,
		TotalAmount: d.TotalAmount,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// objectID parses a hex identifier, reporting malformed values as invalid input.
func objectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidInput(fmt.Sprintf("invalid %s id: %q", resource, id))
	}
	return oid, nil
}

// notFoundOr maps a missing document to NotFound and any other driver error
// to a persistence failure.
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound(resource, id)
	}
	return apperrors.Persistence(err)
}

// now returns the current time at the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
