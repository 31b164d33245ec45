package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cartflow/storefront/internal/domain"
	pkgkafka "github.com/cartflow/storefront/pkg/kafka"
	"github.com/cartflow/storefront/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicProductCreated     = "storefront.product.created"
	TopicProductUpdated     = "storefront.product.updated"
	TopicProductDeleted     = "storefront.product.deleted"
	TopicRatingUpdated      = "storefront.product.rating_updated"
	TopicReviewCreated      = "storefront.review.created"
	TopicReviewUpdated      = "storefront.review.updated"
	TopicReviewDeleted      = "storefront.review.deleted"
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// Publisher sends an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// ProductData is the payload for product created and updated events.
type ProductData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Price    float64 `json:"price"`
	OldPrice float64 `json:"oldPrice"`
	Rating   float64 `json:"rating"`
	AuthorID string  `json:"authorId"`
}

// ProductDeletedData is the payload for a product deleted event.
type ProductDeletedData struct {
	ID             string `json:"id"`
	ReviewsDeleted int64  `json:"reviewsDeleted"`
}

// RatingUpdatedData is the payload for a rating updated event.
type RatingUpdatedData struct {
	ProductID   string  `json:"productId"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

// ReviewData is the payload for review events.
type ReviewData struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	UserID    string  `json:"userId"`
	Rating    float64 `json:"rating"`
}

// OrderData is the payload for order events.
type OrderData struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user"`
	Products    []domain.OrderLine `json:"products"`
	TotalAmount float64            `json:"totalAmount"`
	Status      string             `json:"status"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Color:    p.Color,
		Price:    p.Price,
		OldPrice: p.OldPrice,
		Rating:   p.Rating,
		AuthorID: p.AuthorID,
	}
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{ID: r.ID, ProductID: r.ProductID, UserID: r.UserID, Rating: r.Rating}
}

func orderData(o *domain.Order) OrderData {
	return OrderData{ID: o.ID, UserID: o.UserID, Products: o.Products, TotalAmount: o.TotalAmount, Status: o.Status}
}

// PublishProductCreated publishes a product created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string, reviewsDeleted int64) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct,
		ProductDeletedData{ID: productID, ReviewsDeleted: reviewsDeleted})
}

// PublishRatingUpdated publishes a rating updated event.
func (p *Producer) PublishRatingUpdated(ctx context.Context, productID string, rating float64, reviewCount int) error {
	return p.publish(ctx, TopicRatingUpdated, productID, AggregateTypeProduct,
		RatingUpdatedData{ProductID: productID, Rating: rating, ReviewCount: reviewCount})
}

// PublishReviewCreated publishes a review created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewUpdated publishes a review updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewDeleted publishes a review deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishOrderCreated publishes an order created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, orderData(order))
}

// PublishOrderStatusChanged publishes an order status changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, orderData(order))
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
