package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository"
	"github.com/cartflow/storefront/internal/repository/memory"
	pkgkafka "github.com/cartflow/storefront/pkg/kafka"
)

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Find(ctx context.Context, filter repository.ProductFilter, skip, limit int64) ([]domain.Product, error) {
	args := m.Called(ctx, filter, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Count(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) FindRelated(ctx context.Context, filter repository.RelatedFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) SetRating(ctx context.Context, id string, rating float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) FindByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) FindByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Doubles ---

// passthroughTx runs the unit of work directly and records its use.
type passthroughTx struct {
	calls int
}

func (tx *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

type recordingCache struct {
	details     map[string]*domain.ProductDetail
	invalidated []string
	// ops logs cache calls in order, together with the writes of
	// hookedProducts sharing this cache.
	ops []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{details: make(map[string]*domain.ProductDetail)}
}

func (c *recordingCache) GetDetail(_ context.Context, id string) (*domain.ProductDetail, bool) {
	d, ok := c.details[id]
	return d, ok
}

func (c *recordingCache) SetDetail(_ context.Context, d *domain.ProductDetail) {
	c.details[d.Product.ID] = d
	c.ops = append(c.ops, "set_detail")
}

func (c *recordingCache) Invalidate(_ context.Context, id string) {
	delete(c.details, id)
	c.invalidated = append(c.invalidated, id)
	c.ops = append(c.ops, "invalidate")
}

// hookedProducts calls beforeWrite ahead of rating and delete writes so a
// test can interleave a read with them.
type hookedProducts struct {
	repository.ProductRepository
	cache       *recordingCache
	beforeWrite func(ctx context.Context, id string)
}

func (p *hookedProducts) SetRating(ctx context.Context, id string, rating float64) error {
	if p.beforeWrite != nil {
		p.beforeWrite(ctx, id)
	}
	err := p.ProductRepository.SetRating(ctx, id, rating)
	p.cache.ops = append(p.cache.ops, "set_rating")
	return err
}

func (p *hookedProducts) Delete(ctx context.Context, id string) (*domain.Product, error) {
	if p.beforeWrite != nil {
		p.beforeWrite(ctx, id)
	}
	product, err := p.ProductRepository.Delete(ctx, id)
	p.cache.ops = append(p.cache.ops, "delete")
	return product, err
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() (*event.Producer, *recordingPublisher) {
	pub := &recordingPublisher{}
	return event.NewProducer(pub, newTestLogger()), pub
}

// memoryFixture wires every service over one in-memory store.
type memoryFixture struct {
	store    *memory.Store
	stores   Stores
	ratings  *RatingAggregator
	products *ProductService
	reviews  *ReviewService
	orders   *OrderService
	cache    *recordingCache
	events   *recordingPublisher
}

func newMemoryFixture(relatedLimit int) *memoryFixture {
	f, _ := newHookedFixture(relatedLimit)
	return f
}

// newHookedFixture is newMemoryFixture with the product repository wrapped in
// hookedProducts.
func newHookedFixture(relatedLimit int) (*memoryFixture, *hookedProducts) {
	store := memory.NewStore()
	cache := newRecordingCache()
	hooked := &hookedProducts{ProductRepository: memory.NewProductRepository(store), cache: cache}
	stores := Stores{
		Products: hooked,
		Reviews:  memory.NewReviewRepository(store),
		Users:    memory.NewUserRepository(store),
		Orders:   memory.NewOrderRepository(store),
		Tx:       store,
	}
	producer, pub := newTestProducer()
	logger := newTestLogger()
	ratings := NewRatingAggregator(stores.Products, stores.Reviews, producer, logger)

	return &memoryFixture{
		store:    store,
		stores:   stores,
		ratings:  ratings,
		products: NewProductService(stores, ratings, cache, producer, relatedLimit, logger),
		reviews:  NewReviewService(stores, ratings, cache, producer, logger),
		orders:   NewOrderService(stores.Orders, producer, logger),
		cache:    cache,
		events:   pub,
	}, hooked
}

func (f *memoryFixture) addUser(name string) string {
	return f.store.AddUser(domain.User{Username: name, Email: name + "@example.com"})
}

func (f *memoryFixture) createProduct(ctx context.Context, authorID, name, category string, price float64) *domain.Product {
	p, err := f.products.CreateProduct(ctx, &CreateProductInput{
		Name:        name,
		Category:    category,
		Description: "a sufficiently long description",
		Price:       price,
		Image:       "https://img.example.com/" + name + ".png",
		AuthorID:    authorID,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func validCreateInput() *CreateProductInput {
	return &CreateProductInput{
		Name:        "Desk Lamp",
		Category:    domain.CategoryHome,
		Description: "A brass desk lamp with a warm light.",
		Price:       30,
		Image:       "https://img.example.com/lamp.png",
		Color:       domain.ColorWhite,
		AuthorID:    "author-1",
	}
}
