// Package seed fills a storefront store with demo accounts, products and
// reviews for local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/service"
)

// UserWriter stores user accounts. Saving an email that already exists
// updates that account.
type UserWriter interface {
	Save(ctx context.Context, user *domain.User) error
}

// Options controls how much demo data is generated.
type Options struct {
	Shoppers          int
	ReviewsPerProduct int
	// RandSeed makes review selection reproducible.
	RandSeed uint64
}

// DefaultOptions returns the options used by the seed command.
func DefaultOptions() Options {
	return Options{Shoppers: 5, ReviewsPerProduct: 3, RandSeed: 42}
}

// Result summarizes a seeding run.
type Result struct {
	Admin    domain.User
	Shoppers []domain.User
	Products []domain.Product
	Reviews  int
}

// Seeder writes demo data through the storefront services so that ratings
// and events are produced exactly as for API traffic.
type Seeder struct {
	users    UserWriter
	products *service.ProductService
	reviews  *service.ReviewService
	logger   *slog.Logger
}

// New creates a seeder.
func New(users UserWriter, products *service.ProductService, reviews *service.ReviewService, logger *slog.Logger) *Seeder {
	return &Seeder{users: users, products: products, reviews: reviews, logger: logger}
}

type productDef struct {
	name        string
	description string
	category    string
	color       string
	price       float64
	oldPrice    float64
}

var catalog = []productDef{
	{"Wireless Bluetooth Headphones", "Noise-cancelling over-ear headphones with 30-hour battery life.", domain.CategoryElectronics, domain.ColorBlack, 79.99, 99.99},
	{"USB-C Hub Adapter", "7-in-1 hub with 4K HDMI output, three USB 3.0 ports and card reader.", domain.CategoryElectronics, domain.ColorWhite, 34.99, 0},
	{"Mechanical Keyboard", "Backlit mechanical keyboard with tactile switches and wrist rest.", domain.CategoryElectronics, domain.ColorBlack, 89.99, 109.99},
	{"Classic Cotton T-Shirt", "Everyday tee made from organic cotton with a relaxed fit.", domain.CategoryFashion, domain.ColorWhite, 24.99, 0},
	{"Red Running Shoes", "Lightweight running shoes with responsive cushioning and mesh upper.", domain.CategoryFashion, domain.ColorRed, 89.99, 119.99},
	{"Wool Sweater", "Merino wool pullover with ribbed cuffs, made for layering.", domain.CategoryFashion, domain.ColorBlue, 59.99, 0},
	{"Cast Iron Skillet", "Pre-seasoned 12-inch skillet, oven safe and built to last.", domain.CategoryHome, domain.ColorBlack, 34.99, 0},
	{"Ceramic Mug Set", "Four glazed stoneware mugs, microwave and dishwasher safe.", domain.CategoryHome, domain.ColorRed, 29.99, 39.99},
	{"The Go Programming Language", "A thorough guide to Go covering the fundamentals and concurrency.", domain.CategoryBooks, domain.ColorWhite, 39.99, 0},
	{"Designing Data-Intensive Applications", "The ideas behind reliable, scalable and maintainable data systems.", domain.CategoryBooks, domain.ColorBlue, 44.99, 0},
	{"Wooden Building Blocks", "One hundred sanded hardwood blocks in assorted shapes.", domain.CategoryToys, domain.ColorGreen, 27.50, 0},
	{"Remote Control Car", "Rechargeable off-road car with two-speed control and spare tires.", domain.CategoryToys, domain.ColorRed, 49.99, 64.99},
	{"Yoga Mat", "Non-slip 6mm exercise mat with alignment markings and strap.", domain.CategorySports, domain.ColorGreen, 29.99, 0},
	{"Trail Running Shoes", "Grippy trail shoes with rock plate and waterproof lining.", domain.CategorySports, domain.ColorBlue, 109.99, 0},
	{"Hydrating Face Serum", "Lightweight hyaluronic serum for daily hydration.", domain.CategoryBeauty, domain.ColorWhite, 19.99, 24.99},
}

var comments = []string{
	"Exactly as described, would buy again.",
	"Good value for the price.",
	"Arrived quickly and works well.",
	"Decent, but the finish could be better.",
	"Not what I expected.",
	"Absolutely love it!",
}

// Run creates an admin, the shoppers, the demo catalog authored by the admin
// and a handful of reviews per product. Running it twice adds a second copy
// of the catalog but reuses the accounts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	admin := domain.User{Username: "admin", Email: "admin@storefront.test", Role: domain.RoleAdmin}
	if err := s.users.Save(ctx, &admin); err != nil {
		return nil, fmt.Errorf("save admin: %w", err)
	}
	res.Admin = admin
	s.logger.InfoContext(ctx, "seeded admin", slog.String("id", admin.ID), slog.String("email", admin.Email))

	for i := 1; i <= opts.Shoppers; i++ {
		u := domain.User{
			Username: fmt.Sprintf("shopper%d", i),
			Email:    fmt.Sprintf("shopper%d@storefront.test", i),
			Role:     domain.RoleUser,
		}
		if err := s.users.Save(ctx, &u); err != nil {
			return nil, fmt.Errorf("save shopper %d: %w", i, err)
		}
		res.Shoppers = append(res.Shoppers, u)
	}
	s.logger.InfoContext(ctx, "seeded shoppers", slog.Int("count", len(res.Shoppers)))

	rng := rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed))
	for _, def := range catalog {
		p, err := s.products.CreateProduct(ctx, &service.CreateProductInput{
			Name:        def.name,
			Category:    def.category,
			Description: def.description,
			Price:       def.price,
			OldPrice:    def.oldPrice,
			Image:       imageURL(def.name),
			Color:       def.color,
			AuthorID:    admin.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("create product %q: %w", def.name, err)
		}

		n, err := s.reviewProduct(ctx, rng, p.ID, res.Shoppers, opts.ReviewsPerProduct)
		if err != nil {
			return nil, fmt.Errorf("review product %q: %w", def.name, err)
		}
		res.Reviews += n
		res.Products = append(res.Products, *p)
	}
	s.logger.InfoContext(ctx, "seeded catalog",
		slog.Int("products", len(res.Products)),
		slog.Int("reviews", res.Reviews),
	)

	return res, nil
}

// reviewProduct posts up to perProduct reviews from distinct shoppers.
func (s *Seeder) reviewProduct(ctx context.Context, rng *rand.Rand, productID string, shoppers []domain.User, perProduct int) (int, error) {
	n := min(perProduct, len(shoppers))
	for i, idx := range rng.Perm(len(shoppers))[:n] {
		_, _, err := s.reviews.CreateReview(ctx, &service.CreateReviewInput{
			ProductID: productID,
			UserID:    shoppers[idx].ID,
			Comment:   comments[rng.IntN(len(comments))],
			Rating:    float64(1 + rng.IntN(int(domain.MaxRating))),
		})
		if err != nil {
			return i, err
		}
	}
	return n, nil
}

func imageURL(name string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return "https://picsum.photos/seed/" + slug + "/800/800"
}
