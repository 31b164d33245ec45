// Command seed loads demo accounts, products and reviews into the configured
// MongoDB database and prints bearer tokens for the seeded accounts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cartflow/storefront/internal/cache"
	"github.com/cartflow/storefront/internal/config"
	"github.com/cartflow/storefront/internal/event"
	"github.com/cartflow/storefront/internal/repository/mongodb"
	"github.com/cartflow/storefront/internal/seed"
	"github.com/cartflow/storefront/internal/service"
	pkgconfig "github.com/cartflow/storefront/pkg/config"
	"github.com/cartflow/storefront/pkg/database"
	"github.com/cartflow/storefront/pkg/logger"
	"github.com/cartflow/storefront/pkg/middleware"
)

// seedConfig holds the knobs specific to the seed command.
type seedConfig struct {
	Shoppers          int           `env:"SHOPPERS" envDefault:"5"`
	ReviewsPerProduct int           `env:"REVIEWS_PER_PRODUCT" envDefault:"3"`
	RandSeed          uint64        `env:"RAND" envDefault:"42"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

func main() {
	log := logger.New("storefront-seed", "info")
	if err := run(log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete")
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreMongo {
		return fmt.Errorf("seed requires STORE_DRIVER=%s, got %q", config.StoreMongo, cfg.StoreDriver)
	}

	var sc seedConfig
	if err := pkgconfig.LoadWithPrefix(&sc, "SEED_"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoCfg := database.DefaultMongoConfig()
	mongoCfg.URI = cfg.MongoURI
	mongoCfg.Database = cfg.MongoDatabase
	mongoCfg.ConnectTimeout = cfg.MongoConnectTimeout

	client, err := database.NewMongoClient(ctx, mongoCfg, nil, log)
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	defer func() {
		if err := database.DisconnectMongo(context.Background(), client); err != nil {
			log.Error("failed to disconnect mongo", slog.String("error", err.Error()))
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	users := mongodb.NewUserRepository(db)
	stores := service.Stores{
		Products: mongodb.NewProductRepository(db),
		Reviews:  mongodb.NewReviewRepository(db),
		Users:    users,
		Orders:   mongodb.NewOrderRepository(db),
		Tx:       mongodb.NewTransactor(client, cfg.MongoTransactions),
	}
	producer := event.NewProducer(event.NopPublisher{}, log)
	ratings := service.NewRatingAggregator(stores.Products, stores.Reviews, producer, log)
	products := service.NewProductService(stores, ratings, cache.Nop{}, producer, cfg.RelatedProductsLimit, log)
	reviews := service.NewReviewService(stores, ratings, cache.Nop{}, producer, log)

	res, err := seed.New(users, products, reviews, log).Run(ctx, seed.Options{
		Shoppers:          sc.Shoppers,
		ReviewsPerProduct: sc.ReviewsPerProduct,
		RandSeed:          sc.RandSeed,
	})
	if err != nil {
		return err
	}

	accounts := append([]seedAccount{{res.Admin.ID, res.Admin.Email, res.Admin.Role}}, shopperAccounts(res)...)
	for _, a := range accounts {
		token, err := middleware.SignToken(cfg.JWTSecret, a.id, a.role, sc.TokenTTL)
		if err != nil {
			return fmt.Errorf("sign token for %s: %w", a.email, err)
		}
		log.Info("seeded account",
			slog.String("email", a.email),
			slog.String("role", a.role),
			slog.String("token", token),
		)
	}
	return nil
}

type seedAccount struct {
	id, email, role string
}

func shopperAccounts(res *seed.Result) []seedAccount {
	out := make([]seedAccount, len(res.Shoppers))
	for i, u := range res.Shoppers {
		out[i] = seedAccount{u.ID, u.Email, u.Role}
	}
	return out
}
