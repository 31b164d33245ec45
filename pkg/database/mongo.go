package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	AppName        string
	Retry          RetryPolicy
}

// DefaultMongoConfig returns defaults for a local MongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "storefront",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    50,
		AppName:        "storefront",
		Retry:          DefaultRetryPolicy(),
	}
}

// NewMongoClient connects to MongoDB and pings the primary, retrying per
// cfg.Retry. A nil monitor leaves command monitoring off; a nil logger
// silences retry warnings.
func NewMongoClient(ctx context.Context, cfg MongoConfig, monitor *event.CommandMonitor, logger *slog.Logger) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if monitor != nil {
		opts.SetMonitor(monitor)
	}

	return connectWithRetry(ctx, cfg.Retry, logger, "mongo", func(ctx context.Context) (*mongo.Client, error) {
		return connectAndPing(ctx, opts, timeout)
	})
}

func connectAndPing(ctx context.Context, opts *options.ClientOptions, timeout time.Duration) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = DisconnectMongo(context.Background(), client)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// DisconnectMongo closes the client, waiting at most five seconds.
func DisconnectMongo(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// MongoPinger returns a health check that pings the primary.
func MongoPinger(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
