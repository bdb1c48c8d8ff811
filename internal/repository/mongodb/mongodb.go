// Package mongodb stores users and posts in MongoDB. Comments are embedded
// in their post document and appended with $push.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/msomdec/postboard/internal/domain"
)

const (
	usersCollection = "users"
	postsCollection = "posts"

	emailIndex    = "uniq_email"
	googleIDIndex = "uniq_google_id"
)

// ConnectOptions controls how New waits for the server to become reachable.
type ConnectOptions struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries uint64
	// BaseDelay is the first backoff interval; it doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration
}

// DefaultConnectOptions retries for roughly half a minute before giving up.
var DefaultConnectOptions = ConnectOptions{
	MaxRetries: 6,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   8 * time.Second,
}

// DB wraps a MongoDB client bound to one database.
type DB struct {
	client *mongo.Client
	db     *mongo.Database

	users *userRepo
	posts *postRepo
}

// New connects to uri and pings the primary, retrying with exponential
// backoff until it answers or the retry budget is spent.
func New(ctx context.Context, uri, database string, opts ConnectOptions) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	backoff := retry.NewExponential(opts.BaseDelay)
	backoff = retry.WithCappedDuration(opts.MaxDelay, backoff)
	backoff = retry.WithMaxRetries(opts.MaxRetries, backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			slog.Warn("mongodb not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongodb: %v", domain.ErrStoreUnavailable, err)
	}

	db := &DB{client: client, db: client.Database(database)}
	db.users = &userRepo{coll: db.db.Collection(usersCollection)}
	db.posts = &postRepo{coll: db.db.Collection(postsCollection)}
	return db, nil
}

// Migrate creates the indexes that enforce identity uniqueness. Partial
// filters leave documents without the field unconstrained.
func (db *DB) Migrate(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName(emailIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().
				SetName(googleIDIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"googleId": bson.M{"$type": "string"}}),
		},
	}
	if _, err := db.db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	postIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("author_created")},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetName("created")},
	}
	if _, err := db.db.Collection(postsCollection).Indexes().CreateMany(ctx, postIndexes); err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}

	slog.Info("mongodb indexes ensured", "database", db.db.Name())
	return nil
}

// Ping reports whether the primary is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *DB) Users() domain.UserRepository {
	return db.users
}

func (db *DB) Posts() domain.PostRepository {
	return db.posts
}
