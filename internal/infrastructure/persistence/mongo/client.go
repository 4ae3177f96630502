// Package mongo implements the outbound repositories on MongoDB.
// Multi-document writes run in transactions, so the server must be a
// replica set (a single-node one is enough).
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	recipesCollection      = "recipes"
	realizationsCollection = "realizations"
	mealsCollection        = "planned_meals"
	shoppingCollection     = "shopping_list_items"
	ingredientsCollection  = "ingredients"
)

// Store owns the client and the database handle
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect opens a client on uri, pings the primary and ensures indexes
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	if database == "" {
		database = "cookbook"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &Store{
		client: client,
		db:     client.Database(database),
		logger: logger.Named("mongo"),
	}
	if err := store.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	store.logger.Info("MongoDB store ready", zap.String("database", database))
	return store, nil
}

// EnsureIndexes creates the owner and ordering indexes plus the unique
// ingredient name
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		recipesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("user_created")},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}, Options: options.Index().SetName("parent")},
		},
		realizationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "realized_at", Value: -1}}, Options: options.Index().SetName("user_realized")},
		},
		mealsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetName("user_date")},
		},
		shoppingCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("user_created")},
		},
		ingredientsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_name")},
		},
	}

	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}
	return nil
}

// HealthCheck pings the primary
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// inTransaction runs fn in a session transaction
func (s *Store) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
