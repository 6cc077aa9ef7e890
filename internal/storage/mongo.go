package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTrendStore keeps snapshots in a MongoDB collection
type MongoTrendStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Ensure MongoTrendStore implements TrendStore
var _ TrendStore = (*MongoTrendStore)(nil)

const serverSelectionTimeout = 5 * time.Second

// NewMongoTrendStore creates a store for the given collection. The driver
// connects lazily and reconnects on its own, so an unreachable server is not
// an error here; call Ping to check it. Errors mean the URI is unusable.
func NewMongoTrendStore(ctx context.Context, uri, database, collection string) (*MongoTrendStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &MongoTrendStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Ping verifies that the server can be reached
func (s *MongoTrendStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return ErrUnavailable
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.client.Ping(pingCtx, nil); err != nil {
		return unavailable(fmt.Errorf("failed to ping MongoDB: %w", err))
	}
	logrus.Info("Successfully connected to MongoDB")
	return nil
}

// NewMongoTrendStoreFromCollection wraps an existing collection handle
func NewMongoTrendStoreFromCollection(collection *mongo.Collection) *MongoTrendStore {
	return &MongoTrendStore{collection: collection}
}

// Save inserts a snapshot and returns the generated id
func (s *MongoTrendStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	if s.collection == nil {
		return "", ErrUnavailable
	}

	result, err := s.collection.InsertOne(ctx, snapshot)
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to store trend snapshot: %w", err))
	}

	id := fmt.Sprint(result.InsertedID)
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	snapshot.ID = id

	logrus.Infof("Successfully stored analysis data in MongoDB with id: %s", id)
	return id, nil
}

// Latest returns the newest snapshot by timestamp, without platform data
func (s *MongoTrendStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	if s.collection == nil {
		return nil, ErrUnavailable
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.D{{Key: "platform_data", Value: 0}})

	var snapshot models.TrendSnapshot
	err := s.collection.FindOne(ctx, bson.D{}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTrends
	}
	if err != nil {
		return nil, unavailable(fmt.Errorf("error retrieving trend data: %w", err))
	}

	return &snapshot, nil
}

// Close disconnects the client if this store owns one
func (s *MongoTrendStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// unavailable marks errors that mean the server cannot be reached with
// ErrUnavailable, keeping the driver error in the chain.
func unavailable(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
