package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// MongoStore keeps one document per user in a collection, keyed by user_id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects the driver. mongo.Connect does not block on the
// server; the first operation or Ping does, bounded by the selection timeout.
func NewMongoStore(ctx context.Context, cfg config.MongoDBConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority()).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if cfg.TLSInsecure {
		//nolint:gosec // G402: opt-in for hosts with broken CA bundles.
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return NewMongoStoreFromClient(client, cfg.Database, cfg.Collection), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// Name implements Store.
func (s *MongoStore) Name() string {
	return config.BackendMongoDB
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, userID string) (model.Snapshot, error) {
	var doc bson.M
	err := s.collection.FindOne(ctx, userFilter(userID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb findOne failed: %w", err)
	}
	return stripInternal(model.Snapshot(doc)), nil
}

// Save implements Store. ReplaceOne drops keys absent from the new snapshot.
func (s *MongoStore) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	_, err := s.collection.ReplaceOne(
		ctx,
		userFilter(userID),
		mongoDocument(userID, snapshot),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongodb replaceOne failed: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.collection.DeleteOne(ctx, userFilter(userID)); err != nil {
		return fmt.Errorf("mongodb deleteOne failed: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func userFilter(userID string) bson.M {
	return bson.M{fieldUserID: userID}
}

// mongoDocument builds the stored document: the snapshot plus user_id,
// without any client-supplied _id so the replacement keeps the existing one.
func mongoDocument(userID string, snapshot model.Snapshot) bson.M {
	doc := bson.M(snapshot.Clone())
	delete(doc, fieldMongoID)
	doc[fieldUserID] = userID
	return doc
}
