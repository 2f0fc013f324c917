// Package mongodb stores participants and messages in MongoDB, the document store the room was first built on.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ParticipantsCollection = "participants"
	MessagesCollection     = "messages"
)

// Collection provides the single-document primitives the room needs over one MongoDB collection.
type Collection[T any] struct {
	collection *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{collection: db.Collection(name)}
}

// Open connects to uri and returns the named database once a ping succeeds.
func Open(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(database), nil
}

// EnsureIndexes makes the participant name a unique key and orders the message log by creation time.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ParticipantsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("participants index: %w", err)
	}
	_, err = db.Collection(MessagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("messages index: %w", err)
	}
	return nil
}

// FindOne returns mongo.ErrNoDocuments when nothing matches.
func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var result T
	if err := c.collection.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Collection[T]) FindAll(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, document T) error {
	_, err := c.collection.InsertOne(ctx, document)
	return err
}

// UpdateOne applies a $set and reports how many documents matched.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	result, err := c.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	result, err := c.collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
