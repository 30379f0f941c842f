// internal/app/store/preferences/store.go
package preferences

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps one document per (owner, key) in user_preferences.
// Owner is the identity provider's user id.
type Store struct {
	c *mongo.Collection
}

type entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     string             `bson:"owner"`
	Key       string             `bson:"key"`
	Value     string             `bson:"value"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// New creates a new preferences store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_preferences")}
}

// EnsureIndexes creates the unique (owner, key) index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_owner_key"),
	})
	return err
}

// Get returns the stored value, with ok=false when none exists.
func (s *Store) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var e entry
	err := s.c.FindOne(ctx, bson.M{"owner": owner, "key": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Set upserts the value.
func (s *Store) Set(ctx context.Context, owner, key, value string) error {
	filter := bson.M{"owner": owner, "key": key}
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_at": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":   primitive.NewObjectID(),
			"owner": owner,
			"key":   key,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
