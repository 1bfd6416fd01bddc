package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

const collectionClientState = "client_state"

// KVStore is a KeyValueStore backed by one MongoDB document per key.
type KVStore struct {
	col *mongo.Collection
	// namespace separates several portals sharing one database.
	namespace string
}

var (
	_ ports.KeyValueStore = (*KVStore)(nil)
	_ ports.Pinger        = (*KVStore)(nil)
)

type stateDoc struct {
	ID        string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewKVStore(db *mongo.Database, namespace string) *KVStore {
	if namespace == "" {
		namespace = "portal"
	}
	return &KVStore{col: db.Collection(collectionClientState), namespace: namespace}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc stateDoc
	err := s.col.FindOne(ctx, bson.M{"_id": s.id(key)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("find %s: %w", key, err)
	}
	return doc.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"namespace":  s.namespace,
		"key":        key,
		"value":      value,
		"updated_at": time.Now().UTC(),
	}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": s.id(key)}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": s.id(key)}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the lookup index on the client_state collection.
func (s *KVStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
	})
	return err
}

func (s *KVStore) id(key string) string {
	return s.namespace + ":" + key
}
