package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	userCollection    = "users"
	roleCollection    = "roles"
	counterCollection = "counters"

	userCounter = "user_id"
	roleCounter = "role_id"
)

// nextID atomically allocates the next integer id for the named sequence
// via $inc with upsert, the standard auto-increment pattern for Mongo.
func nextID(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	res := db.Collection(counterCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("next id for %s: %w", name, err)
	}
	return doc.Seq, nil
}

// advanceCounter moves the named sequence forward to at least floor, so
// seeded fixed ids are never re-allocated.
func advanceCounter(ctx context.Context, db *mongo.Database, name string, floor int64) error {
	_, err := db.Collection(counterCollection).UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": floor}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("advance counter %s: %w", name, err)
	}
	return nil
}

// EnsureIndexes creates the unique constraints the service relies on:
// email uniqueness is enforced here, atomically, not by check-then-act in
// the application layer.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users.email index: %w", err)
	}

	_, err = db.Collection(roleCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure roles.name index: %w", err)
	}

	_, err = db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "role_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure users.role_id index: %w", err)
	}
	return nil
}
