package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// MongoRoleRepository persists the role table. Roles are reference data:
// seeded ids are fixed and never reassigned, and a role cannot be deleted
// while users reference it.
type MongoRoleRepository struct {
	db *mongo.Database
}

func NewRoleRepository(db *mongo.Database) *MongoRoleRepository {
	return &MongoRoleRepository{db: db}
}

type mongoRole struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

func (r *MongoRoleRepository) roles() *mongo.Collection {
	return r.db.Collection(roleCollection)
}

func (r *MongoRoleRepository) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	var mr mongoRole
	if err := r.roles().FindOne(ctx, bson.M{"_id": id}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: mr.ID, Name: mr.Name}, nil
}

func (r *MongoRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	cursor, err := r.roles().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Role
	for cursor.Next(ctx) {
		var mr mongoRole
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		out = append(out, domain.Role{ID: mr.ID, Name: mr.Name})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

func (r *MongoRoleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := r.roles().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return n > 0, nil
}

func (r *MongoRoleRepository) Create(ctx context.Context, name string) (*domain.Role, error) {
	id, err := nextID(ctx, r.db, roleCounter)
	if err != nil {
		return nil, err
	}

	if _, err := r.roles().InsertOne(ctx, mongoRole{ID: id, Name: name}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return &domain.Role{ID: id, Name: name}, nil
}

// Delete refuses while any user references the role. There is no cascade:
// user deletes are hard, so a referenced role simply cannot go away.
func (r *MongoRoleRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrRoleInUse
	}

	res, err := r.roles().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *MongoRoleRepository) CountUsers(ctx context.Context, id int64) (int64, error) {
	n, err := r.db.Collection(userCollection).CountDocuments(ctx, bson.M{"role_id": id})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// Seed upserts the fixed default roles by id. An id already bound to a
// different name aborts startup: ids are never reused for another name.
func (r *MongoRoleRepository) Seed(ctx context.Context, roles []domain.Role) error {
	var maxID int64
	for _, role := range roles {
		res := r.roles().FindOneAndUpdate(ctx,
			bson.M{"_id": role.ID},
			bson.M{"$setOnInsert": bson.M{"name": role.Name}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		)

		var mr mongoRole
		if err := res.Decode(&mr); err != nil {
			return fmt.Errorf("seed role %d: %w", role.ID, err)
		}
		if mr.Name != role.Name {
			return fmt.Errorf("seed role %d: id already bound to %q, want %q", role.ID, mr.Name, role.Name)
		}
		if role.ID > maxID {
			maxID = role.ID
		}
	}
	return advanceCounter(ctx, r.db, roleCounter, maxID)
}
