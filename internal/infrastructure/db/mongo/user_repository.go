package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// MongoUserRepository persists user records. Email uniqueness comes from the
// unique index (see EnsureIndexes); role references are re-validated inside
// every mutating call before committing.
type MongoUserRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db}
}

type mongoUser struct {
	ID         int64     `bson:"_id"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	SecretHash string    `bson:"secret_hash"`
	RoleID     int64     `bson:"role_id"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:         mu.ID,
		Name:       mu.Name,
		Email:      mu.Email,
		SecretHash: mu.SecretHash,
		RoleID:     mu.RoleID,
		CreatedAt:  mu.CreatedAt.UTC(),
		UpdatedAt:  mu.UpdatedAt.UTC(),
	}
}

// normalizeEmail is the store-boundary email policy: comparisons are
// case-insensitive, so everything is stored and looked up lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.db.Collection(userCollection)
}

func (r *MongoUserRepository) roleExists(ctx context.Context, roleID int64) (bool, error) {
	n, err := r.db.Collection(roleCollection).CountDocuments(ctx, bson.M{"_id": roleID})
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var mu mongoUser
	if err := r.users().FindOne(ctx, bson.M{"_id": id}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.users().FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, *mu.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ok, err := r.roleExists(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidReference
	}

	id, err := nextID(ctx, r.db, userCounter)
	if err != nil {
		return nil, err
	}

	doc := mongoUser{
		ID:         id,
		Name:       user.Name,
		Email:      normalizeEmail(user.Email),
		SecretHash: user.SecretHash,
		RoleID:     user.RoleID,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	if _, err := r.users().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	if patch.RoleID != nil {
		ok, err := r.roleExists(ctx, *patch.RoleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrInvalidReference
		}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = normalizeEmail(*patch.Email)
	}
	if patch.SecretHash != nil {
		set["secret_hash"] = *patch.SecretHash
	}
	if patch.RoleID != nil {
		set["role_id"] = *patch.RoleID
	}

	res := r.users().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var mu mongoUser
	if err := res.Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
