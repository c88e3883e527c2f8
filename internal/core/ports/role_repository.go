package ports

import (
	"context"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// RoleRepository defines the persistence contract for the role table.
type RoleRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, name string) (*domain.Role, error)
	// Delete removes a role. It must refuse with domain.ErrRoleInUse while
	// any user still references the role.
	Delete(ctx context.Context, id int64) error
	CountUsers(ctx context.Context, id int64) (int64, error)
	// Seed upserts the given roles by id. A seeded id already bound to a
	// different name is a hard error: ids are never reassigned.
	Seed(ctx context.Context, roles []domain.Role) error
}
