package ports

import (
	"context"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// RoleService defines the administrative role operations.
type RoleService interface {
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, name string) (*domain.Role, error)
	Delete(ctx context.Context, id int64) error
}
