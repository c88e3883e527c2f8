package ports

import (
	"context"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// UserPatch is a partial update: nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	SecretHash *string
	RoleID     *int64
}

// UserRepository defines the persistence contract for user records.
//
// Implementations must enforce email uniqueness atomically at the storage
// boundary and re-validate role references on every mutation that touches
// role_id, returning domain.ErrDuplicateEmail and domain.ErrInvalidReference
// respectively.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
