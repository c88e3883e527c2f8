package ports

import (
	"context"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// CreateUserInput carries the payload for administrative user creation. The
// field rules mirror registration.
type CreateUserInput struct {
	Name     string `validate:"required,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6"`
	RoleID   int64  `validate:"required,gt=0"`
}

// UpdateUserInput is a partial update: only non-nil fields are validated and
// written, omitted fields are untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   *int64
}

// UserService defines CRUD use cases over user records. Every operation is
// reached through the access middleware; none is callable unauthenticated.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
