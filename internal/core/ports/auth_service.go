package ports

import (
	"context"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

// RegisterInput carries the registration payload. PasswordConfirmation is
// optional; when supplied it must match Password.
type RegisterInput struct {
	Name                 string `validate:"required,max=255"`
	Email                string `validate:"required,email,max=255"`
	Password             string `validate:"required,min=6"`
	PasswordConfirmation string `validate:"omitempty,eqfield=Password"`
	RoleID               int64  `validate:"required,gt=0"`
}

// AuthResult is returned by both registration and login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService defines the registration and login use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
