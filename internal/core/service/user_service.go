package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// UserService implements CRUD over user records. Field rules mirror
// registration for overlapping fields; role references are validated here
// and re-checked inside the repository on commit.
type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.PasswordHasher
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		fields := make(map[string]string)
		collectFieldErrors(err, fields)
		return nil, &domain.ValidationError{Fields: fields}
	}
	if err := s.roleMustExist(ctx, input.RoleID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:       input.Name,
		Email:      normalizeEmail(input.Email),
		SecretHash: hash,
		RoleID:     input.RoleID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

// Update applies a partial patch: only supplied fields are validated and
// written. A nonexistent role reference rejects the write and leaves the
// stored record unchanged.
func (s *UserService) Update(ctx context.Context, id int64, input ports.UpdateUserInput) (*domain.User, error) {
	fields := make(map[string]string)
	patch := ports.UserPatch{}

	if input.Name != nil {
		if err := s.validate.Var(*input.Name, "required,max=255"); err != nil {
			fields["name"] = "name must be non-empty and at most 255 characters"
		} else {
			patch.Name = input.Name
		}
	}
	if input.Email != nil {
		if err := s.validate.Var(*input.Email, "required,email,max=255"); err != nil {
			fields["email"] = "email must be a valid email of at most 255 characters"
		} else {
			normalized := normalizeEmail(*input.Email)
			patch.Email = &normalized
		}
	}
	if input.Password != nil {
		if err := s.validate.Var(*input.Password, "required,min=6"); err != nil {
			fields["password"] = "password must be at least 6 characters"
		} else {
			hash, err := s.hasher.Hash(*input.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			patch.SecretHash = &hash
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	if input.RoleID != nil {
		if err := s.roleMustExist(ctx, *input.RoleID); err != nil {
			return nil, err
		}
		patch.RoleID = input.RoleID
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return updated, nil
}

// Delete is a hard delete. Deleting an id twice reports ErrUserNotFound the
// second time.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) roleMustExist(ctx context.Context, roleID int64) error {
	ok, err := s.roles.Exists(ctx, roleID)
	if err != nil {
		return fmt.Errorf("check role: %w", err)
	}
	if !ok {
		return domain.ErrInvalidReference
	}
	return nil
}
