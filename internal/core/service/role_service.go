package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// RoleService exposes the administrative role operations. Roles are
// reference data: they can be added, but an id is never reassigned and a
// role is never deleted while users reference it.
type RoleService struct {
	roles    ports.RoleRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewRoleService(roles ports.RoleRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, validate: validator.New(), logger: logger}
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Create(ctx context.Context, name string) (*domain.Role, error) {
	if err := s.validate.Var(name, "required,max=100"); err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"name": "name must be non-empty and at most 100 characters",
		}}
	}

	role, err := s.roles.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("role_id", role.ID).Str("name", role.Name).Msg("role created")
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("role_id", id).Msg("role deleted")
	return nil
}
