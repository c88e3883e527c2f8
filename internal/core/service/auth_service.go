package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// AuthService implements registration and login. All collaborators are
// injected at construction; nothing is resolved globally.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	limiter  ports.LoginLimiter
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	limiter ports.LoginLimiter,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		codec:    codec,
		limiter:  limiter,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register validates the whole input up front, collecting every field
// failure before any side effect, then creates the user and issues a token.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	fields := make(map[string]string)
	if err := s.validate.Struct(input); err != nil {
		collectFieldErrors(err, fields)
	}
	if _, seen := fields["role_id"]; !seen && input.RoleID > 0 {
		ok, err := s.roles.Exists(ctx, input.RoleID)
		if err != nil {
			return nil, fmt.Errorf("check role: %w", err)
		}
		if !ok {
			fields["role_id"] = "role does not exist"
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
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

	tok, err := s.codec.Issue(created.ID, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Int64("user_id", created.ID).Int64("role_id", created.RoleID).Msg("user registered")

	return &ports.AuthResult{Token: tok, User: created}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the identical error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	key := normalizeEmail(email)

	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		// The throttle is an auxiliary control: if its backend is down we
		// log and let the attempt through rather than locking everyone out.
		s.logger.Warn().Err(err).Msg("login limiter unavailable")
	} else if !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.SecretHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.Warn().Err(err).Msg("login limiter reset failed")
	}

	tok, err := s.codec.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{Token: tok, User: user}, nil
}
