package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
	"github.com/clinichub/accounts-api/internal/core/secret"
	"github.com/clinichub/accounts-api/internal/core/token"
	"github.com/rs/zerolog"
)

func newAuthFixture() (*AuthService, *stubUserRepo, *stubRoleRepo, *stubLimiter, *token.Codec) {
	roles := newStubRoleRepo()
	users := newStubUserRepo(roles)
	limiter := &stubLimiter{}
	codec := token.NewCodec("test-secret", time.Hour)
	hasher := secret.NewBcryptHasher(bcrypt.MinCost)
	svc := NewAuthService(users, roles, hasher, codec, limiter, zerolog.Nop())
	return svc, users, roles, limiter, codec
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _, _, codec := newAuthFixture()

	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "s3cret",
		RoleID:   domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
	if res.User.SecretHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}

	subject, err := codec.Decode(res.Token, time.Now().UTC())
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if subject != res.User.ID {
		t.Fatalf("token subject %d does not match user id %d", subject, res.User.ID)
	}
}

func TestAuthService_Register_FieldErrors(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
		RoleID:   99,
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "email", "password", "role_id"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Fatalf("expected field error for %q, got %v", field, ve.Fields)
		}
	}

	// No partial side effects.
	if all, _ := users.List(context.Background()); len(all) != 0 {
		t.Fatalf("expected no users created, got %d", len(all))
	}
}

func TestAuthService_Register_ConfirmationMismatch(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:                 "Bob",
		Email:                "bob@example.com",
		Password:             "s3cret",
		PasswordConfirmation: "different",
		RoleID:               domain.RolePatient,
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["password_confirmation"]; !ok {
		t.Fatalf("expected password_confirmation error, got %v", ve.Fields)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	input := ports.RegisterInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "s3cret",
		RoleID:   domain.RoleDoctor,
	}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	input := ports.RegisterInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "s3cret",
		RoleID:   domain.RolePatient,
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Register(context.Background(), input)
		}(i)
	}
	wg.Wait()

	successes, duplicates := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrDuplicateEmail):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got %d/%d", successes, duplicates)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _, limiter, codec := newAuthFixture()

	reg, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Dave",
		Email:    "dave@example.com",
		Password: "goodpass",
		RoleID:   domain.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login(context.Background(), "Dave@Example.com", "goodpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	subject, err := codec.Decode(res.Token, time.Now().UTC())
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if subject != reg.User.ID {
		t.Fatalf("token subject %d does not match user id %d", subject, reg.User.ID)
	}
	if limiter.resets != 1 {
		t.Fatalf("expected limiter reset after successful login, got %d", limiter.resets)
	}
}

func TestAuthService_Login_UniformError(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "goodpass",
		RoleID:   domain.RolePatient,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), "eve@example.com", "badpass")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "whatever")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("error shapes differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	svc, _, _, limiter, _ := newAuthFixture()
	limiter.deny = true

	if _, err := svc.Login(context.Background(), "any@example.com", "pass"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}
