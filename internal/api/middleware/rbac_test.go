package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/accounts-api/internal/core/domain"
)

func rbacContext(e *echo.Echo, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(userContextKey, user)
	}
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, &domain.User{ID: 1, RoleID: domain.RoleAdmin})

	calls := 0
	handler := RequireRoles(domain.RoleAdmin, domain.RoleDoctor)(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("downstream handler invoked %d times, want exactly once", calls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, &domain.User{ID: 1, RoleID: domain.RoleAdmin})

	handler := RequireRoles(domain.RoleDoctor, domain.RolePatient)(func(c echo.Context) error {
		t.Fatalf("should not reach downstream handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoles_EmptyListAdmitsAnyAuthenticated(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, &domain.User{ID: 1, RoleID: domain.RolePatient})

	handler := RequireRoles()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_NoIdentity(t *testing.T) {
	e := echo.New()
	c, rec := rbacContext(e, nil)

	handler := RequireRoles()(func(c echo.Context) error {
		t.Fatalf("should not reach downstream handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type stubRoles struct {
	known map[int64]struct{}
}

func (r *stubRoles) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	if _, ok := r.known[id]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &domain.Role{ID: id}, nil
}
func (r *stubRoles) List(context.Context) ([]domain.Role, error) { return nil, nil }
func (r *stubRoles) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.known[id]
	return ok, nil
}
func (r *stubRoles) Create(context.Context, string) (*domain.Role, error) {
	return nil, domain.ErrRoleExists
}
func (r *stubRoles) Delete(context.Context, int64) error                { return nil }
func (r *stubRoles) CountUsers(context.Context, int64) (int64, error)   { return 0, nil }
func (r *stubRoles) Seed(context.Context, []domain.Role) error          { return nil }

func TestValidateGates(t *testing.T) {
	roles := &stubRoles{known: map[int64]struct{}{1: {}, 2: {}, 3: {}}}

	valid := RouteGates{
		"GET /users":  {},
		"POST /users": {1},
	}
	if err := ValidateGates(context.Background(), valid, roles); err != nil {
		t.Fatalf("expected valid gates, got %v", err)
	}

	invalid := RouteGates{
		"POST /users": {1, 42},
	}
	err := ValidateGates(context.Background(), invalid, roles)
	if err == nil {
		t.Fatalf("expected error for unknown role id")
	}
	if !strings.Contains(err.Error(), "42") {
		t.Fatalf("expected offending id in error, got %v", err)
	}
}
