package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/accounts-api/internal/api/metrics"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// RequireRoles enforces a role-id allow-list on routes behind Authenticate.
// An empty allow-list admits any authenticated user.
func RequireRoles(roleIDs ...int64) echo.MiddlewareFunc {
	allowed := make(map[int64]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		allowed[id] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if len(allowed) == 0 {
				return next(c)
			}
			if _, ok := allowed[user.RoleID]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues("role_forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// RouteGates maps a route label to the role ids allowed to call it. Gates
// are built once at startup; unknown role ids are a configuration error, not
// a per-request concern.
type RouteGates map[string][]int64

// ValidateGates resolves every gated role id against the role table and
// fails on the first unknown id.
func ValidateGates(ctx context.Context, gates RouteGates, roles ports.RoleRepository) error {
	labels := make([]string, 0, len(gates))
	for label := range gates {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		for _, id := range gates[label] {
			ok, err := roles.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("validate gate %s: %w", label, err)
			}
			if !ok {
				return fmt.Errorf("route %s: unknown role id %d", label, id)
			}
		}
	}
	return nil
}
