package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/accounts-api/internal/api/metrics"
	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
	"github.com/clinichub/accounts-api/internal/core/token"
)

// userContextKey is where Authenticate stashes the resolved user.
const userContextKey = "auth_user"

// Authenticate extracts the bearer token, decodes it, resolves the subject
// against the credential store, and injects the user into the request
// context. Any failing stage short-circuits with 401 and the downstream
// handler never runs. A deleted user holding a still-valid token is rejected
// at the lookup stage.
func Authenticate(codec ports.TokenCodec, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				metrics.AccessDeniedTotal.WithLabelValues("no_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AccessDeniedTotal.WithLabelValues("no_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			subject, err := codec.Decode(parts[1], time.Now().UTC())
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, token.ErrTokenExpired) {
					reason = "expired_token"
				}
				metrics.AccessDeniedTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			user, err := users.FindByID(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AccessDeniedTotal.WithLabelValues("unknown_subject").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by Authenticate, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}
