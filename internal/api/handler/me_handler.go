package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/accounts-api/internal/api/middleware"
)

// MeHandler returns the identity resolved by the access middleware.
type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Get handles GET /me.
//
// @Summary      Current authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *MeHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		// Presence proves the middleware ran; reaching this without it is a
		// wiring bug surfaced as an auth failure, not a 500.
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
