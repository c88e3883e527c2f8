package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/accounts-api/internal/core/ports"
)

// RoleHandler exposes the administrative role operations.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listRolesResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, roleResponse{ID: role.ID, Name: role.Name})
	}
	return c.JSON(http.StatusOK, listRolesResponse{Data: data})
}

// Create handles POST /roles (admin only).
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name})
}

// Delete handles DELETE /roles/:id (admin only). A role still referenced by
// users is refused with 409.
//
// @Summary      Delete a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id  path  int  true  "Role id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
