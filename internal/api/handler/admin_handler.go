package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// AdminHandler exposes operator-only account management.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// DeleteUser removes an account with all of its boards, pins and comments.
//
// @Summary      Delete a user account
// @Tags         admin
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actorID, role, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteAccount(c.Request().Context(), actorID, c.Param("id"), role == domain.RoleAdmin); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
