package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type userUpdatePayload struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin manager"`
}

func registerUserRoutes(s *webserver.AdminServer) {
	s.ApiGET("/users", listUsers)
	s.ApiGET("/users/:id", getUser)
	s.ApiPUT("/users/:id", updateUser, adminOnly)
	s.ApiDELETE("/users/:id", deleteUser, adminOnly)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	users, total, err := GetAppContext(c).Store().Users().List(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Users retrieved successfully", users, total, page, pageSize)
}

func getUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := GetAppContext(c).Store().Users().GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, "User retrieved successfully", user)
}

func updateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload userUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	updates := map[string]interface{}{}
	setIf(updates, "username", payload.Username)
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.Role != nil {
		if me := webserver.CurrentUser(c); me != nil && me.UserID == id.String() && *payload.Role != me.Role {
			return apperr.BadRequest("You cannot change your own role")
		}
		updates["role"] = *payload.Role
	}
	user, err := GetAppContext(c).Store().Users().Update(c.Request().Context(), id, updates)
	if err != nil {
		return err
	}
	record(c, audit.ActionUserUpdate, id.String(), user.Username)
	return ok(c, "User updated successfully", user)
}

func deleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if me := webserver.CurrentUser(c); me != nil && me.UserID == id.String() {
		return apperr.BadRequest("You cannot delete your own account")
	}
	if err := GetAppContext(c).Store().Users().Delete(c.Request().Context(), id); err != nil {
		return err
	}
	record(c, audit.ActionUserDelete, id.String(), "")
	return ok(c, "User deleted successfully", nil)
}
