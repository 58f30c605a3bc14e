package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// UserHandler exposes the user lifecycle over HTTP. Domain errors are returned
// to echo and rendered by the central error handler.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/v1/user.
//
// @Summary      List active users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  responseWrapper{data=[]userResponse}
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/user [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "Users are successfully retrieved",
		Code:    http.StatusOK,
		Data:    toUserResponses(users),
	})
}

// Get handles GET /api/v1/user/:username.
//
// @Summary      Get an active user by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  responseWrapper{data=userResponse}
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/v1/user/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.FindByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "User is successfully retrieved",
		Code:    http.StatusOK,
		Data:    toUserResponse(user),
	})
}

// ListByRole handles GET /api/v1/user/role/:role.
//
// @Summary      List active users holding a role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role description (Admin, Manager, Employee)"
// @Success      200   {object}  responseWrapper{data=[]userResponse}
// @Failure      403   {object}  errorResponse
// @Router       /api/v1/user/role/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	users, err := h.service.ListByRole(c.Request().Context(), c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "Users are successfully retrieved",
		Code:    http.StatusOK,
		Data:    toUserResponses(users),
	})
}

// ListDeleted handles GET /api/v1/admin/users/deleted.
//
// @Summary      List soft-deleted users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  responseWrapper{data=[]userResponse}
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/admin/users/deleted [get]
func (h *UserHandler) ListDeleted(c echo.Context) error {
	users, err := h.service.ListDeletedUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "Deleted users are successfully retrieved",
		Code:    http.StatusOK,
		Data:    toUserResponses(users),
	})
}

// ListMirrorFailures handles GET /api/v1/admin/users/identity-failures.
//
// @Summary      List users missing from the identity directory
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  responseWrapper{data=[]mirrorFailureResponse}
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/admin/users/identity-failures [get]
func (h *UserHandler) ListMirrorFailures(c echo.Context) error {
	failures, err := h.service.ListMirrorFailures(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "Identity mirror failures are successfully retrieved",
		Code:    http.StatusOK,
		Data:    toMirrorFailureResponses(failures),
	})
}

// Create handles POST /api/v1/user.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      userRequest  true  "User"
// @Success      201   {object}  responseWrapper{data=userResponse}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/user [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.CreateUser(c.Request().Context(), toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, responseWrapper{
		Success: true,
		Message: "User is successfully created",
		Code:    http.StatusCreated,
		Data:    toUserResponse(user),
	})
}

// Update handles PUT /api/v1/user.
//
// @Summary      Update the active user matching the body's username
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      userRequest  true  "User"
// @Success      200   {object}  responseWrapper{data=userResponse}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/user [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateUser(c.Request().Context(), toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "User is successfully updated",
		Code:    http.StatusOK,
		Data:    toUserResponse(user),
	})
}

// Delete handles DELETE /api/v1/user/:username.
//
// @Summary      Soft-delete a user
// @Description  Rejected with 409 while the user still owns unfinished projects or tasks.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  responseWrapper
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /api/v1/user/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, responseWrapper{
		Success: true,
		Message: "User is successfully deleted",
		Code:    http.StatusOK,
	})
}
