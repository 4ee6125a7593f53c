package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_me")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}

	u, err := h.Svc.Me(ctx, id.UserID)
	if err != nil {
		return toHTTPError(l, "me_failed", err)
	}
	return c.JSON(http.StatusOK, transport.UserFromModel(*u))
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_list")

	users, err := h.Svc.List(ctx, c.QueryParam("role"))
	if err != nil {
		return toHTTPError(l, "list_failed", err)
	}
	return c.JSON(http.StatusOK, transport.UsersFromModels(users))
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_delete", "user_id", c.Param("id"))

	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return toHTTPError(l, "delete_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Email(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_email")

	email, err := h.Svc.Email(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(l, "email_failed", err)
	}
	return c.JSON(http.StatusOK, email)
}
