package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/middleware"
)

const apiPrefix = "/api/v1"

type Deps struct {
	AuthHandler  *AuthHTTP
	UsersHandler *UsersHTTP
	Guard        *middleware.Guard
	// Ready backs /health/ready; nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	users := e.Group(apiPrefix + "/users")
	users.POST("/registration", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refresh", d.AuthHandler.Refresh)
	users.GET("/:id/email", d.UsersHandler.Email)

	// Guards are attached per route; a group would also wrap its catch-all
	// and turn unknown paths into 401.
	authed := []echo.MiddlewareFunc{d.Guard.RequireAuth, middleware.RequireRoles(middleware.AnyRole)}
	admin := []echo.MiddlewareFunc{d.Guard.RequireAuth, middleware.RequireRoles(middleware.AdminOnly)}

	users.POST("/logout", d.AuthHandler.LogOut, authed...)
	users.GET("/me", d.UsersHandler.Me, authed...)
	users.GET("/list", d.UsersHandler.List, admin...)
	users.DELETE("/:id", d.UsersHandler.Delete, admin...)
}
