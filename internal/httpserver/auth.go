package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies Cookies
}

// userAgent prefers the descriptor sent in the body over the request header.
func userAgent(c echo.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.Request().UserAgent()
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:      req.Name,
		Surname:   req.Surname,
		Login:     req.Login,
		Email:     req.Email,
		Password:  req.Pwd,
		Role:      req.Role,
		UserAgent: userAgent(c, req.UserAgent),
	})
	if err != nil {
		return toHTTPError(l, "register_error", err)
	}

	h.Cookies.set(c, pair)
	return c.JSON(http.StatusCreated, transport.NewTokenPairResponse(pair.AccessToken, pair.RefreshToken))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, service.LoginInput{
		LoginOrEmail: req.LoginOrEmail,
		Password:     req.Pwd,
		UserAgent:    userAgent(c, req.UserAgent),
	})
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("login_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
		}
		return toHTTPError(l, "login_error", err)
	}

	h.Cookies.set(c, pair)
	return c.JSON(http.StatusOK, transport.NewTokenPairResponse(pair.AccessToken, pair.RefreshToken))
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Logout(ctx, id.UserID, userAgent(c, req.UserAgent)); err != nil {
		return toHTTPError(l, "logout_failed", err)
	}

	h.Cookies.clear(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	raw := req.RefreshToken
	if raw == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			raw = cookie.Value
		}
	}

	pair, err := h.Svc.Refresh(ctx, raw, userAgent(c, req.UserAgent))
	if err != nil {
		if errors.Is(err, service.ErrTokenReuse) || errors.Is(err, service.ErrUnauthorized) {
			h.Cookies.clear(c)
		}
		return toHTTPError(l, "refresh_failed", err)
	}

	h.Cookies.set(c, pair)
	return c.JSON(http.StatusOK, transport.NewTokenPairResponse(pair.AccessToken, pair.RefreshToken))
}
