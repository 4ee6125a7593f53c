package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/service"
)

const (
	accessCookie  = middleware.AccessCookie
	refreshCookie = "refresh_token"
	cookiePath    = "/"
)

type Cookies struct {
	Secure bool
}

func (ck Cookies) Create(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (ck Cookies) Delete(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (ck Cookies) set(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(ck.Create(accessCookie, pair.AccessToken, cookiePath, pair.AccessExp))
	c.SetCookie(ck.Create(refreshCookie, pair.RefreshToken, cookiePath, pair.RefreshExp))
}

func (ck Cookies) clear(c echo.Context) {
	c.SetCookie(ck.Delete(accessCookie, cookiePath))
	c.SetCookie(ck.Delete(refreshCookie, cookiePath))
}
