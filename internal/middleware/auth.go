package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const (
	AccessCookie = "access_token"
	ctxIdentity  = "identity"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Identity is the authenticated caller as stated by its access token.
type Identity struct {
	UserID string
	Role   models.Role
	Device string
}

type RoleSet []models.Role

var (
	AnyRole   = RoleSet{models.RoleAdmin, models.RoleUser, models.RoleExecutor}
	AdminOnly = RoleSet{models.RoleAdmin}
)

// Authorize checks the identity's role against allowed.
func Authorize(id Identity, allowed RoleSet) error {
	if !slices.Contains(allowed, id.Role) {
		return ErrForbidden
	}
	return nil
}

type Guard struct {
	Codec *tokens.Codec
}

func NewGuard(codec *tokens.Codec) *Guard {
	return &Guard{Codec: codec}
}

func (g *Guard) Authenticate(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	if err := g.Codec.CheckType(raw, tokens.Access); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	claims, err := g.Codec.Verify(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return Identity{
		UserID: claims.RegisteredClaims.Subject,
		Role:   claims.Role,
		Device: claims.Device,
	}, nil
}

// RequireAuth takes the access token from the access_token cookie or from
// an "Authorization: Bearer" header.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := g.Authenticate(accessToken(c))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
		}
		c.Set(ctxIdentity, id)
		return next(c)
	}
}

func RequireRoles(allowed RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if err := Authorize(id, allowed); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights").SetInternal(err)
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(ctxIdentity).(Identity)
	return id, ok
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
