package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

// Common is the stack every route runs behind. The request logger goes
// after it so it can pick up the request id.
func Common(corsOrigins []string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Secure(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
			AllowCredentials: !allowsAny(corsOrigins),
		}),
	}
}

func allowsAny(origins []string) bool {
	return len(origins) == 0 || slices.Contains(origins, "*")
}
