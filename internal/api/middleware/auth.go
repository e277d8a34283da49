package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/ports"
)

// ContextKeyUserID is the echo context key the middleware stores the
// authenticated subject id under.
const ContextKeyUserID = "user_id"

// Auth verifies the Bearer access token and injects the subject id into the
// request context. A missing token is 401; a present but invalid one is 403,
// so clients can tell "log in" apart from "token rejected".
func Auth(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			subject, err := tokens.Verify(ports.TokenKindAccess, parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "invalid token")
			}

			c.Set(ContextKeyUserID, subject)
			return next(c)
		}
	}
}
