package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// ActiveOnly rejects requests from deactivated accounts. Composed after Auth;
// the stored flag is consulted on every request so a deactivation takes
// effect even while an access token is still cryptographically valid.
func ActiveOnly(repo ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextKeyUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}

			user, err := repo.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "user is deactivated")
				}
				// Storage failure, not a credential problem.
				return err
			}
			if !user.Active {
				return echo.NewHTTPError(http.StatusUnauthorized, "user is deactivated")
			}
			return next(c)
		}
	}
}
