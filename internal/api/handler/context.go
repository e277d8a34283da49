package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/api/middleware"
)

// ctxUserID extracts the subject id injected by the Auth (or ResetGate)
// middleware. An empty id means the middleware never ran on this route;
// fail fast with 401 instead of reaching the service layer anonymously.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextKeyUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return id, nil
}
