package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Credential failures
	// share one message so the response can't enumerate accounts.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserDeactivated):
		return http.StatusUnauthorized, "user is deactivated"
	case errors.Is(err, domain.ErrFederatedAccount):
		return http.StatusUnauthorized, "account uses federated sign-in"
	case errors.Is(err, domain.ErrLocalAccount):
		return http.StatusUnauthorized, "email is registered with a password"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrResetNotRequested):
		return http.StatusUnauthorized, "reset link is no longer valid"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden, "invalid token"
	case errors.Is(err, domain.ErrTokenMismatch):
		return http.StatusForbidden, "invalid token"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrPollNotFound):
		return http.StatusNotFound, "poll not found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "template not found"
	case errors.Is(err, domain.ErrAccountActive):
		return http.StatusNotAcceptable, "account must be deactivated first"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "a user with this username or email already exists"
	case errors.Is(err, domain.ErrPasswordReused):
		return http.StatusConflict, "new password must differ from the current one"
	case errors.Is(err, domain.ErrNoPicture):
		return http.StatusConflict, "profile picture not found"
	case errors.Is(err, domain.ErrPasswordConfirm):
		return http.StatusBadRequest, "passwords do not match"
	case errors.Is(err, domain.ErrTooManyResets):
		return http.StatusTooManyRequests, "a reset was requested recently, try again later"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
