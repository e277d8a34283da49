package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/ports"
)

// resetTokenBody is the slice of the change-password payload this gate needs.
type resetTokenBody struct {
	ResetToken string `json:"reset_token"`
}

// maxResetPayload caps what the gate will buffer from an unauthenticated
// client. The legitimate payload is a few hundred bytes.
const maxResetPayload = 64 << 10

// ResetGate authorizes the change-password route. It reads the reset token
// out of the request body, verifies it cryptographically and injects the
// subject id; the handler still re-checks the token against the stored value.
// The body is restored so the handler can bind it again.
func ResetGate(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxResetPayload+1))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
			}
			if len(raw) > maxResetPayload {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(raw))

			var body resetTokenBody
			if err := json.Unmarshal(raw, &body); err != nil || body.ResetToken == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing reset token")
			}

			subject, err := tokens.Verify(ports.TokenKindReset, body.ResetToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "invalid reset link")
			}

			c.Set(ContextKeyUserID, subject)
			return next(c)
		}
	}
}
