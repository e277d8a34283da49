package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/api/metrics"
	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// refreshCookieName is the session cookie carrying the refresh token. It is
// httpOnly so scripts can never read it; SameSite=None because the SPA is
// served from a different origin.
const refreshCookieName = "refresh_token"

// AuthHandler handles HTTP requests for the credential and session lifecycle.
type AuthHandler struct {
	sessions ports.SessionService
	accounts ports.AccountService
	resets   ports.ResetService
}

func NewAuthHandler(sessions ports.SessionService, accounts ports.AccountService, resets ports.ResetService) *AuthHandler {
	return &AuthHandler{sessions: sessions, accounts: accounts, resets: resets}
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// Register creates a new account or reactivates a dormant one.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcome, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Password:  req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(outcome)).Inc()
	return c.JSON(http.StatusCreated, registerResponse{Outcome: string(outcome)})
}

// Login authenticates with username and password. The refresh token travels
// only in the session cookie, never in the body.
//
// @Summary      Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("password", "ok").Inc()
	c.SetCookie(refreshCookie(result.RefreshToken, result.RefreshTTL))
	return c.JSON(http.StatusOK, loginResponse{AccessToken: result.AccessToken, User: result.User})
}

// Google authenticates with a Google ID token, creating a federated account
// on first sign-in.
//
// @Summary      Login with a Google ID token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      googleLoginRequest  true  "Google ID token"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users/auth/google [post]
func (h *AuthHandler) Google(c echo.Context) error {
	var req googleLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.FederatedLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("google", "error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("google", "ok").Inc()
	c.SetCookie(refreshCookie(result.RefreshToken, result.RefreshTTL))
	return c.JSON(http.StatusOK, loginResponse{AccessToken: result.AccessToken, User: result.User})
}

// Refresh mints a new access token for the session bound to the refresh
// cookie. The refresh token itself is not rotated.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  accessTokenResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/auth/refresh [get]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session cookie")
	}

	accessToken, err := h.sessions.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: accessToken})
}

// Logout revokes the session bound to the refresh cookie and clears it.
// Always succeeds: a missing or unknown cookie still means "logged out".
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /users/auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}

	c.SetCookie(refreshCookie("", -time.Second))
	return c.NoContent(http.StatusNoContent)
}

// RequestReset issues a reset token and emails a reset link. The response is
// the same whether or not delivery eventually succeeds.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequestRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /users/auth/reset_request [post]
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.RequestReset(c.Request().Context(), req.Email); err != nil {
		stage := "error"
		if err == domain.ErrTooManyResets {
			stage = "throttled"
		}
		metrics.PasswordResetsTotal.WithLabelValues(stage).Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "reset email sent"})
}

// ResetPassword consumes a reset token and sets the new password. Routed
// behind the reset gate, which verified the token and injected the subject.
//
// @Summary      Change the password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/auth/reset_password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.ConsumeReset(c.Request().Context(), userID, req.ResetToken, req.NewPassword, req.ConfirmPassword); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

// refreshCookie builds the session cookie. A non-positive maxAge expires it.
func refreshCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
