package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

type stubSessionService struct {
	loginFn     func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	federatedFn func(ctx context.Context, rawIDToken string) (*ports.LoginResult, error)
	refreshFn   func(ctx context.Context, refreshToken string) (string, error)
	logoutFn    func(ctx context.Context, refreshToken string) error
}

func (s *stubSessionService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessionService) FederatedLogin(ctx context.Context, rawIDToken string) (*ports.LoginResult, error) {
	return s.federatedFn(ctx, rawIDToken)
}

func (s *stubSessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubSessionService) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

type stubAccountService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (ports.RegistrationOutcome, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (ports.RegistrationOutcome, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) SetActiveState(context.Context, string, string, bool) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAccountService) SetAdminState(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAccountService) Delete(context.Context, string) error { return errors.New("not implemented") }

func (s *stubAccountService) Get(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAccountService) List(context.Context, string) ([]domain.User, error) {
	return nil, errors.New("not implemented")
}

type stubResetService struct {
	requestFn func(ctx context.Context, email string) error
	consumeFn func(ctx context.Context, userID, token, newPassword, confirmPassword string) error
}

func (s *stubResetService) RequestReset(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubResetService) ConsumeReset(ctx context.Context, userID, token, newPassword, confirmPassword string) error {
	return s.consumeFn(ctx, userID, token, newPassword, confirmPassword)
}

func newAuthTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Register_Created(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (ports.RegistrationOutcome, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return ports.OutcomeCreated, nil
		},
	}
	handler := NewAuthHandler(nil, accounts, nil)

	c, rec := newAuthTestContext(t, http.MethodPost, "/users/auth/register",
		`{"username":"alice","email":"alice@example.com","firstname":"Alice","lastname":"Smith","password":"long-enough"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["outcome"] != "created" {
		t.Fatalf("unexpected outcome: %v", resp["outcome"])
	}
}

func TestAuthHandler_Register_ValidationRejected(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (ports.RegistrationOutcome, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	handler := NewAuthHandler(nil, accounts, nil)

	// Password too short, email malformed.
	c, _ := newAuthTestContext(t, http.MethodPost, "/users/auth/register",
		`{"username":"alice","email":"nope","firstname":"A","lastname":"S","password":"short"}`)

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (ports.RegistrationOutcome, error) {
			return "", domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(nil, accounts, nil)

	c, _ := newAuthTestContext(t, http.MethodPost, "/users/auth/register",
		`{"username":"alice","email":"alice@example.com","firstname":"A","lastname":"S","password":"long-enough"}`)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_SetsRefreshCookie(t *testing.T) {
	sessions := &stubSessionService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret-password" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{
				User:         &domain.User{ID: "id-alice", Username: "alice", Active: true},
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
				RefreshTTL:   7 * 24 * time.Hour,
			}, nil
		},
	}
	handler := NewAuthHandler(sessions, nil, nil)

	c, rec := newAuthTestContext(t, http.MethodPost, "/users/auth/login",
		`{"username":"alice","password":"secret-password"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "access-token" {
		t.Fatalf("access token missing from body")
	}
	if strings.Contains(rec.Body.String(), "refresh-token") {
		t.Fatalf("refresh token leaked into the body")
	}

	cookie := findCookie(t, rec, "refresh_token")
	if cookie == nil {
		t.Fatalf("refresh cookie not set")
	}
	if cookie.Value != "refresh-token" || !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("cookie max-age %d does not match the refresh TTL", cookie.MaxAge)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	sessions := &stubSessionService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(sessions, nil, nil)

	c, rec := newAuthTestContext(t, http.MethodPost, "/users/auth/login",
		`{"username":"alice","password":"wrong"}`)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if cookie := findCookie(t, rec, "refresh_token"); cookie != nil {
		t.Fatalf("no cookie must be set on failure")
	}
}

func TestAuthHandler_Refresh_FromCookie(t *testing.T) {
	sessions := &stubSessionService{
		refreshFn: func(_ context.Context, refreshToken string) (string, error) {
			if refreshToken != "refresh-token" {
				t.Fatalf("unexpected token %q", refreshToken)
			}
			return "new-access-token", nil
		},
	}
	handler := NewAuthHandler(sessions, nil, nil)

	c, rec := newAuthTestContext(t, http.MethodGet, "/users/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-token"})

	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "new-access-token") {
		t.Fatalf("access token missing from body")
	}
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	handler := NewAuthHandler(&stubSessionService{}, nil, nil)

	c, _ := newAuthTestContext(t, http.MethodGet, "/users/auth/refresh", "")

	err := handler.Refresh(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var revoked string
	sessions := &stubSessionService{
		logoutFn: func(_ context.Context, refreshToken string) error {
			revoked = refreshToken
			return nil
		},
	}
	handler := NewAuthHandler(sessions, nil, nil)

	c, rec := newAuthTestContext(t, http.MethodGet, "/users/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-token"})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "refresh-token" {
		t.Fatalf("session not revoked")
	}

	cookie := findCookie(t, rec, "refresh_token")
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cookie)
	}
}

func TestAuthHandler_Logout_WithoutCookie(t *testing.T) {
	sessions := &stubSessionService{
		logoutFn: func(context.Context, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	handler := NewAuthHandler(sessions, nil, nil)

	c, rec := newAuthTestContext(t, http.MethodGet, "/users/auth/logout", "")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	resets := &stubResetService{
		consumeFn: func(_ context.Context, userID, token, newPassword, confirmPassword string) error {
			if userID != "user-1" || token != "reset-token" {
				t.Fatalf("unexpected args: %s %s", userID, token)
			}
			return nil
		},
	}
	handler := NewAuthHandler(nil, nil, resets)

	c, rec := newAuthTestContext(t, http.MethodPost, "/users/auth/reset_password",
		`{"reset_token":"reset-token","new_password":"long-enough","confirm_password":"long-enough"}`)
	c.Set("user_id", "user-1")

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_MissingSubject(t *testing.T) {
	handler := NewAuthHandler(nil, nil, &stubResetService{})

	c, _ := newAuthTestContext(t, http.MethodPost, "/users/auth/reset_password",
		`{"reset_token":"reset-token","new_password":"long-enough","confirm_password":"long-enough"}`)

	err := handler.ResetPassword(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
