package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// stubUserRepo resolves a fixed set of users by id; findErr simulates a
// backing-store outage.
type stubUserRepo struct {
	users   map[string]*domain.User
	findErr error
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsernameOrEmail(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByRefreshToken(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) Delete(context.Context, string) error       { return nil }

func (r *stubUserRepo) List(context.Context, string) ([]domain.User, error) {
	return nil, nil
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(ContextKeyUserID, userID)
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestActiveOnly(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*domain.User{
		"active-1":   {ID: "active-1", Active: true},
		"inactive-1": {ID: "inactive-1", Active: false},
	}}

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"active account passes", "active-1", http.StatusOK},
		{"deactivated account rejected", "inactive-1", http.StatusUnauthorized},
		{"unknown account rejected", "ghost", http.StatusUnauthorized},
		{"missing identity rejected", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := runGate(t, ActiveOnly(repo), tt.userID); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*domain.User{
		"admin-1": {ID: "admin-1", Active: true, Admin: true},
		"plain-1": {ID: "plain-1", Active: true},
	}}

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"admin passes", "admin-1", http.StatusOK},
		{"non-admin rejected", "plain-1", http.StatusForbidden},
		{"missing identity rejected", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := runGate(t, AdminOnly(repo), tt.userID); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

// A store outage is a server fault, not a credential or privilege failure:
// neither gate may mask it as a 401/403.
func TestGates_StorageFailureIsServerError(t *testing.T) {
	repo := &stubUserRepo{findErr: errors.New("connection reset")}

	for name, mw := range map[string]echo.MiddlewareFunc{
		"active": ActiveOnly(repo),
		"admin":  AdminOnly(repo),
	} {
		t.Run(name, func(t *testing.T) {
			if rec := runGate(t, mw, "user-1"); rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}
		})
	}
}
