package ports

import (
	"context"
	"time"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// LoginResult carries the outcome of a successful authentication. The access
// token goes to the response body, the refresh token to the session cookie.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

// SessionService orchestrates login, refresh and logout. It enforces the
// at-most-one-session policy: each successful login overwrites the stored
// refresh token, unilaterally invalidating any prior session.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// FederatedLogin verifies the raw external ID token, maps the asserted
	// identity to a local account (creating one on first sign-in) and then
	// behaves exactly like a successful Login.
	FederatedLogin(ctx context.Context, rawIDToken string) (*LoginResult, error)
	// Refresh mints a new access token for the account bound to the given
	// refresh token. The refresh token itself is not rotated.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout clears the stored refresh token. Unknown tokens are a no-op.
	Logout(ctx context.Context, refreshToken string) error
}

// RegistrationOutcome is the tagged result of a registration attempt.
type RegistrationOutcome string

const (
	OutcomeCreated     RegistrationOutcome = "created"
	OutcomeReactivated RegistrationOutcome = "reactivated"
)

// RegisterInput is the validated payload for a registration attempt.
type RegisterInput struct {
	Username  string
	Email     string
	Firstname string
	Lastname  string
	Password  string
}

// AccountService governs the registration/activation state machine and
// account administration.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (RegistrationOutcome, error)
	// SetActiveState toggles the active flag on the actor's own account, or
	// on targetID when the actor is an admin. Deactivation clears the stored
	// refresh token, forcing logout.
	SetActiveState(ctx context.Context, actorID, targetID string, active bool) (*domain.User, error)
	// SetAdminState toggles the admin flag on targetID. Admin only.
	SetAdminState(ctx context.Context, actorID, targetID string) (*domain.User, error)
	// Delete removes the account. Rejected while the account is active.
	Delete(ctx context.Context, userID string) error
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, actorID string) ([]domain.User, error)
}

// ResetService implements the single-use password reset protocol.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	// ConsumeReset changes the password for userID, whose identity has
	// already been established by verifying token as a reset token. The
	// stored reset token must still equal the supplied one.
	ConsumeReset(ctx context.Context, userID, token, newPassword, confirmPassword string) error
}
