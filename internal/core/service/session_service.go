package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// SessionService implements login, refresh and logout on top of the user
// repository and token issuer. The stored refresh token is the single-slot
// session registry: overwriting or clearing it revokes all holders of the
// previous value instantly.
type SessionService struct {
	repo      ports.UserRepository
	tokens    ports.TokenIssuer
	hasher    ports.PasswordHasher
	federated ports.FederatedVerifier
	audit     ports.AuditLogger
	logger    zerolog.Logger
}

func NewSessionService(
	repo ports.UserRepository,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	federated ports.FederatedVerifier,
	audit ports.AuditLogger,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		federated: federated,
		audit:     audit,
		logger:    logger,
	}
}

// Login authenticates a local account. An unknown username and a wrong
// password both come back as domain.ErrInvalidCredentials so the response
// cannot be used to enumerate accounts.
func (s *SessionService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.Federated {
		return nil, domain.ErrFederatedAccount
	}
	if !user.Active {
		return nil, domain.ErrUserDeactivated
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// FederatedLogin verifies the external ID token, resolves or creates the
// local account, and opens a session. Local-password accounts and federated
// accounts never merge: an email bound to one path rejects the other.
func (s *SessionService) FederatedLogin(ctx context.Context, rawIDToken string) (*ports.LoginResult, error) {
	ident, err := s.federated.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if ident.Email == "" {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(ident.Email))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.createFederatedUser(ctx, ident)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !user.Federated:
		return nil, domain.ErrLocalAccount
	case !user.Active:
		// No password to verify, so self-serve reactivation does not apply.
		return nil, domain.ErrUserDeactivated
	}

	return s.openSession(ctx, user)
}

// Refresh mints a new access token for the session bound to refreshToken.
// The stored value is checked first: a cryptographically valid token that no
// longer matches any record has been revoked. A subject mismatch between the
// token and the record it was found on signals tampering.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.repo.FindByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}

	subject, err := s.tokens.Verify(ports.TokenKindRefresh, refreshToken)
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	if subject != user.ID {
		return "", domain.ErrTokenMismatch
	}

	return s.tokens.Issue(ports.TokenKindAccess, user.ID)
}

// Logout clears the session holding refreshToken. Idempotent: a token with
// no matching session is a no-op success.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.repo.FindByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	user.RefreshToken = ""
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "user logged out",
		Type:     domain.AuditTypeAuth,
	})
	return nil
}

// openSession issues the token pair and overwrites the stored refresh token,
// which invalidates any prior session for the account. Any reset token in
// flight is cleared as well.
func (s *SessionService) openSession(ctx context.Context, user *domain.User) (*ports.LoginResult, error) {
	access, err := s.tokens.Issue(ports.TokenKindAccess, user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(ports.TokenKindRefresh, user.ID)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = refresh
	user.ResetToken = ""
	user.LastLoginAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("session opened")
	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "user logged in",
		Type:     domain.AuditTypeAuth,
	})

	return &ports.LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.tokens.TTL(ports.TokenKindRefresh),
	}, nil
}

func (s *SessionService) createFederatedUser(ctx context.Context, ident *ports.FederatedIdentity) (*domain.User, error) {
	// The schema requires a secret, so federated accounts get a hash of a
	// random value that is never accepted by any verification path.
	placeholder, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	username := ident.Username
	if username == "" {
		username = strings.SplitN(ident.Email, "@", 2)[0]
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Firstname:    ident.Firstname,
		Lastname:     ident.Lastname,
		Username:     username,
		Email:        strings.ToLower(ident.Email),
		PasswordHash: placeholder,
		Active:       true,
		Federated:    true,
		RegisteredAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Email was free but the derived username collides with an
			// existing account: retry once with a disambiguated name.
			user.Username = fmt.Sprintf("%s-%s", username, user.ID[:8])
			return s.repo.Create(ctx, user)
		}
		return nil, err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   created.ID,
		Username: created.Username,
		Message:  "federated account created",
		Type:     domain.AuditTypeAuth,
	})
	return created, nil
}
