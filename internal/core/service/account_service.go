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

// registrationDecision is the outcome of matching a registration attempt
// against the existing record, if any.
type registrationDecision int

const (
	decisionCreate registrationDecision = iota
	decisionReactivate
	decisionConflict
)

// resolveRegistration decides how a registration attempt interacts with an
// existing record. A dormant account is a reactivation candidate rather than
// a duplicate: answering "username taken" for it would leak its existence
// and block legitimate self-reactivation.
func resolveRegistration(existing *domain.User) registrationDecision {
	switch {
	case existing == nil:
		return decisionCreate
	case !existing.Active:
		return decisionReactivate
	default:
		return decisionConflict
	}
}

// AccountService governs registration, activation toggling and deletion.
type AccountService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	audit  ports.AuditLogger
	logger zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, hasher ports.PasswordHasher, audit ports.AuditLogger, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, audit: audit, logger: logger}
}

// Register creates a new active account, or reactivates a dormant one when
// the supplied password matches its stored hash. An active duplicate is a
// conflict regardless of password correctness.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (ports.RegistrationOutcome, error) {
	email := strings.ToLower(in.Email)

	existing, err := s.repo.FindByUsernameOrEmail(ctx, in.Username, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", err
	}

	switch resolveRegistration(existing) {
	case decisionCreate:
		return ports.OutcomeCreated, s.create(ctx, in, email)

	case decisionReactivate:
		// A federated account carries only a placeholder hash, so this
		// verification can never succeed for it.
		ok, err := s.hasher.Verify(in.Password, existing.PasswordHash)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.ErrInvalidCredentials
		}
		existing.Active = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return "", err
		}
		s.audit.Record(domain.AuditEntry{
			UserID:   existing.ID,
			Username: existing.Username,
			Message:  "account reactivated via registration",
			Type:     domain.AuditTypeUsers,
		})
		return ports.OutcomeReactivated, nil

	default:
		return "", domain.ErrUserExists
	}
}

func (s *AccountService) create(ctx context.Context, in ports.RegisterInput, email string) error {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		RegisteredAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("account created")
	s.audit.Record(domain.AuditEntry{
		UserID:   created.ID,
		Username: created.Username,
		Message:  "account registered",
		Type:     domain.AuditTypeUsers,
	})
	return nil
}

// SetActiveState toggles the active flag. The actor may target itself, or
// another account when it is an admin. Deactivation clears the stored
// refresh token, forcing logout everywhere.
func (s *AccountService) SetActiveState(ctx context.Context, actorID, targetID string, active bool) (*domain.User, error) {
	if targetID == "" {
		targetID = actorID
	}
	if targetID != actorID {
		actor, err := s.repo.FindByID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !actor.Admin {
			return nil, domain.ErrForbidden
		}
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Active == active {
		return target, nil
	}

	target.Active = active
	if !active {
		target.RefreshToken = ""
	}
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	s.audit.Record(domain.AuditEntry{
		UserID:   target.ID,
		Username: target.Username,
		Message:  fmt.Sprintf("user %s", state),
		Type:     domain.AuditTypeUsers,
	})
	return target, nil
}

// SetAdminState flips the admin flag on targetID. Admin only.
func (s *AccountService) SetAdminState(ctx context.Context, actorID, targetID string) (*domain.User, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	target.Admin = !target.Admin
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}

	verb := "revoked from"
	if target.Admin {
		verb = "granted to"
	}
	s.audit.Record(domain.AuditEntry{
		UserID:   target.ID,
		Username: target.Username,
		Message:  fmt.Sprintf("admin permission %s %s by %s", verb, target.Username, actor.Username),
		Type:     domain.AuditTypeUsers,
	})
	return target, nil
}

// Delete removes an account permanently. Only inactive accounts may be
// deleted; an active one must be deactivated first.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Active {
		return domain.ErrAccountActive
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "account deleted",
		Type:     domain.AuditTypeUsers,
	})
	return nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every account except the caller's own. Admin only.
func (s *AccountService) List(ctx context.Context, actorID string) ([]domain.User, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx, actorID)
}
