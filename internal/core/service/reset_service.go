package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

const resetEmailSubject = "Reset your password"

// ResetService issues and consumes single-use password reset tokens. The
// stored reset token is the revocation anchor: issuing a new one, or any
// successful login, invalidates whatever was outstanding.
type ResetService struct {
	repo     ports.UserRepository
	tokens   ports.TokenIssuer
	hasher   ports.PasswordHasher
	email    ports.EmailSender
	throttle ports.ResetThrottle
	audit    ports.AuditLogger
	logger   zerolog.Logger

	// resetURL is the page the emailed link points at; the token rides in
	// its query string.
	resetURL string
}

func NewResetService(
	repo ports.UserRepository,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	email ports.EmailSender,
	throttle ports.ResetThrottle,
	audit ports.AuditLogger,
	logger zerolog.Logger,
	resetURL string,
) *ResetService {
	return &ResetService{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		email:    email,
		throttle: throttle,
		audit:    audit,
		logger:   logger,
		resetURL: resetURL,
	}
}

// RequestReset issues a fresh reset token for the account behind email,
// overwriting any outstanding one, and hands the link off for delivery.
// Delivery is fire-and-forget: its failure does not undo token issuance.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Federated {
		return domain.ErrFederatedAccount
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// Fail open: a broken limiter must not lock users out of resets.
		s.logger.Warn().Err(err).Msg("reset throttle unavailable")
	} else if !allowed {
		return domain.ErrTooManyResets
	}

	token, err := s.tokens.Issue(ports.TokenKindReset, user.ID)
	if err != nil {
		return err
	}

	user.ResetToken = token
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	go s.sendResetEmail(user.Email, token)

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "password reset requested",
		Type:     domain.AuditTypeAuth,
	})
	return nil
}

// ConsumeReset changes the password for userID. The caller's identity comes
// from the already-verified reset token; here the token must additionally
// equal the stored value, which covers expiry-independent invalidation.
func (s *ResetService) ConsumeReset(ctx context.Context, userID, token, newPassword, confirmPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.ResetToken == "" || user.ResetToken != token {
		return domain.ErrResetNotRequested
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordConfirm
	}

	same, err := s.hasher.Verify(newPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if same {
		return domain.ErrPasswordReused
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "password changed via reset",
		Type:     domain.AuditTypeAuth,
	})
	return nil
}

func (s *ResetService) sendResetEmail(to, token string) {
	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=%q>Reset your password</a> (the link expires in 10 minutes).</p>"+
			"<p>If you did not request this, you can ignore this email.</p>", link)

	if err := s.email.Send(context.Background(), to, resetEmailSubject, body); err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("reset email delivery failed")
	}
}
