package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// ProfileService stores profile pictures through the file store and keeps the
// account record pointing at the current object.
type ProfileService struct {
	repo   ports.UserRepository
	store  ports.FileStore
	audit  ports.AuditLogger
	logger zerolog.Logger
}

func NewProfileService(repo ports.UserRepository, store ports.FileStore, audit ports.AuditLogger, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, store: store, audit: audit, logger: logger}
}

// SetPicture uploads the picture and records its URL on the account. The key
// embeds the extension, so changing formats leaves a stale object behind;
// the old key is removed best-effort to cover that case.
func (s *ProfileService) SetPicture(ctx context.Context, userID, ext string, r io.Reader, contentType string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile/%s%s", user.ID, ext)
	url, err := s.store.Put(ctx, key, r, contentType)
	if err != nil {
		return nil, err
	}

	if user.ProfilePicKey != "" && user.ProfilePicKey != key {
		if err := s.store.Delete(ctx, user.ProfilePicKey); err != nil {
			s.logger.Warn().Err(err).Str("key", user.ProfilePicKey).Msg("stale profile picture not removed")
		}
	}

	user.ProfilePicKey = key
	user.ProfilePicURL = url
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "profile picture updated",
		Type:     domain.AuditTypeUsers,
	})
	return user, nil
}

// RemovePicture deletes the stored object and clears the picture fields.
func (s *ProfileService) RemovePicture(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePicKey == "" {
		return nil, domain.ErrNoPicture
	}

	if err := s.store.Delete(ctx, user.ProfilePicKey); err != nil {
		s.logger.Warn().Err(err).Str("key", user.ProfilePicKey).Msg("profile picture object not removed")
	}

	user.ProfilePicKey = ""
	user.ProfilePicURL = ""
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "profile picture removed",
		Type:     domain.AuditTypeUsers,
	})
	return user, nil
}
