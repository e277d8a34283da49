package ports

import (
	"context"
	"io"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// ProfileService manages the account's profile picture in object storage.
type ProfileService interface {
	// SetPicture stores the picture under a per-user key and records its
	// public URL on the account. A previous picture is removed best-effort.
	SetPicture(ctx context.Context, userID, ext string, r io.Reader, contentType string) (*domain.User, error)
	// RemovePicture deletes the stored object and clears the account's
	// picture fields.
	RemovePicture(ctx context.Context, userID string) (*domain.User, error)
}
