package ports

import (
	"context"
	"io"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// PasswordHasher is a one-way adaptive hash over local credentials.
// A mismatch during Verify is (false, nil); a non-nil error is a hashing
// failure and must surface as a system error, never as "wrong password".
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) (bool, error)
}

// FederatedIdentity is the claim set extracted from a verified external
// identity assertion.
type FederatedIdentity struct {
	Email     string
	Firstname string
	Lastname  string
	Username  string
}

// FederatedVerifier validates a raw external ID token and extracts the
// asserted identity. Verification happens here, inside the service boundary;
// callers never hand over an unverified assertion.
type FederatedVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*FederatedIdentity, error)
}

// EmailSender delivers out-of-band notifications. Best effort: a delivery
// failure never rolls back the operation that triggered the send.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResetThrottle bounds how often a password reset may be requested per
// address. Failures fail open.
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuditLogger records notable actions. Record is fire-and-forget: it never
// blocks and its failures are swallowed by the implementation.
type AuditLogger interface {
	Record(entry domain.AuditEntry)
}

// AuditRepository persists and queries audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	FindByType(ctx context.Context, logType string, limit int64) ([]domain.AuditEntry, error)
}

// FileStore is the object storage boundary for profile pictures and poll
// images. Put returns the public URL of the stored object.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
