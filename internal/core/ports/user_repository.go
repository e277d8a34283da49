package ports

import (
	"context"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// UserRepository is the persistence interface for account records.
// Username and email uniqueness is enforced at write time; a violation is
// reported as domain.ErrUserExists, lookups miss with domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsernameOrEmail returns any record matching either field. Used by
	// registration to detect duplicates and reactivation candidates.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// FindByRefreshToken resolves the account currently bound to the given
	// refresh token. A miss means the session was revoked or never existed.
	FindByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, excludeID string) ([]domain.User, error)
}
