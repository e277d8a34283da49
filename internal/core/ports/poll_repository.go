package ports

import (
	"context"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// PollRepository is the persistence interface for polls.
type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) error
	FindByID(ctx context.Context, id string) (*domain.Poll, error)
	Update(ctx context.Context, poll *domain.Poll) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository serves the read-only poll scaffolds.
type TemplateRepository interface {
	List(ctx context.Context) ([]domain.PollTemplate, error)
	FindByName(ctx context.Context, name string) (*domain.PollTemplate, error)
}
