package ports

import (
	"context"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// CreatePollInput is the validated payload for poll creation.
type CreatePollInput struct {
	Title       string
	Description string
	Questions   []domain.Question
	Settings    domain.PollSettings
}

// EditPollInput carries a partial update; nil fields are left untouched.
type EditPollInput struct {
	Description *string
	Questions   []domain.Question
	Settings    *domain.PollSettings
}

// PollService implements poll CRUD and answering. Mutations require the
// caller to be the owner or an admin.
type PollService interface {
	Create(ctx context.Context, ownerID string, in CreatePollInput) (*domain.Poll, error)
	Get(ctx context.Context, id, viewerID string) (*domain.Poll, error)
	Edit(ctx context.Context, pollID, actorID string, in EditPollInput) (*domain.Poll, error)
	Rename(ctx context.Context, pollID, actorID, title string) (*domain.Poll, error)
	Delete(ctx context.Context, pollID, actorID string) error
	Answer(ctx context.Context, pollID, userID string, responses []domain.Response) error
	ListAnswers(ctx context.Context, pollID, actorID string) ([]domain.Answer, error)
	Templates(ctx context.Context) ([]domain.PollTemplate, error)
	Template(ctx context.Context, name string) (*domain.PollTemplate, error)
}
