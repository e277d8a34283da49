package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// PollService implements poll CRUD and answering. Ownership checks live
// here; everything else is read-validate-write glue over the repository.
type PollService struct {
	polls     ports.PollRepository
	templates ports.TemplateRepository
	users     ports.UserRepository
	audit     ports.AuditLogger
	logger    zerolog.Logger
}

func NewPollService(
	polls ports.PollRepository,
	templates ports.TemplateRepository,
	users ports.UserRepository,
	audit ports.AuditLogger,
	logger zerolog.Logger,
) *PollService {
	return &PollService{polls: polls, templates: templates, users: users, audit: audit, logger: logger}
}

func (s *PollService) Create(ctx context.Context, ownerID string, in ports.CreatePollInput) (*domain.Poll, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	poll := &domain.Poll{
		ID:          uuid.NewString(),
		Owner:       domain.PollOwner{ID: owner.ID, Username: owner.Username},
		Title:       in.Title,
		Description: in.Description,
		Questions:   in.Questions,
		Settings:    in.Settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range poll.Questions {
		if poll.Questions[i].ID == "" {
			poll.Questions[i].ID = uuid.NewString()
		}
	}

	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}

	owner.PollsCreated = append(owner.PollsCreated, poll.ID)
	if err := s.users.Update(ctx, owner); err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:   owner.ID,
		Username: owner.Username,
		PollID:   poll.ID,
		Message:  "poll created",
		Type:     domain.AuditTypePolls,
	})
	return poll, nil
}

// Get returns the poll and tracks the visit on the viewer's record.
func (s *PollService) Get(ctx context.Context, id, viewerID string) (*domain.Poll, error) {
	poll, err := s.polls.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerID != "" && viewerID != poll.Owner.ID {
		if viewer, err := s.users.FindByID(ctx, viewerID); err == nil && !contains(viewer.PollsVisited, id) {
			viewer.PollsVisited = append(viewer.PollsVisited, id)
			if err := s.users.Update(ctx, viewer); err != nil {
				s.logger.Warn().Err(err).Str("user_id", viewerID).Msg("visit tracking failed")
			}
		}
	}
	return poll, nil
}

func (s *PollService) Edit(ctx context.Context, pollID, actorID string, in ports.EditPollInput) (*domain.Poll, error) {
	poll, err := s.authorizeMutation(ctx, pollID, actorID)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		poll.Description = *in.Description
	}
	if in.Questions != nil {
		poll.Questions = in.Questions
	}
	if in.Settings != nil {
		poll.Settings = *in.Settings
	}
	poll.UpdatedAt = time.Now().UTC()

	if err := s.polls.Update(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *PollService) Rename(ctx context.Context, pollID, actorID, title string) (*domain.Poll, error) {
	poll, err := s.authorizeMutation(ctx, pollID, actorID)
	if err != nil {
		return nil, err
	}

	poll.Title = title
	poll.UpdatedAt = time.Now().UTC()
	if err := s.polls.Update(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *PollService) Delete(ctx context.Context, pollID, actorID string) error {
	poll, err := s.authorizeMutation(ctx, pollID, actorID)
	if err != nil {
		return err
	}

	if err := s.polls.Delete(ctx, pollID); err != nil {
		return err
	}

	s.audit.Record(domain.AuditEntry{
		UserID:  actorID,
		PollID:  poll.ID,
		Message: "poll deleted",
		Type:    domain.AuditTypePolls,
	})
	return nil
}

// Answer appends a submission and tracks it on the answering user. Repeat
// submissions are rejected unless the poll allows them.
func (s *PollService) Answer(ctx context.Context, pollID, userID string, responses []domain.Response) error {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return err
	}

	if !poll.Settings.MultipleAnswers {
		for _, a := range poll.Answers {
			if a.UserID == userID {
				return domain.ErrForbidden
			}
		}
	}

	poll.Answers = append(poll.Answers, domain.Answer{
		UserID:     userID,
		Responses:  responses,
		AnsweredAt: time.Now().UTC(),
	})
	if err := s.polls.Update(ctx, poll); err != nil {
		return err
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil && !contains(user.PollsAnswered, pollID) {
		user.PollsAnswered = append(user.PollsAnswered, pollID)
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("answer tracking failed")
		}
	}
	return nil
}

func (s *PollService) ListAnswers(ctx context.Context, pollID, actorID string) ([]domain.Answer, error) {
	poll, err := s.authorizeMutation(ctx, pollID, actorID)
	if err != nil {
		return nil, err
	}
	return poll.Answers, nil
}

func (s *PollService) Templates(ctx context.Context) ([]domain.PollTemplate, error) {
	return s.templates.List(ctx)
}

func (s *PollService) Template(ctx context.Context, name string) (*domain.PollTemplate, error) {
	return s.templates.FindByName(ctx, name)
}

// authorizeMutation loads the poll and verifies the actor is its owner or an
// admin.
func (s *PollService) authorizeMutation(ctx context.Context, pollID, actorID string) (*domain.Poll, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Owner.ID == actorID {
		return poll, nil
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}
	return poll, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
