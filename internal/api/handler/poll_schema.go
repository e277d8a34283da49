package handler

import (
	"fmt"
	"time"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// --- Request types ---

type questionRequest struct {
	Text    string   `json:"text" validate:"required"`
	Type    string   `json:"type" validate:"required,oneof=text single multiple"`
	Options []string `json:"options"`
}

type pollSettingsRequest struct {
	Public          bool    `json:"public"`
	MultipleAnswers bool    `json:"multiple_answers"`
	ClosesAt        *string `json:"closes_at"`
}

type createPollRequest struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Questions   []questionRequest    `json:"questions" validate:"required,min=1,dive"`
	Settings    *pollSettingsRequest `json:"settings"`
}

type editPollRequest struct {
	PollID      string               `json:"poll_id" validate:"required"`
	Description *string              `json:"description"`
	Questions   []questionRequest    `json:"questions" validate:"omitempty,min=1,dive"`
	Settings    *pollSettingsRequest `json:"settings"`
}

type renamePollRequest struct {
	PollID string `json:"poll_id" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

type pollIDRequest struct {
	PollID string `json:"poll_id" validate:"required"`
}

type responseRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Value      string `json:"value" validate:"required"`
}

type answerPollRequest struct {
	PollID    string            `json:"poll_id" validate:"required"`
	Responses []responseRequest `json:"responses" validate:"required,min=1,dive"`
}

// --- Mapping helpers ---

func toDomainQuestions(in []questionRequest) []domain.Question {
	if in == nil {
		return nil
	}
	out := make([]domain.Question, 0, len(in))
	for _, q := range in {
		out = append(out, domain.Question{
			Text:    q.Text,
			Type:    q.Type,
			Options: q.Options,
		})
	}
	return out
}

// toDomainSettings parses the optional close timestamp as RFC 3339.
func toDomainSettings(in *pollSettingsRequest) (domain.PollSettings, error) {
	if in == nil {
		return domain.PollSettings{}, nil
	}
	settings := domain.PollSettings{
		Public:          in.Public,
		MultipleAnswers: in.MultipleAnswers,
	}
	if in.ClosesAt != nil && *in.ClosesAt != "" {
		ts, err := time.Parse(time.RFC3339, *in.ClosesAt)
		if err != nil {
			return domain.PollSettings{}, fmt.Errorf("closes_at must be RFC 3339: %w", err)
		}
		settings.ClosesAt = &ts
	}
	return settings, nil
}

func toDomainResponses(in []responseRequest) []domain.Response {
	out := make([]domain.Response, 0, len(in))
	for _, r := range in {
		out = append(out, domain.Response{QuestionID: r.QuestionID, Value: r.Value})
	}
	return out
}
