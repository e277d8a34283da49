package domain

import "time"

// PollOwner is the denormalized owner reference embedded in a poll.
type PollOwner struct {
	ID       string `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
}

// Question is a single prompt within a poll.
type Question struct {
	ID      string   `json:"id" bson:"id"`
	Text    string   `json:"text" bson:"text"`
	Type    string   `json:"type" bson:"type"`
	Options []string `json:"options,omitempty" bson:"options,omitempty"`
}

// Response is one user's answer to one question.
type Response struct {
	QuestionID string `json:"question_id" bson:"question_id"`
	Value      string `json:"value" bson:"value"`
}

// Answer is one user's full submission for a poll.
type Answer struct {
	UserID     string     `json:"user_id" bson:"user_id"`
	Responses  []Response `json:"responses" bson:"responses"`
	AnsweredAt time.Time  `json:"answered_at" bson:"answered_at"`
}

// PollSettings controls visibility and submission rules.
type PollSettings struct {
	Public          bool       `json:"public" bson:"public"`
	MultipleAnswers bool       `json:"multiple_answers" bson:"multiple_answers"`
	ClosesAt        *time.Time `json:"closes_at,omitempty" bson:"closes_at,omitempty"`
}

// Poll is the poll aggregate. Answers are embedded; the collection is the
// unit of ownership checks (owner or admin may mutate).
type Poll struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Owner       PollOwner    `json:"owner" bson:"owner"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    string       `json:"image_url,omitempty" bson:"image_url,omitempty"`
	ImageKey    string       `json:"-" bson:"image_key,omitempty"`
	Questions   []Question   `json:"questions" bson:"questions"`
	Answers     []Answer     `json:"answers,omitempty" bson:"answers,omitempty"`
	Settings    PollSettings `json:"settings" bson:"settings"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// PollTemplate is a named, read-only poll scaffold.
type PollTemplate struct {
	Name   string     `json:"name" bson:"name"`
	Fields []Question `json:"fields" bson:"fields"`
}
