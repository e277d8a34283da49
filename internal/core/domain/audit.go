package domain

import "time"

// Audit entry types, used as the collection filter for the admin log view.
const (
	AuditTypeUsers = "users"
	AuditTypeAuth  = "auth"
	AuditTypePolls = "polls"
)

// AuditEntry is a fire-and-forget record of a notable action. Recording one
// must never block or fail the request that produced it.
type AuditEntry struct {
	ID       string    `json:"id" bson:"_id,omitempty"`
	UserID   string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Username string    `json:"username,omitempty" bson:"username,omitempty"`
	PollID   string    `json:"poll_id,omitempty" bson:"poll_id,omitempty"`
	Message  string    `json:"message" bson:"message"`
	Type     string    `json:"type" bson:"type"`
	IsError  bool      `json:"is_error" bson:"is_error"`
	LoggedAt time.Time `json:"logged_at" bson:"logged_at"`
}
