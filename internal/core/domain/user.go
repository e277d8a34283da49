package domain

import "time"

// User models an account in the system. The record is the source of truth for
// session revocation: only the refresh token stored here authorizes a refresh,
// regardless of the token's own cryptographic validity.
type User struct {
	ID           string `json:"id"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RefreshToken string `json:"-"`
	ResetToken   string `json:"-"`
	Active       bool   `json:"active"`
	Admin        bool   `json:"admin"`

	// Federated marks accounts created through an external identity
	// provider. Once set, the local-password login and password-reset
	// paths are permanently rejected for the account.
	Federated bool `json:"federated"`

	ProfilePicURL string `json:"profile_pic_url,omitempty"`
	ProfilePicKey string `json:"-"`

	PollsCreated  []string `json:"polls_created,omitempty"`
	PollsAnswered []string `json:"polls_answered,omitempty"`
	PollsVisited  []string `json:"polls_visited,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// HasSession reports whether the account currently holds a live refresh token.
func (u *User) HasSession() bool {
	return u.RefreshToken != ""
}
