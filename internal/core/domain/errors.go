package domain

import "errors"

// Credential and session errors. Login failures that would reveal whether an
// account exists are all collapsed into ErrInvalidCredentials by the services.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDeactivated    = errors.New("user is deactivated")
	ErrFederatedAccount   = errors.New("account uses federated sign-in")
	ErrLocalAccount       = errors.New("email is bound to a local account")
	ErrSessionNotFound    = errors.New("no session for token")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrTokenMismatch      = errors.New("token subject mismatch")
	ErrResetNotRequested  = errors.New("no password reset in flight")
	ErrPasswordConfirm    = errors.New("passwords do not match")
	ErrPasswordReused     = errors.New("new password matches the current one")
	ErrAccountActive      = errors.New("account must be deactivated first")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyResets      = errors.New("reset recently requested")
)

// Poll and upload errors.
var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoPicture        = errors.New("profile picture not found")
)
