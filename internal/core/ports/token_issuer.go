package ports

import "time"

// TokenKind selects which signing secret and expiry a token is issued and
// verified with. The three kinds are cryptographically independent.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindReset   TokenKind = "reset"
)

// TokenIssuer creates and validates signed, time-limited tokens. Verification
// is stateless: signature and expiry only. For refresh and reset tokens the
// caller must additionally compare against the value stored on the account
// record, which is what makes revocation effective.
type TokenIssuer interface {
	Issue(kind TokenKind, subjectID string) (string, error)
	// Verify returns the subject id carried by the token, or
	// domain.ErrTokenInvalid on any signature, expiry or kind mismatch.
	Verify(kind TokenKind, token string) (string, error)
	TTL(kind TokenKind) time.Duration
}
