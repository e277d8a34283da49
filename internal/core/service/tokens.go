package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// Default token lifetimes, applied when the config leaves them zero.
const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultResetTTL   = 10 * time.Minute
)

// TokenConfig holds one independent signing secret and expiry per token kind.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// JWTIssuer issues and verifies the three token kinds as HS256 JWTs carrying
// the subject's user id and an expiry claim.
type JWTIssuer struct {
	secrets map[ports.TokenKind][]byte
	ttls    map[ports.TokenKind]time.Duration
}

// NewJWTIssuer applies the default lifetime for any TTL left unset. A
// non-zero TTL is taken as-is, negative included, so callers can mint
// already-expired tokens.
func NewJWTIssuer(cfg TokenConfig) *JWTIssuer {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	return &JWTIssuer{
		secrets: map[ports.TokenKind][]byte{
			ports.TokenKindAccess:  []byte(cfg.AccessSecret),
			ports.TokenKindRefresh: []byte(cfg.RefreshSecret),
			ports.TokenKindReset:   []byte(cfg.ResetSecret),
		},
		ttls: map[ports.TokenKind]time.Duration{
			ports.TokenKindAccess:  cfg.AccessTTL,
			ports.TokenKindRefresh: cfg.RefreshTTL,
			ports.TokenKindReset:   cfg.ResetTTL,
		},
	}
}

func (i *JWTIssuer) Issue(kind ports.TokenKind, subjectID string) (string, error) {
	secret, ok := i.secrets[kind]
	if !ok {
		return "", fmt.Errorf("issue token: unknown kind %q", kind)
	}

	// The jti makes every issued token distinct. Revocation compares the
	// presented token against the stored one, so two logins in the same
	// second must still produce different strings.
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttls[kind])),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks signature and expiry against the kind's secret and returns
// the subject id. It does not consult storage: store equality for refresh
// and reset tokens is the caller's responsibility.
func (i *JWTIssuer) Verify(kind ports.TokenKind, token string) (string, error) {
	secret, ok := i.secrets[kind]
	if !ok {
		return "", fmt.Errorf("verify token: unknown kind %q", kind)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (i *JWTIssuer) TTL(kind ports.TokenKind) time.Duration {
	return i.ttls[kind]
}
