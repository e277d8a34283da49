package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

func testIssuer() *JWTIssuer {
	return NewJWTIssuer(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
	})
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	for _, kind := range []ports.TokenKind{ports.TokenKindAccess, ports.TokenKindRefresh, ports.TokenKindReset} {
		token, err := issuer.Issue(kind, "user-1")
		if err != nil {
			t.Fatalf("issue %s: %v", kind, err)
		}
		subject, err := issuer.Verify(kind, token)
		if err != nil {
			t.Fatalf("verify %s: %v", kind, err)
		}
		if subject != "user-1" {
			t.Fatalf("expected subject user-1, got %q", subject)
		}
	}
}

func TestJWTIssuer_KindsAreIndependent(t *testing.T) {
	issuer := testIssuer()

	access, err := issuer.Issue(ports.TokenKindAccess, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// An access token must not verify as a refresh or reset token.
	if _, err := issuer.Verify(ports.TokenKindRefresh, access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := issuer.Verify(ports.TokenKindReset, access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

// Revocation overwrites the stored token with a newly issued one, so two
// tokens for the same subject must never be byte-identical even when issued
// within the same second.
func TestJWTIssuer_IssuedTokensDiffer(t *testing.T) {
	issuer := testIssuer()

	for _, kind := range []ports.TokenKind{ports.TokenKindRefresh, ports.TokenKindReset} {
		first, err := issuer.Issue(kind, "user-1")
		if err != nil {
			t.Fatalf("issue %s: %v", kind, err)
		}
		second, err := issuer.Issue(kind, "user-1")
		if err != nil {
			t.Fatalf("issue %s: %v", kind, err)
		}
		if first == second {
			t.Fatalf("%s tokens issued back-to-back are byte-identical", kind)
		}
	}
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer(TokenConfig{
		AccessSecret: "access-secret",
		AccessTTL:    -time.Minute,
	})

	token, err := issuer.Issue(ports.TokenKindAccess, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Verify(ports.TokenKindAccess, token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestJWTIssuer_Garbage(t *testing.T) {
	issuer := testIssuer()

	if _, err := issuer.Verify(ports.TokenKindAccess, "not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTIssuer_DefaultTTLs(t *testing.T) {
	issuer := NewJWTIssuer(TokenConfig{})

	if got := issuer.TTL(ports.TokenKindAccess); got != defaultAccessTTL {
		t.Fatalf("access TTL: got %v", got)
	}
	if got := issuer.TTL(ports.TokenKindRefresh); got != defaultRefreshTTL {
		t.Fatalf("refresh TTL: got %v", got)
	}
	if got := issuer.TTL(ports.TokenKindReset); got != defaultResetTTL {
		t.Fatalf("reset TTL: got %v", got)
	}
}

// Only an unset TTL falls back to the default; a negative one is kept so
// tests can mint tokens that are already expired.
func TestJWTIssuer_NegativeTTLKept(t *testing.T) {
	issuer := NewJWTIssuer(TokenConfig{
		AccessSecret: "access-secret",
		AccessTTL:    -time.Minute,
	})

	if got := issuer.TTL(ports.TokenKindAccess); got != -time.Minute {
		t.Fatalf("expected -1m TTL to be kept, got %v", got)
	}
}
