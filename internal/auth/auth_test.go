package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.NewString()
	tests := []struct {
		name  string
		owner string
		actor string
		ok    bool
	}{
		{name: "owner", owner: owner, actor: owner, ok: true},
		{name: "other user", owner: owner, actor: uuid.NewString()},
		{name: "anonymous", owner: owner, actor: ""},
		{name: "ownerless", owner: "", actor: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.owner, tt.actor)
			if tt.ok && err != nil {
				t.Fatalf("expected owner to pass, got %v", err)
			}
			if !tt.ok && !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("expected Unauthorized, got %v", err)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if got := IdentityFromContext(ctx); got != "" {
		t.Fatalf("expected anonymous context, got %q", got)
	}
	if _, err := RequireIdentity(ctx); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	id := uuid.NewString()
	ctx = WithIdentity(ctx, id)
	got, err := RequireIdentity(ctx)
	if err != nil || got != id {
		t.Fatalf("expected %q, got %q (%v)", id, got, err)
	}
	if WithIdentity(ctx, "") != ctx {
		t.Fatal("expected empty identity to leave context untouched")
	}
}

func TestVerifierRoundTrip(t *testing.T) {
	v, err := NewVerifier("test-secret", "vidtube-identity")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	id := uuid.NewString()
	token, err := v.Sign(id, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != id {
		t.Fatalf("expected subject %q, got %q", id, got)
	}
}

func TestVerifierRejections(t *testing.T) {
	v, _ := NewVerifier("test-secret", "vidtube-identity")
	other, _ := NewVerifier("other-secret", "vidtube-identity")
	wrongIssuer, _ := NewVerifier("test-secret", "someone-else")

	expired, _ := v.Sign(uuid.NewString(), -time.Hour)
	forged, _ := other.Sign(uuid.NewString(), time.Minute)
	badSubject, _ := v.Sign("not-a-user", time.Minute)
	foreign, _ := wrongIssuer.Sign(uuid.NewString(), time.Minute)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := map[string]string{
		"expired":      expired,
		"forged":       forged,
		"bad subject":  badSubject,
		"wrong issuer": foreign,
		"alg none":     unsigned,
		"garbage":      "a.b.c",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	if _, err := v.Verify("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := NewVerifier("", ""); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
		"Bearer":       "",
	}
	for header, want := range tests {
		if got := BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
