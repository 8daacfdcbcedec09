package token

import (
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	claims := &Claims{Sub: "user-1", Email: "a@msu.edu", Sid: "sess-1"}
	raw, err := Sign(claims, "secret", DefaultTTL)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, err := Verify(raw, "secret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Sub != "user-1" || got.Email != "a@msu.edu" || got.Sid != "sess-1" {
		t.Fatalf("claims mismatch: %+v", got)
	}
	if got.Exp <= got.Iat {
		t.Fatalf("exp %v should be after iat %v", got.Exp, got.Iat)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := Sign(&Claims{Sub: "user-1"}, "secret", DefaultTTL)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(raw, "other-secret"); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	raw, err := Sign(&Claims{Sub: "user-1"}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(raw, "secret"); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
		if _, err := Verify(raw, "secret"); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
