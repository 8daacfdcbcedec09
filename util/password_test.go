package util

import (
	"strings"
	"testing"
)

func TestHashPasswordVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.Contains(hash, ":") {
		t.Fatalf("hash missing salt separator: %q", hash)
	}
	if !VerifyPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword("hunter23", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordUsesFreshSalts(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	if VerifyPassword("anything", "not-a-valid-record") {
		t.Fatal("malformed stored hash verified")
	}
}

func TestSanitizeTextStripsMarkup(t *testing.T) {
	got := SanitizeText("  hi <script>alert(1)</script>there ")
	if got != "hi there" {
		t.Fatalf("SanitizeText = %q", got)
	}
}

func TestUsernameFromEmail(t *testing.T) {
	if got := UsernameFromEmail("First Last@example.com"); got != "firstlast" {
		t.Fatalf("UsernameFromEmail = %q", got)
	}
	if got := UsernameFromEmail("plainstring"); got != "plainstring" {
		t.Fatalf("UsernameFromEmail = %q", got)
	}
}
