package authseam

import (
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	seam := New([]byte("unit-test-secret"))

	token, expiresAt, err := seam.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiresAt = %v, want a time in the future", expiresAt)
	}

	subject, err := seam.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if subject != "admin" {
		t.Fatalf("Verify() subject = %q, want %q", subject, "admin")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	seam := New([]byte("unit-test-secret"))

	token, _, err := seam.Issue("admin", -time.Second)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := seam.Verify(token); err == nil {
		t.Fatal("Verify() of an expired token succeeded, want error")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := New([]byte("issuer-secret"))
	verifier := New([]byte("different-secret"))

	token, _, err := issuer.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("Verify() with the wrong secret succeeded, want error")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	seam := New([]byte("unit-test-secret"))
	if _, err := seam.Verify("not-a-jwt"); err == nil {
		t.Fatal("Verify() of malformed input succeeded, want error")
	}
}

func TestIssueTokensHaveDistinctIDs(t *testing.T) {
	seam := New([]byte("unit-test-secret"))

	tokenA, _, err := seam.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	tokenB, _, err := seam.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if tokenA == tokenB {
		t.Fatal("two Issue() calls returned identical tokens, want distinct jti claims")
	}
}
