package auth

import (
	"testing"
	"time"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "ledger-test", time.Hour)
	tok, exp, err := tm.Generate("alice", "standard")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v already past", exp)
	}
	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Username != "alice" || claims.Role != "standard" {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _, err := NewTokenManager("secret-a", "ledger-test", time.Hour).Generate("alice", "standard")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("secret-b", "ledger-test", time.Hour).Parse(tok); err == nil {
		t.Fatal("token signed with another secret parsed")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	tok, _, err := NewTokenManager("secret", "other-service", time.Hour).Generate("alice", "standard")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("secret", "ledger-test", time.Hour).Parse(tok); err == nil {
		t.Fatal("token from another issuer parsed")
	}
}
