package service

import (
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("player-123")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	playerID, err := ResolvePlayerID(token)
	if err != nil {
		t.Fatalf("ResolvePlayerID: %v", err)
	}
	if playerID != "player-123" {
		t.Fatalf("player id = %q; want player-123", playerID)
	}
}

func TestResolvePlayerIDRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	cases := []string{
		"",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiJ9.e30.invalid",
	}
	for _, tc := range cases {
		if _, err := ResolvePlayerID(tc); err == nil {
			t.Fatalf("expected error for %q", tc)
		}
	}
}

func TestResolvePlayerIDRejectsForeignSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateJWT("player-123")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	InitJWT("secret-b")
	if _, err := ResolvePlayerID(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestInitJWTPanicsOnEmptySecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty secret")
		}
	}()
	InitJWT("")
}
