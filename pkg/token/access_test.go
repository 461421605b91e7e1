package token

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("secret")

	tok, err := GenerateAccessToken(42, "sess-1", secret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := VerifyToken(tok, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	id, err := UserID(claims)
	if err != nil || id != 42 {
		t.Errorf("user id = %d, err = %v", id, err)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("session id = %q", claims.SessionID)
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	secret := []byte("secret")

	expired, _ := GenerateAccessToken(1, "", secret, -time.Minute)
	foreign, _ := GenerateAccessToken(1, "", []byte("other"), time.Minute)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"garbage":      "not-a-token",
	} {
		if _, err := VerifyToken(tok, secret); err == nil {
			t.Errorf("%s: token accepted", name)
		}
	}
}
