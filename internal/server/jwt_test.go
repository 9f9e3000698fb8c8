package server

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := generateAccessToken("secret", "viewer@example.com")
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	claims, err := validateToken("secret", token)
	if err != nil {
		t.Fatalf("validateToken: %v", err)
	}
	if claims.Email != "viewer@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "viewer@example.com")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := generateAccessToken("secret", "viewer@example.com")
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	if _, err := validateToken("other-secret", token); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := validateToken("secret", "not.a.token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}
