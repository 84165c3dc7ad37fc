package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	token, err := GenerateToken("01HZX3T9K4", "editor@example.com", true)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "01HZX3T9K4" {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, "01HZX3T9K4")
	}
	if claims.Email != "editor@example.com" {
		t.Errorf("claims.Email = %q, want %q", claims.Email, "editor@example.com")
	}
	if !claims.IsAdmin {
		t.Error("claims.IsAdmin = false, want true")
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	InitializeJWT("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	token, err := GenerateToken("01HZX3T9K4", "editor@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "zz"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("ValidateToken() accepted a tampered token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	InitializeJWT("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	token, err := GenerateToken("01HZX3T9K4", "editor@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	InitializeJWT(strings.Repeat("f", 64))
	if _, err := ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with a different secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("sekret-passphrase")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "sekret-passphrase" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := VerifyPassword("sekret-passphrase", hash); err != nil {
		t.Errorf("VerifyPassword() with correct password: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("VerifyPassword() accepted the wrong password")
	}
}
