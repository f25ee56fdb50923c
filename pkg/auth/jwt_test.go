package auth

import (
	"errors"
	"testing"
	"time"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("secret")

	token, err := v.GenerateToken(7, "amina", RoleSuperadmin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := v.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "amina" || !claims.IsSuperadmin() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("one").GenerateToken(1, "x", RoleEmployee, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewVerifier("two").ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.GenerateToken(1, "x", RoleEmployee, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := v.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_RejectsMissingRole(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.GenerateToken(1, "x", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := v.ValidateToken(token); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}
