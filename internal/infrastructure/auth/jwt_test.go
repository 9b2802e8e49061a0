package auth

import (
	"testing"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.GenerateSessionToken(entity.SessionClaims{
		UserID:  "user-1",
		Name:    "Anna",
		Email:   "anna@example.com",
		Picture: "https://cdn/anna.png",
	}, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := m.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claims.UserID != "user-1" || claims.Name != "Anna" || claims.Picture != "https://cdn/anna.png" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestSessionTokenRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTManager("other").GenerateSessionToken(entity.SessionClaims{UserID: "u"}, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewJWTManager("test-secret").ValidateSessionToken(token); err == nil {
		t.Error("expected signature mismatch to be rejected")
	}
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.GenerateSessionToken(entity.SessionClaims{UserID: "u"}, -time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := m.ValidateSessionToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}
