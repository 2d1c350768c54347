package security

import (
	"testing"
	"time"

	"applygate/internal/common"
)

func TestJWTRoundTrip(t *testing.T) {
	provider := NewJWTProvider("secret")
	userID := common.NewUUID()

	token, expiresAt, err := provider.Generate(userID, "applicant", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expected expiry in the future")
	}

	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if claims.UserID != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != "applicant" {
		t.Fatalf("expected applicant role, got %s", claims.Role)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTProvider("secret").Generate(common.NewUUID(), "applicant", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := NewJWTProvider("other").Parse(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(common.NewUUID(), "applicant", -time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := provider.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
