package auth_test

import (
	"context"
	"testing"
	"time"

	"teamnet-go/internal/auth"
	"teamnet-go/internal/config"
)

type memoryBlacklist struct {
	revoked map[string]bool
}

func (b *memoryBlacklist) Add(ctx context.Context, jti string, exp time.Time) error {
	if b.revoked == nil {
		b.revoked = make(map[string]bool)
	}
	b.revoked[jti] = true
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return b.revoked[jti], nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()
	token, err := auth.GenerateToken(42, "alice", cfg)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := auth.ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %d/%q, want 42/alice", claims.UserID, claims.Username)
	}
	if claims.ID == "" {
		t.Error("expected a JTI claim")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	cfg := testAuthConfig()
	token, err := auth.GenerateToken(1, "alice", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateToken(context.Background(), token, "other-secret", nil); err == nil {
		t.Error("expected validation to fail with the wrong key")
	}
}

func TestValidateTokenRejectsRevoked(t *testing.T) {
	cfg := testAuthConfig()
	token, err := auth.GenerateToken(1, "alice", cfg)
	if err != nil {
		t.Fatal(err)
	}
	blacklist := &memoryBlacklist{}

	claims, err := auth.ValidateToken(context.Background(), token, cfg.JWTSecretKey, blacklist)
	if err != nil {
		t.Fatalf("ValidateToken before revocation failed: %v", err)
	}
	if err := blacklist.Add(context.Background(), claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatal(err)
	}

	if _, err := auth.ValidateToken(context.Background(), token, cfg.JWTSecretKey, blacklist); err == nil {
		t.Error("expected validation to fail for a revoked token")
	}
}
