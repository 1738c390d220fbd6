package auth

import (
	"context"
	"fmt"
	"time"

	"teamnet-go/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the custom JWT claims, embedding jwt.RegisteredClaims.
// RegisteredClaims carries the standard Issuer, ExpiresAt, IssuedAt and
// JWT ID fields; the JTI is what the logout blacklist keys on.
type Claims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken issues a new JWT for the given user.
func GenerateToken(userID uint, username string, authCfg config.AuthConfig) (string, error) {
	jwtID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT ID: %w", err)
	}

	expirationTime := time.Now().Add(authCfg.JWTExpiry)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			ID:        jwtID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "teamnet-go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(authCfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the given JWT string and returns its claims.
// When a blacklist is provided, tokens whose JTI has been revoked are
// rejected.
func ValidateToken(ctx context.Context, tokenString string, jwtKey string, blacklist TokenBlacklist) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse or validate JWT: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid JWT") // covers expiry among other cases
	}

	if blacklist != nil {
		if claims.ID == "" {
			return nil, fmt.Errorf("JWT is missing the JTI claim, cannot check blacklist")
		}
		isRevoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Reject on blacklist errors rather than letting a possibly
			// revoked token through.
			return nil, fmt.Errorf("failed to check token blacklist: %w", err)
		}
		if isRevoked {
			return nil, fmt.Errorf("JWT has been revoked")
		}
	}

	return claims, nil
}
