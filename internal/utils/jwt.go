package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"game_store/internal/domain" // Role type

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token identifiers
)

// ErrInvalidRole is returned for tokens carrying an unknown role claim
var ErrInvalidRole = errors.New("token carries an unknown role")

// JWT Claims
type Claims struct {
	UserID               uint        `json:"user_id"` // Custom claim for account ID
	Email                string      `json:"email"`   // Account email
	Role                 domain.Role `json:"role"`    // Player, Publisher or Admin
	jwt.RegisteredClaims                              // Standard JWT claims, ID holds the jti
}

// GenerateJWT creates a signed token for the account, valid for ttl
func GenerateJWT(account domain.Account, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	// Set token claims
	claims := Claims{
		UserID: account.ID,    // Account ID
		Email:  account.Email, // Email claim
		Role:   account.Role,  // Role claim
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),                 // Unique token id, used for revocation
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidRole
	}
	return claims, nil
}
