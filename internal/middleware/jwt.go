package middleware

import (
	"context" // Context for revocation lookups
	"strings" // String manipulation
	"time"    // Token expiry

	"game_store/internal/apperr" // Error taxonomy
	"game_store/internal/domain" // Account model
	"game_store/internal/policy" // Request principal
	"game_store/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Context keys set by JWTAuthMiddleware
const (
	PrincipalKey = "principal" // policy.Principal of the caller
	TokenIDKey   = "tokenID"   // jti of the presented token
	TokenExpKey  = "tokenExp"  // Expiry of the presented token
)

// RevocationChecker reports whether a token id has been logged out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountLookup loads the current state of the account a token was issued for
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (*domain.Account, error)
}

// JWTAuthMiddleware validates bearer tokens and stores the caller's principal.
// The role is re-read from the account on every request, so role changes and
// deletions apply to tokens already issued. revoked may be nil when no
// revocation store is configured.
func JWTAuthMiddleware(secret string, accounts AccountLookup, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			Abort(c, apperr.Unauthorized("missing or invalid Authorization header"))
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			Abort(c, apperr.Unauthorized("invalid or expired token"))
			return
		}
		if revoked != nil && claims.ID != "" {
			gone, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logrus.WithFields(logrus.Fields{"error": err, "request_id": RequestIDFrom(c)}).Error("Revocation lookup failed")
				Abort(c, apperr.Internal(err, "failed to validate token"))
				return
			}
			if gone {
				Abort(c, apperr.Unauthorized("token has been revoked"))
				return
			}
		}
		acc, err := accounts.GetByID(c.Request.Context(), claims.UserID) // Current role, not the one in the token
		if apperr.Is(err, apperr.KindNotFound) {
			Abort(c, apperr.Unauthorized("account no longer exists"))
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "request_id": RequestIDFrom(c)}).Error("Account lookup failed")
			Abort(c, apperr.Internal(err, "failed to validate token"))
			return
		}
		c.Set(PrincipalKey, policy.Principal{AccountID: acc.ID, Role: acc.Role})
		c.Set(TokenIDKey, claims.ID)
		var exp time.Time
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
		c.Set(TokenExpKey, exp)
		c.Next() // Proceed to the next handler
	}
}

// PrincipalFrom returns the authenticated caller stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (policy.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return policy.Principal{}, false
	}
	p, ok := v.(policy.Principal)
	return p, ok
}

// TokenFrom returns the jti and expiry of the presented token
func TokenFrom(c *gin.Context) (string, time.Time) {
	return c.GetString(TokenIDKey), c.GetTime(TokenExpKey)
}

// Abort stops the chain with the uniform error body
func Abort(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{
		"error": gin.H{"message": apperr.Message(err), "type": kind},
	})
}
