package api

import (
	"context"  // Context for revocation writes
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"game_store/internal/apperr"     // Error taxonomy
	"game_store/internal/domain"     // Importing domain models
	"game_store/internal/middleware" // Token details of the caller
	"game_store/internal/service"    // Business logic
	"game_store/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// TokenRevoker records logged-out tokens
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// RegisterRequest is the sign-up body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`       // 3-20 letters or digits
	Email    string `json:"email" binding:"required,email"`    // Login email
	Password string `json:"password" binding:"required,min=8"` // Checked for complexity by the service
}

// LoginRequest is the sign-in body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// AuthResponse carries the issued token and a minimal profile
type AuthResponse struct {
	Token    string      `json:"token"`           // JWT token
	ID       uint        `json:"id"`              // Account ID
	Username string      `json:"username"`        // Display name
	Email    string      `json:"email,omitempty"` // Login email
	Role     domain.Role `json:"role"`            // Role claim
}

// issue signs a token for acc and writes it with the given status
func issue(c *gin.Context, status int, acc *domain.Account, secret string, ttl time.Duration) {
	token, err := utils.GenerateJWT(*acc, secret, ttl)
	if err != nil {
		respondError(c, apperr.Internal(err, "failed to generate token"))
		return
	}
	c.JSON(status, AuthResponse{Token: token, ID: acc.ID, Username: acc.Username, Email: acc.Email, Role: acc.Role})
}

// RegisterHandler creates a Player account and logs it in
func RegisterHandler(accounts *service.Accounts, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "username, valid email and password of at least 8 characters are required")
			return
		}
		acc, err := accounts.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err) // Validation, duplicate email or storage failure
			return
		}
		logrus.WithFields(logrus.Fields{"account_id": acc.ID, "username": acc.Username}).Info("Account registered")
		issue(c, http.StatusCreated, acc, secret, ttl)
	}
}

// LoginHandler authenticates by email and returns a JWT token
func LoginHandler(accounts *service.Accounts, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}
		acc, err := accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Same answer for unknown email and wrong password
			return
		}
		issue(c, http.StatusOK, acc, secret, ttl)
	}
}

// LogoutHandler revokes the presented token until it would have expired
func LogoutHandler(revoker TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		jti, exp := middleware.TokenFrom(c) // Set by JWTAuthMiddleware
		if jti != "" {
			if err := revoker.Revoke(c.Request.Context(), jti, exp); err != nil {
				respondError(c, apperr.Internal(err, "failed to log out"))
				return
			}
		}
		c.Status(http.StatusNoContent)
	}
}
