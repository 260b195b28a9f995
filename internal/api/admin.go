package api

import (
	"net/http" // HTTP status codes

	"game_store/internal/domain"  // Importing domain models
	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserResponse represents the account data returned to clients
type UserResponse struct {
	ID       uint        `json:"id"`       // Account ID
	Username string      `json:"username"` // Username
	Email    string      `json:"email"`    // Login email
	Role     domain.Role `json:"role"`     // Account role
}

// UserUpdateRequest changes a profile; absent fields are kept
type UserUpdateRequest struct {
	Username *string `json:"username"`                       // New username
	Email    *string `json:"email" binding:"omitempty,email"` // New login email
	Password *string `json:"password"`                       // New password, re-hashed
}

// RoleRequest is the body of PATCH /store/users/{id}/role
type RoleRequest struct {
	Role domain.Role `json:"role" binding:"required"` // Player, Publisher or Admin
}

func toUserResponse(a *domain.Account) UserResponse {
	return UserResponse{ID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role}
}

// ListUsersHandler returns all accounts, paginated, optionally filtered by username
func ListUsersHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if v := queryInt(c, "page", 1); v > 0 {
			page = v // Set page if valid
		}
		// Check and set page size within limits
		if v := queryInt(c, "page_size", 20); v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
		// Fetch the page of accounts and the total count
		list, total, err := accounts.List(c.Request.Context(), c.Query("username"), page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		// Map accounts to response format
		resp := make([]UserResponse, len(list))
		for i := range list {
			resp[i] = toUserResponse(&list[i])
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
		})
	}
}

// GetUserHandler returns an account to its owner or an Admin
func GetUserHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		acc, err := accounts.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toUserResponse(acc))
	}
}

// UpdateUserHandler changes the profile of the caller, or of anyone for an Admin
func UpdateUserHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UserUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body or email address")
			return
		}
		acc, err := accounts.Update(c.Request.Context(), principal(c), id, service.AccountPatch{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("account_id", acc.ID).Info("Account updated")
		c.JSON(http.StatusOK, toUserResponse(acc))
	}
}

// SetUserRoleHandler changes an account's role (Admin)
func SetUserRoleHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "role is required")
			return
		}
		acc, err := accounts.SetRole(c.Request.Context(), principal(c), id, req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"account_id": acc.ID, "role": acc.Role}).Info("Account role changed")
		c.JSON(http.StatusOK, toUserResponse(acc))
	}
}

// DeleteUserHandler removes an account with no history (Admin)
func DeleteUserHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := accounts.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("account_id", id).Info("Account deleted")
		c.Status(http.StatusNoContent)
	}
}
