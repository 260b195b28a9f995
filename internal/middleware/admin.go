package middleware

import (
	"game_store/internal/apperr" // Error taxonomy
	"game_store/internal/policy" // Capability table

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireAction lets the request through only when the caller's role may
// perform the action at all. Ownership is checked later by the service.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c) // Set by JWTAuthMiddleware
		if !ok {
			Abort(c, apperr.Unauthorized("authentication required"))
			return
		}
		// Check the role against the capability table
		if !policy.Allows(p.Role, action) {
			Abort(c, apperr.Forbidden("role %s may not %s", p.Role, action))
			return
		}
		c.Next()
	}
}

// AdminOnlyMiddleware restricts a group to Admin callers
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			Abort(c, apperr.Unauthorized("authentication required"))
			return
		}
		if !p.IsAdmin() {
			Abort(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}
