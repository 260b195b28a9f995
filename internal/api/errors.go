package api

import (
	"strconv" // Path parameter parsing

	"game_store/internal/apperr"     // Error taxonomy
	"game_store/internal/middleware" // Uniform error body, principal
	"game_store/internal/policy"     // Request principal

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError is the single translator from service errors to HTTP responses.
// Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"error":      err,
		}).Error("Internal error")
	}
	middleware.Abort(c, err)
}

// badRequest reports a body or query that could not be bound
func badRequest(c *gin.Context, msg string) {
	respondError(c, apperr.Invalid("%s", msg))
}

// principal returns the authenticated caller; routes behind JWTAuthMiddleware always have one
func principal(c *gin.Context) policy.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(v), true
}

// queryInt parses an optional integer query parameter, falling back when absent or malformed
func queryInt(c *gin.Context, name string, fallback int) int {
	if s := c.Query(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fallback
}
