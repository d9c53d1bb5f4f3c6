package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key holding the resolved subject id.
const ContextKey = "subject_id"

// Middleware resolves the Authorization header once per request and
// stashes the subject id in the gin context. Unresolvable requests are
// rejected before any handler runs.
func Middleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID, err := resolver.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKey, subjectID)
		c.Next()
	}
}

// SubjectID returns the subject id stashed by Middleware, or "" when the
// request was not authenticated.
func SubjectID(c *gin.Context) string {
	return c.GetString(ContextKey)
}
