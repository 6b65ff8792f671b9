package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorbridge/mentorbridge-api/pkg/jwt"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"go.uber.org/zap"
)

// InternalAPIAuthMiddleware validates the internal API token used by trigger
// functions and other backend callers
func InternalAPIAuthMiddleware(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-internal-api-auth-token")

		if token == "" || !jwt.TimingSafeCompare(token, validToken) {
			logger.Warn("Invalid internal API token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing internal API token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
