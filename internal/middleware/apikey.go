// Package middleware holds the shared-secret gate for the extraction API.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
)

// APIKeyHeader carries the shared secret. Header lookup is case-insensitive.
const APIKeyHeader = "X-API-Key"

// Response messages.
const (
	MsgKeyNotConfigured = "Server configuration error: API key not configured"
	MsgMissingKey       = "Missing API key. Please provide x-api-key header."
	MsgInvalidKey       = "Invalid API key"
)

// APIKeyAuth rejects requests whose x-api-key header does not equal expected.
// An empty expected key fails every request with 500.
func APIKeyAuth(expected string) gin.HandlerFunc {
	want := []byte(expected)

	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		if len(want) == 0 {
			log.Error("Extraction API key is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": MsgKeyNotConfigured})
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgMissingKey})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), want) != 1 {
			log.Warn("Rejected request with invalid API key", logger.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": MsgInvalidKey})
			return
		}

		c.Next()
	}
}
