// Package auth gates the API behind static keys when configured.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware rejects requests whose X-API-Key is not in the configured
// set. An empty set disables the check entirely — the deployment then relies
// on gateway-terminated auth in front of the service.
func APIKeyMiddleware(keys []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if _, ok := allowed[apiKey]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
