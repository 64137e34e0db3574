package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/types"
)

// AuthMiddleware guards the API with a static bearer key. An empty
// configured key disables the check entirely (local development).
func AuthMiddleware(authKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authKey == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(authKey)) != 1 {
			abortUnauthorized(c, "invalid credentials")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{
		Status:  "error",
		Kind:    "unauthorized",
		Message: message,
	})
}
