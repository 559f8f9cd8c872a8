package middleware

import (
	"net/http"
	"strings"

	"tourquote/internal/domain"
	"tourquote/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Auth requires a valid "Authorization: Bearer <token>" header and stores
// the caller's id and role on the context.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := services.ParseToken(secret, strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequestContextFrom collects the caller identity set by Auth and RequestID.
func RequestContextFrom(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID:    domain.ID(c.GetInt64(userIDKey)),
		Role:      c.GetString(userRoleKey),
		RequestID: GetRequestID(c),
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized: " + msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
