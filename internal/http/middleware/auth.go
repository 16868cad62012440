package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
)

const callerKey = "caller"

// Auth parses the Bearer token and stores the resolved caller in the
// context. When required is false, anonymous requests pass through with
// no caller; a present-but-invalid token is still rejected.
func Auth(secret string, required bool) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
				return
			}
			c.Next()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		caller := domain.Caller{}
		if v, ok := claims["user_id"].(float64); ok {
			caller.UserID = int64(v)
		}
		if v, ok := claims["email"].(string); ok {
			caller.Email = v
		}
		if v, ok := claims["role"].(string); ok {
			caller.Role = v
		}
		if caller.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// GetCaller returns the authenticated caller, if any.
func GetCaller(c *gin.Context) *domain.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, ok := v.(domain.Caller)
	if !ok {
		return nil
	}
	return &caller
}
