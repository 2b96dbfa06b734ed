package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user ID set by RequireToken. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireToken returns a middleware that checks the Authorization header for
// a valid bearer token and sets the current user ID in context. Each failure
// kind gets its own message but all of them answer 401.
func RequireToken(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "token_faltante", "Token de autorizacion faltante")
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "token_invalido", "Token invalido")
			return
		}
		userID, err := issuer.Validate(parts[1])
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				abortUnauthorized(c, "token_expirado", "Token expirado")
				return
			}
			abortUnauthorized(c, "token_invalido", "Token invalido")
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, kind, mensaje string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": kind, "mensaje": mensaje})
}
