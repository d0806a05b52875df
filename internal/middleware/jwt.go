package middleware

import (
	"net/http"
	"strings"

	"item_catalog/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenHeader carries the raw signed token.
const TokenHeader = "Authorization"

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AuthMiddleware validates the token header and stores the caller identity
// in the gin context. Requests without a valid token never reach the handler.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(c.GetHeader(TokenHeader))
		tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			logrus.WithError(err).WithField("path", c.FullPath()).Debug("Token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		auth.SetIdentity(c, identity)
		c.Next()
	}
}
