package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/texfocus/wiptrack_backend/utils"
)

// AuthMiddleware checks the shared API token on every request. The
// token is configured either as plain API_TOKEN or, preferred, as a
// bcrypt hash in API_TOKEN_HASH. With neither set the middleware lets
// everything through, which keeps local development friction-free.
func AuthMiddleware() gin.HandlerFunc {
	plain := os.Getenv("API_TOKEN")
	hashed := os.Getenv("API_TOKEN_HASH")

	return func(c *gin.Context) {
		if plain == "" && hashed == "" {
			c.Next()
			return
		}

		auth := c.Request.Header.Get("Authorization")
		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		token := auth[len(bearer):]

		if !tokenValid(token, plain, hashed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.SetTokenInContext(c.Request.Context(), token))
		c.Next()
	}
}

func tokenValid(token string, plain string, hashed string) bool {
	if hashed != "" {
		return utils.CompareSecret(hashed, token) == nil
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(plain)) == 1
}
