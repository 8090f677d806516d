package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snacksync/snacksync-api/internal/auth"
)

// GoogleIDKey is the gin context key the session middleware sets for the
// authenticated user's Google ID.
const GoogleIDKey = "googleID"

// SessionAuth validates the session_token cookie and puts the authenticated
// Google ID into the request context. Requests without a valid session are
// rejected with 401 before reaching the handler.
func SessionAuth(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.SessionCookieName)
		if err != nil || cookie == "" {
			respondUnauthorized(c, "Not authenticated (no session token)")
			return
		}

		googleID, err := sessions.Verify(cookie)
		if err != nil {
			respondUnauthorized(c, "Invalid or expired session token")
			return
		}

		c.Set(GoogleIDKey, googleID)
		c.Next()
	}
}

// GoogleID returns the authenticated Google ID set by SessionAuth.
func GoogleID(c *gin.Context) (string, bool) {
	value, exists := c.Get(GoogleIDKey)
	if !exists {
		return "", false
	}
	googleID, ok := value.(string)
	return googleID, ok && googleID != ""
}

// respondUnauthorized aborts the request with a 401 JSON body
func respondUnauthorized(c *gin.Context, detail string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": detail})
	c.Abort()
}
