// middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"
	"net/url"

	userRepo "roombooking/database/repository/user"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
)

// SessionAuthMiddleware resolves the session cookie to a known user and sets "userID".
func SessionAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication required.")
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication required.")
			return
		}

		user, err := users.GetByID(userID)
		if err != nil || user == nil {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication required.")
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}

// CSRFMiddleware rejects unsafe requests whose anti-forgery header does not
// match the anti-forgery cookie.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			c.Next()
			return
		}
		cookie, err := c.Cookie(CSRFCookie)
		if err == nil {
			if v, uerr := url.QueryUnescape(cookie); uerr == nil {
				cookie = v
			}
		}
		header := c.GetHeader(CSRFHeader)
		if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.JSONError(c, http.StatusForbidden, "CSRF verification failed.")
			return
		}
		c.Next()
	}
}
