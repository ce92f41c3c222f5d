package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

const CookieName = "token"

const contextUserKey = "currentUser"

// CurrentUser resolves the session cookie into a user identity. It runs on
// every route: no cookie leaves the request anonymous, an unverifiable cookie
// is a hard 401, and a verified token whose user no longer exists resolves to
// anonymous rather than an error.
func CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil {
			c.Next()
			return
		}

		claims, err := ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		var user models.User
		if err := database.DB.First(&user, "username = ?", claims.Username).Error; err == nil {
			c.Set(contextUserKey, &user)
		}
		c.Next()
	}
}

// RequireAuth rejects requests that CurrentUser left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Next()
	}
}

// UserFrom returns the resolved user for this request, if any.
func UserFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// Username returns the viewer's name, or empty for anonymous requests.
func Username(c *gin.Context) string {
	if u, ok := UserFrom(c); ok {
		return u.Username
	}
	return ""
}
