package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys written on successful login
const (
	SessionUserID   = "user_id"
	SessionUsername = "username"
	SessionRealm    = "realm"
)

// RequireSession rejects requests without a logged-in session.
// When the route has a :realm parameter, the session must belong to that realm.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserID).(string)
		realm, _ := session.Get(SessionRealm).(string)

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "login_required",
			})
			return
		}
		if want := c.Param("realm"); want != "" && want != realm {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "realm_mismatch",
			})
			return
		}

		c.Set(SessionUserID, userID)
		c.Set(SessionUsername, session.Get(SessionUsername))
		c.Set(SessionRealm, realm)
		c.Next()
	}
}
