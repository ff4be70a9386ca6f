package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
)

// SessionLifetime re-applies the cookie lifetime chosen at login. Cookie
// options are not stored in the session, so every save would otherwise fall
// back to the store default.
func SessionLifetime(base sessions.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		opts := base
		if remember, _ := session.Get(constants.SessionKeyRemember).(bool); remember {
			opts.MaxAge = int(constants.RememberMeDuration.Seconds())
		}
		session.Options(opts)
		c.Next()
	}
}
