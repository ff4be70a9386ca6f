package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/services"
)

// RequireAuth checks if the user is authenticated via session and loads
// the user for the rest of the chain. Sessions pointing at a deleted user
// are cleared.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := toUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			redirectToLogin(c, constants.FlashInfo, "Please log in to access this page.")
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				session.Clear()
				redirectToLogin(c, constants.FlashInfo, "Please log in to access this page.")
				return
			}
			logger.From(c.Request.Context()).Error("failed to load session user", "user_id", userID, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag. It must
// run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			redirectToLogin(c, constants.FlashDanger, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// CurrentUser retrieves the user loaded by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func toUserID(v any) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func redirectToLogin(c *gin.Context, category, message string) {
	AddFlash(c, category, message)
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}
