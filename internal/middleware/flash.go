package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/logger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

var flashCategories = []string{constants.FlashSuccess, constants.FlashInfo, constants.FlashDanger}

// AddFlash queues a message and saves the session so it survives a redirect.
func AddFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	if err := session.Save(); err != nil {
		logger.From(c.Request.Context()).Error("failed to save flash", "error", err)
	}
}

// Flashes pops every queued message. Call it before writing the response
// body; the session cookie is rewritten.
func Flashes(c *gin.Context) []Flash {
	session := sessions.Default(c)

	var out []Flash
	for _, category := range flashCategories {
		for _, v := range session.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(); err != nil {
			logger.From(c.Request.Context()).Error("failed to save session", "error", err)
		}
	}
	return out
}
