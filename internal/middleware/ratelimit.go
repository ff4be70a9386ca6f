package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
)

// RateLimit allows requests per client IP and route within window. Requests
// over the limit get the 429 error page.
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(http.ResponseWriter, *http.Request) {}),
	)

	return func(c *gin.Context) {
		passed := false
		limiter(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			passed = true
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			apierrors.TooManyRequests(c, "Too many attempts, try again later.")
			return
		}
		c.Next()
	}
}
