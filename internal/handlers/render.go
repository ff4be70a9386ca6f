package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yukikurage/employee-management/internal/dto"
	"github.com/yukikurage/employee-management/internal/middleware"
)

// render executes a page with the data every layout needs. Flashes are
// popped here, so it must run before anything is written to the response.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = middleware.Flashes(c)
	data["CSRFField"] = csrf.TemplateField(c.Request)
	if user, ok := middleware.CurrentUser(c); ok {
		data["CurrentUser"] = dto.ToUserDTO(*user)
	}
	c.HTML(status, name, data)
}
