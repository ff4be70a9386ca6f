package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/services"
)

// LoadEmployee resolves the :id route parameter into an employee.
// Unparseable and unknown IDs both render 404.
func LoadEmployee(employeeService *services.EmployeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.NotFound(c, "Employee not found")
			return
		}

		employee, err := employeeService.Get(id)
		if err != nil {
			if errors.Is(err, services.ErrEmployeeNotFound) {
				apierrors.NotFound(c, "Employee not found")
				return
			}
			logger.From(c.Request.Context()).Error("failed to load employee", "employee_id", id, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyEmployee, employee)
		c.Next()
	}
}

// GetEmployee retrieves the employee loaded by LoadEmployee
func GetEmployee(c *gin.Context) (*models.Employee, bool) {
	v, exists := c.Get(constants.ContextKeyEmployee)
	if !exists {
		return nil, false
	}
	employee, ok := v.(*models.Employee)
	return employee, ok && employee != nil
}
