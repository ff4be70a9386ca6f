package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/dto"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
	"github.com/yukikurage/employee-management/internal/forms"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/middleware"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/services"
)

const profilePicField = "profile_pic"

// EmployeeHandler serves the employee list, detail and admin forms.
type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employeeService *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
	}
}

// ListEmployees renders every employee ordered by ID.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.employeeService.List()
	if err != nil {
		logger.From(c.Request.Context()).Error("failed to list employees", "error", err)
		apierrors.InternalError(c, "")
		return
	}

	render(c, http.StatusOK, "employees/list.html", gin.H{
		"Title":     "Employees",
		"Employees": dto.ToEmployeeDTOs(employees),
	})
}

// GetEmployee renders one employee. Requires LoadEmployee.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.NotFound(c, "Employee not found")
		return
	}

	view := dto.ToEmployeeDTO(*employee)
	render(c, http.StatusOK, "employees/detail.html", gin.H{
		"Title":    view.FullName,
		"Employee": view,
	})
}

// NewEmployee renders the empty create form.
func (h *EmployeeHandler) NewEmployee(c *gin.Context) {
	renderEmployeeForm(c, http.StatusOK, nil, forms.EmployeeInput{}, nil)
}

// CreateEmployee stores the optional picture and inserts the employee.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	in, fields, ok := h.bindEmployeeForm(c, nil)
	if !ok {
		return
	}

	upload, closeUpload, err := formUpload(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid file upload")
		return
	}
	defer closeUpload()

	employee, err := h.employeeService.Create(c.Request.Context(), fields, upload)
	if err != nil {
		h.saveFailed(c, err, nil, in)
		return
	}

	logger.From(c.Request.Context()).Info("employee created", "employee_id", employee.ID, "profile_pic", employee.ProfilePic)
	middleware.AddFlash(c, constants.FlashSuccess, "Employee added")
	c.Redirect(http.StatusSeeOther, "/employees")
}

// EditEmployee renders the edit form pre-filled with stored values.
// Requires LoadEmployee.
func (h *EmployeeHandler) EditEmployee(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.NotFound(c, "Employee not found")
		return
	}
	renderEmployeeForm(c, http.StatusOK, employee, forms.EmployeeInputFrom(employee), nil)
}

// UpdateEmployee overwrites the employee's fields. Requires LoadEmployee.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.NotFound(c, "Employee not found")
		return
	}

	in, fields, ok := h.bindEmployeeForm(c, employee)
	if !ok {
		return
	}

	upload, closeUpload, err := formUpload(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid file upload")
		return
	}
	defer closeUpload()

	updated, err := h.employeeService.Update(c.Request.Context(), employee.ID, fields, upload)
	if err != nil {
		h.saveFailed(c, err, employee, in)
		return
	}

	logger.From(c.Request.Context()).Info("employee updated", "employee_id", updated.ID)
	middleware.AddFlash(c, constants.FlashSuccess, "Employee updated")
	c.Redirect(http.StatusSeeOther, "/employees")
}

// DeleteEmployee removes the employee. Requires LoadEmployee.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.NotFound(c, "Employee not found")
		return
	}

	if err := h.employeeService.Delete(employee.ID); err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			apierrors.NotFound(c, "Employee not found")
			return
		}
		logger.From(c.Request.Context()).Error("failed to delete employee", "employee_id", employee.ID, "error", err)
		apierrors.InternalError(c, "")
		return
	}

	logger.From(c.Request.Context()).Info("employee deleted", "employee_id", employee.ID)
	middleware.AddFlash(c, constants.FlashSuccess, "Employee deleted")
	c.Redirect(http.StatusSeeOther, "/employees")
}

// bindEmployeeForm binds and validates the submitted fields. On failure the
// form has already been re-rendered. A body cut off by the request size limit
// always carries a file over the per-file cap, so that cap is reported.
func (h *EmployeeHandler) bindEmployeeForm(c *gin.Context, employee *models.Employee) (forms.EmployeeInput, forms.EmployeeFields, bool) {
	var in forms.EmployeeInput
	if err := c.ShouldBind(&in); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errs := forms.FieldErrors{}
			errs.Add(profilePicField, tooLargeMessage(h.employeeService.MaxUploadBytes()))
			renderEmployeeForm(c, http.StatusRequestEntityTooLarge, employee, in, errs)
			return in, forms.EmployeeFields{}, false
		}
		apierrors.BadRequest(c, "Invalid form submission")
		return in, forms.EmployeeFields{}, false
	}

	fields, errs := in.Validate()
	if errs != nil {
		middleware.AddFlash(c, constants.FlashDanger, "Please correct the errors below.")
		renderEmployeeForm(c, http.StatusUnprocessableEntity, employee, in, errs)
		return in, forms.EmployeeFields{}, false
	}
	return in, fields, true
}

// saveFailed maps service errors onto field errors, or onto an error page
// when the form cannot fix them.
func (h *EmployeeHandler) saveFailed(c *gin.Context, err error, employee *models.Employee, in forms.EmployeeInput) {
	errs := forms.FieldErrors{}
	switch {
	case errors.Is(err, services.ErrEmployeeEmailTaken):
		errs.Add("email", "Email already in use.")
	case errors.Is(err, services.ErrInvalidUploadName):
		errs.Add(profilePicField, "Invalid file name.")
	case errors.Is(err, services.ErrUploadTooLarge):
		errs.Add(profilePicField, tooLargeMessage(h.employeeService.MaxUploadBytes()))
	case errors.Is(err, services.ErrUnsupportedUpload):
		errs.Add(profilePicField, "Only PNG, JPEG, GIF or WebP images are allowed.")
	case errors.Is(err, services.ErrEmployeeNotFound):
		apierrors.NotFound(c, "Employee not found")
		return
	default:
		logger.From(c.Request.Context()).Error("failed to save employee", "error", err)
		apierrors.InternalError(c, "The employee could not be saved.")
		return
	}

	middleware.AddFlash(c, constants.FlashDanger, "Please correct the errors below.")
	renderEmployeeForm(c, http.StatusUnprocessableEntity, employee, in, errs)
}

func renderEmployeeForm(c *gin.Context, status int, employee *models.Employee, in forms.EmployeeInput, errs forms.FieldErrors) {
	data := gin.H{
		"Title":  "Add employee",
		"Action": "/employees/create",
		"Form":   in,
		"Errors": errs,
	}
	if employee != nil {
		data["Title"] = "Edit employee"
		data["Action"] = fmt.Sprintf("/employees/%d/edit", employee.ID)
		data["Employee"] = dto.ToEmployeeDTO(*employee)
	}
	render(c, status, "employees/form.html", data)
}

// formUpload returns the attached profile picture, or nil when the form
// carries no file.
func formUpload(c *gin.Context) (*services.Upload, func(), error) {
	header, err := c.FormFile(profilePicField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, nil, err
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.Upload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	upload := &services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   f,
	}
	return upload, func() { f.Close() }, nil
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("File cannot be larger than %d bytes.", limit)
}
