package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/services"
	"github.com/yukikurage/employee-management/internal/storage"
)

// UploadHandler streams stored profile pictures.
type UploadHandler struct {
	employeeService *services.EmployeeService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(employeeService *services.EmployeeService) *UploadHandler {
	return &UploadHandler{
		employeeService: employeeService,
	}
}

// ServePicture writes the named picture. Only names that are already in
// sanitized form are looked up. Anything whose name does not map to a raster
// image type is sent as an opaque download, and every response is sandboxed
// so stored content never runs script on this origin.
func (h *UploadHandler) ServePicture(c *gin.Context) {
	name := c.Param("filename")

	obj, err := h.employeeService.OpenPicture(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidName) {
			apierrors.NotFound(c, "File not found")
			return
		}
		logger.From(c.Request.Context()).Error("failed to open picture", "name", name, "error", err)
		apierrors.InternalError(c, "")
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", "sandbox; default-src 'none'")
	c.Header("Cache-Control", "private, max-age=3600")
	if !services.IsPictureType(contentType) {
		contentType = "application/octet-stream"
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, nil)
}
