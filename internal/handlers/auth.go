package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/employee-management/internal/constants"
	apierrors "github.com/yukikurage/employee-management/internal/errors"
	"github.com/yukikurage/employee-management/internal/forms"
	"github.com/yukikurage/employee-management/internal/logger"
	"github.com/yukikurage/employee-management/internal/middleware"
	"github.com/yukikurage/employee-management/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService    *services.AuthService
	sessionOptions sessions.Options
}

// NewAuthHandler creates a new AuthHandler. sessionOptions are applied on
// login, with MaxAge chosen by the "remember me" checkbox.
func NewAuthHandler(authService *services.AuthService, sessionOptions sessions.Options) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionOptions: sessionOptions,
	}
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, forms.RegisterInput{}, nil)
}

// Register creates a user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var in forms.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		apierrors.BadRequest(c, "Invalid form submission")
		return
	}

	reg, errs := in.Validate()
	if errs != nil {
		middleware.AddFlash(c, constants.FlashDanger, "Please correct the errors below.")
		h.renderRegister(c, http.StatusUnprocessableEntity, in, errs)
		return
	}

	user, err := h.authService.Register(reg)
	if err != nil {
		errs := forms.FieldErrors{}
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			middleware.AddFlash(c, constants.FlashDanger, "Email already registered")
			errs.Add("email", "Email already registered")
		case errors.Is(err, services.ErrAdminSignupDisabled):
			errs.Add("is_admin", "Administrator accounts cannot be self-registered.")
		default:
			logger.From(c.Request.Context()).Error("registration failed", "error", err)
			apierrors.InternalError(c, "")
			return
		}
		h.renderRegister(c, http.StatusUnprocessableEntity, in, errs)
		return
	}

	logger.From(c.Request.Context()).Info("user registered", "user_id", user.ID, "admin", user.IsAdmin)
	middleware.AddFlash(c, constants.FlashSuccess, "User registered")
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	renderLogin(c, http.StatusOK, forms.LoginInput{}, nil)
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var in forms.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		apierrors.BadRequest(c, "Invalid form submission")
		return
	}

	login, errs := in.Validate()
	if errs != nil {
		middleware.AddFlash(c, constants.FlashDanger, "Please correct the errors below.")
		renderLogin(c, http.StatusUnprocessableEntity, in, errs)
		return
	}

	user, err := h.authService.Login(login)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.AddFlash(c, constants.FlashDanger, "Invalid email or password")
			renderLogin(c, http.StatusUnauthorized, in, nil)
			return
		}
		logger.From(c.Request.Context()).Error("login failed", "error", err)
		apierrors.InternalError(c, "")
		return
	}

	opts := h.sessionOptions
	opts.MaxAge = 0
	if login.Remember {
		opts.MaxAge = int(constants.RememberMeDuration.Seconds())
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(opts)
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.SessionKeyRemember, login.Remember)
	session.AddFlash("Login successful!", constants.FlashSuccess)
	if err := session.Save(); err != nil {
		logger.From(c.Request.Context()).Error("failed to save session", "error", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	logger.From(c.Request.Context()).Info("user logged in", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, "/employees")
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.AddFlash("You have been logged out.", constants.FlashInfo)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.Redirect(http.StatusSeeOther, "/login")
}

// Home sends authenticated users to the employee list.
func (h *AuthHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/employees")
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, in forms.RegisterInput, errs forms.FieldErrors) {
	in.Password = ""
	render(c, status, "register.html", gin.H{
		"Title":            "Register",
		"Form":             in,
		"Errors":           errs,
		"AllowAdminSignup": h.authService.AllowAdminSignup(),
	})
}

func renderLogin(c *gin.Context, status int, in forms.LoginInput, errs forms.FieldErrors) {
	in.Password = ""
	render(c, status, "login.html", gin.H{
		"Title":  "Log in",
		"Form":   in,
		"Errors": errs,
	})
}
