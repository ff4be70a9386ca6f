// Package server assembles the gin engine: sessions, templates, guards and
// routes.
package server

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yukikurage/employee-management/internal/config"
	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/handlers"
	"github.com/yukikurage/employee-management/internal/middleware"
	"github.com/yukikurage/employee-management/internal/repository"
	"github.com/yukikurage/employee-management/internal/services"
	"github.com/yukikurage/employee-management/internal/storage"
	"github.com/yukikurage/employee-management/internal/web"
	"gorm.io/gorm"
)

// multipartOverhead is the room left for form fields and boundaries on top
// of the per-file upload cap.
const multipartOverhead = 1 << 20

// Dependencies are the long-lived resources the router is built from.
type Dependencies struct {
	Config       *config.Config
	DB           *gorm.DB
	Storage      storage.Storage
	SessionStore sessions.Store
	Logger       *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	userRepo := repository.NewUserRepository(deps.DB)
	employeeRepo := repository.NewEmployeeRepository(deps.DB)
	authService := services.NewAuthService(userRepo, cfg.AllowAdminSignup)
	employeeService := services.NewEmployeeService(employeeRepo, deps.Storage, cfg.MaxUploadBytes)

	authHandler := handlers.NewAuthHandler(authService, SessionOptions(cfg))
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	uploadHandler := handlers.NewUploadHandler(employeeService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Logger.Error("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	// Health check endpoint
	r.GET("/health", healthHandler.Check)

	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))
	r.Use(middleware.SessionLifetime(SessionOptions(cfg)))

	limit := middleware.RateLimit(cfg.LoginRateLimit, time.Minute)
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", limit, authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", limit, authHandler.Login)

	authed := r.Group("")
	authed.Use(middleware.RequireAuth(authService))
	{
		authed.GET("/", authHandler.Home)
		authed.GET("/logout", authHandler.Logout)
		authed.GET("/uploads/:filename", uploadHandler.ServePicture)
		authed.GET("/employees", employeeHandler.ListEmployees)
		authed.GET("/employees/:id", middleware.LoadEmployee(employeeService), employeeHandler.GetEmployee)
	}

	admin := authed.Group("/employees")
	admin.Use(middleware.RequireAdmin(), limitBody(cfg.MaxUploadBytes+multipartOverhead))
	{
		admin.GET("/create", employeeHandler.NewEmployee)
		admin.POST("/create", employeeHandler.CreateEmployee)
		admin.GET("/:id/edit", middleware.LoadEmployee(employeeService), employeeHandler.EditEmployee)
		admin.POST("/:id/edit", middleware.LoadEmployee(employeeService), employeeHandler.UpdateEmployee)
		admin.POST("/:id/delete", middleware.LoadEmployee(employeeService), employeeHandler.DeleteEmployee)
	}

	return r, nil
}

// Handler wraps the engine with CSRF protection when enabled.
func Handler(cfg *config.Config, engine http.Handler) http.Handler {
	if !cfg.CSRFEnabled {
		return engine
	}

	key := sha256.Sum256([]byte("csrf:" + cfg.SessionSecret))
	protect := csrf.Protect(
		key[:],
		csrf.Secure(cfg.IsProduction()),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName("csrf_token"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)(engine)

	if cfg.IsProduction() {
		return protect
	}
	// Development servers speak plain HTTP; without the marker the origin
	// check assumes TLS and rejects every form post.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect.ServeHTTP(w, r)
	})
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Forbidden - invalid or missing CSRF token", http.StatusForbidden)
}

// NewSessionStore builds the cookie or Redis session store.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	authKey := sha256.Sum256([]byte("auth:" + cfg.SessionSecret))

	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // username (empty for default user)
			"", // password (empty = no password)
			authKey[:],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	default:
		encKey := sha256.Sum256([]byte("enc:" + cfg.SessionSecret))
		store = cookie.NewStore(authKey[:], encKey[:])
	}

	store.Options(SessionOptions(cfg))
	return store, nil
}

// SessionOptions are the cookie attributes shared by every session. MaxAge
// zero makes a browser-session cookie.
func SessionOptions(cfg *config.Config) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
