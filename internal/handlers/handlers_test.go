package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/database"
	"github.com/yukikurage/employee-management/internal/middleware"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/repository"
	"github.com/yukikurage/employee-management/internal/services"
	"github.com/yukikurage/employee-management/internal/storage"
	"github.com/yukikurage/employee-management/internal/web"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handlerSuite runs the handlers behind a real HTTP server so sessions and
// flashes travel through cookies the way a browser sees them.
type handlerSuite struct {
	suite.Suite
	db              *gorm.DB
	uploadDir       string
	authService     *services.AuthService
	employeeService *services.EmployeeService
	server          *httptest.Server
	client          *http.Client
}

func (s *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	s.uploadDir = filepath.Join(s.T().TempDir(), "uploads")
	store, err := storage.NewLocalStorage(s.uploadDir)
	s.Require().NoError(err)

	s.authService = services.NewAuthService(repository.NewUserRepository(db), false)
	s.employeeService = services.NewEmployeeService(repository.NewEmployeeRepository(db), store, 1024)

	s.server = httptest.NewServer(s.newRouter())
	s.client = s.newClient()
}

func (s *handlerSuite) TearDownTest() {
	s.server.Close()
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *handlerSuite) newRouter() *gin.Engine {
	tmpl, err := web.Templates()
	s.Require().NoError(err)

	opts := sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	sessionStore := cookie.NewStore([]byte("test-secret"))
	sessionStore.Options(opts)

	authHandler := NewAuthHandler(s.authService, opts)
	employeeHandler := NewEmployeeHandler(s.employeeService)
	uploadHandler := NewUploadHandler(s.employeeService)
	healthHandler := NewHealthHandler(s.db)
	loadEmployee := middleware.LoadEmployee(s.employeeService)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/health", healthHandler.Check)
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))
	r.Use(middleware.SessionLifetime(opts))

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)

	authed := r.Group("", middleware.RequireAuth(s.authService))
	authed.GET("/", authHandler.Home)
	authed.GET("/logout", authHandler.Logout)
	authed.GET("/uploads/:filename", uploadHandler.ServePicture)
	authed.GET("/employees", employeeHandler.ListEmployees)
	authed.GET("/employees/:id", loadEmployee, employeeHandler.GetEmployee)

	admin := authed.Group("/employees", middleware.RequireAdmin())
	admin.GET("/create", employeeHandler.NewEmployee)
	admin.POST("/create", employeeHandler.CreateEmployee)
	admin.GET("/:id/edit", loadEmployee, employeeHandler.EditEmployee)
	admin.POST("/:id/edit", loadEmployee, employeeHandler.UpdateEmployee)
	admin.POST("/:id/delete", loadEmployee, employeeHandler.DeleteEmployee)
	return r
}

func (s *handlerSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
}

type response struct {
	Status   int
	Location string
	Body     string
	Header   http.Header
	Cookies  []*http.Cookie
}

func (s *handlerSuite) do(req *http.Request) response {
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Header:   resp.Header,
		Cookies:  resp.Cookies(),
	}
}

func (s *handlerSuite) get(path string) response {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	return s.do(req)
}

func (s *handlerSuite) postForm(path string, values url.Values) response {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(values.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// postMultipart sends values plus an optional profile_pic file.
func (s *handlerSuite) postMultipart(path string, values url.Values, filename, content string) response {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, vs := range values {
		for _, v := range vs {
			s.Require().NoError(w.WriteField(key, v))
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("profile_pic", filename)
		s.Require().NoError(err)
		_, err = part.Write([]byte(content))
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func (s *handlerSuite) createUser(name, email, password string, admin bool) *models.User {
	user := &models.User{Name: name, Email: email, IsAdmin: admin}
	s.Require().NoError(user.SetPassword(password))
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *handlerSuite) createEmployee(first, email string) *models.Employee {
	employee := &models.Employee{FirstName: first, Email: email}
	s.Require().NoError(s.db.Create(employee).Error)
	return employee
}

func (s *handlerSuite) login(email, password string) {
	resp := s.postForm("/login", url.Values{"email": {email}, "password": {password}})
	s.Require().Equal(http.StatusSeeOther, resp.Status, resp.Body)
}

func (s *handlerSuite) loginAsAdmin() *models.User {
	user := s.createUser("Root", "root@x.com", "rootpass", true)
	s.login("root@x.com", "rootpass")
	return user
}

func (s *handlerSuite) loginAsUser() *models.User {
	user := s.createUser("Bob", "bob@x.com", "bobpass", false)
	s.login("bob@x.com", "bobpass")
	return user
}

func (s *handlerSuite) countEmployees() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.Employee{}).Count(&n).Error)
	return n
}
