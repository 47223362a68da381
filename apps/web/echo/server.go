package echoweb

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		DisableReqLogs bool
		Logger         core.Logger
		Validate       *validator.Validate
		UserSvc        *user.Service
		CatalogSvc     *catalog.Service
		GradeSvc       *grade.Service
		// HealthCheck reports whether the storage is reachable. Optional.
		HealthCheck func(ctx context.Context) error
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		auth     *authenticator
		flashes  sessions.Store
		renderer *renderer
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) (Server, error) {
	rndr, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &server{
		opts:     opts,
		app:      echo.New(),
		auth:     newAuthenticator(opts.Conf),
		flashes:  newFlashStore(opts.Conf),
		renderer: rndr,
	}
	s.setup()
	return s, nil
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.auth.loadIdentity)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s, s.opts.Logger)
	s.app.Renderer = s.renderer
	s.app.Debug = conf.Debug

	teacher := requireRoles(user.RoleTeacher)
	student := requireRoles(user.RoleStudent)
	admin := requireRoles(user.RoleAdmin)
	staff := requireRoles(user.StaffRoles...)

	s.app.GET("/", s.index)
	s.app.GET("/healthz", s.healthz)

	// accounts
	s.app.GET("/register", s.registerForm)
	s.app.POST("/register", s.register)
	s.app.GET("/login", s.loginForm)
	s.app.POST("/login", s.login)
	s.app.GET("/logout", s.logout)

	// grades
	s.app.GET("/teacher", s.gradeForm, teacher)
	s.app.POST("/teacher", s.recordGrade, teacher)
	s.app.GET("/student", s.studentReport, student)

	// catalog
	s.app.GET("/manage", s.catalogForm, staff)
	s.app.POST("/manage", s.createCatalogEntry, staff)
	s.app.GET("/admin", s.adminOverview, admin)

	// rankings
	s.app.GET("/rank/class/:id", s.classRanking, staff)
	s.app.GET("/rank/school", s.schoolRanking, staff)
}

func newRequestID() string {
	return uuid.New().String()
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) healthz(ctx echo.Context) error {
	if s.opts.HealthCheck != nil {
		if err := s.opts.HealthCheck(ctx.Request().Context()); err != nil {
			s.opts.Logger.Warn("health check failed", err)
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.opts.Conf.Build})
}
