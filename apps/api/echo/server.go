package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/progress"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
	paymentsvc "github.com/studybuddy/backend/services/payment"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		ShutdownChan   chan struct{}

		UserSvc     user.Service
		CourseSvc   course.Service
		ProgressSvc *progress.Service
		QASvc       qa.Service
		ReportSvc   report.Service
		PaymentSvc  paymentsvc.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc, s.opts.UserSvc)
	registerLearningAPI(v1, jwt, s.opts)
	registerQAAPI(v1, jwt, s.opts.QASvc, s.opts.CourseSvc, s.opts.UserSvc)
	registerAdminAPI(v1, jwt, s.opts.ReportSvc, s.opts.UserSvc)
}

func (s *server) signalShutdown() {
	if s.opts.ShutdownChan != nil {
		close(s.opts.ShutdownChan)
	}
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
