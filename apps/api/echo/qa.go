package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/user"
)

type qaApi struct {
	svc       qa.Service
	courseSvc course.Service
	userSvc   user.Service
}

func registerQAAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc qa.Service, courseSvc course.Service, userSvc user.Service) {
	api := qaApi{svc: svc, courseSvc: courseSvc, userSvc: userSvc}

	qg := g.Group("/qa", jwt)
	qg.GET("", api.query)
	qg.POST("", api.ask)
	qg.GET("/pending", api.queryPending, staffMiddleware())
	qg.POST("/:id/answers", api.answer, staffMiddleware())
}

func (api *qaApi) query(ctx echo.Context) error {
	questions, err := api.svc.List()
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []qa.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *qaApi) queryPending(ctx echo.Context) error {
	questions, err := api.svc.Pending()
	if err != nil {
		return errors.Wrap(err, "querying pending questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *qaApi) ask(ctx echo.Context) error {
	var data qa.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// resolve the display name once at ask time
	var courseName string
	if data.CourseID != 0 {
		crs, err := api.courseSvc.GetByID(data.CourseID)
		if err != nil {
			if errors.Cause(err) == course.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding course by ID")
		}
		courseName = crs.Title
	}

	q, err := api.svc.Ask(ctxUsr, data, courseName)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *qaApi) answer(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}

	var data qa.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	q, err := api.svc.Answer(id, ctxUsr, data)
	if err != nil {
		if errors.Cause(err) == qa.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "answering question")
	}
	return ctx.JSON(http.StatusOK, q)
}
