package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
)

type adminApi struct {
	reportSvc report.Service
	userSvc   user.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, reportSvc report.Service, userSvc user.Service) {
	api := adminApi{reportSvc: reportSvc, userSvc: userSvc}

	// any signed-in user can file a report
	rg := g.Group("/reports", jwt)
	rg.POST("", api.createReport)
	rg.GET("", api.queryReports, adminMiddleware())
	rg.PUT("/:id/resolve", api.resolveReport, adminMiddleware())

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/stats", api.stats)
}

func (api *adminApi) createReport(ctx echo.Context) error {
	var data report.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	r, err := api.reportSvc.Create(ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *adminApi) queryReports(ctx echo.Context) error {
	reports, err := api.reportSvc.List()
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []report.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *adminApi) resolveReport(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return errHttpNotFound
	}

	r, err := api.reportSvc.Resolve(id)
	if err != nil {
		if errors.Cause(err) == report.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *adminApi) stats(ctx echo.Context) error {
	stats, err := api.reportSvc.Stats()
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
