package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/progress"
	"github.com/studybuddy/backend/core/user"
	paymentsvc "github.com/studybuddy/backend/services/payment"
)

var errNotEnrolled = echo.NewHTTPError(http.StatusForbidden, "not enrolled in this course")

type learningApi struct {
	userSvc     user.Service
	courseSvc   course.Service
	progressSvc *progress.Service
	paymentSvc  paymentsvc.Service
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := learningApi{
		userSvc:     opts.UserSvc,
		courseSvc:   opts.CourseSvc,
		progressSvc: opts.ProgressSvc,
		paymentSvc:  opts.PaymentSvc,
	}

	cg := g.Group("/courses/:id", jwt)
	cg.POST("/enroll", api.enroll)
	cg.GET("/progress", api.retrieveProgress)
	cg.POST("/lessons/:lessonID/complete", api.completeLesson)
	cg.POST("/quizzes/:quizID/submit", api.submitQuiz)

	mg := g.Group("/me", jwt)
	mg.GET("/courses", api.queryEnrolled)
	mg.GET("/certificates", api.queryCertificates)
}

func (api *learningApi) getCourse(ctx echo.Context) (course.Course, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return course.Course{}, errHttpNotFound
	}
	crs, err := api.courseSvc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return crs, nil
}

// enroll adds the course to the user's enrolled set. Paid courses are charged
// first; free ones enroll directly. Re-enrolling is a no-op.
func (api *learningApi) enroll(ctx echo.Context) error {
	crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if usr.IsEnrolled(crs.ID) {
		return ctx.JSON(http.StatusOK, EnrollResponse{User: usr})
	}

	var receipt *paymentsvc.Receipt
	if !crs.IsFree() {
		var data paymentsvc.ChargeRequest
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to ChargeRequest")
		}
		data.CourseID = crs.ID
		data.Amount = crs.Price
		if err = data.Validate(); err != nil {
			return err
		}

		rcpt, err := api.paymentSvc.Charge(ctx.Request().Context(), data)
		if err != nil {
			return errors.Wrap(err, "charging for course")
		}
		receipt = &rcpt
	}

	usr, err = api.userSvc.Save(progress.Enroll(usr, crs.ID))
	if err != nil {
		return errors.Wrap(err, "saving enrollment")
	}
	ctx.Set(contextUserKey, usr)

	if err = api.courseSvc.RegisterEnrollment(crs.ID); err != nil {
		return errors.Wrap(err, "registering enrollment")
	}
	return ctx.JSON(http.StatusOK, EnrollResponse{User: usr, Receipt: receipt})
}

func (api *learningApi) retrieveProgress(ctx echo.Context) error {
	crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, progress.Compute(usr, crs))
}

func (api *learningApi) completeLesson(ctx echo.Context) error {
	crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	lessonID, err := intParam(ctx, "lessonID")
	if err != nil {
		return errHttpNotFound
	}
	if _, ok := crs.Lesson(lessonID); !ok {
		return errHttpNotFound
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsEnrolled(crs.ID) {
		return errNotEnrolled
	}

	usr, err = api.userSvc.Save(progress.CompleteLesson(usr, lessonID))
	if err != nil {
		return errors.Wrap(err, "saving lesson completion")
	}
	ctx.Set(contextUserKey, usr)

	return ctx.JSON(http.StatusOK, progress.Compute(usr, crs))
}

// submitQuiz grades the attempt, appends it to the user's history and issues
// the course certificate when the quiz is passed with every lesson done.
func (api *learningApi) submitQuiz(ctx echo.Context) error {
	crs, err := api.getCourse(ctx)
	if err != nil {
		return err
	}
	quizID, err := intParam(ctx, "quizID")
	if err != nil {
		return errHttpNotFound
	}
	quiz, ok := crs.Quiz(quizID)
	if !ok {
		return errHttpNotFound
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsEnrolled(crs.ID) {
		return errNotEnrolled
	}

	var data QuizSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	result := progress.GradeQuiz(quiz, data.Answers)
	usr = progress.AppendQuizScore(usr, user.QuizScore{
		QuizID:   quiz.ID,
		CourseID: crs.ID,
		Score:    result.Score,
		Date:     time.Now().UTC(),
	})

	var cert *user.Certificate
	if result.Passed() && progress.Compute(usr, crs).Done() && !usr.HasCertificate(crs.ID) {
		c := user.Certificate{
			ID:       uuid.New().String(),
			CourseID: crs.ID,
			Title:    crs.Title,
			IssuedAt: time.Now().UTC(),
		}
		usr = progress.AddCertificate(usr, c)
		cert = &c
	}

	usr, err = api.userSvc.Save(usr)
	if err != nil {
		return errors.Wrap(err, "saving quiz attempt")
	}
	ctx.Set(contextUserKey, usr)

	return ctx.JSON(http.StatusOK, QuizResultResponse{
		Result:      result,
		Passed:      result.Passed(),
		Certificate: cert,
	})
}

func (api *learningApi) queryEnrolled(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, err := api.courseSvc.EnrolledCourses(usr)
	if err != nil {
		return errors.Wrap(err, "querying enrolled courses")
	}

	enrolled := make([]EnrolledCourse, 0, len(courses))
	for _, crs := range courses {
		enrolled = append(enrolled, EnrolledCourse{Course: crs, Progress: progress.Compute(usr, crs)})
	}
	return ctx.JSON(http.StatusOK, enrolled)
}

func (api *learningApi) queryCertificates(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	certs := usr.Certificates
	if certs == nil {
		certs = []user.Certificate{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

type (
	EnrollResponse struct {
		User    user.User           `json:"user"`
		Receipt *paymentsvc.Receipt `json:"receipt,omitempty"`
	}

	// QuizSubmission maps question ids to selected option indexes.
	QuizSubmission struct {
		Answers map[int]int `json:"answers"`
	}

	QuizResultResponse struct {
		Result      progress.Result   `json:"result"`
		Passed      bool              `json:"passed"`
		Certificate *user.Certificate `json:"certificate,omitempty"`
	}

	EnrolledCourse struct {
		Course   course.Course     `json:"course"`
		Progress progress.Progress `json:"progress"`
	}
)
