package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/studybuddy/backend/apps/api/echo"
	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/user"
	paymentsvc "github.com/studybuddy/backend/services/payment"
)

func webDevCourse(price float64) course.NewCourse {
	return course.NewCourse{
		Title:       "Intro to Web Development",
		Description: "HTML, CSS and JavaScript from scratch",
		Category:    "Programming",
		Level:       "Beginner",
		Price:       price,
		Lessons: []course.NewLesson{
			{Title: "HTML", Description: "Structure"},
			{Title: "CSS", Description: "Style"},
			{Title: "JS", Description: "Behavior"},
		},
		Quizzes: []course.NewQuiz{
			{
				Title: "Basics Quiz",
				Questions: []course.NewQuestion{
					{Prompt: "What does HTML stand for?", Options: []string{"Hyper Text Markup Language", "High Tech Modern Language"}, CorrectAnswer: 0},
					{Prompt: "Largest heading tag?", Options: []string{"<h6>", "<h1>", "<head>"}, CorrectAnswer: 1},
				},
			},
		},
	}
}

func validCard() paymentsvc.ChargeRequest {
	return paymentsvc.ChargeRequest{
		CardNumber: "4242424242424242",
		CardName:   "JOHN DOE",
		CardExpiry: "12/30",
		CardCVC:    "123",
	}
}

func Test_learningApi_enroll(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	free := app.createCourse(t, instr, webDevCourse(0))
	paid := app.createCourse(t, instr, webDevCourse(49.99))
	token := getToken(t, student)

	enrollPath := func(id int) string { return fmt.Sprintf("/v1/courses/%d/enroll", id) }

	t.Run("free course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath(free.ID), token)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.EnrollResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []int{free.ID}, resp.User.EnrolledCourses)
		assert.Nil(t, resp.Receipt)

		crs, err := app.courseSvc.GetByID(free.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, crs.Students)
	})

	t.Run("re-enroll is a no-op", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath(free.ID), token)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.EnrollResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []int{free.ID}, resp.User.EnrolledCourses)

		// enrolled count must not be bumped again
		crs, err := app.courseSvc.GetByID(free.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, crs.Students)
	})

	t.Run("paid course requires card details", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath(paid.ID), token)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "card_number")
	})

	t.Run("paid course charges the card", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath(paid.ID), token, marchallObj(t, validCard()))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.EnrollResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Receipt)
		assert.Equal(t, paid.Price, resp.Receipt.Amount)
		assert.Equal(t, paid.ID, resp.Receipt.CourseID)
		assert.NotEmpty(t, resp.Receipt.ID)
		assert.Equal(t, []int{free.ID, paid.ID}, resp.User.EnrolledCourses)
	})

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, enrollPath(666), token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, enrollPath(free.ID))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_learningApi_completeLesson(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	crs := app.createCourse(t, instr, webDevCourse(0))
	token := getToken(t, student)

	path := func(courseID, lessonID int) string {
		return fmt.Sprintf("/v1/courses/%d/lessons/%d/complete", courseID, lessonID)
	}

	t.Run("not enrolled", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path(crs.ID, crs.Lessons[0].ID), token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	// enroll
	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/enroll", crs.ID), token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("first lesson", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path(crs.ID, crs.Lessons[0].ID), token)
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"completed": 1, "total": 3, "percentage": 33}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("completing twice does not inflate progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path(crs.ID, crs.Lessons[0].ID), token)
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"completed": 1, "total": 3, "percentage": 33}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("second lesson rounds to 67", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path(crs.ID, crs.Lessons[1].ID), token)
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"completed": 2, "total": 3, "percentage": 67}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("progress endpoint agrees", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/courses/%d/progress", crs.ID), token)
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]int{"completed": 2, "total": 3, "percentage": 67}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path(crs.ID, 666), token)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_learningApi_submitQuiz(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	crs := app.createCourse(t, instr, webDevCourse(0))
	quiz := crs.Quizzes[0]
	token := getToken(t, student)

	submitPath := fmt.Sprintf("/v1/courses/%d/quizzes/%d/submit", crs.ID, quiz.ID)
	submit := func(t *testing.T, answers map[int]int) *httptest.ResponseRecorder {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, submitPath, token, marchallObj(t, echoapi.QuizSubmission{Answers: answers}))
		app.server.ServeHTTP(rec, req)
		return rec
	}

	// enroll
	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/enroll", crs.ID), token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	correct := map[int]int{
		quiz.Questions[0].ID: quiz.Questions[0].CorrectAnswer,
		quiz.Questions[1].ID: quiz.Questions[1].CorrectAnswer,
	}

	t.Run("failing attempt", func(t *testing.T) {
		rec := submit(t, map[int]int{quiz.Questions[0].ID: 1})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QuizResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Result.Correct)
		assert.Equal(t, 2, resp.Result.Total)
		assert.Equal(t, 0, resp.Result.Score)
		assert.False(t, resp.Passed)
		assert.Nil(t, resp.Certificate)
	})

	t.Run("half right is 50 and still a fail", func(t *testing.T) {
		rec := submit(t, map[int]int{quiz.Questions[0].ID: quiz.Questions[0].CorrectAnswer})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QuizResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 50, resp.Result.Score)
		assert.False(t, resp.Passed)
	})

	t.Run("pass without all lessons done earns no certificate", func(t *testing.T) {
		rec := submit(t, correct)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QuizResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 100, resp.Result.Score)
		assert.True(t, resp.Passed)
		assert.Nil(t, resp.Certificate)
	})

	// complete every lesson
	for _, l := range crs.Lessons {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/lessons/%d/complete", crs.ID, l.ID), token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("pass with course done earns the certificate", func(t *testing.T) {
		rec := submit(t, correct)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QuizResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Passed)
		require.NotNil(t, resp.Certificate)
		assert.Equal(t, crs.ID, resp.Certificate.CourseID)
		assert.Equal(t, crs.Title, resp.Certificate.Title)
	})

	t.Run("retake never duplicates the certificate", func(t *testing.T) {
		rec := submit(t, correct)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QuizResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Nil(t, resp.Certificate)

		usr, err := app.usrSvc.GetByID(student.ID)
		require.NoError(t, err)
		assert.Len(t, usr.Certificates, 1)
		// every attempt stays in the history
		assert.Len(t, usr.QuizScores, 5)
	})
}

func Test_learningApi_queryEnrolled(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	crs := app.createCourse(t, instr, webDevCourse(0))
	token := getToken(t, student)

	t.Run("empty before enrollment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/courses", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
	})

	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/enroll", crs.ID), token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("enrolled course with progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/courses", token)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var enrolled []echoapi.EnrolledCourse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrolled))
		require.Len(t, enrolled, 1)
		assert.Equal(t, crs.ID, enrolled[0].Course.ID)
		assert.Equal(t, 0, enrolled[0].Progress.Completed)
		assert.Equal(t, 3, enrolled[0].Progress.Total)
	})
}
