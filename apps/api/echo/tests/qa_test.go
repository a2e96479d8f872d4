package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/user"
)

func Test_qaApi(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	crs := app.createCourse(t, instr, webDevCourse(0))

	studentToken := getToken(t, student)
	instrToken := getToken(t, instr)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/qa")
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("empty feed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/qa", studentToken)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
	})

	var asked qa.Question
	t.Run("ask", func(t *testing.T) {
		body := marchallObj(t, qa.NewQuestion{CourseID: crs.ID, Question: "How do I center a div?"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/qa", studentToken, body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asked))
		assert.Equal(t, student.Name, asked.Author)
		assert.Equal(t, user.RoleStudent, asked.Role)
		assert.Equal(t, crs.Title, asked.CourseName)
		assert.Equal(t, qa.StatusWaiting, asked.Status)
		assert.Empty(t, asked.Answers)
	})

	t.Run("ask without question text", func(t *testing.T) {
		body := marchallObj(t, qa.NewQuestion{CourseID: crs.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/qa", studentToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ask against unknown course", func(t *testing.T) {
		body := marchallObj(t, qa.NewQuestion{CourseID: 666, Question: "Hello?"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/qa", studentToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("students cannot answer", func(t *testing.T) {
		body := marchallObj(t, qa.NewAnswer{Text: "Just use flexbox"})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/qa/%d/answers", asked.ID), studentToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("instructor answers", func(t *testing.T) {
		body := marchallObj(t, qa.NewAnswer{Text: "Use flexbox with justify-content and align-items."})
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/qa/%d/answers", asked.ID), instrToken, body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var answered qa.Question
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answered))
		assert.Equal(t, qa.StatusAnswered, answered.Status)
		require.Len(t, answered.Answers, 1)
		assert.Equal(t, instr.Name, answered.Answers[0].Author)
	})

	t.Run("pending excludes answered threads", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/qa/pending", instrToken)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var pending []qa.Question
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
		assert.Empty(t, pending)
	})

	t.Run("feed is newest first", func(t *testing.T) {
		body := marchallObj(t, qa.NewQuestion{Question: "What is a closure?"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/qa", studentToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/qa", studentToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var feed []qa.Question
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
		require.Len(t, feed, 2)
		assert.Equal(t, "What is a closure?", feed[0].Question)
	})
}
