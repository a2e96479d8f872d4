package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
)

func Test_adminApi_reports(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	admin := app.createUser(t, "Admin", "admin1", "admin@test.cd", user.RoleAdmin, true)

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	var filed report.Report
	t.Run("file a report", func(t *testing.T) {
		body := marchallObj(t, report.NewReport{
			Type:        report.TypeTechnical,
			Subject:     "Video not loading",
			Description: "The video in lesson 3 keeps buffering.",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/reports", studentToken, body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filed))
		assert.Equal(t, student.ID, filed.UserID)
		assert.Equal(t, student.Name, filed.UserName)
		assert.Equal(t, report.StatusPending, filed.Status)
	})

	t.Run("bad report type", func(t *testing.T) {
		body := marchallObj(t, report.NewReport{Type: "spam", Subject: "x", Description: "y"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/reports", studentToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("listing is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports", studentToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin lists reports", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports", adminToken)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, filed)}, rec)
	})

	t.Run("resolve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/v1/reports/%d/resolve", filed.ID), adminToken)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resolved report.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
		assert.Equal(t, report.StatusResolved, resolved.Status)
	})

	t.Run("resolve unknown report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/reports/666/resolve", adminToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_adminApi_stats(t *testing.T) {
	app := setup(t)
	instr := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	admin := app.createUser(t, "Admin", "admin1", "admin@test.cd", user.RoleAdmin, true)
	paid := app.createCourse(t, instr, webDevCourse(49.99))

	adminToken := getToken(t, admin)

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", getToken(t, student))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	// student buys the course and finishes a lesson
	token := getToken(t, student)
	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/enroll", paid.ID), token, marchallObj(t, validCard()))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	req, rec = newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/courses/%d/lessons/%d/complete", paid.ID, paid.Lessons[0].ID), token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("figures", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", adminToken)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var stats report.PlatformStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.TotalUsers)
		assert.Equal(t, 1, stats.TotalStudents)
		assert.Equal(t, 1, stats.TotalInstructors)
		assert.Equal(t, 1, stats.TotalCourses)
		assert.Equal(t, 1, stats.TotalEnrollments)
		assert.Equal(t, 3, stats.ActiveUsers)
		assert.Equal(t, 49.99, stats.Revenue)
		assert.Equal(t, 33, stats.CompletionRate) // 1 of 3 lessons
		assert.Equal(t, 0, stats.PendingReports)
	})
}
