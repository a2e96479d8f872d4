package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/studybuddy/backend/apps/api/echo"
	"github.com/studybuddy/backend/core/user"
	emailsvc "github.com/studybuddy/backend/services/email"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	app.createUser(t, "N Dog", "ndoggg", "ndog@test.cd", user.RoleStudent, false) // 😂

	body := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body("herooo", "s3cr3t pwd"))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, student.ID, resp.User.ID)
		assert.Equal(t, student.Email, resp.User.Email)
	})

	t.Run("login by email", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body("HERO@test.cd", "s3cr3t pwd"))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	tests := []httpTest{
		{
			name: "unknown user", body: body("nobody", "s3cr3t pwd"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: body("herooo", "wrong"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong role partition",
			body: marchallObj(t, echoapi.LoginRequest{Username: "herooo", Password: "s3cr3t pwd", Role: user.RoleInstructor}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: body("ndoggg", "s3cr3t pwd"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	body := func(name, uname, email string, role user.Role) []byte {
		return marchallObj(t, user.NewUser{
			Name: name, Username: uname, Email: email,
			Password: "s3cr3t pwd", PasswordConfirm: "s3cr3t pwd", Role: role,
		})
	}

	t.Run("student signup", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body("Jane Doe", "janedoe", "jane@test.cd", user.RoleStudent))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp echoapi.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.RoleStudent, resp.User.Role)
		assert.True(t, resp.User.IsActive)
		assert.Empty(t, resp.User.EnrolledCourses)

		// welcome mail goes out
		require.NotEmpty(t, emailsvc.SentMessages)
		last := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		assert.Contains(t, last.Subject, "Welcome")
	})

	t.Run("role defaults to student", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body("No Role", "norole1", "norole@test.cd", ""))
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp echoapi.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.RoleStudent, resp.User.Role)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", body("Evil", "evil666", "evil@test.cd", user.RoleAdmin))
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "role")
	})

	t.Run("duplicate email", func(t *testing.T) {
		app.createUser(t, "Taken", "takenuser", "taken@test.cd", user.RoleStudent, true)

		req, rec := newRequest(http.MethodPost, "/v1/users/register", body("Copy Cat", "copycat", "taken@test.cd", user.RoleStudent))
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "email")
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ok", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, student)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app := setup(t)

	path := func(search string, roles ...user.Role) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", string(r))
		}
		return "/v1/users?" + v.Encode()
	}

	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	instructor := app.createUser(t, "Prof", "professor", "prof@test.cd", user.RoleInstructor, true)
	admin := app.createUser(t, "Admin", "admin1", "admin@test.cd", user.RoleAdmin, true)

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, student, instructor, admin)},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: empty},
		{name: "search=hero", path: path("hero"), token: adminToken, wantData: marchallList(t, student)},
		{name: "role=instructor", path: path("", user.RoleInstructor), token: adminToken, wantData: marchallList(t, instructor)},
		{
			name: "role=student,admin", path: path("", user.RoleStudent, user.RoleAdmin),
			token: adminToken, wantData: marchallList(t, student, admin),
		},
	}
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	admin := app.createUser(t, "Admin", "admin1", "admin@test.cd", user.RoleAdmin, true)

	path := func(id int) string { return "/v1/users/" + strconv.Itoa(id) }

	t.Run("own name", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Super Hero"})
		req, rec := newAuthRequest(http.MethodPut, path(student.ID), getToken(t, student), body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "Super Hero", usr.Name)
	})

	t.Run("non-admin cannot change role", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Role: user.RoleAdmin})
		req, rec := newAuthRequest(http.MethodPut, path(student.ID), getToken(t, student), body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deactivates account", func(t *testing.T) {
		inactive := false
		body := marchallObj(t, user.UpdateUser{IsActive: &inactive})
		req, rec := newAuthRequest(http.MethodPut, path(student.ID), getToken(t, admin), body)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.False(t, usr.IsActive)
	})

	t.Run("other user's record is hidden", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Name: "Pwned"})
		req, rec := newAuthRequest(http.MethodPut, path(admin.ID), getToken(t, student), body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)
	admin := app.createUser(t, "Admin", "admin1", "admin@test.cd", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	t.Run("self-delete forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+strconv.Itoa(admin.ID), adminToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+strconv.Itoa(student.ID), adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := app.usrSvc.GetByID(student.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "herooo", "hero@test.cd", user.RoleStudent, true)

	sentBefore := len(emailsvc.SentMessages)
	body := marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email})
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Greater(t, len(emailsvc.SentMessages), sentBefore)
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]

	// pull uid & token out of the reset link
	re := regexp.MustCompile(`uid=([^&\s]+)&token=([^&\s]+)`)
	m := re.FindStringSubmatch(msg.TextContent)
	require.Len(t, m, 3)

	confirm := marchallObj(t, user.ResetUserPassword{
		UID: m[1], Token: m[2], Password: "new s3cr3t", PasswordConfirm: "new s3cr3t",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", confirm)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	usr, err := app.usrSvc.GetByID(student.ID)
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("new s3cr3t"))
	assert.Error(t, usr.CheckPassword("s3cr3t pwd"))
}
