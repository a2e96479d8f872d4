package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/studybuddy/backend/apps/api/echo"
	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/progress"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
	emailsvc "github.com/studybuddy/backend/services/email"
	logsvc "github.com/studybuddy/backend/services/logger"
	paymentsvc "github.com/studybuddy/backend/services/payment"
	inmemdb "github.com/studybuddy/backend/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server Server

	db         *inmemdb.DB
	usrRepo    user.Repository
	usrSvc     user.Service
	courseSvc  course.Service
	qaSvc      qa.Service
	reportSvc  report.Service
	paymentSvc paymentsvc.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()
	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.Conf.Payment.ProcessingDelay = time.Millisecond

	db := inmemdb.NewDB()

	usrRepo := inmemdb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	progSvc := progress.NewService(courseSvc)
	qaSvc := qa.NewService(inmemdb.NewQARepository(db))
	reportSvc := report.NewService(inmemdb.NewReportRepository(db), usrSvc, courseSvc)
	paySvc := paymentsvc.NewDummyService()

	app := &testApp{
		db:         db,
		usrRepo:    usrRepo,
		usrSvc:     usrSvc,
		courseSvc:  courseSvc,
		qaSvc:      qaSvc,
		reportSvc:  reportSvc,
		paymentSvc: paySvc,
	}
	app.server = NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0)),
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		ProgressSvc:    progSvc,
		QASvc:          qaSvc,
		ReportSvc:      reportSvc,
		PaymentSvc:     paySvc,
	})
	return app
}

func (app *testApp) createUser(t *testing.T, name, uname, email string, role user.Role, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		Name:             name,
		Username:         uname,
		Email:            email,
		Role:             role,
		IsActive:         isActive,
		EnrolledCourses:  []int{},
		CompletedLessons: []int{},
		QuizScores:       []user.QuizScore{},
		Certificates:     []user.Certificate{},
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := usr.SetPassword("s3cr3t pwd"); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := app.usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (app *testApp) createCourse(t *testing.T, instr user.User, nc course.NewCourse) course.Course {
	t.Helper()
	crs, err := app.courseSvc.Create(instr, nc)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
