package inmemdb

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/user"
)

func TestSeed(t *testing.T) {
	db := NewDB()
	require.NoError(t, Seed(db))
	assert.False(t, db.IsEmpty())

	usrRepo := NewUserRepository(db)
	student, err := usrRepo.GetUserByEmail("john@example.com")
	require.NoError(t, err)
	assert.NoError(t, student.CheckPassword("student123"))
	assert.Equal(t, []int{1, 2}, student.EnrolledCourses)
	assert.Len(t, student.QuizScores, 2)

	crsRepo := NewCourseRepository(db)
	courses, err := crsRepo.QueryAllCourses()
	require.NoError(t, err)
	require.Len(t, courses, 7)
	// lesson ids are global and sequential across the catalog
	assert.Equal(t, 1, courses[0].Lessons[0].ID)
	assert.Equal(t, 3, courses[0].Lessons[2].ID)
	assert.Equal(t, 4, courses[1].Lessons[0].ID)
	assert.Equal(t, 1, courses[0].Quizzes[0].ID)
	assert.Equal(t, 2, courses[1].Quizzes[0].ID)
}

func TestSnapshotRoundtrip(t *testing.T) {
	db := NewDB()
	require.NoError(t, Seed(db))

	var buf bytes.Buffer
	require.NoError(t, db.Snapshot(&buf))

	// catalog is reseeded, user records and the Q&A feed come from the blob
	db2 := NewDB()
	require.NoError(t, Seed(db2))
	require.NoError(t, db2.Restore(&buf))

	usrRepo := NewUserRepository(db2)
	student, err := usrRepo.GetUserByEmail("john@example.com")
	require.NoError(t, err)
	assert.NoError(t, student.CheckPassword("student123"), "password hash must survive the roundtrip")
	assert.Equal(t, []int{1, 2}, student.CompletedLessons)

	// id sequences resume past the restored records
	newUsr, err := usrRepo.CreateUser(user.User{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 4, newUsr.ID)

	qaRepo := NewQARepository(db2)
	questions, err := qaRepo.QueryAllQuestions()
	require.NoError(t, err)
	require.Len(t, questions, 2)
	q, err := qaRepo.CreateQuestion(qa.Question{Question: "Is this thing on?", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 3, q.ID)
}

func TestRestoreFromMissingFile(t *testing.T) {
	db := NewDB()
	assert.NoError(t, db.RestoreFromFile(t.TempDir()+"/nope.json"))
	assert.True(t, db.IsEmpty())
}

func TestCheckUsernameUniqueness(t *testing.T) {
	db := NewDB()
	repo := NewUserRepository(db)
	usr, err := repo.CreateUser(user.User{Name: "A", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness("alice", "other@example.com"))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUsernameUniqueness("other", "alice@example.com"))
	assert.NoError(t, repo.CheckUsernameUniqueness("alice", "alice@example.com", usr))
	assert.NoError(t, repo.CheckUsernameUniqueness("bob", "bob@example.com"))
}

func TestCourseFilter(t *testing.T) {
	db := NewDB()
	require.NoError(t, Seed(db))
	repo := NewCourseRepository(db)

	free, err := repo.FilterCourses(course.QueryFilter{FreeOnly: true})
	require.NoError(t, err)
	assert.Len(t, free, 3)

	prog, err := repo.FilterCourses(course.QueryFilter{Category: "Programming"})
	require.NoError(t, err)
	assert.Len(t, prog, 2)

	found, err := repo.FilterCourses(course.QueryFilter{Search: "python"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Data Science with Python", found[0].Title)
}
