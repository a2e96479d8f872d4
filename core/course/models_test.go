package course

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studybuddy/backend/core"
)

func validNewCourse() NewCourse {
	return NewCourse{
		Title:       "Intro to Web Development",
		Description: "HTML, CSS and JavaScript from scratch",
		Category:    "Programming",
		Level:       "Beginner",
		Quizzes: []NewQuiz{
			{
				Title: "Basics Quiz",
				Questions: []NewQuestion{
					{Prompt: "What does HTML stand for?", Options: []string{"A", "B", "C"}, CorrectAnswer: 2},
				},
			},
		},
	}
}

func TestNewCourseValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		nc := validNewCourse()
		assert.NoError(t, nc.Validate())
	})

	t.Run("bad level", func(t *testing.T) {
		nc := validNewCourse()
		nc.Level = "Wizard"
		assert.Error(t, nc.Validate())
	})

	t.Run("correct answer out of range", func(t *testing.T) {
		nc := validNewCourse()
		nc.Quizzes[0].Questions[0].CorrectAnswer = 3

		err := nc.Validate()
		vErr, ok := err.(*core.ValidationError)
		if assert.True(t, ok, "want *core.ValidationError, got %T", err) {
			assert.Equal(t, "correctAnswer", vErr.Fields[0].Field)
		}
	})

	t.Run("quiz needs at least one question", func(t *testing.T) {
		nc := validNewCourse()
		nc.Quizzes[0].Questions = nil
		assert.Error(t, nc.Validate())
	})
}

func TestCourseLookups(t *testing.T) {
	crs := Course{
		Price:   0,
		Lessons: []Lesson{{ID: 7, Title: "HTML"}},
		Quizzes: []Quiz{{ID: 3, Title: "Basics"}},
	}

	assert.True(t, crs.IsFree())

	l, ok := crs.Lesson(7)
	assert.True(t, ok)
	assert.Equal(t, "HTML", l.Title)
	_, ok = crs.Lesson(8)
	assert.False(t, ok)

	q, ok := crs.Quiz(3)
	assert.True(t, ok)
	assert.Equal(t, "Basics", q.Title)
	_, ok = crs.Quiz(4)
	assert.False(t, ok)
}
