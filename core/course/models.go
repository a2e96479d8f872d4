package course

import (
	"time"

	"github.com/studybuddy/backend/core"
)

type Lesson struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl"`
}

// Question holds an ordered option list; CorrectAnswer is an index into it.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Quiz struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Course struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructor   string    `json:"instructor"` // display name
	InstructorID int       `json:"instructorId"`
	Category     string    `json:"category"`
	Level        string    `json:"level"`
	Duration     string    `json:"duration"`
	Price        float64   `json:"price"`
	Rating       float64   `json:"rating"`
	Students     int       `json:"students"` // enrolled count
	Image        string    `json:"image"`
	Lessons      []Lesson  `json:"lessons"`
	Quizzes      []Quiz    `json:"quizzes"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (c Course) IsFree() bool { return c.Price == 0 }

func (c Course) Lesson(id int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

func (c Course) Quiz(id int) (Quiz, bool) {
	for _, q := range c.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return Quiz{}, false
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewCourse contains information needed to author a new Course.
type NewCourse struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Level       string      `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Duration    string      `json:"duration"`
	Price       float64     `json:"price" validate:"min=0"`
	Image       string      `json:"image" validate:"omitempty,url"`
	Lessons     []NewLesson `json:"lessons" validate:"dive"`
	Quizzes     []NewQuiz   `json:"quizzes" validate:"dive"`
}

type NewLesson struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Duration    string `json:"duration"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl"`
}

type NewQuiz struct {
	Title     string        `json:"title" validate:"required"`
	Questions []NewQuestion `json:"questions" validate:"required,min=1,dive"`
}

type NewQuestion struct {
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}

	// the correct-answer marker must index into the option list
	for _, nq := range nc.Quizzes {
		for _, qn := range nq.Questions {
			if qn.CorrectAnswer >= len(qn.Options) {
				return core.NewValidationError(
					errBadCorrectAnswer,
					core.FieldError{Field: "correctAnswer", Error: errBadCorrectAnswer.Error()},
				)
			}
		}
	}
	return nil
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Level    string `query:"level"`
	FreeOnly bool   `query:"free"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Level == "" && !qf.FreeOnly
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.Level = core.CleanString(qf.Level)
}
