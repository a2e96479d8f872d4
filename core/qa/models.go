package qa

import (
	"time"

	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/user"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusAnswered Status = "answered"
)

type Answer struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Question is one thread in the community Q&A feed.
type Question struct {
	ID         int       `json:"id"`
	AuthorID   int       `json:"-"`
	Author     string    `json:"author"`
	Role       user.Role `json:"role"`
	CourseID   int       `json:"courseId,omitempty"`
	CourseName string    `json:"courseName,omitempty"`
	Question   string    `json:"question"`
	Answers    []Answer  `json:"answers"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
}

type NewQuestion struct {
	CourseID int    `json:"courseId"`
	Question string `json:"question" validate:"required"`
}

func (nq *NewQuestion) Validate() error {
	nq.Question = core.CleanString(nq.Question)
	return core.Validate.Struct(nq)
}

type NewAnswer struct {
	Text string `json:"text" validate:"required"`
}

func (na *NewAnswer) Validate() error {
	na.Text = core.CleanString(na.Text)
	return core.Validate.Struct(na)
}
