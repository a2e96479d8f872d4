package qa

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/user"
)

var ErrNotFound = errors.New("question not found")

type (
	Repository interface {
		CreateQuestion(q Question) (Question, error)
		// QueryAllQuestions returns the feed newest-first.
		QueryAllQuestions() ([]Question, error)
		GetQuestionByID(id int) (Question, error)
		UpdateQuestion(q Question) (Question, error)
	}

	Service interface {
		Ask(usr user.User, nq NewQuestion, courseName string) (Question, error)
		Answer(id int, usr user.User, na NewAnswer) (Question, error)
		List() ([]Question, error)
		Pending() ([]Question, error)
		GetByID(id int) (Question, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Ask(usr user.User, nq NewQuestion, courseName string) (Question, error) {
	q := Question{
		AuthorID:   usr.ID,
		Author:     usr.Name,
		Role:       usr.Role,
		CourseID:   nq.CourseID,
		CourseName: courseName,
		Question:   nq.Question,
		Answers:    []Answer{},
		Status:     StatusWaiting,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateQuestion(q)
}

// Answer appends an answer to the thread and marks it answered.
// The waiting -> answered transition is one-way.
func (svc *service) Answer(id int, usr user.User, na NewAnswer) (Question, error) {
	q, err := svc.repo.GetQuestionByID(id)
	if err != nil {
		return Question{}, err
	}
	q.Answers = append(q.Answers, Answer{Author: usr.Name, Text: na.Text})
	q.Status = StatusAnswered
	return svc.repo.UpdateQuestion(q)
}

func (svc *service) List() ([]Question, error) {
	return svc.repo.QueryAllQuestions()
}

func (svc *service) Pending() ([]Question, error) {
	all, err := svc.repo.QueryAllQuestions()
	if err != nil {
		return nil, err
	}
	pending := make([]Question, 0, len(all))
	for _, q := range all {
		if q.Status == StatusWaiting {
			pending = append(pending, q)
		}
	}
	return pending, nil
}

func (svc *service) GetByID(id int) (Question, error) {
	return svc.repo.GetQuestionByID(id)
}
