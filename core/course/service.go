package course

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	errBadCorrectAnswer = errors.New("correct answer must be the index of one of the options")
)

type (
	// Repository is a course catalog store. The catalog is read-mostly:
	// courses are only ever appended (authoring) or bumped (enrolled count).
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		// FilterCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Course.Title or Course.Description.
		FilterCourses(filter QueryFilter) ([]Course, error)
		GetCourseByID(id int) (Course, error)
		GetInstructorCourses(instructorID int) ([]Course, error)
		IncrementStudents(courseID int) error
	}

	Service interface {
		Create(instr user.User, nc NewCourse) (Course, error)
		QueryAll() ([]Course, error)
		Query(filter *QueryFilter) ([]Course, error)
		GetByID(id int) (Course, error)
		InstructorCourses(instructorID int) ([]Course, error)
		EnrolledCourses(usr user.User) ([]Course, error)
		Categories() ([]Category, error)
		RegisterEnrollment(courseID int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(instr user.User, nc NewCourse) (Course, error) {
	crs := Course{
		Title:        nc.Title,
		Description:  nc.Description,
		Instructor:   instr.Name,
		InstructorID: instr.ID,
		Category:     nc.Category,
		Level:        nc.Level,
		Duration:     nc.Duration,
		Price:        nc.Price,
		Image:        nc.Image,
		Lessons:      make([]Lesson, 0, len(nc.Lessons)),
		Quizzes:      make([]Quiz, 0, len(nc.Quizzes)),
		CreatedAt:    time.Now().UTC(),
	}
	for _, nl := range nc.Lessons {
		crs.Lessons = append(crs.Lessons, Lesson{
			Title:       nl.Title,
			Description: nl.Description,
			Duration:    nl.Duration,
			Content:     nl.Content,
			VideoURL:    nl.VideoURL,
		})
	}
	for _, nq := range nc.Quizzes {
		quiz := Quiz{Title: nq.Title, Questions: make([]Question, 0, len(nq.Questions))}
		for _, nqn := range nq.Questions {
			quiz.Questions = append(quiz.Questions, Question{
				Prompt:        nqn.Prompt,
				Options:       nqn.Options,
				CorrectAnswer: nqn.CorrectAnswer,
			})
		}
		crs.Quizzes = append(crs.Quizzes, quiz)
	}
	return svc.repo.CreateCourse(crs) // ids assigned by the store
}

func (svc *service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *service) Query(filter *QueryFilter) ([]Course, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllCourses()
	}
	return svc.repo.FilterCourses(*filter)
}

func (svc *service) GetByID(id int) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *service) InstructorCourses(instructorID int) ([]Course, error) {
	return svc.repo.GetInstructorCourses(instructorID)
}

func (svc *service) EnrolledCourses(usr user.User) ([]Course, error) {
	enrolled := make([]Course, 0, len(usr.EnrolledCourses))
	for _, id := range usr.EnrolledCourses {
		crs, err := svc.repo.GetCourseByID(id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue // course dropped from the catalog; skip, never fail
			}
			return nil, err
		}
		enrolled = append(enrolled, crs)
	}
	return enrolled, nil
}

func (svc *service) Categories() ([]Category, error) {
	courses, err := svc.repo.QueryAllCourses()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, crs := range courses {
		counts[crs.Category]++
	}
	cats := make([]Category, 0, len(counts))
	for name, count := range counts {
		cats = append(cats, Category{Name: name, Count: count})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (svc *service) RegisterEnrollment(courseID int) error {
	return svc.repo.IncrementStudents(courseID)
}
