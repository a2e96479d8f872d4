package inmemdb

import (
	"sort"
	"strings"

	"github.com/studybuddy/backend/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// query must be called with the db mutex held.
func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

// CreateCourse assigns the course id plus ids for its lessons and quizzes.
// Lesson and quiz ids are global across courses; question ids restart at 1
// within each quiz.
func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.coursePK++
	crs.ID = repo.db.coursePK
	for i := range crs.Lessons {
		repo.db.lessonPK++
		crs.Lessons[i].ID = repo.db.lessonPK
	}
	for i := range crs.Quizzes {
		repo.db.quizPK++
		crs.Quizzes[i].ID = repo.db.quizPK
		for j := range crs.Quizzes[i].Questions {
			crs.Quizzes[i].Questions[j].ID = j + 1
		}
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *courseRepository) FilterCourses(filter course.QueryFilter) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matched := make([]course.Course, 0)
	search := strings.ToLower(filter.Search)
	for _, crs := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(crs.Title), search) &&
			!strings.Contains(strings.ToLower(crs.Description), search) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(crs.Category, filter.Category) {
			continue
		}
		if filter.Level != "" && !strings.EqualFold(crs.Level, filter.Level) {
			continue
		}
		if filter.FreeOnly && !crs.IsFree() {
			continue
		}
		matched = append(matched, crs)
	}
	return matched, nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetInstructorCourses(instructorID int) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matched := make([]course.Course, 0)
	for _, crs := range repo.query() {
		if crs.InstructorID == instructorID {
			matched = append(matched, crs)
		}
	}
	return matched, nil
}

func (repo *courseRepository) IncrementStudents(courseID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	crs.Students++
	return nil
}
