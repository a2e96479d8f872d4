// Package progress computes enrollment progress and quiz scores from a
// user's recorded completions against the course catalog. Every function is
// pure: results are recomputed on demand and user records are copied, never
// mutated in place.
package progress

import (
	"math"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/user"
)

// PassScore is the minimum quiz score classified as a pass.
const PassScore = 70

// Progress is the derived completion ratio for a (user, course) pair.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func (p Progress) Done() bool { return p.Total > 0 && p.Completed == p.Total }

// Result is the outcome of grading one quiz attempt.
type Result struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Score   int `json:"score"`
}

func (r Result) Passed() bool { return r.Score >= PassScore }

// Compute intersects the course's lessons with the user's completed-lesson
// set. Duplicate or foreign ids in the user's set never inflate the count,
// so Completed <= Total always holds.
func Compute(usr user.User, crs course.Course) Progress {
	done := make(map[int]struct{}, len(usr.CompletedLessons))
	for _, id := range usr.CompletedLessons {
		done[id] = struct{}{}
	}

	var completed int
	for _, l := range crs.Lessons {
		if _, ok := done[l.ID]; ok {
			completed++
		}
	}
	total := len(crs.Lessons)
	return Progress{Completed: completed, Total: total, Percentage: percentage(completed, total)}
}

// GradeQuiz compares the selected option indexes (keyed by question id)
// against each question's correct-answer marker. A question with no supplied
// answer counts as incorrect.
func GradeQuiz(quiz course.Quiz, answers map[int]int) Result {
	var correct int
	for _, qn := range quiz.Questions {
		if sel, ok := answers[qn.ID]; ok && sel == qn.CorrectAnswer {
			correct++
		}
	}
	total := len(quiz.Questions)
	return Result{Correct: correct, Total: total, Score: percentage(correct, total)}
}

// Enroll returns a copy of usr whose enrolled-course set includes courseID.
// Idempotent: re-enrolling never duplicates the id.
func Enroll(usr user.User, courseID int) user.User {
	if usr.IsEnrolled(courseID) {
		return usr
	}
	usr.EnrolledCourses = appendID(usr.EnrolledCourses, courseID)
	return usr
}

// CompleteLesson returns a copy of usr whose completed-lesson set includes
// lessonID. Idempotent.
func CompleteLesson(usr user.User, lessonID int) user.User {
	if usr.HasCompletedLesson(lessonID) {
		return usr
	}
	usr.CompletedLessons = appendID(usr.CompletedLessons, lessonID)
	return usr
}

// AppendQuizScore returns a copy of usr whose quiz-score history is the prior
// history with rec appended. History is append-only: prior entries are never
// mutated, removed or deduplicated, so retakes add new entries.
func AppendQuizScore(usr user.User, rec user.QuizScore) user.User {
	history := make([]user.QuizScore, len(usr.QuizScores), len(usr.QuizScores)+1)
	copy(history, usr.QuizScores)
	usr.QuizScores = append(history, rec)
	return usr
}

// AddCertificate returns a copy of usr with cert added, unless one for the
// same course already exists.
func AddCertificate(usr user.User, cert user.Certificate) user.User {
	if usr.HasCertificate(cert.CourseID) {
		return usr
	}
	certs := make([]user.Certificate, len(usr.Certificates), len(usr.Certificates)+1)
	copy(certs, usr.Certificates)
	usr.Certificates = append(certs, cert)
	return usr
}

func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func appendID(ids []int, id int) []int {
	out := make([]int, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// Service wraps the pure engine with catalog lookups.
type Service struct {
	courses course.Service
}

func NewService(courses course.Service) *Service {
	return &Service{courses: courses}
}

// Compute returns the user's progress in the given course, or a zeroed
// Progress when the course is absent from the catalog.
func (svc *Service) Compute(usr user.User, courseID int) Progress {
	crs, err := svc.courses.GetByID(courseID)
	if err != nil {
		return Progress{}
	}
	return Compute(usr, crs)
}
