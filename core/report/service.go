package report

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/progress"
	"github.com/studybuddy/backend/core/user"
)

var ErrNotFound = errors.New("report not found")

type (
	Repository interface {
		CreateReport(r Report) (Report, error)
		// QueryAllReports returns reports newest-first.
		QueryAllReports() ([]Report, error)
		GetReportByID(id int) (Report, error)
		UpdateReport(r Report) (Report, error)
	}

	Service interface {
		Create(usr user.User, nr NewReport) (Report, error)
		List() ([]Report, error)
		Resolve(id int) (Report, error)
		Stats() (PlatformStats, error)
	}

	service struct {
		repo    Repository
		users   user.Service
		courses course.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users user.Service, courses course.Service) Service {
	return &service{repo: repo, users: users, courses: courses}
}

func (svc *service) Create(usr user.User, nr NewReport) (Report, error) {
	r := Report{
		Type:        nr.Type,
		UserID:      usr.ID,
		UserName:    usr.Name,
		Subject:     nr.Subject,
		Description: nr.Description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateReport(r)
}

func (svc *service) List() ([]Report, error) {
	return svc.repo.QueryAllReports()
}

// Resolve marks the report resolved; pending -> resolved is one-way.
func (svc *service) Resolve(id int) (Report, error) {
	r, err := svc.repo.GetReportByID(id)
	if err != nil {
		return Report{}, err
	}
	r.Status = StatusResolved
	return svc.repo.UpdateReport(r)
}

// Stats aggregates platform-wide figures over the live stores. Revenue is the
// sum of enrolled course prices; CompletionRate averages progress percentages
// over every (student, enrolled course) pair.
func (svc *service) Stats() (PlatformStats, error) {
	users, err := svc.users.QueryAll()
	if err != nil {
		return PlatformStats{}, errors.Wrap(err, "querying users")
	}
	courses, err := svc.courses.QueryAll()
	if err != nil {
		return PlatformStats{}, errors.Wrap(err, "querying courses")
	}
	reports, err := svc.repo.QueryAllReports()
	if err != nil {
		return PlatformStats{}, errors.Wrap(err, "querying reports")
	}

	catalog := make(map[int]course.Course, len(courses))
	for _, crs := range courses {
		catalog[crs.ID] = crs
	}

	stats := PlatformStats{
		TotalUsers:   len(users),
		TotalCourses: len(courses),
	}

	var pctSum, pairs int
	for _, usr := range users {
		if usr.IsActive {
			stats.ActiveUsers++
		}
		switch usr.Role {
		case user.RoleStudent:
			stats.TotalStudents++
		case user.RoleInstructor:
			stats.TotalInstructors++
		case user.RoleAdmin:
		}

		stats.TotalEnrollments += len(usr.EnrolledCourses)
		for _, courseID := range usr.EnrolledCourses {
			crs, ok := catalog[courseID]
			if !ok {
				continue
			}
			stats.Revenue += crs.Price
			pctSum += progress.Compute(usr, crs).Percentage
			pairs++
		}
	}
	if pairs > 0 {
		stats.CompletionRate = int(math.Round(float64(pctSum) / float64(pairs)))
	}

	for _, r := range reports {
		if r.Status == StatusPending {
			stats.PendingReports++
		}
	}
	return stats, nil
}
