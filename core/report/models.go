package report

import (
	"time"

	"github.com/studybuddy/backend/core"
)

type Type string

const (
	TypeTechnical Type = "technical"
	TypeContent   Type = "content"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Report is a user-filed issue about the platform or course content.
type Report struct {
	ID          int       `json:"id"`
	Type        Type      `json:"type"`
	UserID      int       `json:"userId"`
	UserName    string    `json:"userName"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"date"` // UTC
}

type NewReport struct {
	Type        Type   `json:"type" validate:"required,oneof=technical content"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (nr *NewReport) Validate() error {
	nr.Subject = core.CleanString(nr.Subject)
	nr.Description = core.CleanString(nr.Description)
	return core.Validate.Struct(nr)
}

// PlatformStats is derived, never stored; always recomputed from the stores
// so it can never go stale.
type PlatformStats struct {
	TotalUsers       int     `json:"totalUsers"`
	TotalStudents    int     `json:"totalStudents"`
	TotalInstructors int     `json:"totalInstructors"`
	TotalCourses     int     `json:"totalCourses"`
	TotalEnrollments int     `json:"totalEnrollments"`
	ActiveUsers      int     `json:"activeUsers"`
	Revenue          float64 `json:"revenue"`
	CompletionRate   int     `json:"completionRate"`
	PendingReports   int     `json:"pendingReports"`
}
