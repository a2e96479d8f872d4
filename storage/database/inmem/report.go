package inmemdb

import (
	"sort"

	"github.com/studybuddy/backend/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(r report.Report) (report.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.reportPK++
	r.ID = repo.db.reportPK
	repo.db.reports[r.ID] = &r
	return r, nil
}

func (repo *reportRepository) QueryAllReports() ([]report.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reports := make([]report.Report, 0, len(repo.db.reports))
	for _, r := range repo.db.reports {
		reports = append(reports, *r)
	}
	// newest first
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID > reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (repo *reportRepository) GetReportByID(id int) (report.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.reports[id]; ok {
		return *r, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) UpdateReport(r report.Report) (report.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reports[r.ID]; !ok {
		return report.Report{}, report.ErrNotFound
	}
	repo.db.reports[r.ID] = &r
	return r, nil
}
