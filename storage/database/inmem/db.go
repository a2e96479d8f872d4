// Package inmemdb is the canonical demo store: seeded mock data held in
// memory, with optional JSON snapshot blobs for persistence across runs.
package inmemdb

import (
	"sync"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users     map[int]*user.User
	courses   map[int]*course.Course
	questions map[int]*qa.Question
	reports   map[int]*report.Report

	// last assigned ids
	userPK     int
	coursePK   int
	lessonPK   int
	quizPK     int
	questionPK int
	reportPK   int
}

func NewDB() *DB {
	return &DB{
		users:     make(map[int]*user.User),
		courses:   make(map[int]*course.Course),
		questions: make(map[int]*qa.Question),
		reports:   make(map[int]*report.Report),
	}
}

func (db *DB) IsEmpty() bool {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.users) == 0 && len(db.courses) == 0
}
