package inmemdb

import (
	"sort"

	"github.com/studybuddy/backend/core/qa"
)

type qaRepository struct {
	db *DB
}

var _ qa.Repository = (*qaRepository)(nil)

func NewQARepository(db *DB) qa.Repository {
	return &qaRepository{db: db}
}

func (repo *qaRepository) CreateQuestion(q qa.Question) (qa.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.questionPK++
	q.ID = repo.db.questionPK
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *qaRepository) QueryAllQuestions() ([]qa.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	questions := make([]qa.Question, 0, len(repo.db.questions))
	for _, q := range repo.db.questions {
		questions = append(questions, *q)
	}
	// newest first
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].ID > questions[j].ID
		}
		return questions[i].CreatedAt.After(questions[j].CreatedAt)
	})
	return questions, nil
}

func (repo *qaRepository) GetQuestionByID(id int) (qa.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return qa.Question{}, qa.ErrNotFound
}

func (repo *qaRepository) UpdateQuestion(q qa.Question) (qa.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[q.ID]; !ok {
		return qa.Question{}, qa.ErrNotFound
	}
	repo.db.questions[q.ID] = &q
	return q, nil
}
