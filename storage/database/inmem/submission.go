package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db}
}

func submissionField(sub submission.Submission, field string) (interface{}, bool) {
	switch field {
	case "id":
		return sub.ID, true
	case "assignment_id":
		return sub.AssignmentID, true
	case "user_id":
		return sub.UserID, true
	case "created_at":
		return sub.CreatedAt, true
	case "updated_at":
		return sub.UpdatedAt, true
	}
	return nil, false
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments.rows[sub.AssignmentID]; !ok {
		return submission.Submission{}, submission.ErrAssignmentNotFound
	}
	sub.ID = repo.db.submissions.insert(sub)
	repo.db.submissions.rows[sub.ID].ID = sub.ID
	return sub, nil
}

func (repo *submissionRepository) QuerySubmissions(
	_ context.Context,
	filter submission.QueryFilter,
	orderings []core.DBOrdering,
) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0, len(repo.db.submissions.rows))
	for _, s := range repo.db.submissions.rows {
		if filter.AssignmentID > 0 && s.AssignmentID != filter.AssignmentID {
			continue
		}
		subs = append(subs, *s)
	}
	sortRows(subs, orderings, submissionField)
	return subs, nil
}

func (repo *submissionRepository) GetSubmissionByID(_ context.Context, id int) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions.rows[id]; ok {
		return *sub, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) UpdateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.submissions.rows[sub.ID]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	orig.Content = sub.Content
	orig.UpdatedAt = sub.UpdatedAt
	return *orig, nil
}

func (repo *submissionRepository) DeleteSubmission(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.submissions.rows[id]; !ok {
		return submission.ErrNotFound
	}
	delete(repo.db.submissions.rows, id)
	return nil
}

func (repo *submissionRepository) ExistingAssignmentIDs(_ context.Context, ids []int) (map[int]bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	found := make(map[int]bool, len(ids))
	for _, id := range ids {
		if _, ok := repo.db.assignments.rows[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

func (repo *submissionRepository) HasSubmitted(_ context.Context, userID, assignmentID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.submissions.rows {
		if s.UserID == userID && s.AssignmentID == assignmentID {
			return true, nil
		}
	}
	return false, nil
}
