package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/submission"
)

const submissionColumns = "id, assignment_id, user_id, content, created_at, updated_at"

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	q := repo.db.Rebind(`
		INSERT INTO submissions (assignment_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q, sub.AssignmentID, sub.UserID, sub.Content, sub.CreatedAt, sub.UpdatedAt).
		Scan(&sub.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return submission.Submission{}, submission.ErrAssignmentNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo *submissionRepository) QuerySubmissions(
	ctx context.Context,
	filter submission.QueryFilter,
	orderings []core.DBOrdering,
) ([]submission.Submission, error) {
	q := "SELECT " + submissionColumns + " FROM submissions"
	var args []interface{}
	if filter.AssignmentID > 0 {
		q += " WHERE assignment_id = ?"
		args = append(args, filter.AssignmentID)
	}
	q += orderBy(orderings, "id", "assignment_id", "user_id", "created_at", "updated_at")

	subs := make([]submission.Submission, 0)
	if err := repo.db.SelectContext(ctx, &subs, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id int) (submission.Submission, error) {
	var sub submission.Submission
	q := repo.db.Rebind("SELECT " + submissionColumns + " FROM submissions WHERE id = ?")
	if err := repo.db.GetContext(ctx, &sub, q, id); err != nil {
		return submission.Submission{}, notFound(err, submission.ErrNotFound)
	}
	return sub, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	q := repo.db.Rebind("UPDATE submissions SET content = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, sub.Content, sub.UpdatedAt, sub.ID)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.GetSubmissionByID(ctx, sub.ID)
}

func (repo *submissionRepository) DeleteSubmission(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM submissions WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (repo *submissionRepository) ExistingAssignmentIDs(ctx context.Context, ids []int) (map[int]bool, error) {
	found := make(map[int]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	q, args, err := sqlx.In("SELECT id FROM assignments WHERE id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building assignments query")
	}
	var existing []int
	if err = repo.db.SelectContext(ctx, &existing, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignment ids")
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

func (repo *submissionRepository) HasSubmitted(ctx context.Context, userID, assignmentID int) (bool, error) {
	var found []int
	q := repo.db.Rebind("SELECT id FROM submissions WHERE user_id = ? AND assignment_id = ? LIMIT 1")
	if err := repo.db.SelectContext(ctx, &found, q, userID, assignmentID); err != nil {
		return false, errors.Wrap(err, "checking previous submissions")
	}
	return len(found) > 0, nil
}
