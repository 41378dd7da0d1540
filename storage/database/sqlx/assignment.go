package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

const assignmentColumns = "id, course_id, title, description, due_date, created_at, updated_at"

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	q := repo.db.Rebind(`
		INSERT INTO assignments (course_id, title, description, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q,
		asgmt.CourseID, asgmt.Title, asgmt.Description, asgmt.DueDate, asgmt.CreatedAt, asgmt.UpdatedAt,
	).Scan(&asgmt.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return assignment.Assignment{}, assignment.ErrCourseMissing
		}
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asgmt, nil
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	orderings []core.DBOrdering,
) ([]assignment.Assignment, error) {
	q := "SELECT " + assignmentColumns + " FROM assignments"
	var args []interface{}
	if filter.CourseID > 0 {
		q += " WHERE course_id = ?"
		args = append(args, filter.CourseID)
	}
	q += orderBy(orderings, "id", "course_id", "title", "due_date", "created_at", "updated_at")

	asgmts := make([]assignment.Assignment, 0)
	if err := repo.db.SelectContext(ctx, &asgmts, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return asgmts, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id int) (assignment.Assignment, error) {
	var asgmt assignment.Assignment
	q := repo.db.Rebind("SELECT " + assignmentColumns + " FROM assignments WHERE id = ?")
	if err := repo.db.GetContext(ctx, &asgmt, q, id); err != nil {
		return assignment.Assignment{}, notFound(err, assignment.ErrNotFound)
	}
	return asgmt, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	q := repo.db.Rebind("UPDATE assignments SET title = ?, description = ?, due_date = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, asgmt.Title, asgmt.Description, asgmt.DueDate, asgmt.UpdatedAt, asgmt.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.GetAssignmentByID(ctx, asgmt.ID)
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM assignments WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) CourseExists(ctx context.Context, courseID int) (bool, error) {
	var found []int
	if err := repo.db.SelectContext(ctx, &found, repo.db.Rebind("SELECT id FROM courses WHERE id = ? LIMIT 1"), courseID); err != nil {
		return false, errors.Wrap(err, "checking course")
	}
	return len(found) > 0, nil
}
