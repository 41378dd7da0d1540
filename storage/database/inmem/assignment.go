package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func assignmentField(asgmt assignment.Assignment, field string) (interface{}, bool) {
	switch field {
	case "id":
		return asgmt.ID, true
	case "course_id":
		return asgmt.CourseID, true
	case "title":
		return asgmt.Title, true
	case "due_date":
		return asgmt.DueDate, true
	case "created_at":
		return asgmt.CreatedAt, true
	case "updated_at":
		return asgmt.UpdatedAt, true
	}
	return nil, false
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses.rows[asgmt.CourseID]; !ok {
		return assignment.Assignment{}, assignment.ErrCourseMissing
	}
	asgmt.ID = repo.db.assignments.insert(asgmt)
	repo.db.assignments.rows[asgmt.ID].ID = asgmt.ID
	return asgmt, nil
}

func (repo *assignmentRepository) QueryAssignments(
	_ context.Context,
	filter assignment.QueryFilter,
	orderings []core.DBOrdering,
) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgmts := make([]assignment.Assignment, 0, len(repo.db.assignments.rows))
	for _, a := range repo.db.assignments.rows {
		if filter.CourseID > 0 && a.CourseID != filter.CourseID {
			continue
		}
		asgmts = append(asgmts, *a)
	}
	sortRows(asgmts, orderings, assignmentField)
	return asgmts, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id int) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asgmt, ok := repo.db.assignments.rows[id]; ok {
		return *asgmt, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.assignments.rows[asgmt.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	orig.Title = asgmt.Title
	orig.Description = asgmt.Description
	orig.DueDate = asgmt.DueDate
	orig.UpdatedAt = asgmt.UpdatedAt
	return *orig, nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.assignments.rows[id]; !ok {
		return assignment.ErrNotFound
	}
	repo.db.deleteAssignment(id)
	return nil
}

func (repo *assignmentRepository) CourseExists(_ context.Context, courseID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.courses.rows[courseID]
	return ok, nil
}
