package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound      = errors.New("assignment not found")
	ErrCourseMissing = errors.New("The selected course does not exist.")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asgmt Assignment) (Assignment, error)
		QueryAssignments(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		UpdateAssignment(ctx context.Context, asgmt Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error
		CourseExists(ctx context.Context, courseID int) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	exists, err := svc.repo.CourseExists(ctx, na.CourseID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "checking course")
	}
	if !exists {
		return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: ErrCourseMissing.Error()})
	}

	now := NowFunc().UTC()
	asgmt := Assignment{
		CourseID:    na.CourseID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     utcPtr(na.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, asgmt)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter, orderings)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ua UpdateAssignment) (Assignment, error) {
	asgmt, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if ua.Title != nil {
		asgmt.Title = *ua.Title
	}
	if ua.Description != nil {
		asgmt.Description = core.CleanString(*ua.Description)
	}
	if ua.DueDate != nil {
		asgmt.DueDate = utcPtr(ua.DueDate)
	}
	asgmt.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateAssignment(ctx, asgmt)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
