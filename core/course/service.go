package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound      = errors.New("course not found")
	ErrCourseMissing = errors.New("The course with this ID does not exist.")
	ErrAlreadyJoined = errors.New("You have already joined this course.")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context, orderings []core.DBOrdering) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error

		// Enrol adds userID to the course members; IsEnrolled reports membership.
		Enrol(ctx context.Context, courseID, userID int, at time.Time) error
		IsEnrolled(ctx context.Context, courseID, userID int) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a Course owned by the calling teacher.
func (svc *Service) Create(ctx context.Context, callerID int, nc NewCourse) (Course, error) {
	now := NowFunc().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		TeacherID:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) Query(ctx context.Context, orderings []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, orderings)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != nil {
		crs.Title = *uc.Title
	}
	if uc.Description != nil {
		crs.Description = core.CleanString(*uc.Description)
	}
	crs.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Join enrols the calling student in the course.
// It fails with a ValidationError on `courseId` if the course does not exist or was already joined.
func (svc *Service) Join(ctx context.Context, callerID, courseID int) error {
	fieldErr := func(err error) error {
		return core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: err.Error()})
	}

	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return fieldErr(ErrCourseMissing)
		}
		return errors.Wrap(err, "finding course by ID")
	}

	joined, err := svc.repo.IsEnrolled(ctx, courseID, callerID)
	if err != nil {
		return errors.Wrap(err, "checking enrolment")
	}
	if joined {
		return fieldErr(ErrAlreadyJoined)
	}
	switch err = svc.repo.Enrol(ctx, courseID, callerID, NowFunc().UTC()); errors.Cause(err) {
	case nil:
		return nil
	case ErrAlreadyJoined: // concurrent join
		return fieldErr(ErrAlreadyJoined)
	case ErrNotFound: // deleted meanwhile
		return fieldErr(ErrCourseMissing)
	}
	return errors.Wrap(err, "enrolling")
}
