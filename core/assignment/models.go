package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Assignment struct {
	ID          int        `json:"id" db:"id"`
	CourseID    int        `json:"course_id" db:"course_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     *time.Time `json:"due_date" db:"due_date"` // UTC
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID    int        `json:"course_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,notblank,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	if ua.Title != nil {
		t := core.CleanString(*ua.Title)
		ua.Title = &t
	}
	return validate.Struct(ua)
}

type QueryFilter struct {
	CourseID int `query:"course_id"`
}
