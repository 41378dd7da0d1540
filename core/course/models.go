package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	TeacherID   int       `json:"teacher_id" db:"teacher_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Title != nil {
		t := core.CleanString(*uc.Title)
		uc.Title = &t
	}
	return validate.Struct(uc)
}
