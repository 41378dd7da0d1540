package submission

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Submission struct {
	ID           int       `json:"id" db:"id"`
	AssignmentID int       `json:"assignment_id" db:"assignment_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewSubmission contains information needed to create a single Submission.
// The owner is always the caller, never read from the request.
type NewSubmission struct {
	AssignmentID int    `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"required,notblank"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type UpdateSubmission struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (us *UpdateSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// Request is one item of a batch submission.
type Request struct {
	AssignmentID int    `json:"assignment_id"`
	Content      string `json:"content"`
}

type QueryFilter struct {
	AssignmentID int `query:"assignment_id"`
}

// BatchResult holds one persisted record and one relay outcome per batch item, in input order.
type BatchResult struct {
	DBResults  []Submission   `json:"db_results"`
	LogResults []RelayOutcome `json:"log_results"`
}
